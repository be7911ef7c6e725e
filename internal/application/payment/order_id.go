package payment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/arahumroh/backend/internal/domain/payment"
)

// OrderIDGenerator produces the provider order ID for a new transaction
type OrderIDGenerator func(kind payment.TransactionKind, now time.Time) (string, error)

// NewOrderID returns "<PREFIX>-<unix millis>-<8 hex>", e.g. TOPUP-1718000000000-9f86d081
func NewOrderID(kind payment.TransactionKind, now time.Time) (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate order id: %w", err)
	}
	return fmt.Sprintf("%s-%d-%s", kind.OrderPrefix(), now.UnixMilli(), hex.EncodeToString(b[:])), nil
}
