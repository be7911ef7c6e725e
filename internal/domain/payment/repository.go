package payment

import (
	"context"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionRepository persists payment transactions
type TransactionRepository interface {
	// Create inserts a new transaction. A duplicate order ID returns ErrDuplicateOrderID.
	Create(ctx context.Context, tx *Transaction) error

	// FindByOrderID returns ErrTransactionNotFound when no row matches
	FindByOrderID(ctx context.Context, orderID string) (*Transaction, error)

	// FindByAccount lists an account's transactions, newest first
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Transaction, int64, error)

	// FindStalePending lists pending transactions created before the cutoff, oldest first
	FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]Transaction, error)

	// TransitionStatus applies the transition only if the row is not yet paid
	// and not already in the target status. It reports whether a row changed.
	TransitionStatus(ctx context.Context, tr StatusTransition) (bool, error)
}
