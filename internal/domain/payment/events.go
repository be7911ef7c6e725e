package payment

import (
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
)

// Event type constants
const (
	EventTypeTransactionPaid   = "payment.transaction.paid"
	EventTypeTransactionFailed = "payment.transaction.failed"
)

// TransactionPaidEvent is published the first time a transaction becomes paid
type TransactionPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       string             `json:"order_id"`
	Amount        valueobject.Rupiah `json:"amount"`
	Kind          TransactionKind    `json:"kind"`
	Credits       int64              `json:"credits,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	// CreditFailed is set when the top-up was paid but the ledger did not
	// record the credits. Credits is zero in that case.
	CreditFailed bool `json:"credit_failed,omitempty"`
}

// NewTransactionPaidEvent creates a new TransactionPaidEvent
func NewTransactionPaidEvent(t *Transaction) *TransactionPaidEvent {
	return &TransactionPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionPaid, AggregateTypeTransaction, t.ID, t.AccountID),
		OrderID:         t.OrderID,
		Amount:          t.Amount,
		Kind:            t.Kind,
		Credits:         t.CreditQuantity(),
		PaymentMethod:   t.PaymentMethod,
	}
}

// MarkCreditFailed records that no credits were granted for the payment
func (e *TransactionPaidEvent) MarkCreditFailed() {
	e.Credits = 0
	e.CreditFailed = true
}

// TransactionFailedEvent is published when a pending transaction is cancelled, denied or expires
type TransactionFailedEvent struct {
	shared.BaseDomainEvent
	OrderID string             `json:"order_id"`
	Amount  valueobject.Rupiah `json:"amount"`
	Kind    TransactionKind    `json:"kind"`
}

// NewTransactionFailedEvent creates a new TransactionFailedEvent
func NewTransactionFailedEvent(t *Transaction) *TransactionFailedEvent {
	return &TransactionFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionFailed, AggregateTypeTransaction, t.ID, t.AccountID),
		OrderID:         t.OrderID,
		Amount:          t.Amount,
		Kind:            t.Kind,
	}
}
