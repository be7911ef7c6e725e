package payment

import (
	"math"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AggregateTypeTransaction names the Transaction aggregate in domain events
const AggregateTypeTransaction = "PaymentTransaction"

// TransactionStatus is the local lifecycle state of a payment
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// IsValid returns true if the status is one of the known states
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusPaid, TransactionStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if no further transition is allowed.
// Only paid is terminal: a failed payment may still settle late.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusPaid
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// TransactionKind classifies what a payment buys
type TransactionKind string

const (
	// TransactionKindCreditTopUp buys credits that are added to the account ledger
	TransactionKindCreditTopUp TransactionKind = "credit_topup"
	// TransactionKindPackageBooking pays for an Umroh package booking
	TransactionKindPackageBooking TransactionKind = "package_booking"
)

// IsValid returns true if the kind is known
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindCreditTopUp, TransactionKindPackageBooking:
		return true
	}
	return false
}

// GrantsCredits returns true if settling this kind credits the ledger
func (k TransactionKind) GrantsCredits() bool {
	return k == TransactionKindCreditTopUp
}

// OrderPrefix returns the prefix used when generating order IDs for this kind
func (k TransactionKind) OrderPrefix() string {
	switch k {
	case TransactionKindCreditTopUp:
		return "TOPUP"
	case TransactionKindPackageBooking:
		return "BOOK"
	}
	return "PAY"
}

// String returns the string representation of TransactionKind
func (k TransactionKind) String() string {
	return string(k)
}

// Item is one line of the provider's item_details list
type Item struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Price    valueobject.Rupiah `json:"price"`
	Quantity int                `json:"quantity"`
}

// Subtotal returns price times quantity. ok is false when the product does
// not fit in an int64. Price and Quantity must be positive.
func (i Item) Subtotal() (subtotal valueobject.Rupiah, ok bool) {
	if i.Price > valueobject.Rupiah(math.MaxInt64/int64(i.Quantity)) {
		return 0, false
	}
	return i.Price * valueobject.Rupiah(i.Quantity), true
}

// Metadata is the free-form payload stored with a transaction.
// CreditQuantity is written by the server at initiation and is the only
// value the ledger trusts when the payment settles.
type Metadata struct {
	Items          []Item `json:"items"`
	CreditQuantity int64  `json:"credit_quantity,omitempty"`
	BuyerEmail     string `json:"buyer_email,omitempty"`
	BuyerName      string `json:"buyer_name,omitempty"`
}

// ValidateItems checks that items are well formed and add up to amount
func ValidateItems(items []Item, amount valueobject.Rupiah) error {
	if len(items) == 0 {
		return ErrInvalidItems
	}
	var total valueobject.Rupiah
	for _, item := range items {
		if item.ID == "" || item.Name == "" || !item.Price.IsPositive() || item.Quantity <= 0 {
			return ErrInvalidItems
		}
		subtotal, ok := item.Subtotal()
		if !ok || total > math.MaxInt64-subtotal {
			// no int64 amount can match a basket this large
			return ErrItemTotalMismatch
		}
		total += subtotal
	}
	if total != amount {
		return ErrItemTotalMismatch
	}
	return nil
}

// Transaction is a single attempted payment, tracked from pending to paid or failed
type Transaction struct {
	shared.BaseAggregateRoot
	OrderID       string
	AccountID     uuid.UUID
	Amount        valueobject.Rupiah
	Kind          TransactionKind
	Status        TransactionStatus
	SessionToken  string
	RedirectURL   string
	PaymentMethod string
	Metadata      Metadata
	PaidAt        *time.Time
}

// NewTransaction creates a pending transaction
func NewTransaction(
	orderID string,
	accountID uuid.UUID,
	amount valueobject.Rupiah,
	kind TransactionKind,
	metadata Metadata,
) (*Transaction, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	if accountID == uuid.Nil {
		return nil, ErrInvalidAccount
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if err := ValidateItems(metadata.Items, amount); err != nil {
		return nil, err
	}

	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		AccountID:         accountID,
		Amount:            amount,
		Kind:              kind,
		Status:            TransactionStatusPending,
		Metadata:          metadata,
	}, nil
}

// AttachSession records the provider session handed to the client
func (t *Transaction) AttachSession(token, redirectURL string) error {
	if token == "" {
		return ErrMissingSession
	}
	t.SessionToken = token
	t.RedirectURL = redirectURL
	t.Touch()
	return nil
}

// IsPaid returns true once the payment has settled
func (t *Transaction) IsPaid() bool {
	return t.Status == TransactionStatusPaid
}

// IsTopUp returns true if settling this transaction credits the ledger
func (t *Transaction) IsTopUp() bool {
	return t.Kind.GrantsCredits()
}

// CreditQuantity returns the credits recorded at initiation
func (t *Transaction) CreditQuantity() int64 {
	return t.Metadata.CreditQuantity
}

// CanTransitionTo reports whether moving to status would change anything
func (t *Transaction) CanTransitionTo(status TransactionStatus) bool {
	if t.Status.IsTerminal() {
		return false
	}
	return status.IsValid() && status != t.Status
}

// ApplyTransition mirrors a persisted status change onto the aggregate and
// records the matching domain event. It returns false when the transition is
// not allowed, leaving the aggregate untouched.
func (t *Transaction) ApplyTransition(tr StatusTransition) bool {
	if !t.CanTransitionTo(tr.To) {
		return false
	}
	t.Status = tr.To
	if tr.PaymentMethod != "" {
		t.PaymentMethod = tr.PaymentMethod
	}
	t.UpdatedAt = tr.At
	switch tr.To {
	case TransactionStatusPaid:
		at := tr.At
		t.PaidAt = &at
		t.AddDomainEvent(NewTransactionPaidEvent(t))
	case TransactionStatusFailed:
		t.AddDomainEvent(NewTransactionFailedEvent(t))
	}
	return true
}

// StatusTransition describes a conditional status change for a transaction
type StatusTransition struct {
	OrderID       string
	To            TransactionStatus
	PaymentMethod string
	At            time.Time
}
