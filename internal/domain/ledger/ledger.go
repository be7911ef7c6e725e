package ledger

import (
	"context"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Ledger errors
var (
	ErrInvalidAccount = shared.NewDomainError("LEDGER_INVALID_ACCOUNT", "Account ID cannot be empty")
	ErrInvalidCredit  = shared.NewDomainError("LEDGER_INVALID_CREDIT", "Credit amount must be positive")
	ErrInvalidSource  = shared.NewDomainError("LEDGER_INVALID_SOURCE", "Credit entry requires a source")
	ErrInvalidBalance = shared.NewDomainError("LEDGER_INVALID_BALANCE", "Balance before cannot be negative")
)

// SourceType names the kind of record that caused a ledger entry
type SourceType string

const (
	// SourceTypePaymentTransaction is a settled credit top-up
	SourceTypePaymentTransaction SourceType = "payment_transaction"
	// SourceTypeAdjustment is a manual correction by an administrator
	SourceTypeAdjustment SourceType = "adjustment"
)

// IsValid returns true if the source type is known
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypePaymentTransaction, SourceTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// Balance is an account's accumulated credits. A missing row means zero.
type Balance struct {
	AccountID uuid.UUID
	Credits   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmptyBalance returns the zero balance for an account with no ledger row
func EmptyBalance(accountID uuid.UUID) *Balance {
	return &Balance{AccountID: accountID}
}

// Entry is an immutable audit record of one balance change.
// Corrections are made with new entries, never by editing old ones.
type Entry struct {
	shared.BaseEntity
	AccountID     uuid.UUID
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
	SourceType    SourceType
	SourceID      string
	Note          string
}

// NewEntry creates a credit entry
func NewEntry(
	accountID uuid.UUID,
	amount int64,
	balanceBefore int64,
	sourceType SourceType,
	sourceID string,
) (*Entry, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidAccount
	}
	if amount <= 0 {
		return nil, ErrInvalidCredit
	}
	if !sourceType.IsValid() || sourceID == "" {
		return nil, ErrInvalidSource
	}
	if balanceBefore < 0 {
		return nil, ErrInvalidBalance
	}

	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		AccountID:     accountID,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore + amount,
		SourceType:    sourceType,
		SourceID:      sourceID,
	}, nil
}

// WithNote sets a human-readable note
func (e *Entry) WithNote(note string) *Entry {
	e.Note = note
	return e
}

// Credit describes an increment to apply to an account's balance
type Credit struct {
	AccountID  uuid.UUID
	Amount     int64
	SourceType SourceType
	SourceID   string
	Note       string
}

// Validate checks the credit before it reaches storage
func (c Credit) Validate() error {
	if c.AccountID == uuid.Nil {
		return ErrInvalidAccount
	}
	if c.Amount <= 0 {
		return ErrInvalidCredit
	}
	if !c.SourceType.IsValid() || c.SourceID == "" {
		return ErrInvalidSource
	}
	return nil
}

// Repository persists balances and their audit trail
type Repository interface {
	// ApplyCredit increments the balance (creating it if absent) and appends
	// exactly one entry, atomically. It returns the stored entry.
	ApplyCredit(ctx context.Context, credit Credit) (*Entry, error)

	// FindBalance returns the balance, or EmptyBalance if the account has none
	FindBalance(ctx context.Context, accountID uuid.UUID) (*Balance, error)

	// FindEntries lists the account's entries, newest first
	FindEntries(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Entry, int64, error)
}
