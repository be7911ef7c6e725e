package models

import (
	"time"

	"github.com/arahumroh/backend/internal/domain/ledger"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreditBalanceModel is one row per account holding its credit total.
type CreditBalanceModel struct {
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Credits   int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditBalanceModel) TableName() string {
	return "credit_balances"
}

// ToDomain converts the persistence model to a domain Balance
func (m *CreditBalanceModel) ToDomain() *ledger.Balance {
	return &ledger.Balance{
		AccountID: m.AccountID,
		Credits:   m.Credits,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CreditEntryModel is the append-only audit trail of balance changes.
// Rows are never updated, so there is no updated_at column.
type CreditEntryModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	CreatedAt     time.Time         `gorm:"not null;index:idx_credit_entries_account_created,priority:2,sort:desc"`
	AccountID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_credit_entries_account_created,priority:1"`
	Amount        int64             `gorm:"not null"`
	BalanceBefore int64             `gorm:"not null"`
	BalanceAfter  int64             `gorm:"not null"`
	SourceType    ledger.SourceType `gorm:"type:varchar(30);not null"`
	SourceID      string            `gorm:"type:varchar(64);not null;index:idx_credit_entries_source"`
	Note          string            `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CreditEntryModel) TableName() string {
	return "credit_entries"
}

// ToDomain converts the persistence model to a domain Entry
func (m *CreditEntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    m.SourceType,
		SourceID:      m.SourceID,
		Note:          m.Note,
	}
}

// CreditEntryModelFromDomain creates a persistence model from a domain Entry
func CreditEntryModelFromDomain(e *ledger.Entry) *CreditEntryModel {
	return &CreditEntryModel{
		ID:            e.ID,
		CreatedAt:     e.CreatedAt,
		AccountID:     e.AccountID,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		SourceType:    e.SourceType,
		SourceID:      e.SourceID,
		Note:          e.Note,
	}
}
