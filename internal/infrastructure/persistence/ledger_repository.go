package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arahumroh/backend/internal/domain/ledger"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerRepository implements ledger.Repository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// ApplyCredit upserts the balance row and appends the audit entry in one
// database transaction. The upsert takes the row lock, so the balance read
// afterwards is the one this credit produced.
func (r *GormLedgerRepository) ApplyCredit(ctx context.Context, credit ledger.Credit) (*ledger.Entry, error) {
	if err := credit.Validate(); err != nil {
		return nil, err
	}

	var entry *ledger.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		row := &models.CreditBalanceModel{
			AccountID: credit.AccountID,
			Credits:   credit.Amount,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"credits":    gorm.Expr("credit_balances.credits + ?", credit.Amount),
				"updated_at": now,
			}),
		}).Create(row).Error; err != nil {
			return fmt.Errorf("increment credit balance: %w", err)
		}

		var after int64
		if err := tx.Model(&models.CreditBalanceModel{}).
			Where("account_id = ?", credit.AccountID).
			Select("credits").
			Scan(&after).Error; err != nil {
			return fmt.Errorf("read credit balance: %w", err)
		}

		e, err := ledger.NewEntry(credit.AccountID, credit.Amount, after-credit.Amount, credit.SourceType, credit.SourceID)
		if err != nil {
			return err
		}
		e.WithNote(credit.Note)

		if err := tx.Create(models.CreditEntryModelFromDomain(e)).Error; err != nil {
			return fmt.Errorf("append credit entry: %w", err)
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FindBalance returns the account's balance, or a zero balance if it has none yet
func (r *GormLedgerRepository) FindBalance(ctx context.Context, accountID uuid.UUID) (*ledger.Balance, error) {
	var model models.CreditBalanceModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.EmptyBalance(accountID), nil
		}
		return nil, fmt.Errorf("find credit balance: %w", err)
	}
	return model.ToDomain(), nil
}

// FindEntries lists the account's entries, newest first
func (r *GormLedgerRepository) FindEntries(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]ledger.Entry, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.CreditEntryModel{}).
		Where("account_id = ?", accountID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count credit entries: %w", err)
	}

	var rows []models.CreditEntryModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list credit entries: %w", err)
	}

	entries := make([]ledger.Entry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, total, nil
}

// Ensure GormLedgerRepository implements ledger.Repository
var _ ledger.Repository = (*GormLedgerRepository)(nil)
