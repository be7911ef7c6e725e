package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements payment.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *payment.Transaction) error {
	model, err := models.PaymentTransactionModelFromDomain(tx)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return payment.ErrDuplicateOrderID
		}
		return fmt.Errorf("create payment transaction: %w", err)
	}
	return nil
}

// FindByOrderID finds a transaction by its provider order ID
func (r *GormTransactionRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Transaction, error) {
	var model models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find payment transaction %s: %w", orderID, err)
	}
	return model.ToDomain()
}

// FindByAccount lists an account's transactions, newest first
func (r *GormTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]payment.Transaction, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentTransactionModel{}).
		Where("account_id = ?", accountID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payment transactions: %w", err)
	}

	var rows []models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list payment transactions: %w", err)
	}

	txs, err := toDomainTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// FindStalePending lists pending transactions created before the cutoff, oldest first
func (r *GormTransactionRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]payment.Transaction, error) {
	var rows []models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", payment.TransactionStatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stale pending transactions: %w", err)
	}
	return toDomainTransactions(rows)
}

// TransitionStatus moves a transaction to tr.To in a single conditional
// UPDATE. Paid rows and rows already in the target status are never matched,
// so concurrent duplicate deliveries see exactly one affected row between them.
func (r *GormTransactionRepository) TransitionStatus(ctx context.Context, tr payment.StatusTransition) (bool, error) {
	at := tr.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	updates := map[string]interface{}{
		"status":     tr.To,
		"updated_at": at,
	}
	if tr.PaymentMethod != "" {
		updates["payment_method"] = tr.PaymentMethod
	}
	if tr.To == payment.TransactionStatusPaid {
		updates["paid_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&models.PaymentTransactionModel{}).
		Where("order_id = ? AND status <> ? AND status <> ?", tr.OrderID, payment.TransactionStatusPaid, tr.To).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("transition payment transaction %s to %s: %w", tr.OrderID, tr.To, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func toDomainTransactions(rows []models.PaymentTransactionModel) ([]payment.Transaction, error) {
	txs := make([]payment.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, nil
}

// Ensure GormTransactionRepository implements payment.TransactionRepository
var _ payment.TransactionRepository = (*GormTransactionRepository)(nil)
