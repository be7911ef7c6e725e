package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/arahumroh/backend/internal/domain/notification"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Save inserts a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error; err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

// FindByAccount lists an account's notifications, newest first
func (r *GormNotificationRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]notification.Notification, int64, error) {
	filter = filter.Normalize()

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("account_id = ?", accountID)
		if unreadOnly {
			db = db.Where("read_at IS NULL")
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Scopes(scope).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	var rows []models.NotificationModel
	if err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	items := make([]notification.Notification, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// MarkRead sets read_at on an unread notification owned by the account.
// Marking an already-read notification is a no-op.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, accountID, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND account_id = ? AND read_at IS NULL", id, accountID).
		Updates(map[string]interface{}{"read_at": at, "updated_at": at})
	if result.Error != nil {
		return fmt.Errorf("mark notification read: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND account_id = ?", id, accountID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check notification: %w", err)
	}
	if count == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// Ensure GormNotificationRepository implements notification.Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)
