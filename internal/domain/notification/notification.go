package notification

import (
	"context"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Notification errors
var (
	ErrInvalidAccount       = shared.NewDomainError("NOTIFICATION_INVALID_ACCOUNT", "Account ID cannot be empty")
	ErrInvalidCategory      = shared.NewDomainError("NOTIFICATION_INVALID_CATEGORY", "Unknown notification category")
	ErrEmptyTitle           = shared.NewDomainError("NOTIFICATION_EMPTY_TITLE", "Notification title cannot be empty")
	ErrNotificationNotFound = shared.NewDomainError("NOTIFICATION_NOT_FOUND", "Notification not found")
)

// Category groups notifications for display
type Category string

const (
	CategoryPayment Category = "payment"
	CategoryBooking Category = "booking"
	CategorySystem  Category = "system"
)

// IsValid returns true if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryPayment, CategoryBooking, CategorySystem:
		return true
	}
	return false
}

// Notification is an in-app message addressed to one account
type Notification struct {
	shared.BaseEntity
	AccountID uuid.UUID
	Category  Category
	Title     string
	Body      string
	Link      string
	ReadAt    *time.Time
}

// New creates an unread notification
func New(accountID uuid.UUID, category Category, title, body string) (*Notification, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidAccount
	}
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Category:   category,
		Title:      title,
		Body:       body,
	}, nil
}

// WithLink attaches a deep link (for payments, the order ID)
func (n *Notification) WithLink(link string) *Notification {
	n.Link = link
	return n
}

// IsRead returns true once the account has opened the notification
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Repository persists notifications
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	FindByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]Notification, int64, error)
	// MarkRead sets read_at if unset. Returns ErrNotificationNotFound when the
	// notification does not exist or belongs to another account.
	MarkRead(ctx context.Context, accountID, id uuid.UUID, at time.Time) error
}
