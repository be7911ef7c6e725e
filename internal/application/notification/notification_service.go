package notification

import (
	"context"
	"time"

	"github.com/arahumroh/backend/internal/domain/notification"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NotificationService serves an account's in-app notifications
type NotificationService struct {
	repo notification.Repository
	now  func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List pages through the account's notifications, newest first
func (s *NotificationService) List(ctx context.Context, accountID uuid.UUID, q ListNotificationsQuery) (shared.Paginated[NotificationResponse], error) {
	filter := shared.Filter{Page: q.Page, PageSize: q.PageSize}.Normalize()

	items, total, err := s.repo.FindByAccount(ctx, accountID, q.UnreadOnly, filter)
	if err != nil {
		return shared.Paginated[NotificationResponse]{}, err
	}

	out := make([]NotificationResponse, len(items))
	for i := range items {
		out[i] = ToNotificationResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// MarkRead marks one of the account's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, accountID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, accountID, id, s.now())
}
