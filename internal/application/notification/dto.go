package notification

import (
	"time"

	"github.com/arahumroh/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// ListNotificationsQuery holds query parameters for listing notifications
type ListNotificationsQuery struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Link      string     `json:"link,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain Notification to a response
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Category:  string(n.Category),
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		Read:      n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
