package models

import (
	"time"

	"github.com/arahumroh/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for in-app notifications.
type NotificationModel struct {
	BaseModel
	AccountID uuid.UUID             `gorm:"type:uuid;not null;index:idx_notifications_account_created,priority:1"`
	Category  notification.Category `gorm:"type:varchar(20);not null"`
	Title     string                `gorm:"type:varchar(200);not null"`
	Body      string                `gorm:"type:text"`
	Link      string                `gorm:"type:varchar(255)"`
	ReadAt    *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		AccountID:  m.AccountID,
		Category:   m.Category,
		Title:      m.Title,
		Body:       m.Body,
		Link:       m.Link,
		ReadAt:     m.ReadAt,
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		AccountID: n.AccountID,
		Category:  n.Category,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		ReadAt:    n.ReadAt,
	}
	m.FromDomainBaseEntity(n.BaseEntity)
	return m
}
