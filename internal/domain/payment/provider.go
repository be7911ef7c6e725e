package payment

import (
	"context"

	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
)

// Customer identifies the buyer to the provider
type Customer struct {
	Email string
	Name  string
}

// SessionRequest asks the provider to open a hosted checkout session
type SessionRequest struct {
	OrderID  string
	Amount   valueobject.Rupiah
	Customer Customer
	Items    []Item
}

// Validate checks the request before it leaves the process
func (r *SessionRequest) Validate() error {
	if r.OrderID == "" {
		return ErrInvalidOrderID
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return ValidateItems(r.Items, r.Amount)
}

// Session is the provider's answer to a SessionRequest
type Session struct {
	Token       string
	RedirectURL string
}

// Provider is the port to the external payment provider
type Provider interface {
	// CreateSession opens a checkout session for the order
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)

	// FetchStatus queries the provider for the current status of an order
	FetchStatus(ctx context.Context, orderID string) (*Notification, error)
}

// NotificationVerifier checks that a notification really came from the provider
type NotificationVerifier interface {
	VerifyNotification(n *Notification) error
}
