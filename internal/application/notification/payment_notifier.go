package notification

import (
	"context"
	"fmt"

	"github.com/arahumroh/backend/internal/domain/notification"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentNotifier writes an in-app notification when a payment settles or fails.
// It is not idempotent by itself; register it behind an idempotent handler.
type PaymentNotifier struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewPaymentNotifier creates a new PaymentNotifier
func NewPaymentNotifier(repo notification.Repository, logger *zap.Logger) *PaymentNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentNotifier{
		repo:   repo,
		logger: logger,
	}
}

// Name identifies the handler in idempotency keys and metrics
func (h *PaymentNotifier) Name() string {
	return "payment-notifier"
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentNotifier) EventTypes() []string {
	return []string{
		payment.EventTypeTransactionPaid,
		payment.EventTypeTransactionFailed,
	}
}

// Handle processes TransactionPaidEvent and TransactionFailedEvent
func (h *PaymentNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		n   *notification.Notification
		err error
	)

	switch e := event.(type) {
	case *payment.TransactionPaidEvent:
		n, err = notification.New(event.AccountID(), notification.CategoryPayment,
			"Pembayaran berhasil", paidBody(e))
	case *payment.TransactionFailedEvent:
		n, err = notification.New(event.AccountID(), notification.CategoryPayment,
			"Pembayaran gagal",
			fmt.Sprintf("Pembayaran %s sebesar %s tidak berhasil.", e.OrderID, e.Amount.Format()))
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	if err != nil {
		return err
	}

	n.WithLink(orderIDOf(event))
	if err := h.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("save payment notification: %w", err)
	}

	h.logger.Debug("payment notification written",
		zap.String("account_id", event.AccountID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("order_id", n.Link))
	return nil
}

func paidBody(e *payment.TransactionPaidEvent) string {
	if e.CreditFailed {
		return fmt.Sprintf("Pembayaran %s sebesar %s diterima. Kredit sedang diproses dan akan ditambahkan setelah diverifikasi.", e.OrderID, e.Amount.Format())
	}
	if e.Kind.GrantsCredits() && e.Credits > 0 {
		return fmt.Sprintf("Pembayaran %s sebesar %s diterima. %d kredit telah ditambahkan.", e.OrderID, e.Amount.Format(), e.Credits)
	}
	return fmt.Sprintf("Pembayaran %s sebesar %s diterima.", e.OrderID, e.Amount.Format())
}

func orderIDOf(event shared.DomainEvent) string {
	switch e := event.(type) {
	case *payment.TransactionPaidEvent:
		return e.OrderID
	case *payment.TransactionFailedEvent:
		return e.OrderID
	}
	return ""
}

// Ensure PaymentNotifier implements shared.EventHandler
var _ shared.EventHandler = (*PaymentNotifier)(nil)
