package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationArchiver keeps the raw body of accepted notifications
type NotificationArchiver interface {
	Archive(ctx context.Context, orderID string, body []byte, receivedAt time.Time) error
}

// WebhookService processes provider payment notifications
type WebhookService struct {
	repo     payment.TransactionRepository
	verifier payment.NotificationVerifier
	archive  NotificationArchiver
	settler  *settler
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// WebhookServiceConfig holds dependencies for WebhookService
type WebhookServiceConfig struct {
	TransactionRepo payment.TransactionRepository
	Ledger          Creditor
	EventPublisher  shared.EventPublisher
	// Verifier checks notification signatures. Nil accepts every notification.
	Verifier payment.NotificationVerifier
	// Archive receives every notification that passed verification. Optional;
	// archive failures are logged and never change the response.
	Archive NotificationArchiver
	Metrics Metrics
	Logger  *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := metricsOrNoop(cfg.Metrics)
	now := func() time.Time { return time.Now().UTC() }
	return &WebhookService{
		repo:     cfg.TransactionRepo,
		verifier: cfg.Verifier,
		archive:  cfg.Archive,
		settler: &settler{
			repo:      cfg.TransactionRepo,
			creditor:  cfg.Ledger,
			publisher: cfg.EventPublisher,
			metrics:   metrics,
			logger:    logger,
			now:       now,
		},
		metrics: metrics,
		logger:  logger,
		now:     now,
	}
}

// HandleNotification parses a raw notification body and applies it.
//
// Errors:
//   - payment.ErrMalformedNotification, payment.ErrMissingOrderID: unusable body
//   - payment.ErrInvalidSignature: verification enabled and failed
//   - payment.ErrTransactionNotFound: unknown order, nothing was changed
//   - anything else: storage failure before the status decision
func (s *WebhookService) HandleNotification(ctx context.Context, body []byte) (*WebhookResult, error) {
	n, err := payment.ParseNotification(body)
	if err != nil {
		s.metrics.ObserveNotification(SourceWebhook, OutcomeInvalid)
		s.logger.Warn("Rejected unparseable payment notification", zap.Error(err))
		return nil, err
	}

	if s.verifier != nil {
		if err := s.verifier.VerifyNotification(n); err != nil {
			s.metrics.ObserveNotification(SourceWebhook, OutcomeInvalid)
			s.logger.Warn("Payment notification signature rejected",
				zap.String("order_id", n.OrderID),
				zap.Error(err))
			if !errors.Is(err, payment.ErrInvalidSignature) {
				err = fmt.Errorf("%w: %w", payment.ErrInvalidSignature, err)
			}
			return nil, err
		}
	}

	if s.archive != nil {
		if err := s.archive.Archive(ctx, n.OrderID, body, s.now()); err != nil {
			s.logger.Warn("Failed to archive payment notification",
				zap.String("order_id", n.OrderID),
				zap.Error(err))
		}
	}

	tx, err := s.repo.FindByOrderID(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			s.metrics.ObserveNotification(SourceWebhook, OutcomeNotFound)
			s.logger.Warn("Payment notification for unknown order",
				zap.String("order_id", n.OrderID),
				zap.String("provider_status", n.Status.Name()))
			return nil, err
		}
		s.metrics.ObserveNotification(SourceWebhook, OutcomeError)
		return nil, fmt.Errorf("load transaction %s: %w", n.OrderID, err)
	}

	outcome, err := s.settler.settle(ctx, SourceWebhook, tx, n)
	if err != nil {
		s.logger.Error("Failed to apply payment notification",
			zap.String("order_id", n.OrderID),
			zap.Error(err))
		return nil, err
	}

	return &WebhookResult{
		OrderID: tx.OrderID,
		Outcome: outcome,
		Status:  tx.Status,
	}, nil
}
