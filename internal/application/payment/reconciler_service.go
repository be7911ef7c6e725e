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

// ReconcilerService asks the provider about transactions that stayed pending
// longer than expected and applies the answer like a late webhook.
type ReconcilerService struct {
	repo      payment.TransactionRepository
	provider  payment.Provider
	settler   *settler
	minAge    time.Duration
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// ReconcilerServiceConfig holds dependencies for ReconcilerService
type ReconcilerServiceConfig struct {
	TransactionRepo payment.TransactionRepository
	Provider        payment.Provider
	Ledger          Creditor
	EventPublisher  shared.EventPublisher
	Metrics         Metrics
	Logger          *zap.Logger
	// MinAge is how long a transaction must have been pending. Default: 15m
	MinAge time.Duration
	// BatchSize caps the transactions checked per sweep. Default: 50
	BatchSize int
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(cfg ReconcilerServiceConfig) *ReconcilerService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	minAge := cfg.MinAge
	if minAge <= 0 {
		minAge = 15 * time.Minute
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	now := func() time.Time { return time.Now().UTC() }
	return &ReconcilerService{
		repo:     cfg.TransactionRepo,
		provider: cfg.Provider,
		settler: &settler{
			repo:      cfg.TransactionRepo,
			creditor:  cfg.Ledger,
			publisher: cfg.EventPublisher,
			metrics:   metricsOrNoop(cfg.Metrics),
			logger:    logger,
			now:       now,
		},
		minAge:    minAge,
		batchSize: batchSize,
		logger:    logger,
		now:       now,
	}
}

// ReconcileStale checks one batch of stale pending transactions. Provider
// errors are counted per order and do not stop the sweep.
func (s *ReconcilerService) ReconcileStale(ctx context.Context) (*ReconcileReport, error) {
	cutoff := s.now().Add(-s.minAge)
	txs, err := s.repo.FindStalePending(ctx, cutoff, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("find stale pending transactions: %w", err)
	}

	report := &ReconcileReport{}
	for i := range txs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		tx := &txs[i]
		report.Checked++

		n, err := s.provider.FetchStatus(ctx, tx.OrderID)
		if err != nil {
			if errors.Is(err, payment.ErrProviderOrderUnknown) {
				// Checkout was never opened; the session expires on its own.
				report.Unchanged++
				continue
			}
			report.Failed++
			s.logger.Warn("Failed to fetch provider status",
				zap.String("order_id", tx.OrderID),
				zap.Error(err))
			continue
		}

		outcome, err := s.settler.settle(ctx, SourceReconciler, tx, n)
		if err != nil {
			report.Failed++
			s.logger.Error("Failed to apply provider status",
				zap.String("order_id", tx.OrderID),
				zap.Error(err))
			continue
		}
		if outcome == OutcomeApplied {
			report.Applied++
		} else {
			report.Unchanged++
		}
	}

	if report.Checked > 0 {
		s.logger.Info("Pending transactions reconciled",
			zap.Int("checked", report.Checked),
			zap.Int("applied", report.Applied),
			zap.Int("unchanged", report.Unchanged),
			zap.Int("failed", report.Failed))
	}
	return report, nil
}
