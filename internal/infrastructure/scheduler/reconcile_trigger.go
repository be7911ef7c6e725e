package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrInvalidInterval is returned by Start when the trigger has no positive interval
var ErrInvalidInterval = errors.New("scheduler: interval must be positive")

// Reconciler runs one sweep over stale pending transactions
type Reconciler interface {
	ReconcileStale(ctx context.Context) (*paymentapp.ReconcileReport, error)
}

// RunObserver records the duration and result of each sweep
type RunObserver interface {
	ObserveReconcileRun(d time.Duration, err error)
}

// ReconcileTriggerConfig holds configuration for the reconcile trigger
type ReconcileTriggerConfig struct {
	// Interval between the end of one sweep and the start of the next tick
	Interval time.Duration
	// Timeout bounds a single sweep
	Timeout time.Duration
	// RunOnStart sweeps once immediately instead of waiting for the first tick
	RunOnStart bool
}

// ReconcileTrigger runs the pending reconciler periodically on one goroutine.
// Sweeps never overlap.
type ReconcileTrigger struct {
	config     ReconcileTriggerConfig
	reconciler Reconciler
	observer   RunObserver
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconcileTrigger creates a new reconcile trigger. observer may be nil.
func NewReconcileTrigger(cfg ReconcileTriggerConfig, reconciler Reconciler, observer RunObserver, logger *zap.Logger) *ReconcileTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileTrigger{
		config:     cfg,
		reconciler: reconciler,
		observer:   observer,
		logger:     logger,
	}
}

// Start launches the loop. Calling Start on a running trigger is a no-op.
func (t *ReconcileTrigger) Start(ctx context.Context) error {
	if t.config.Interval <= 0 {
		return ErrInvalidInterval
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Reconcile trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Duration("timeout", t.config.Timeout),
	)
	return nil
}

// Stop cancels the loop, including a sweep in progress, and waits for it to exit or for ctx to expire
func (t *ReconcileTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.cancel()
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Reconcile trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *ReconcileTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.RunOnce(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and logs its report
func (t *ReconcileTrigger) RunOnce(ctx context.Context) {
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	var (
		report *paymentapp.ReconcileReport
		err    error
	)
	start := time.Now()
	telemetry.WithProfilingLabels(ctx, func(ctx context.Context) {
		report, err = t.reconciler.ReconcileStale(ctx)
	}, "operation", "reconcile")
	elapsed := time.Since(start)

	if t.observer != nil {
		t.observer.ObserveReconcileRun(elapsed, err)
	}

	if err != nil {
		t.logger.Error("Reconcile sweep failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return
	}
	if report.Checked == 0 {
		t.logger.Debug("Reconcile sweep found no stale transactions")
		return
	}
	t.logger.Info("Reconcile sweep finished",
		zap.Int("checked", report.Checked),
		zap.Int("applied", report.Applied),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", elapsed),
	)
}
