package payment

import (
	"context"
	"fmt"
	"time"

	ledgerapp "github.com/arahumroh/backend/internal/application/ledger"
	"github.com/arahumroh/backend/internal/domain/ledger"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Creditor grants credits for a settled top-up
type Creditor interface {
	Credit(ctx context.Context, in ledgerapp.CreditInput) (*ledger.Entry, error)
}

// settler applies a provider status to a loaded transaction. The webhook and
// the reconciler both go through it, so at most one of them can win the
// conditional update for a given transition.
type settler struct {
	repo      payment.TransactionRepository
	creditor  Creditor
	publisher shared.EventPublisher
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func (s *settler) settle(ctx context.Context, source Source, tx *payment.Transaction, n *payment.Notification) (Outcome, error) {
	outcome, err := s.apply(ctx, tx, n)
	if err != nil {
		s.metrics.ObserveNotification(source, OutcomeError)
		return OutcomeError, err
	}
	s.metrics.ObserveNotification(source, outcome)
	return outcome, nil
}

func (s *settler) apply(ctx context.Context, tx *payment.Transaction, n *payment.Notification) (Outcome, error) {
	if tx.IsPaid() {
		s.logger.Debug("Transaction already paid, ignoring notification",
			zap.String("order_id", tx.OrderID),
			zap.String("provider_status", n.Status.Name()))
		return OutcomeAlreadyPaid, nil
	}

	to, ok := payment.Outcome(n.Status)
	if !ok || !tx.CanTransitionTo(to) {
		s.logger.Info("Notification does not change transaction status",
			zap.String("order_id", tx.OrderID),
			zap.String("status", tx.Status.String()),
			zap.String("provider_status", n.Status.Name()))
		return OutcomeUnchanged, nil
	}

	if to == payment.TransactionStatusPaid {
		if err := n.MatchesAmount(tx.Amount); err != nil {
			s.logger.Error("Paid status does not match transaction amount, not applied",
				zap.String("order_id", tx.OrderID),
				zap.String("expected_gross_amount", tx.Amount.GrossAmount()),
				zap.String("gross_amount", n.GrossAmount),
				zap.String("currency", n.Currency),
				zap.Error(err))
			return OutcomeAmountMismatch, nil
		}
	}

	tr := payment.StatusTransition{
		OrderID:       tx.OrderID,
		To:            to,
		PaymentMethod: n.PaymentMethod,
		At:            s.now(),
	}
	changed, err := s.repo.TransitionStatus(ctx, tr)
	if err != nil {
		return OutcomeError, fmt.Errorf("transition %s to %s: %w", tx.OrderID, to, err)
	}
	if !changed {
		s.logger.Info("Concurrent delivery already updated transaction",
			zap.String("order_id", tx.OrderID),
			zap.String("target_status", to.String()))
		return OutcomeDuplicate, nil
	}

	tx.ApplyTransition(tr)
	s.logger.Info("Transaction status updated",
		zap.String("order_id", tx.OrderID),
		zap.String("account_id", tx.AccountID.String()),
		zap.String("status", to.String()),
		zap.String("payment_method", tx.PaymentMethod))

	if tx.IsPaid() && tx.IsTopUp() && !s.credit(ctx, tx) {
		markCreditFailed(tx)
	}
	s.publish(ctx, tx)

	return OutcomeApplied, nil
}

// credit grants the transaction's recorded credits and reports whether the
// ledger recorded them. Failures leave the transaction paid; they are logged
// and counted for manual reconciliation.
func (s *settler) credit(ctx context.Context, tx *payment.Transaction) bool {
	credits := tx.CreditQuantity()
	if credits <= 0 {
		s.metrics.ObserveLedgerFailure()
		s.logger.Error("Paid top-up has no credit quantity recorded",
			zap.String("order_id", tx.OrderID),
			zap.String("account_id", tx.AccountID.String()))
		return false
	}

	_, err := s.creditor.Credit(ctx, ledgerapp.CreditInput{
		AccountID: tx.AccountID,
		Credits:   credits,
		SourceID:  tx.OrderID,
		Note:      fmt.Sprintf("Top up %d credits (%s)", credits, tx.Amount.Format()),
	})
	if err != nil {
		s.metrics.ObserveLedgerFailure()
		s.logger.Error("Failed to credit ledger for paid transaction",
			zap.String("order_id", tx.OrderID),
			zap.String("account_id", tx.AccountID.String()),
			zap.Int64("credits", credits),
			zap.Error(err))
		return false
	}
	return true
}

// markCreditFailed keeps the paid event from announcing credits the ledger
// never recorded.
func markCreditFailed(tx *payment.Transaction) {
	for _, e := range tx.GetDomainEvents() {
		if paid, ok := e.(*payment.TransactionPaidEvent); ok {
			paid.MarkCreditFailed()
		}
	}
}

func (s *settler) publish(ctx context.Context, tx *payment.Transaction) {
	events := tx.GetDomainEvents()
	tx.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish payment events",
			zap.String("order_id", tx.OrderID),
			zap.Error(err))
	}
}
