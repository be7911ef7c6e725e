package payment

import "github.com/arahumroh/backend/internal/domain/payment"

// Source names the path a provider status arrived through
type Source string

const (
	SourceWebhook    Source = "webhook"
	SourceReconciler Source = "reconciler"
)

// Outcome is what processing one provider status did to its transaction
type Outcome string

const (
	// OutcomeApplied means this delivery changed the transaction's status
	OutcomeApplied Outcome = "applied"
	// OutcomeAlreadyPaid means the transaction was paid before the delivery was read
	OutcomeAlreadyPaid Outcome = "already_paid"
	// OutcomeDuplicate means a concurrent delivery changed the row first
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeUnchanged means the provider status maps to no transition
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeAmountMismatch means a paid status reported another amount or
	// currency than the transaction and was not applied
	OutcomeAmountMismatch Outcome = "amount_mismatch"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeError          Outcome = "error"
)

// Metrics receives payment flow counters.
// Implementations must be safe for concurrent use.
type Metrics interface {
	ObserveInitiation(kind payment.TransactionKind, ok bool)
	ObserveNotification(source Source, outcome Outcome)
	ObserveLedgerFailure()
}

type noopMetrics struct{}

func (noopMetrics) ObserveInitiation(payment.TransactionKind, bool) {}
func (noopMetrics) ObserveNotification(Source, Outcome)             {}
func (noopMetrics) ObserveLedgerFailure()                           {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
