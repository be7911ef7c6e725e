package telemetry

import (
	"net/http"
	"strconv"
	"time"

	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/infrastructure/event"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "umroh"

// Metrics holds every Prometheus collector of the service on its own registry
type Metrics struct {
	registry *prometheus.Registry

	initiations     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	ledgerFailures  prometheus.Counter
	eventsHandled   *prometheus.CounterVec
	reconcileRuns   *prometheus.CounterVec
	reconcileLength prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors, plus the Go runtime and process collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		initiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_initiations_total",
			Help:      "Payment initiations by transaction kind and result.",
		}, []string{"kind", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_notifications_total",
			Help:      "Provider statuses processed, by source and outcome.",
		}, []string{"source", "outcome"}),
		ledgerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_ledger_credit_failures_total",
			Help:      "Paid top-ups whose ledger credit failed and need manual reconciliation.",
		}),
		eventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_handled_total",
			Help:      "Domain events seen by idempotent handlers, by outcome.",
		}, []string{"handler", "event_type", "outcome"}),
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciler_runs_total",
			Help:      "Pending reconciler sweeps by result.",
		}, []string{"result"}),
		reconcileLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconciler_run_duration_seconds",
			Help:      "Duration of pending reconciler sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.initiations,
		m.notifications,
		m.ledgerFailures,
		m.eventsHandled,
		m.reconcileRuns,
		m.reconcileLength,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveInitiation implements paymentapp.Metrics
func (m *Metrics) ObserveInitiation(kind payment.TransactionKind, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.initiations.WithLabelValues(string(kind), result).Inc()
}

// ObserveNotification implements paymentapp.Metrics
func (m *Metrics) ObserveNotification(source paymentapp.Source, outcome paymentapp.Outcome) {
	m.notifications.WithLabelValues(string(source), string(outcome)).Inc()
}

// ObserveLedgerFailure implements paymentapp.Metrics
func (m *Metrics) ObserveLedgerFailure() {
	m.ledgerFailures.Inc()
}

// ObserveEventHandled implements event.HandlerMetrics
func (m *Metrics) ObserveEventHandled(handler, eventType, outcome string) {
	m.eventsHandled.WithLabelValues(handler, eventType, outcome).Inc()
}

// ObserveReconcileRun records one sweep
func (m *Metrics) ObserveReconcileRun(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reconcileRuns.WithLabelValues(result).Inc()
	m.reconcileLength.Observe(d.Seconds())
}

// GinMiddleware records request counts and latency labelled by the matched route, not the raw path
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

var (
	_ paymentapp.Metrics   = (*Metrics)(nil)
	_ event.HandlerMetrics = (*Metrics)(nil)
)
