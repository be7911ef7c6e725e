package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/infrastructure/event"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_PaymentCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveInitiation(payment.TransactionKindCreditTopUp, true)
	m.ObserveInitiation(payment.TransactionKindCreditTopUp, false)
	m.ObserveNotification(paymentapp.SourceWebhook, paymentapp.OutcomeApplied)
	m.ObserveNotification(paymentapp.SourceWebhook, paymentapp.OutcomeAlreadyPaid)
	m.ObserveNotification(paymentapp.SourceWebhook, paymentapp.OutcomeAlreadyPaid)
	m.ObserveLedgerFailure()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.initiations.WithLabelValues("credit_topup", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.initiations.WithLabelValues("credit_topup", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.notifications.WithLabelValues("webhook", "already_paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerFailures))
}

func TestMetrics_LedgerFailureExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveLedgerFailure()

	expected := `
# HELP umroh_payment_ledger_credit_failures_total Paid top-ups whose ledger credit failed and need manual reconciliation.
# TYPE umroh_payment_ledger_credit_failures_total counter
umroh_payment_ledger_credit_failures_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"umroh_payment_ledger_credit_failures_total"))
}

func TestMetrics_EventsAndReconciler(t *testing.T) {
	m := NewMetrics()

	m.ObserveEventHandled("payment-notifier", payment.EventTypeTransactionPaid, event.OutcomeProcessed)
	m.ObserveReconcileRun(1200*time.Millisecond, nil)
	m.ObserveReconcileRun(time.Second, errors.New("db down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.eventsHandled.WithLabelValues("payment-notifier", payment.EventTypeTransactionPaid, "processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconcileRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconcileRuns.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.reconcileLength))
}

func TestMetrics_GinMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/v1/payments/transactions/:order_id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, id := range []string{"TOPUP-1", "TOPUP-2"} {
		r.ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(http.MethodGet, "/api/v1/payments/transactions/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.httpRequests.WithLabelValues("GET", "/api/v1/payments/transactions/:order_id", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "umroh_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
