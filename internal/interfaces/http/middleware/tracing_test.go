package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func newTracedRouter(t *testing.T, enabled bool) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{
		ServiceName: "arah-umroh-test",
		Enabled:     enabled,
		Options:     []otelgin.Option{otelgin.WithTracerProvider(tp)},
	}))
	router.Use(SpanErrorMarker())
	router.Use(logger.GinMiddleware(zap.NewNop()))
	return router, sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	router, sr := newTracedRouter(t, false)
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_RecordsRequestAndAccount(t *testing.T) {
	router, sr := newTracedRouter(t, true)
	accountID := uuid.New()
	router.GET("/payments/transactions/:order_id",
		func(c *gin.Context) {
			c.Set(JWTAccountIDKey, accountID)
			c.Next()
		},
		TracingAttributeInjector(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/payments/transactions/TOPUP-1", nil)
	req.Header.Set(logger.RequestIDHeader, "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	reqID, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", reqID.AsString())
	acc, ok := spanAttr(spans[0], "account_id")
	require.True(t, ok)
	assert.Equal(t, accountID.String(), acc.AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantError bool
	}{
		{"ok", http.StatusOK, false},
		{"unknown order", http.StatusNotFound, false},
		{"internal", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, sr := newTracedRouter(t, true)
			router.POST("/hook", func(c *gin.Context) { c.Status(tt.status) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/hook", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantError, spans[0].Status().Code == codes.Error)
			status, ok := spanAttr(spans[0], "http.status_code")
			require.True(t, ok)
			assert.Equal(t, int64(tt.status), status.AsInt64())
		})
	}
}
