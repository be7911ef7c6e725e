package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger, skip ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(l), GinMiddleware(l, skip...))
	return r
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))

	var ctxRequestID string
	r.GET("/api/v1/credits/balance", func(c *gin.Context) {
		ctxRequestID = GetRequestID(c.Request.Context())
		GetGinLogger(c).Info("handler")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits/balance", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, ctxRequestID)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, requestID, fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, 1, logs.FilterMessage("handler").Len())
}

func TestGinMiddleware_KeepsIncomingRequestID(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, GetGinRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "midtrans-retry-7")
	r.ServeHTTP(w, req)

	assert.Equal(t, "midtrans-retry-7", w.Body.String())
	assert.Equal(t, "midtrans-retry-7", w.Header().Get(RequestIDHeader))
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/missing", "/broken"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestGinMiddleware_SkipsPaths(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core), "/health")
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 0, logs.FilterMessage("HTTP Request").Len())
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
