package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arahumroh/backend/internal/domain/ledger"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/arahumroh/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("assigned by the logging middleware", func(t *testing.T) {
		router := gin.New()
		router.Use(logger.GinMiddleware(zap.NewNop()))
		var got string
		router.GET("/", func(c *gin.Context) { got = getRequestID(c) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(logger.RequestIDHeader, "req-7")
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "req-7", got)
	})

	t.Run("falls back to the header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set(logger.RequestIDHeader, "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"shared not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"shared already exists", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"unknown transaction", payment.ErrTransactionNotFound, http.StatusNotFound, "PAYMENT_TRANSACTION_NOT_FOUND"},
		{"invalid amount", payment.ErrInvalidAmount, http.StatusBadRequest, "PAYMENT_INVALID_AMOUNT"},
		{"credit mismatch", payment.ErrCreditMismatch, http.StatusUnprocessableEntity, "PAYMENT_CREDIT_MISMATCH"},
		{"wrapped provider rejection", fmt.Errorf("%w: %w", payment.ErrProviderRejected, errors.New("timeout")), http.StatusBadGateway, "PAYMENT_PROVIDER_REJECTED"},
		{"ledger balance", ledger.ErrInvalidBalance, http.StatusUnprocessableEntity, "LEDGER_INVALID_BALANCE"},
		{"plain error", errors.New("connection refused"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	(&BaseHandler{}).HandleError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	(&BaseHandler{}).HandleError(c, nil)

	assert.Empty(t, rec.Body.String())
}

func TestBaseHandler_AccountIDRequiresAuthentication(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := (&BaseHandler{}).accountID(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, rec).Error.Code)
}
