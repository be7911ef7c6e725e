package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const settlementBody = `{"order_id":"TOPUP-20261018-ABCDEF","transaction_status":"settlement","payment_type":"bank_transfer","gross_amount":"150000.00"}`

func setupWebhookRouter(maxBody int64) (*gin.Engine, *MockNotificationHandler) {
	svc := new(MockNotificationHandler)
	h := NewWebhookHandler(svc)

	router := gin.New()
	router.POST("/api/v1/payments/midtrans/notification",
		middleware.BodyLimit(maxBody, PayloadTooLarge),
		h.HandleMidtrans)
	return router, svc
}

func TestWebhookHandler_HandleMidtrans(t *testing.T) {
	router, svc := setupWebhookRouter(64 << 10)
	svc.On("HandleNotification", mock.Anything, []byte(settlementBody)).Return(&paymentapp.WebhookResult{
		OrderID: "TOPUP-20261018-ABCDEF",
		Outcome: paymentapp.OutcomeApplied,
		Status:  payment.TransactionStatusPaid,
	}, nil)

	rec := performRequest(router, http.MethodPost, "/api/v1/payments/midtrans/notification", settlementBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestWebhookHandler_DuplicateDeliveryIsAcknowledged(t *testing.T) {
	router, svc := setupWebhookRouter(64 << 10)
	svc.On("HandleNotification", mock.Anything, mock.Anything).Return(&paymentapp.WebhookResult{
		OrderID: "TOPUP-20261018-ABCDEF",
		Outcome: paymentapp.OutcomeAlreadyPaid,
		Status:  payment.TransactionStatusPaid,
	}, nil)

	for i := 0; i < 3; i++ {
		rec := performRequest(router, http.MethodPost, "/api/v1/payments/midtrans/notification", settlementBody)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
	}
	svc.AssertNumberOfCalls(t, "HandleNotification", 3)
}

func TestWebhookHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"malformed", payment.ErrMalformedNotification, http.StatusBadRequest},
		{"missing order id", payment.ErrMissingOrderID, http.StatusBadRequest},
		{"bad signature", fmt.Errorf("%w: key mismatch", payment.ErrInvalidSignature), http.StatusUnauthorized},
		{"unknown order", payment.ErrTransactionNotFound, http.StatusNotFound},
		{"storage failure", fmt.Errorf("load transaction: %w", errors.New("connection reset")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := setupWebhookRouter(64 << 10)
			svc.On("HandleNotification", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := performRequest(router, http.MethodPost, "/api/v1/payments/midtrans/notification", settlementBody)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":`)
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestWebhookHandler_PayloadTooLarge(t *testing.T) {
	t.Run("declared length", func(t *testing.T) {
		router, svc := setupWebhookRouter(32)

		rec := performRequest(router, http.MethodPost, "/api/v1/payments/midtrans/notification", settlementBody)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.JSONEq(t, `{"error":"payload too large"}`, rec.Body.String())
		svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything)
	})

	t.Run("chunked body", func(t *testing.T) {
		router, svc := setupWebhookRouter(32)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/midtrans/notification", strings.NewReader(settlementBody))
		req.ContentLength = -1
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		svc.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything)
	})
}
