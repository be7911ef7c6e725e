package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler applies a raw provider notification
type NotificationHandler interface {
	HandleNotification(ctx context.Context, body []byte) (*paymentapp.WebhookResult, error)
}

// WebhookHandler receives Midtrans payment notifications.
// The endpoint is unauthenticated and answers with the bare bodies Midtrans
// expects instead of the API envelope.
type WebhookHandler struct {
	notifications NotificationHandler
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(notifications NotificationHandler) *WebhookHandler {
	return &WebhookHandler{notifications: notifications}
}

// HandleMidtrans godoc
//
//	@ID				handleMidtransNotification
//	@Summary		Receive a Midtrans payment notification
//	@Description	Applies the provider status to the matching transaction. Deliveries are idempotent: a paid transaction is never changed and credits are granted once.
//	@Tags			payment-webhooks
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	dto.WebhookAck		"status=OK"
//	@Failure		400	{object}	dto.WebhookError
//	@Failure		401	{object}	dto.WebhookError
//	@Failure		404	{object}	dto.WebhookError
//	@Failure		413	{object}	dto.WebhookError
//	@Failure		500	{object}	dto.WebhookError
//	@Router			/payments/midtrans/notification [post]
func (h *WebhookHandler) HandleMidtrans(c *gin.Context) {
	log := logger.GetGinLogger(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			PayloadTooLarge(c)
			return
		}
		log.Warn("Failed to read payment notification body", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.WebhookError{Error: "unreadable body"})
		return
	}

	result, err := h.notifications.HandleNotification(c.Request.Context(), body)
	if err != nil {
		status, message := webhookErrorStatus(err)
		c.JSON(status, dto.WebhookError{Error: message})
		return
	}

	log.Debug("Payment notification handled",
		zap.String("order_id", result.OrderID),
		zap.String("outcome", string(result.Outcome)),
		zap.String("status", result.Status.String()))
	c.JSON(http.StatusOK, dto.WebhookAck{Status: "OK"})
}

// PayloadTooLarge answers an oversized notification. It is also used by the
// body limit middleware when the declared length is already too large.
func PayloadTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.WebhookError{Error: "payload too large"})
}

func webhookErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, payment.ErrMalformedNotification), errors.Is(err, payment.ErrMissingOrderID):
		return http.StatusBadRequest, "invalid notification"
	case errors.Is(err, payment.ErrInvalidSignature):
		return http.StatusUnauthorized, "invalid signature"
	case errors.Is(err, payment.ErrTransactionNotFound):
		return http.StatusNotFound, "transaction not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
