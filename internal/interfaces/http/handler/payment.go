package handler

import (
	"context"
	"net/http"

	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/arahumroh/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Initiator starts payments for an account
type Initiator interface {
	Initiate(ctx context.Context, accountID uuid.UUID, req paymentapp.InitiateRequest) (*paymentapp.InitiateResponse, error)
}

// TransactionReader serves an account's own transactions
type TransactionReader interface {
	Get(ctx context.Context, accountID uuid.UUID, orderID string) (*paymentapp.TransactionResponse, error)
	List(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[paymentapp.TransactionResponse], error)
}

// PaymentHandler handles payment transaction endpoints
type PaymentHandler struct {
	BaseHandler
	initiator    Initiator
	transactions TransactionReader
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(initiator Initiator, transactions TransactionReader) *PaymentHandler {
	return &PaymentHandler{
		initiator:    initiator,
		transactions: transactions,
	}
}

// Initiate godoc
//
//	@ID				initiatePayment
//	@Summary		Start a payment
//	@Description	Opens a Midtrans Snap session and records a pending transaction. Buyer email and name default to the token's claims.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		paymentapp.InitiateRequest	true	"Payment request"
//	@Success		201		{object}	APIResponse[paymentapp.InitiateResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/transactions [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req paymentapp.InitiateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		if req.BuyerEmail == "" {
			req.BuyerEmail = claims.Email
		}
		if req.BuyerName == "" {
			req.BuyerName = claims.Name
		}
	}

	resp, err := h.initiator.Initiate(c.Request.Context(), accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@ID				listPayments
//	@Summary		List own payment transactions
//	@Tags			payments
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]paymentapp.TransactionResponse]
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/transactions [get]
func (h *PaymentHandler) List(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var q dto.PageQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.transactions.List(c.Request.Context(), accountID, q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Get godoc
//
//	@ID				getPayment
//	@Summary		Get one own payment transaction
//	@Tags			payments
//	@Produce		json
//	@Param			order_id	path		string	true	"Order ID"
//	@Success		200			{object}	APIResponse[paymentapp.TransactionResponse]
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/transactions/{order_id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	tx, err := h.transactions.Get(c.Request.Context(), accountID, c.Param("order_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}
