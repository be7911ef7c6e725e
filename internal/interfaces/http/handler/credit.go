package handler

import (
	"context"
	"net/http"

	ledgerapp "github.com/arahumroh/backend/internal/application/ledger"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditReader serves an account's credit balance and audit trail
type CreditReader interface {
	Balance(ctx context.Context, accountID uuid.UUID) (*ledgerapp.BalanceResponse, error)
	Entries(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[ledgerapp.EntryResponse], error)
}

// CreditHandler handles credit balance endpoints
type CreditHandler struct {
	BaseHandler
	credits CreditReader
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(credits CreditReader) *CreditHandler {
	return &CreditHandler{credits: credits}
}

// Balance godoc
//
//	@ID				getCreditBalance
//	@Summary		Get own credit balance
//	@Description	Accounts that never bought credits have a zero balance
//	@Tags			credits
//	@Produce		json
//	@Success		200	{object}	APIResponse[ledgerapp.BalanceResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/credits/balance [get]
func (h *CreditHandler) Balance(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	balance, err := h.credits.Balance(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Entries godoc
//
//	@ID				listCreditEntries
//	@Summary		List own credit ledger entries
//	@Tags			credits
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]ledgerapp.EntryResponse]
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/credits/entries [get]
func (h *CreditHandler) Entries(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var q dto.PageQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.credits.Entries(c.Request.Context(), accountID, q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}
