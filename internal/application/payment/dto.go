package payment

import (
	"time"

	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ItemRequest is one line of the checkout sent to the provider
type ItemRequest struct {
	ID       string `json:"id" binding:"required,max=50"`
	Name     string `json:"name" binding:"required,max=100"`
	Price    int64  `json:"price" binding:"required,gt=0"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// InitiateRequest represents a request to start a payment
type InitiateRequest struct {
	Kind           string        `json:"kind" binding:"required,oneof=credit_topup package_booking"`
	Amount         int64         `json:"amount" binding:"required,gt=0"`
	Items          []ItemRequest `json:"items" binding:"required,min=1,dive"`
	CreditQuantity int64         `json:"credit_quantity" binding:"omitempty,gt=0"`
	BuyerEmail     string        `json:"buyer_email" binding:"omitempty,email,max=254"`
	BuyerName      string        `json:"buyer_name" binding:"omitempty,max=100"`
}

// InitiateResponse is returned to the client to open the hosted checkout
type InitiateResponse struct {
	OrderID        string `json:"order_id"`
	Token          string `json:"token"`
	RedirectURL    string `json:"redirect_url"`
	Amount         int64  `json:"amount"`
	Kind           string `json:"kind"`
	Status         string `json:"status"`
	CreditQuantity int64  `json:"credit_quantity,omitempty"`
}

// ItemResponse represents a checkout line in API responses
type ItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID             uuid.UUID      `json:"id"`
	OrderID        string         `json:"order_id"`
	Amount         int64          `json:"amount"`
	AmountDisplay  string         `json:"amount_display"`
	Kind           string         `json:"kind"`
	Status         string         `json:"status"`
	PaymentMethod  string         `json:"payment_method,omitempty"`
	Token          string         `json:"token,omitempty"`
	RedirectURL    string         `json:"redirect_url,omitempty"`
	CreditQuantity int64          `json:"credit_quantity,omitempty"`
	Items          []ItemResponse `json:"items"`
	PaidAt         *time.Time     `json:"paid_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// WebhookResult reports what a provider notification did
type WebhookResult struct {
	OrderID string
	Outcome Outcome
	Status  payment.TransactionStatus
}

// ReconcileReport summarizes one sweep over stale pending transactions
type ReconcileReport struct {
	Checked   int
	Applied   int
	Unchanged int
	Failed    int
}

// ToTransactionResponse converts a domain Transaction to a response.
// The session token is only exposed while the checkout can still be completed.
func ToTransactionResponse(t *payment.Transaction) TransactionResponse {
	items := make([]ItemResponse, len(t.Metadata.Items))
	for i, item := range t.Metadata.Items {
		items[i] = ItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price.Int64(),
			Quantity: item.Quantity,
		}
	}

	resp := TransactionResponse{
		ID:             t.ID,
		OrderID:        t.OrderID,
		Amount:         t.Amount.Int64(),
		AmountDisplay:  t.Amount.Format(),
		Kind:           t.Kind.String(),
		Status:         t.Status.String(),
		PaymentMethod:  t.PaymentMethod,
		CreditQuantity: t.CreditQuantity(),
		Items:          items,
		PaidAt:         t.PaidAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.Status == payment.TransactionStatusPending {
		resp.Token = t.SessionToken
		resp.RedirectURL = t.RedirectURL
	}
	return resp
}

func toDomainItems(items []ItemRequest) []payment.Item {
	out := make([]payment.Item, len(items))
	for i, item := range items {
		out[i] = payment.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    valueobject.Rupiah(item.Price),
			Quantity: item.Quantity,
		}
	}
	return out
}
