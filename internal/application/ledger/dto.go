package ledger

import (
	"time"

	"github.com/arahumroh/backend/internal/domain/ledger"
	"github.com/google/uuid"
)

// CreditInput describes credits granted to an account by a settled payment
type CreditInput struct {
	AccountID uuid.UUID
	Credits   int64
	SourceID  string
	Note      string
}

// BalanceResponse represents an account's credit balance in API responses
type BalanceResponse struct {
	AccountID uuid.UUID  `json:"account_id"`
	Credits   int64      `json:"credits"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// EntryResponse represents one audit entry in API responses
type EntryResponse struct {
	ID            uuid.UUID `json:"id"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	SourceType    string    `json:"source_type"`
	SourceID      string    `json:"source_id"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToBalanceResponse converts a domain Balance to a response
func ToBalanceResponse(b *ledger.Balance) BalanceResponse {
	resp := BalanceResponse{
		AccountID: b.AccountID,
		Credits:   b.Credits,
	}
	if !b.UpdatedAt.IsZero() {
		updatedAt := b.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// ToEntryResponse converts a domain Entry to a response
func ToEntryResponse(e *ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		SourceType:    e.SourceType.String(),
		SourceID:      e.SourceID,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
	}
}
