package payment

import (
	"context"

	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionService serves an account's own transactions
type TransactionService struct {
	repo payment.TransactionRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(repo payment.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// Get returns one transaction. Transactions of other accounts are reported
// as not found.
func (s *TransactionService) Get(ctx context.Context, accountID uuid.UUID, orderID string) (*TransactionResponse, error) {
	tx, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if tx.AccountID != accountID {
		return nil, payment.ErrTransactionNotFound
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// List pages through the account's transactions, newest first
func (s *TransactionService) List(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[TransactionResponse], error) {
	filter = filter.Normalize()

	txs, total, err := s.repo.FindByAccount(ctx, accountID, filter)
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}

	items := make([]TransactionResponse, len(txs))
	for i := range txs {
		items[i] = ToTransactionResponse(&txs[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
