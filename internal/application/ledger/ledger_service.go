package ledger

import (
	"context"

	"github.com/arahumroh/backend/internal/domain/ledger"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService grants credits and serves the balance and audit trail.
// It performs no deduplication of its own: callers must invoke Credit at
// most once per settled payment.
type LedgerService struct {
	repo   ledger.Repository
	logger *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repo ledger.Repository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		repo:   repo,
		logger: logger,
	}
}

// Credit increments the account's balance and appends one audit entry
func (s *LedgerService) Credit(ctx context.Context, in CreditInput) (*ledger.Entry, error) {
	credit := ledger.Credit{
		AccountID:  in.AccountID,
		Amount:     in.Credits,
		SourceType: ledger.SourceTypePaymentTransaction,
		SourceID:   in.SourceID,
		Note:       in.Note,
	}
	if err := credit.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.repo.ApplyCredit(ctx, credit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credits granted",
		zap.String("account_id", in.AccountID.String()),
		zap.String("source_id", in.SourceID),
		zap.Int64("credits", in.Credits),
		zap.Int64("balance_after", entry.BalanceAfter))

	return entry, nil
}

// Balance returns the account's balance, zero if it was never credited
func (s *LedgerService) Balance(ctx context.Context, accountID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.repo.FindBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := ToBalanceResponse(balance)
	return &resp, nil
}

// Entries pages through the account's audit trail, newest first
func (s *LedgerService) Entries(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[EntryResponse], error) {
	filter = filter.Normalize()

	entries, total, err := s.repo.FindEntries(ctx, accountID, filter)
	if err != nil {
		return shared.Paginated[EntryResponse]{}, err
	}

	items := make([]EntryResponse, len(entries))
	for i := range entries {
		items[i] = ToEntryResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
