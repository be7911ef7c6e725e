package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InitiatorService opens provider checkout sessions and records them as
// pending transactions
type InitiatorService struct {
	repo            payment.TransactionRepository
	provider        payment.Provider
	creditUnitPrice valueobject.Rupiah
	newOrderID      OrderIDGenerator
	metrics         Metrics
	logger          *zap.Logger
	now             func() time.Time
}

// InitiatorServiceConfig holds dependencies for InitiatorService
type InitiatorServiceConfig struct {
	TransactionRepo payment.TransactionRepository
	Provider        payment.Provider
	// CreditUnitPrice is the price of one credit. A top-up amount must be an
	// exact multiple of it.
	CreditUnitPrice valueobject.Rupiah
	OrderIDs        OrderIDGenerator
	Metrics         Metrics
	Logger          *zap.Logger
}

// NewInitiatorService creates a new InitiatorService
func NewInitiatorService(cfg InitiatorServiceConfig) *InitiatorService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	orderIDs := cfg.OrderIDs
	if orderIDs == nil {
		orderIDs = NewOrderID
	}
	return &InitiatorService{
		repo:            cfg.TransactionRepo,
		provider:        cfg.Provider,
		creditUnitPrice: cfg.CreditUnitPrice,
		newOrderID:      orderIDs,
		metrics:         metricsOrNoop(cfg.Metrics),
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Initiate validates the request, opens a provider session and persists a
// pending transaction. Nothing is persisted when the provider call fails.
func (s *InitiatorService) Initiate(ctx context.Context, accountID uuid.UUID, req InitiateRequest) (*InitiateResponse, error) {
	kind := payment.TransactionKind(req.Kind)
	if !kind.IsValid() {
		return nil, payment.ErrInvalidKind
	}
	amount := valueobject.Rupiah(req.Amount)

	credits, err := s.creditQuantity(kind, amount, req.CreditQuantity)
	if err != nil {
		return nil, err
	}

	orderID, err := s.newOrderID(kind, s.now())
	if err != nil {
		return nil, err
	}

	tx, err := payment.NewTransaction(orderID, accountID, amount, kind, payment.Metadata{
		Items:          toDomainItems(req.Items),
		CreditQuantity: credits,
		BuyerEmail:     req.BuyerEmail,
		BuyerName:      req.BuyerName,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.provider.CreateSession(ctx, &payment.SessionRequest{
		OrderID:  tx.OrderID,
		Amount:   tx.Amount,
		Customer: payment.Customer{Email: req.BuyerEmail, Name: req.BuyerName},
		Items:    tx.Metadata.Items,
	})
	if err != nil {
		s.metrics.ObserveInitiation(kind, false)
		s.logger.Warn("Payment provider rejected session",
			zap.String("order_id", tx.OrderID),
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", payment.ErrProviderRejected, err)
	}

	if err := tx.AttachSession(session.Token, session.RedirectURL); err != nil {
		s.metrics.ObserveInitiation(kind, false)
		return nil, fmt.Errorf("%w: %w", payment.ErrProviderRejected, err)
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		s.metrics.ObserveInitiation(kind, false)
		s.logger.Error("Failed to persist payment transaction",
			zap.String("order_id", tx.OrderID),
			zap.Error(err))
		return nil, err
	}

	s.metrics.ObserveInitiation(kind, true)
	s.logger.Info("Payment transaction initiated",
		zap.String("order_id", tx.OrderID),
		zap.String("account_id", accountID.String()),
		zap.String("kind", kind.String()),
		zap.Int64("amount", tx.Amount.Int64()),
		zap.Int64("credits", credits))

	return &InitiateResponse{
		OrderID:        tx.OrderID,
		Token:          tx.SessionToken,
		RedirectURL:    tx.RedirectURL,
		Amount:         tx.Amount.Int64(),
		Kind:           tx.Kind.String(),
		Status:         tx.Status.String(),
		CreditQuantity: credits,
	}, nil
}

// creditQuantity derives the credits a top-up buys from its amount. The
// client may echo the quantity it expects, but never chooses it.
func (s *InitiatorService) creditQuantity(kind payment.TransactionKind, amount valueobject.Rupiah, requested int64) (int64, error) {
	if !kind.GrantsCredits() {
		if requested != 0 {
			return 0, payment.ErrCreditMismatch
		}
		return 0, nil
	}
	if !amount.IsPositive() {
		return 0, payment.ErrInvalidAmount
	}
	if !s.creditUnitPrice.IsPositive() || amount%s.creditUnitPrice != 0 {
		return 0, payment.ErrCreditMismatch
	}
	credits := int64(amount / s.creditUnitPrice)
	if requested != 0 && requested != credits {
		return 0, payment.ErrCreditMismatch
	}
	return credits, nil
}
