package payment

import (
	"context"
	"sort"
	"sync"
	"time"

	ledgerapp "github.com/arahumroh/backend/internal/application/ledger"
	"github.com/arahumroh/backend/internal/domain/ledger"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Provider
// =============================================================================

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateSession(ctx context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockProvider) FetchStatus(ctx context.Context, orderID string) (*payment.Notification, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Notification), args.Error(1)
}

// =============================================================================
// Mock Event Publisher
// =============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// Mock Verifier
// =============================================================================

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyNotification(n *payment.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, orderID string, body []byte, receivedAt time.Time) error {
	args := m.Called(ctx, orderID, body, receivedAt)
	return args.Error(0)
}

// =============================================================================
// Mock Transaction Repository (for failure paths)
// =============================================================================

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *payment.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]payment.Transaction, int64, error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).([]payment.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]payment.Transaction, error) {
	args := m.Called(ctx, createdBefore, limit)
	return args.Get(0).([]payment.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) TransitionStatus(ctx context.Context, tr payment.StatusTransition) (bool, error) {
	args := m.Called(ctx, tr)
	return args.Bool(0), args.Error(1)
}

// =============================================================================
// In-memory transaction store with the same conditional-update semantics
// as the database repository
// =============================================================================

type memoryTransactionRepo struct {
	mu   sync.Mutex
	rows map[string]payment.Transaction
}

func newMemoryTransactionRepo() *memoryTransactionRepo {
	return &memoryTransactionRepo{rows: make(map[string]payment.Transaction)}
}

func (r *memoryTransactionRepo) Create(_ context.Context, tx *payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[tx.OrderID]; ok {
		return payment.ErrDuplicateOrderID
	}
	row := *tx
	row.ClearDomainEvents()
	r.rows[tx.OrderID] = row
	return nil
}

func (r *memoryTransactionRepo) FindByOrderID(_ context.Context, orderID string) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[orderID]
	if !ok {
		return nil, payment.ErrTransactionNotFound
	}
	return &row, nil
}

func (r *memoryTransactionRepo) FindByAccount(_ context.Context, accountID uuid.UUID, _ shared.Filter) ([]payment.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payment.Transaction
	for _, row := range r.rows {
		if row.AccountID == accountID {
			out = append(out, row)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryTransactionRepo) FindStalePending(_ context.Context, createdBefore time.Time, limit int) ([]payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payment.Transaction
	for _, row := range r.rows {
		if row.Status == payment.TransactionStatusPending && row.CreatedAt.Before(createdBefore) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryTransactionRepo) TransitionStatus(_ context.Context, tr payment.StatusTransition) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[tr.OrderID]
	if !ok || row.Status == payment.TransactionStatusPaid || row.Status == tr.To {
		return false, nil
	}
	row.Status = tr.To
	if tr.PaymentMethod != "" {
		row.PaymentMethod = tr.PaymentMethod
	}
	if tr.To == payment.TransactionStatusPaid {
		at := tr.At
		row.PaidAt = &at
	}
	r.rows[tr.OrderID] = row
	return true, nil
}

func (r *memoryTransactionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// =============================================================================
// In-memory ledger
// =============================================================================

type memoryLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	entries  []ledgerapp.CreditInput
	err      error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{balances: make(map[uuid.UUID]int64)}
}

func (l *memoryLedger) Credit(_ context.Context, in ledgerapp.CreditInput) (*ledger.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	before := l.balances[in.AccountID]
	entry, err := ledger.NewEntry(in.AccountID, in.Credits, before, ledger.SourceTypePaymentTransaction, in.SourceID)
	if err != nil {
		return nil, err
	}
	l.balances[in.AccountID] = entry.BalanceAfter
	l.entries = append(l.entries, in)
	return entry, nil
}

func (l *memoryLedger) balance(accountID uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountID]
}

func (l *memoryLedger) entryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// =============================================================================
// Recording metrics
// =============================================================================

type recordingMetrics struct {
	mu             sync.Mutex
	initiations    map[bool]int
	notifications  map[Outcome]int
	ledgerFailures int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		initiations:   make(map[bool]int),
		notifications: make(map[Outcome]int),
	}
}

func (m *recordingMetrics) ObserveInitiation(_ payment.TransactionKind, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initiations[ok]++
}

func (m *recordingMetrics) ObserveNotification(_ Source, outcome Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[outcome]++
}

func (m *recordingMetrics) ObserveLedgerFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgerFailures++
}
