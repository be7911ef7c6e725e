package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	ledgerapp "github.com/arahumroh/backend/internal/application/ledger"
	notificationapp "github.com/arahumroh/backend/internal/application/notification"
	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/infrastructure/auth"
	"github.com/arahumroh/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInitiator struct {
	mock.Mock
}

func (m *MockInitiator) Initiate(ctx context.Context, accountID uuid.UUID, req paymentapp.InitiateRequest) (*paymentapp.InitiateResponse, error) {
	args := m.Called(ctx, accountID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.InitiateResponse), args.Error(1)
}

type MockTransactionReader struct {
	mock.Mock
}

func (m *MockTransactionReader) Get(ctx context.Context, accountID uuid.UUID, orderID string) (*paymentapp.TransactionResponse, error) {
	args := m.Called(ctx, accountID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.TransactionResponse), args.Error(1)
}

func (m *MockTransactionReader) List(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[paymentapp.TransactionResponse], error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).(shared.Paginated[paymentapp.TransactionResponse]), args.Error(1)
}

type MockNotificationHandler struct {
	mock.Mock
}

func (m *MockNotificationHandler) HandleNotification(ctx context.Context, body []byte) (*paymentapp.WebhookResult, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.WebhookResult), args.Error(1)
}

type MockCreditReader struct {
	mock.Mock
}

func (m *MockCreditReader) Balance(ctx context.Context, accountID uuid.UUID) (*ledgerapp.BalanceResponse, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.BalanceResponse), args.Error(1)
}

func (m *MockCreditReader) Entries(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[ledgerapp.EntryResponse], error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).(shared.Paginated[ledgerapp.EntryResponse]), args.Error(1)
}

type MockNotificationInbox struct {
	mock.Mock
}

func (m *MockNotificationInbox) List(ctx context.Context, accountID uuid.UUID, q notificationapp.ListNotificationsQuery) (shared.Paginated[notificationapp.NotificationResponse], error) {
	args := m.Called(ctx, accountID, q)
	return args.Get(0).(shared.Paginated[notificationapp.NotificationResponse]), args.Error(1)
}

func (m *MockNotificationInbox) MarkRead(ctx context.Context, accountID, id uuid.UUID) error {
	args := m.Called(ctx, accountID, id)
	return args.Error(0)
}

// authenticate simulates the JWT middleware for an account
func authenticate(accountID uuid.UUID, email, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &auth.Claims{Email: email, Name: name}
		claims.Subject = accountID.String()
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTAccountIDKey, accountID)
		c.Next()
	}
}

func performRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
