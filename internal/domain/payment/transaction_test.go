package payment

import (
	"math"
	"testing"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topUpMetadata() Metadata {
	return Metadata{
		Items:          []Item{{ID: "credit", Name: "Kredit Arah Umroh", Price: 10000, Quantity: 10}},
		CreditQuantity: 10,
		BuyerEmail:     "a1@example.com",
	}
}

func newTopUp(t *testing.T) *Transaction {
	t.Helper()
	tx, err := NewTransaction("T1", uuid.New(), 100000, TransactionKindCreditTopUp, topUpMetadata())
	require.NoError(t, err)
	return tx
}

func TestNewTransaction(t *testing.T) {
	accountID := uuid.New()

	t.Run("creates pending transaction", func(t *testing.T) {
		tx, err := NewTransaction("T1", accountID, 100000, TransactionKindCreditTopUp, topUpMetadata())
		require.NoError(t, err)
		assert.Equal(t, "T1", tx.OrderID)
		assert.Equal(t, accountID, tx.AccountID)
		assert.Equal(t, valueobject.Rupiah(100000), tx.Amount)
		assert.Equal(t, TransactionKindCreditTopUp, tx.Kind)
		assert.Equal(t, TransactionStatusPending, tx.Status)
		assert.Equal(t, int64(10), tx.CreditQuantity())
		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Nil(t, tx.PaidAt)
	})

	tests := []struct {
		name     string
		orderID  string
		account  uuid.UUID
		amount   valueobject.Rupiah
		kind     TransactionKind
		metadata Metadata
		wantErr  error
	}{
		{"empty order id", "", accountID, 100000, TransactionKindCreditTopUp, topUpMetadata(), ErrInvalidOrderID},
		{"nil account", "T1", uuid.Nil, 100000, TransactionKindCreditTopUp, topUpMetadata(), ErrInvalidAccount},
		{"zero amount", "T1", accountID, 0, TransactionKindCreditTopUp, topUpMetadata(), ErrInvalidAmount},
		{"negative amount", "T1", accountID, -1, TransactionKindCreditTopUp, topUpMetadata(), ErrInvalidAmount},
		{"unknown kind", "T1", accountID, 100000, "gift", topUpMetadata(), ErrInvalidKind},
		{"no items", "T1", accountID, 100000, TransactionKindCreditTopUp, Metadata{}, ErrInvalidItems},
		{"item total mismatch", "T1", accountID, 90000, TransactionKindCreditTopUp, topUpMetadata(), ErrItemTotalMismatch},
		{"item subtotal overflows", "T1", accountID, 100000, TransactionKindPackageBooking, Metadata{Items: []Item{
			{ID: "big", Name: "Paket", Price: 1 << 62, Quantity: 4},
			{ID: "rest", Name: "Biaya", Price: 100000, Quantity: 1},
		}}, ErrItemTotalMismatch},
		{"item sum overflows", "T1", accountID, 100000, TransactionKindPackageBooking, Metadata{Items: []Item{
			{ID: "a", Name: "Paket", Price: math.MaxInt64 - 10, Quantity: 1},
			{ID: "b", Name: "Biaya", Price: 100011, Quantity: 1},
		}}, ErrItemTotalMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.orderID, tt.account, tt.amount, tt.kind, tt.metadata)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransaction_AttachSession(t *testing.T) {
	tx := newTopUp(t)

	assert.ErrorIs(t, tx.AttachSession("", ""), ErrMissingSession)

	require.NoError(t, tx.AttachSession("snap-token", "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"))
	assert.Equal(t, "snap-token", tx.SessionToken)
	assert.Contains(t, tx.RedirectURL, "snap-token")
}

func TestTransaction_ApplyTransition(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("pending to paid records event and paid_at", func(t *testing.T) {
		tx := newTopUp(t)
		ok := tx.ApplyTransition(StatusTransition{OrderID: "T1", To: TransactionStatusPaid, PaymentMethod: "gopay", At: at})
		require.True(t, ok)
		assert.Equal(t, TransactionStatusPaid, tx.Status)
		assert.Equal(t, "gopay", tx.PaymentMethod)
		require.NotNil(t, tx.PaidAt)
		assert.Equal(t, at, *tx.PaidAt)

		events := tx.GetDomainEvents()
		require.Len(t, events, 1)
		paid, ok := events[0].(*TransactionPaidEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeTransactionPaid, paid.EventType())
		assert.Equal(t, "T1", paid.OrderID)
		assert.Equal(t, int64(10), paid.Credits)
		assert.Equal(t, tx.AccountID, paid.AccountID())
	})

	t.Run("paid never reverts", func(t *testing.T) {
		tx := newTopUp(t)
		require.True(t, tx.ApplyTransition(StatusTransition{To: TransactionStatusPaid, At: at}))
		tx.ClearDomainEvents()

		assert.False(t, tx.ApplyTransition(StatusTransition{To: TransactionStatusFailed, At: at}))
		assert.False(t, tx.ApplyTransition(StatusTransition{To: TransactionStatusPending, At: at}))
		assert.Equal(t, TransactionStatusPaid, tx.Status)
		assert.Empty(t, tx.GetDomainEvents())
	})

	t.Run("failed may still settle", func(t *testing.T) {
		tx := newTopUp(t)
		require.True(t, tx.ApplyTransition(StatusTransition{To: TransactionStatusFailed, At: at}))
		assert.True(t, tx.ApplyTransition(StatusTransition{To: TransactionStatusPaid, At: at}))
		assert.Len(t, tx.GetDomainEvents(), 2)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		tx := newTopUp(t)
		assert.False(t, tx.ApplyTransition(StatusTransition{To: TransactionStatusPending, At: at}))
		assert.Empty(t, tx.GetDomainEvents())
	})

	t.Run("keeps previous payment method when none given", func(t *testing.T) {
		tx := newTopUp(t)
		tx.PaymentMethod = "qris"
		require.True(t, tx.ApplyTransition(StatusTransition{To: TransactionStatusFailed, At: at}))
		assert.Equal(t, "qris", tx.PaymentMethod)
	})
}

func TestTransactionKind(t *testing.T) {
	assert.True(t, TransactionKindCreditTopUp.GrantsCredits())
	assert.False(t, TransactionKindPackageBooking.GrantsCredits())
	assert.Equal(t, "TOPUP", TransactionKindCreditTopUp.OrderPrefix())
	assert.Equal(t, "BOOK", TransactionKindPackageBooking.OrderPrefix())
	assert.False(t, TransactionKind("other").IsValid())
}

func TestItem_Subtotal(t *testing.T) {
	subtotal, ok := Item{Price: 10000, Quantity: 10}.Subtotal()
	assert.True(t, ok)
	assert.Equal(t, valueobject.Rupiah(100000), subtotal)

	subtotal, ok = Item{Price: math.MaxInt64, Quantity: 1}.Subtotal()
	assert.True(t, ok)
	assert.Equal(t, valueobject.Rupiah(math.MaxInt64), subtotal)

	_, ok = Item{Price: 1 << 62, Quantity: 2}.Subtotal()
	assert.False(t, ok)
}
