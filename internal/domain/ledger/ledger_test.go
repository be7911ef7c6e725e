package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	accountID := uuid.New()

	t.Run("computes balance after", func(t *testing.T) {
		entry, err := NewEntry(accountID, 10, 5, SourceTypePaymentTransaction, "T1")
		require.NoError(t, err)
		entry.WithNote("Top-up T1")

		assert.Equal(t, accountID, entry.AccountID)
		assert.Equal(t, int64(10), entry.Amount)
		assert.Equal(t, int64(5), entry.BalanceBefore)
		assert.Equal(t, int64(15), entry.BalanceAfter)
		assert.Equal(t, "T1", entry.SourceID)
		assert.Equal(t, "Top-up T1", entry.Note)
	})

	tests := []struct {
		name    string
		account uuid.UUID
		amount  int64
		before  int64
		source  SourceType
		id      string
		wantErr error
	}{
		{"nil account", uuid.Nil, 10, 0, SourceTypePaymentTransaction, "T1", ErrInvalidAccount},
		{"zero amount", accountID, 0, 0, SourceTypePaymentTransaction, "T1", ErrInvalidCredit},
		{"negative amount", accountID, -3, 0, SourceTypePaymentTransaction, "T1", ErrInvalidCredit},
		{"unknown source", accountID, 10, 0, "gift", "T1", ErrInvalidSource},
		{"empty source id", accountID, 10, 0, SourceTypePaymentTransaction, "", ErrInvalidSource},
		{"negative balance", accountID, 10, -1, SourceTypePaymentTransaction, "T1", ErrInvalidBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntry(tt.account, tt.amount, tt.before, tt.source, tt.id)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCredit_Validate(t *testing.T) {
	valid := Credit{AccountID: uuid.New(), Amount: 1, SourceType: SourceTypeAdjustment, SourceID: "ADJ-1"}
	assert.NoError(t, valid.Validate())

	noAccount := valid
	noAccount.AccountID = uuid.Nil
	assert.ErrorIs(t, noAccount.Validate(), ErrInvalidAccount)

	zero := valid
	zero.Amount = 0
	assert.ErrorIs(t, zero.Validate(), ErrInvalidCredit)
}

func TestEmptyBalance(t *testing.T) {
	id := uuid.New()
	b := EmptyBalance(id)
	assert.Equal(t, id, b.AccountID)
	assert.Zero(t, b.Credits)
}
