package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRupiah(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Rupiah
		wantErr error
	}{
		{name: "provider format", input: "100000.00", want: 100000},
		{name: "plain integer", input: "25000", want: 25000},
		{name: "fractional", input: "100.50", wantErr: ErrFractionalAmount},
		{name: "garbage", input: "abc", wantErr: ErrInvalidAmount},
		{name: "empty", input: "", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRupiah(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRupiah_GrossAmount(t *testing.T) {
	assert.Equal(t, "100000.00", Rupiah(100000).GrossAmount())
	assert.Equal(t, "0.00", Rupiah(0).GrossAmount())
}

func TestRupiah_Format(t *testing.T) {
	assert.Equal(t, "Rp100.000", Rupiah(100000).Format())
	assert.Equal(t, "Rp1.250.000", Rupiah(1250000).Format())
	assert.Equal(t, "Rp500", Rupiah(500).Format())
}

func TestRupiah_IsPositive(t *testing.T) {
	assert.True(t, Rupiah(1).IsPositive())
	assert.False(t, Rupiah(0).IsPositive())
	assert.False(t, Rupiah(-5).IsPositive())
}
