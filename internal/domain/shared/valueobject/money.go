package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// IDR is the only settlement currency of the payment provider
const IDR Currency = "IDR"

// Errors returned when parsing provider amounts
var (
	ErrInvalidAmount    = errors.New("money: invalid amount")
	ErrFractionalAmount = errors.New("money: rupiah amounts cannot have a fractional part")
)

// Rupiah is an amount in the smallest IDR unit. IDR has no minor unit in
// practice, so the provider always settles whole rupiah.
type Rupiah int64

// ParseRupiah parses a provider amount string such as "100000.00".
// Non-zero fractional parts are rejected.
func ParseRupiah(s string) (Rupiah, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q", ErrFractionalAmount, s)
	}
	return Rupiah(d.IntPart()), nil
}

// Int64 returns the raw amount
func (r Rupiah) Int64() int64 {
	return int64(r)
}

// IsPositive returns true if the amount is greater than zero
func (r Rupiah) IsPositive() bool {
	return r > 0
}

// GrossAmount renders the amount the way the provider echoes it back,
// with two decimal places ("100000.00").
func (r Rupiah) GrossAmount() string {
	return decimal.NewFromInt(int64(r)).StringFixed(2)
}

// Format renders the amount for Indonesian readers ("Rp100.000").
func (r Rupiah) Format() string {
	p := message.NewPrinter(language.Indonesian)
	return p.Sprintf("Rp%d", int64(r))
}

// String implements fmt.Stringer
func (r Rupiah) String() string {
	return r.Format()
}
