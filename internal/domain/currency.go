package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency identifies the unit an amount is counted in. Amounts are always
// stored as integer minor units.
type Currency string

const (
	// CurrencyButtons is the platform currency, minor unit = one button.
	CurrencyButtons Currency = "BTN"
	// CurrencyUSD is the settlement currency for button lots, minor unit = one cent.
	CurrencyUSD Currency = "USD"
)

// IsValid reports whether the currency is known to the ledger.
func (c Currency) IsValid() bool {
	return c == CurrencyButtons || c == CurrencyUSD
}

// Exponent is the number of decimal places between the display unit and the minor unit.
func (c Currency) Exponent() int32 {
	if c == CurrencyUSD {
		return 2
	}
	return 0
}

// ParseCurrency parses a currency code, case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	return c, nil
}

// ToDecimal converts minor units into the display unit (cents to dollars).
func (c Currency) ToDecimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -c.Exponent())
}

// FromDecimal converts a display amount into minor units. Fractions smaller
// than the minor unit are rejected rather than rounded.
func (c Currency) FromDecimal(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(c.Exponent())
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d, c.Exponent())
	}
	if !shifted.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if shifted.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, fmt.Errorf("%w: maximum is %d", ErrAmountTooLarge, MaxAmount)
	}
	return shifted.IntPart(), nil
}

// Format renders an amount of minor units for humans, e.g. "$12.50" or "40 buttons".
func (c Currency) Format(amount int64) string {
	if c == CurrencyUSD {
		return "$" + c.ToDecimal(amount).StringFixed(2)
	}
	if amount == 1 {
		return "1 button"
	}
	return fmt.Sprintf("%d buttons", amount)
}
