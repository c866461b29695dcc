package domain

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Money & percentage primitives
// ──────────────────────────────────────────────────────────────────────────────

// MoneyScale is the number of decimal places kept for stored amounts.
const MoneyScale = 2

var (
	hundred = decimal.NewFromInt(100)

	// PercentTolerance is the slack allowed when checking that shares sum to 100.
	PercentTolerance = decimal.RequireFromString("0.01")
)

// Hundred returns the decimal constant 100.
func Hundred() decimal.Decimal { return hundred }

// Truncate2 drops everything past the second decimal place (toward zero).
// Used for intermediate sums and stake shares.
func Truncate2(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(MoneyScale)
}

// FloorInt floors d to an integer (toward negative infinity), so -573.75
// becomes -574.
func FloorInt(d decimal.Decimal) decimal.Decimal {
	return d.Floor()
}

// PercentOf returns amount × pct / 100 at full precision.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// NetOfWithdrawal returns amount × (1 − withdrawalPct/100).
func NetOfWithdrawal(amount, withdrawalPct decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred.Sub(withdrawalPct)).Div(hundred)
}

// SumsToHundred reports whether total is 100 within PercentTolerance.
func SumsToHundred(total decimal.Decimal) bool {
	return total.Sub(hundred).Abs().LessThanOrEqual(PercentTolerance)
}

// ──────────────────────────────────────────────────────────────────────────────
// Amount: JSON number with two decimal places
// ──────────────────────────────────────────────────────────────────────────────

// Amount is a money value emitted in reports as a JSON number with exactly two
// decimal places (e.g. 573.75, 600.00).
type Amount decimal.Decimal

// NewAmount truncates d to two decimal places.
func NewAmount(d decimal.Decimal) Amount {
	return Amount(Truncate2(d))
}

// Decimal returns the underlying value.
func (a Amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

// String implements fmt.Stringer.
func (a Amount) String() string { return decimal.Decimal(a).StringFixed(MoneyScale) }

// MarshalJSON emits the amount as an unquoted number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(MoneyScale)), nil
}

// UnmarshalJSON accepts both quoted and unquoted numbers.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*a = Amount(decimal.Zero)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(d)
	return nil
}
