// Package types provides shared value types for the ledger domain.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is a fixed-precision monetary value. All monetary columns are
// NUMERIC(12,2) in the store; decimal.Decimal keeps arithmetic exact on
// the way in and out.
type Money = decimal.Decimal

// NewMoneyFromString parses a Money value from its decimal string form.
// Preferred constructor for anything that crosses an API boundary.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney parses a Money value and panics on error.
// Intended for constants and tests only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewMoneyFromInt creates a whole-currency Money value.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// ZeroMoney returns the zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// RoundMoney rounds to the 2 fractional digits the store persists.
func RoundMoney(m Money) Money {
	return m.Round(2)
}
