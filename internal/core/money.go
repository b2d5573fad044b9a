// Package core holds the expense data model and the exact-decimal money
// handling shared by every layer.
//
// Amounts are decimal values with two fractional digits. All arithmetic and
// comparison go through github.com/shopspring/decimal so that sums over many
// records never accumulate binary floating-point drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest storable amount: ten digits of precision with a
// fixed scale of two.
var MaxAmount = decimal.RequireFromString("99999999.99")

// ParseAmount converts a user-supplied amount string to an exact decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. The result is always
// positive and never exceeds MaxAmount. Returns ErrInvalidAmount for
// anything else, including explicit signs.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35 (rounds up)
//	ParseAmount("12.344") -> 12.34 (rounds down)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only plain positive values allowed
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}
