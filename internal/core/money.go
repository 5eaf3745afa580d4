// Package core provides money parsing and rounding utilities.
//
// Amounts are arbitrary-precision decimals. Aggregation always runs at full
// precision; Round2 and the Display helpers are applied only to final values.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GSTRates are the slabs offered to users.
var gstRates = []int64{0, 5, 12, 18, 28}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns part / whole * 100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Sum adds a list of decimals; the empty sum is zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// GSTRates returns the supported GST slabs in ascending order.
func GSTRates() []decimal.Decimal {
	out := make([]decimal.Decimal, len(gstRates))
	for i, r := range gstRates {
		out[i] = decimal.NewFromInt(r)
	}
	return out
}

// IsSupportedGSTRate reports whether rate is one of the offered slabs.
func IsSupportedGSTRate(rate decimal.Decimal) bool {
	for _, r := range gstRates {
		if rate.Equal(decimal.NewFromInt(r)) {
			return true
		}
	}
	return false
}

// ParseAmount converts a user supplied decimal string to a positive amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Signs, zero,
// and anything that is not a plain decimal are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.345, nil (no rounding)
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseRate parses a GST percentage. Zero is allowed, negatives are not.
func ParseRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero, ErrInvalidRate
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}
	return d, nil
}

// DisplayAmount formats a value with two fixed decimals for presentation.
func DisplayAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// DisplayPercent formats a percentage with one decimal and a % suffix.
func DisplayPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
