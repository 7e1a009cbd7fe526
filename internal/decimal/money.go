package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// ParseOrZero parses a number typed by a user.
//
// Both "." and "," are accepted as the decimal separator. Empty text,
// text that is not a number and negative numbers all yield zero; the
// function never reports an error.
func ParseOrZero(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !IsNonNegative(d) {
		return Zero
	}
	return d
}

// Mul multiplies two decimals, rounds to 2 places
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Round(2)
}

// CalculateLineTotal computes: quantity * unitPrice, rounded to cents
func CalculateLineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Mul(quantity, unitPrice)
}

// CalculateVAT computes VAT amount: amount * (rate/100).
// The result is exact; rounding happens when it is formatted.
func CalculateVAT(amount decimal.Decimal, ratePercent int) decimal.Decimal {
	if ratePercent == 0 {
		return Zero
	}
	return amount.Mul(decimal.NewFromInt(int64(ratePercent))).Shift(-2)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// Format2 renders an amount with exactly two decimal places.
func Format2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatPlain renders a quantity without forcing decimal places.
func FormatPlain(d decimal.Decimal) string {
	return d.String()
}
