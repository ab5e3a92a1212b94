// Package money holds the fixed-point helpers used for invoice amounts.
// Amounts are expressed in the major currency unit (rupees).
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for stored amounts.
const Scale = 2

// Round rounds half away from zero to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent returns base * rate / 100 without rounding.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Shift(-2)
}

// FromPaise converts an integer minor-unit amount to rupees.
func FromPaise(paise int64) decimal.Decimal {
	return decimal.New(paise, -Scale)
}

// Format renders d rounded to Scale places with trailing zeros kept, e.g. "291.00".
func Format(d decimal.Decimal) string {
	return Round(d).StringFixed(Scale)
}

// IsWholePaise reports whether d has no digits below one paisa.
func IsWholePaise(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

// ToPaise converts rupees to integer minor units, rounding first.
func ToPaise(d decimal.Decimal) int64 {
	return Round(d).Shift(Scale).IntPart()
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// FormatINR renders an amount with Indian digit grouping, e.g. 12,34,567.50.
func FormatINR(d decimal.Decimal) string {
	s := Format(d)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	grouped := groupIndian(intPart)
	if negative {
		grouped = "-" + grouped
	}
	return grouped + "." + frac
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
