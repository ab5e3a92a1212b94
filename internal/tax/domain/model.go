package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/whizlyai/whizly/pkg/money"
)

// WithholdingType identifies how the withholding amount is applied on an invoice.
type WithholdingType string

const (
	// WithholdingTCS is tax collected at source.
	WithholdingTCS WithholdingType = "TCS"
	// WithholdingTDS is tax deducted at source.
	WithholdingTDS WithholdingType = "TDS"
)

// ParseWithholdingType normalizes raw input; an empty value defaults to TCS.
func ParseWithholdingType(raw string) (WithholdingType, error) {
	switch WithholdingType(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", WithholdingTCS:
		return WithholdingTCS, nil
	case WithholdingTDS:
		return WithholdingTDS, nil
	default:
		return "", ErrInvalidWithholdingType
	}
}

// Policy is the set of rates an organization may put on an invoice.
type Policy struct {
	GSTSlabs         []decimal.Decimal
	WithholdingRates []decimal.Decimal
}

func (p Policy) IsValidGSTRate(rate decimal.Decimal) bool {
	return containsRate(p.GSTSlabs, rate)
}

func (p Policy) IsValidWithholdingRate(rate decimal.Decimal) bool {
	return containsRate(p.WithholdingRates, rate)
}

func containsRate(set []decimal.Decimal, rate decimal.Decimal) bool {
	for _, candidate := range set {
		if candidate.Equal(rate) {
			return true
		}
	}
	return false
}

// LineGST is the unrounded GST for one line total.
func LineGST(lineTotal, gstRate decimal.Decimal) decimal.Decimal {
	return money.Percent(lineTotal, gstRate)
}

// Withholding is the unrounded withholding amount. The base is the
// pre-GST subtotal.
func Withholding(subtotal, rate decimal.Decimal) decimal.Decimal {
	return money.Percent(subtotal, rate)
}
