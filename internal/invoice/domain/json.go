package domain

import (
	"encoding/json"

	"github.com/whizlyai/whizly/pkg/money"
)

// Monetary amounts are written as two-place strings ("291.00"). Rates,
// quantities, unit prices and per-line totals keep their full precision.

// MarshalJSON renders invoice amounts at money.Scale.
func (inv Invoice) MarshalJSON() ([]byte, error) {
	type plain Invoice
	return json.Marshal(struct {
		plain
		Subtotal       string `json:"subtotal"`
		GSTTotal       string `json:"gst_total"`
		WithholdingTax string `json:"withholding_tax"`
		Amount         string `json:"amount"`
		AmountPaid     string `json:"amount_paid"`
		BalanceDue     string `json:"balance_due"`
	}{
		plain:          plain(inv),
		Subtotal:       money.Format(inv.Subtotal),
		GSTTotal:       money.Format(inv.GSTTotal),
		WithholdingTax: money.Format(inv.WithholdingTax),
		Amount:         money.Format(inv.Amount),
		AmountPaid:     money.Format(inv.AmountPaid),
		BalanceDue:     money.Format(inv.BalanceDue),
	})
}

// MarshalJSON renders the payment amount at money.Scale.
func (p InvoicePayment) MarshalJSON() ([]byte, error) {
	type plain InvoicePayment
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{
		plain:  plain(p),
		Amount: money.Format(p.Amount),
	})
}

// MarshalJSON renders the aggregate totals at money.Scale.
func (t Totals) MarshalJSON() ([]byte, error) {
	type plain Totals
	return json.Marshal(struct {
		plain
		Subtotal       string `json:"subtotal"`
		GSTTotal       string `json:"gst_total"`
		WithholdingTax string `json:"withholding_tax"`
		GrandTotal     string `json:"grand_total"`
	}{
		plain:          plain(t),
		Subtotal:       money.Format(t.Subtotal),
		GSTTotal:       money.Format(t.GSTTotal),
		WithholdingTax: money.Format(t.WithholdingTax),
		GrandTotal:     money.Format(t.GrandTotal),
	})
}
