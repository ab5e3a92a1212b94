package domain

import (
	"time"

	"github.com/shopspring/decimal"
	taxdomain "github.com/whizlyai/whizly/internal/tax/domain"
	"github.com/whizlyai/whizly/pkg/money"
)

// LineTotal is the per-line breakdown, kept at full precision.
type LineTotal struct {
	LineItemID string          `json:"line_item_id"`
	LineTotal  decimal.Decimal `json:"line_total"`
	LineGST    decimal.Decimal `json:"line_gst"`
}

// Totals is the aggregate tax breakdown of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	GSTTotal       decimal.Decimal `json:"gst_total"`
	WithholdingTax decimal.Decimal `json:"withholding_tax"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Lines          []LineTotal     `json:"lines"`
}

// ComputeTotals derives invoice totals from line items and a withholding rate.
//
// Line values are summed unrounded; subtotal, GST and withholding are each
// rounded once to two places and the grand total is their sum, so
// GrandTotal == Subtotal + GSTTotal + WithholdingTax holds exactly.
// Withholding is charged on the subtotal only. Inputs are not validated.
func ComputeTotals(items []LineItem, withholdingRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	gst := decimal.Zero
	lines := make([]LineTotal, 0, len(items))

	for _, item := range items {
		lineTotal := item.Quantity.Mul(item.UnitPrice)
		lineGST := taxdomain.LineGST(lineTotal, item.GSTRate)
		subtotal = subtotal.Add(lineTotal)
		gst = gst.Add(lineGST)
		lines = append(lines, LineTotal{
			LineItemID: item.ID,
			LineTotal:  lineTotal,
			LineGST:    lineGST,
		})
	}

	withholding := taxdomain.Withholding(subtotal, withholdingRate)

	totals := Totals{
		Subtotal:       money.Round(subtotal),
		GSTTotal:       money.Round(gst),
		WithholdingTax: money.Round(withholding),
		Lines:          lines,
	}
	totals.GrandTotal = totals.Subtotal.Add(totals.GSTTotal).Add(totals.WithholdingTax)
	return totals
}

// DeriveStatus maps paid-versus-total onto the stored status.
func DeriveStatus(grandTotal, amountPaid decimal.Decimal, draft bool) InvoiceStatus {
	switch {
	case draft:
		return InvoiceStatusDraft
	case grandTotal.IsPositive() && amountPaid.GreaterThanOrEqual(grandTotal):
		return InvoiceStatusPaid
	case amountPaid.IsPositive():
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusPending
	}
}

// BalanceDue is the outstanding amount, never negative.
func BalanceDue(grandTotal, amountPaid decimal.Decimal) decimal.Decimal {
	return money.Max(grandTotal.Sub(amountPaid), decimal.Zero)
}

// RemainingBalance is the raw difference used to bound a payment.
func RemainingBalance(inv *Invoice) decimal.Decimal {
	return inv.Amount.Sub(inv.AmountPaid)
}

// IsOverdue reports whether an unpaid invoice's due date is before the
// start of now's day.
func IsOverdue(inv *Invoice, now time.Time) bool {
	if inv.Status != InvoiceStatusPending && inv.Status != InvoiceStatusPartiallyPaid {
		return false
	}
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return inv.DueDate.UTC().Before(startOfDay)
}

// DisplayStatus is the status shown to users: the stored status, or
// OVERDUE for unpaid invoices past their due date.
func DisplayStatus(inv *Invoice, now time.Time) InvoiceStatus {
	if IsOverdue(inv, now) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}

// ApplyView fills the read-time fields of an invoice.
func ApplyView(inv *Invoice, now time.Time) {
	if inv == nil {
		return
	}
	inv.BalanceDue = BalanceDue(inv.Amount, inv.AmountPaid)
	inv.DisplayStatus = DisplayStatus(inv, now)
}
