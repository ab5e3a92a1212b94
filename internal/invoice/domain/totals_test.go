package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, qty, price, gst string) LineItem {
	return LineItem{ID: id, Description: id, Quantity: dec(qty), UnitPrice: dec(price), GSTRate: dec(gst)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestComputeTotalsReferenceInvoice(t *testing.T) {
	items := []LineItem{
		item("a", "2", "100", "18"),
		item("b", "1", "50", "5"),
	}

	totals := ComputeTotals(items, dec("1"))

	assertDecimal(t, "250", totals.Subtotal)
	assertDecimal(t, "38.5", totals.GSTTotal)
	assertDecimal(t, "2.5", totals.WithholdingTax)
	assertDecimal(t, "291", totals.GrandTotal)
	require.Len(t, totals.Lines, 2)
	assertDecimal(t, "200", totals.Lines[0].LineTotal)
	assertDecimal(t, "36", totals.Lines[0].LineGST)
	assertDecimal(t, "2.5", totals.Lines[1].LineGST)
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, dec("10"))
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.GSTTotal.IsZero())
	assert.True(t, totals.WithholdingTax.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.Empty(t, totals.Lines)
}

func TestComputeTotalsWithholdingExcludesGST(t *testing.T) {
	totals := ComputeTotals([]LineItem{item("a", "1", "1000", "28")}, dec("10"))
	assertDecimal(t, "280", totals.GSTTotal)
	assertDecimal(t, "100", totals.WithholdingTax)
	assertDecimal(t, "1380", totals.GrandTotal)
}

func TestComputeTotalsFractionalQuantities(t *testing.T) {
	totals := ComputeTotals([]LineItem{item("a", "1.5", "33.33", "12")}, dec("0.1"))
	// 49.995 -> 50.00, gst 5.9994 -> 6.00, withholding 0.049995 -> 0.05
	assertDecimal(t, "50", totals.Subtotal)
	assertDecimal(t, "6", totals.GSTTotal)
	assertDecimal(t, "0.05", totals.WithholdingTax)
	assertDecimal(t, "56.05", totals.GrandTotal)
}

func TestComputeTotalsGrandTotalIdentity(t *testing.T) {
	cases := [][]LineItem{
		{item("a", "3", "19.99", "18"), item("b", "7", "0.33", "5")},
		{item("a", "0.333", "10.01", "28"), item("b", "12", "1.1", "12"), item("c", "1", "0", "0")},
		{item("a", "100", "99.995", "18")},
	}
	for i, items := range cases {
		for _, rate := range []string{"0", "0.1", "1", "2", "5", "10"} {
			t.Run(fmt.Sprintf("%d_%s", i, rate), func(t *testing.T) {
				totals := ComputeTotals(items, dec(rate))
				sum := totals.Subtotal.Add(totals.GSTTotal).Add(totals.WithholdingTax)
				assert.True(t, totals.GrandTotal.Equal(sum))
			})
		}
	}
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	items := []LineItem{
		item("a", "3", "19.99", "18"),
		item("b", "7", "0.33", "5"),
		item("c", "1.25", "1000", "28"),
	}
	reversed := []LineItem{items[2], items[1], items[0]}

	a := ComputeTotals(items, dec("2"))
	b := ComputeTotals(reversed, dec("2"))
	assert.True(t, a.Subtotal.Equal(b.Subtotal))
	assert.True(t, a.GSTTotal.Equal(b.GSTTotal))
	assert.True(t, a.GrandTotal.Equal(b.GrandTotal))
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []LineItem{item("a", "2", "100", "18")}
	first := ComputeTotals(items, dec("1"))
	second := ComputeTotals(items, dec("1"))
	assert.Equal(t, first.GrandTotal.String(), second.GrandTotal.String())
	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
}

func TestComputeTotalsNegativeInputsPassThrough(t *testing.T) {
	totals := ComputeTotals([]LineItem{item("a", "-1", "100", "18")}, dec("0"))
	assertDecimal(t, "-100", totals.Subtotal)
	assertDecimal(t, "-18", totals.GSTTotal)
	assertDecimal(t, "-118", totals.GrandTotal)
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name  string
		total string
		paid  string
		draft bool
		want  InvoiceStatus
	}{
		{name: "unpaid", total: "291", paid: "0", want: InvoiceStatusPending},
		{name: "partial", total: "291", paid: "100", want: InvoiceStatusPartiallyPaid},
		{name: "exact", total: "291", paid: "291", want: InvoiceStatusPaid},
		{name: "draft wins", total: "291", paid: "0", draft: true, want: InvoiceStatusDraft},
		{name: "zero total", total: "0", paid: "0", want: InvoiceStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(dec(tc.total), dec(tc.paid), tc.draft))
		})
	}
}

func TestBalanceDueClampsAtZero(t *testing.T) {
	assertDecimal(t, "191", BalanceDue(dec("291"), dec("100")))
	assertDecimal(t, "0", BalanceDue(dec("291"), dec("291")))
	assertDecimal(t, "0", BalanceDue(dec("100"), dec("150")))
}

func TestDisplayStatusOverdue(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	inv := &Invoice{Status: InvoiceStatusPending, DueDate: due, Amount: dec("100"), AmountPaid: dec("0")}

	assert.Equal(t, InvoiceStatusPending, DisplayStatus(inv, due.Add(23*time.Hour)))
	assert.Equal(t, InvoiceStatusOverdue, DisplayStatus(inv, due.Add(24*time.Hour)))

	inv.Status = InvoiceStatusPartiallyPaid
	assert.Equal(t, InvoiceStatusOverdue, DisplayStatus(inv, due.AddDate(0, 1, 0)))

	inv.Status = InvoiceStatusPaid
	assert.Equal(t, InvoiceStatusPaid, DisplayStatus(inv, due.AddDate(0, 1, 0)))

	inv.Status = InvoiceStatusDraft
	assert.Equal(t, InvoiceStatusDraft, DisplayStatus(inv, due.AddDate(0, 1, 0)))
}

func TestApplyViewDoesNotTouchStoredStatus(t *testing.T) {
	inv := &Invoice{
		Status:     InvoiceStatusPartiallyPaid,
		DueDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Amount:     dec("291"),
		AmountPaid: dec("100"),
	}
	ApplyView(inv, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.Equal(t, InvoiceStatusOverdue, inv.DisplayStatus)
	assertDecimal(t, "191", inv.BalanceDue)
}

func TestErrorsMatchSentinels(t *testing.T) {
	verr := &ValidationError{}
	verr.Add("customer_id", "required", "customer is required")
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.Contains(t, verr.Error(), "customer_id")

	over := &OverpaymentError{Amount: dec("200"), Remaining: dec("191")}
	assert.True(t, errors.Is(over, ErrOverpayment))
	assert.Contains(t, over.Error(), "191.00")

	cause := errors.New("disk full")
	perr := NewPersistenceError("insert_invoice", cause)
	assert.True(t, errors.Is(perr, ErrPersistence))
	assert.True(t, errors.Is(perr, cause))
}
