package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeObject(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestInvoiceJSONUsesTwoPlaceAmounts(t *testing.T) {
	inv := Invoice{
		ID:                 7,
		InvoiceNumber:      "INV-202501-00001",
		Subtotal:           dec("250"),
		GSTTotal:           dec("38.5"),
		WithholdingTaxRate: dec("1"),
		WithholdingTax:     dec("2.5"),
		Amount:             dec("291"),
		AmountPaid:         dec("100"),
		BalanceDue:         dec("191"),
		Status:             InvoiceStatusPartiallyPaid,
		LineItems:          []LineItem{item("a", "1.5", "100", "18")},
	}

	out := decodeObject(t, inv)
	assert.Equal(t, "250.00", out["subtotal"])
	assert.Equal(t, "38.50", out["gst_total"])
	assert.Equal(t, "2.50", out["withholding_tax"])
	assert.Equal(t, "291.00", out["amount"])
	assert.Equal(t, "100.00", out["amount_paid"])
	assert.Equal(t, "191.00", out["balance_due"])
	assert.Equal(t, "1", out["withholding_tax_rate"])
	assert.Equal(t, "INV-202501-00001", out["invoice_number"])
	assert.Equal(t, "PARTIALLY_PAID", out["status"])

	lines, ok := out["line_items"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 1)
	assert.Equal(t, "1.5", lines[0].(map[string]any)["quantity"])

	pointerOut := decodeObject(t, &inv)
	assert.Equal(t, "291.00", pointerOut["amount"])
}

func TestInvoiceJSONRoundTripsAmounts(t *testing.T) {
	raw, err := json.Marshal(Invoice{Amount: dec("291"), AmountPaid: dec("0")})
	require.NoError(t, err)

	var back Invoice
	require.NoError(t, json.Unmarshal(raw, &back))
	assertDecimal(t, "291", back.Amount)
	assertDecimal(t, "0", back.AmountPaid)
}

func TestPaymentAndTotalsJSON(t *testing.T) {
	payment := decodeObject(t, InvoicePayment{ID: 1, Amount: dec("0.1"), Method: PaymentMethodRazorpay})
	assert.Equal(t, "0.10", payment["amount"])
	assert.Equal(t, "razorpay", payment["method"])

	totals := decodeObject(t, ComputeTotals([]LineItem{item("a", "1", "100", "18")}, dec("0")))
	assert.Equal(t, "100.00", totals["subtotal"])
	assert.Equal(t, "18.00", totals["gst_total"])
	assert.Equal(t, "0.00", totals["withholding_tax"])
	assert.Equal(t, "118.00", totals["grand_total"])
	assert.Len(t, totals["lines"], 1)
}
