package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() InvoiceData {
	return InvoiceData{
		OrgName:          "Whizly AI",
		OrgAddress:       "Bengaluru, KA",
		OrgGSTIN:         "29ABCDE1234F1Z5",
		InvoiceNumber:    "INV-202603-00001",
		IssueDate:        "01 Mar 2026",
		DueDate:          "16 Mar 2026",
		Status:           "PENDING",
		BillToName:       "Acme Traders",
		Items:            []InvoiceItem{{Description: "Consulting", Qty: "2", UnitPrice: "Rs. 100.00", GSTRate: "18%", Amount: "Rs. 200.00"}},
		Subtotal:         "Rs. 250.00",
		GSTTotal:         "Rs. 38.50",
		WithholdingLabel: "TCS (1%)",
		WithholdingTax:   "Rs. 2.50",
		GrandTotal:       "Rs. 291.00",
		AmountPaid:       "Rs. 0.00",
		BalanceDue:       "Rs. 291.00",
	}
}

func TestGenerateInvoiceProducesPDF(t *testing.T) {
	reader, err := New().GenerateInvoice(context.Background(), sampleInvoice())
	require.NoError(t, err)

	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.True(t, len(out) > 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateReceiptProducesPDF(t *testing.T) {
	reader, err := New().GenerateReceipt(context.Background(), ReceiptData{
		InvoiceData: sampleInvoice(),
		DatePaid:    "05 Mar 2026",
	})
	require.NoError(t, err)

	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
