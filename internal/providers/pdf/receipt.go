package pdf

import (
	"context"
	"io"

	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptData is a settled invoice with the date it was fully paid.
type ReceiptData struct {
	InvoiceData
	DatePaid string
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt ReceiptData) (io.Reader, error) {
	m := newDocument()

	m.AddRow(12,
		text.NewCol(8, receipt.OrgName, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, "RECEIPT", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(12, "Paid in full on "+receipt.DatePaid, props.Text{Size: 10, Style: fontstyle.Bold}),
	)
	addHeader(m, receipt.InvoiceData)
	addItems(m, receipt.InvoiceData)
	addTotals(m, receipt.InvoiceData)
	addNotes(m, receipt.Notes)

	return generate(m)
}
