package pdf

import (
	"bytes"
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"io"
)

// InvoiceData is the print-ready view of an invoice. Amounts are
// preformatted strings.
type InvoiceData struct {
	OrgName    string
	OrgAddress string
	OrgGSTIN   string
	OrgEmail   string
	OrgPhone   string

	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Status        string

	BillToName    string
	BillToAddress string
	BillToTaxID   string

	Items []InvoiceItem

	Subtotal         string
	GSTTotal         string
	WithholdingLabel string
	WithholdingTax   string
	GrandTotal       string
	AmountPaid       string
	BalanceDue       string

	Notes string
}

type InvoiceItem struct {
	Description string
	Qty         string
	UnitPrice   string
	GSTRate     string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) (io.Reader, error) {
	m := newDocument()

	m.AddRow(12,
		text.NewCol(8, invoice.OrgName, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, "TAX INVOICE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)
	addHeader(m, invoice)
	addItems(m, invoice)
	addTotals(m, invoice)
	addNotes(m, invoice.Notes)

	return generate(m)
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

func addHeader(m core.Maroto, invoice InvoiceData) {
	m.AddRow(20,
		col.New(6).Add(
			text.New(invoice.OrgAddress, props.Text{Size: 9}),
			text.New(labelled("GSTIN", invoice.OrgGSTIN), props.Text{Size: 9, Top: 8}),
			text.New(invoice.OrgEmail+"  "+invoice.OrgPhone, props.Text{Size: 9, Top: 12}),
		),
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Size: 9, Align: align.Right}),
			text.New("Date of issue: "+invoice.IssueDate, props.Text{Size: 9, Top: 4, Align: align.Right}),
			text.New("Date due: "+invoice.DueDate, props.Text{Size: 9, Top: 8, Align: align.Right}),
			text.New("Status: "+invoice.Status, props.Text{Size: 9, Top: 12, Align: align.Right}),
		),
	)

	m.AddRow(24,
		col.New(12).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold, Size: 10}),
			text.New(invoice.BillToName, props.Text{Size: 9, Top: 5}),
			text.New(invoice.BillToAddress, props.Text{Size: 9, Top: 9}),
			text.New(labelled("GSTIN", invoice.BillToTaxID), props.Text{Size: 9, Top: 17}),
		),
	)
}

func addItems(m core.Maroto, invoice InvoiceData) {
	m.AddRow(10,
		text.NewCol(5, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "GST %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range invoice.Items {
		m.AddRow(8,
			text.NewCol(5, item.Description, props.Text{Size: 9}),
			text.NewCol(1, item.Qty, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.GSTRate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
}

func addTotals(m core.Maroto, invoice InvoiceData) {
	rows := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", invoice.Subtotal, false},
		{"GST", invoice.GSTTotal, false},
		{invoice.WithholdingLabel, invoice.WithholdingTax, false},
		{"Grand total", invoice.GrandTotal, true},
		{"Amount paid", invoice.AmountPaid, false},
		{"Balance due", invoice.BalanceDue, true},
	}

	for _, row := range rows {
		style := fontstyle.Normal
		if row.bold {
			style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(7),
			text.NewCol(3, row.label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, row.value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}
}

func addNotes(m core.Maroto, notes string) {
	if notes == "" {
		return
	}
	m.AddRow(20,
		col.New(12).Add(
			text.New("Notes", props.Text{Style: fontstyle.Bold, Size: 9, Top: 4}),
			text.New(notes, props.Text{Size: 9, Top: 9}),
		),
	)
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func generate(m core.Maroto) (io.Reader, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
