package service

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	"github.com/whizlyai/whizly/internal/providers/pdf"
	"github.com/whizlyai/whizly/pkg/money"
)

const pdfDateLayout = "02 Jan 2006"

// RenderPDF renders the invoice, or a receipt once it is fully paid.
func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, string, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.render_pdf")
	defer span.End()

	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, "", err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, "", invoicedomain.ErrInvalidID
	}
	invoice, err := s.loadInvoice(ctx, span, orgID, invoiceID)
	if err != nil {
		return nil, "", err
	}

	data := s.toInvoiceData(invoice)

	var reader io.Reader
	if invoice.Status == invoicedomain.InvoiceStatusPaid && invoice.PaidAt != nil {
		reader, err = s.pdf.GenerateReceipt(ctx, pdf.ReceiptData{
			InvoiceData: data,
			DatePaid:    invoice.PaidAt.UTC().Format(pdfDateLayout),
		})
	} else {
		reader, err = s.pdf.GenerateInvoice(ctx, data)
	}
	if err != nil {
		span.RecordError(err)
		return nil, "", fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return out, invoice.InvoiceNumber + ".pdf", nil
}

func (s *Service) toInvoiceData(invoice *invoicedomain.Invoice) pdf.InvoiceData {
	items := make([]pdf.InvoiceItem, 0, len(invoice.LineItems))
	for _, item := range invoice.LineItems {
		items = append(items, pdf.InvoiceItem{
			Description: item.Description,
			Qty:         item.Quantity.String(),
			UnitPrice:   formatAmount(invoice.Currency, item.UnitPrice),
			GSTRate:     item.GSTRate.String() + "%",
			Amount:      formatAmount(invoice.Currency, item.Quantity.Mul(item.UnitPrice)),
		})
	}

	return pdf.InvoiceData{
		OrgName:          s.company.Name,
		OrgAddress:       s.company.Address,
		OrgGSTIN:         s.company.GSTIN,
		OrgEmail:         s.company.Email,
		OrgPhone:         s.company.Phone,
		InvoiceNumber:    invoice.InvoiceNumber,
		IssueDate:        invoice.IssueDate.UTC().Format(pdfDateLayout),
		DueDate:          invoice.DueDate.UTC().Format(pdfDateLayout),
		Status:           string(invoice.DisplayStatus),
		BillToName:       invoice.CustomerName,
		BillToAddress:    invoice.CustomerAddress,
		BillToTaxID:      invoice.CustomerTaxID,
		Items:            items,
		Subtotal:         formatAmount(invoice.Currency, invoice.Subtotal),
		GSTTotal:         formatAmount(invoice.Currency, invoice.GSTTotal),
		WithholdingLabel: fmt.Sprintf("%s (%s%%)", invoice.WithholdingTaxType, invoice.WithholdingTaxRate.String()),
		WithholdingTax:   formatAmount(invoice.Currency, invoice.WithholdingTax),
		GrandTotal:       formatAmount(invoice.Currency, invoice.Amount),
		AmountPaid:       formatAmount(invoice.Currency, invoice.AmountPaid),
		BalanceDue:       formatAmount(invoice.Currency, invoice.BalanceDue),
		Notes:            invoice.Notes,
	}
}

func formatAmount(currency string, amount decimal.Decimal) string {
	if currency == "INR" {
		return "Rs. " + money.FormatINR(amount)
	}
	return currency + " " + money.Round(amount).StringFixed(money.Scale)
}
