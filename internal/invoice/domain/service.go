package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/whizlyai/whizly/pkg/db/pagination"
)

// PreviewRequest computes totals for an unsaved invoice.
type PreviewRequest struct {
	LineItems          []LineItem      `json:"line_items"`
	WithholdingTaxType string          `json:"withholding_tax_type"`
	WithholdingTaxRate decimal.Decimal `json:"withholding_tax_rate"`
}

// CreateInvoiceRequest carries the user-entered invoice. Dates are
// YYYY-MM-DD or RFC 3339.
type CreateInvoiceRequest struct {
	CustomerID         string          `json:"customer_id"`
	LineItems          []LineItem      `json:"line_items"`
	WithholdingTaxType string          `json:"withholding_tax_type"`
	WithholdingTaxRate decimal.Decimal `json:"withholding_tax_rate"`
	IssueDate          string          `json:"issue_date"`
	DueDate            string          `json:"due_date"`
	Currency           string          `json:"currency"`
	Notes              string          `json:"notes"`
	SaveAsDraft        bool            `json:"save_as_draft"`
	Metadata           map[string]any  `json:"metadata"`
}

type RecordPaymentRequest struct {
	InvoiceID         string          `json:"-"`
	Amount            decimal.Decimal `json:"amount"`
	Method            PaymentMethod   `json:"method"`
	ProviderPaymentID string          `json:"provider_payment_id"`
	Note              string          `json:"note"`
}

type ListInvoiceRequest struct {
	pagination.Pagination
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	IssuedFrom string `form:"issued_from"`
	IssuedTo   string `form:"issued_to"`
	OrderBy    string `form:"order_by"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// Service is the invoice engine.
type Service interface {
	Preview(ctx context.Context, req PreviewRequest) (Totals, error)
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	ListPayments(ctx context.Context, invoiceID string) ([]InvoicePayment, error)
	RenderPDF(ctx context.Context, id string) ([]byte, string, error)
}
