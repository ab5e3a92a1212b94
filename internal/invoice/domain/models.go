// Package domain contains the invoice model, totals arithmetic and the
// payment state rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/whizlyai/whizly/internal/tax/domain"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"

	// InvoiceStatusOverdue is only ever computed for display; it is never stored.
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

// ParseStatus accepts stored statuses and the derived OVERDUE view.
func ParseStatus(raw string) (InvoiceStatus, bool) {
	switch s := InvoiceStatus(raw); s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return s, true
	default:
		return "", false
	}
}

// PaymentMethod records how a payment reached the invoice.
type PaymentMethod string

const (
	PaymentMethodManual   PaymentMethod = "manual"
	PaymentMethodRazorpay PaymentMethod = "razorpay"
)

// LineItem is embedded in its invoice and has no identity outside it.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
}

// Invoice is a tenant-scoped bill with its computed tax breakdown.
type Invoice struct {
	ID                 snowflake.ID                  `gorm:"primaryKey" json:"id"`
	OrgID              snowflake.ID                  `gorm:"not null;index;uniqueIndex:ux_invoices_org_number,priority:1" json:"organization_id"`
	InvoiceNumber      string                        `gorm:"size:64;not null;uniqueIndex:ux_invoices_org_number,priority:2" json:"invoice_number"`
	CustomerID         snowflake.ID                  `gorm:"not null;index" json:"customer_id"`
	CustomerName       string                        `gorm:"size:255;not null" json:"customer_name"`
	CustomerAddress    string                        `gorm:"type:text" json:"customer_address,omitempty"`
	CustomerTaxID      string                        `gorm:"size:32" json:"customer_tax_id,omitempty"`
	Currency           string                        `gorm:"size:3;not null" json:"currency"`
	IssueDate          time.Time                     `gorm:"not null;index" json:"issue_date"`
	DueDate            time.Time                     `gorm:"not null" json:"due_date"`
	LineItems          datatypes.JSONSlice[LineItem] `gorm:"not null" json:"line_items"`
	Subtotal           decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	GSTTotal           decimal.Decimal               `gorm:"column:gst_total;type:decimal(18,4);not null;default:0" json:"gst_total"`
	WithholdingTaxType taxdomain.WithholdingType     `gorm:"size:8;not null" json:"withholding_tax_type"`
	WithholdingTaxRate decimal.Decimal               `gorm:"type:decimal(6,2);not null;default:0" json:"withholding_tax_rate"`
	WithholdingTax     decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"withholding_tax"`
	Amount             decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	AmountPaid         decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	Status             InvoiceStatus                 `gorm:"size:20;not null;index" json:"status"`
	Notes              string                        `gorm:"type:text" json:"notes,omitempty"`
	Version            int64                         `gorm:"not null;default:1" json:"version"`
	Metadata           datatypes.JSONMap             `json:"metadata,omitempty"`
	PaidAt             *time.Time                    `json:"paid_at,omitempty"`
	CreatedAt          time.Time                     `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time                     `gorm:"not null" json:"updated_at"`

	// Read-time view fields, filled by the service.
	BalanceDue    decimal.Decimal `gorm:"-" json:"balance_due"`
	DisplayStatus InvoiceStatus   `gorm:"-" json:"display_status"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoicePayment is an append-only record of an accepted payment.
type InvoicePayment struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID             snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	InvoiceID         snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method            PaymentMethod   `gorm:"size:20;not null;uniqueIndex:ux_invoice_payments_provider,priority:1" json:"method"`
	ProviderPaymentID *string         `gorm:"size:64;uniqueIndex:ux_invoice_payments_provider,priority:2" json:"provider_payment_id,omitempty"`
	Note              string          `gorm:"type:text" json:"note,omitempty"`
	RecordedAt        time.Time       `gorm:"not null" json:"recorded_at"`
}

// TableName sets the database table name.
func (InvoicePayment) TableName() string { return "invoice_payments" }

// InvoiceSequence is the per-organization invoice number counter.
type InvoiceSequence struct {
	OrgID     snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }
