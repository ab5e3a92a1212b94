package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilter narrows a tenant's invoice listing.
type ListFilter struct {
	Status     InvoiceStatus
	CustomerID snowflake.ID
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	// Today splits unpaid invoices into overdue and not yet due when
	// filtering by display status.
	Today      time.Time
	Ascending  bool
	AfterIssue *time.Time
	AfterID    snowflake.ID
	Limit      int
}

// PaymentUpdate is the new payment state written conditionally on ExpectedVersion.
type PaymentUpdate struct {
	OrgID           snowflake.ID
	InvoiceID       snowflake.ID
	ExpectedVersion int64
	AmountPaid      decimal.Decimal
	Status          InvoiceStatus
	PaidAt          *time.Time
	UpdatedAt       time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter) ([]*Invoice, error)
	// ApplyPayment reports false when the stored version no longer matches.
	ApplyPayment(ctx context.Context, db *gorm.DB, update PaymentUpdate) (bool, error)
	// InsertPayment reports false when the provider payment was already recorded.
	InsertPayment(ctx context.Context, db *gorm.DB, payment *InvoicePayment) (bool, error)
	FindPaymentByProviderID(ctx context.Context, db *gorm.DB, method PaymentMethod, providerPaymentID string) (*InvoicePayment, error)
	ListPayments(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]InvoicePayment, error)
	NextSequence(ctx context.Context, db *gorm.DB, orgID snowflake.ID, now time.Time) (int64, error)
}

// Client is the bill-to snapshot taken from the client directory.
type Client struct {
	ID      snowflake.ID
	Name    string
	Email   string
	Address string
	TaxID   string
}

// ClientDirectory resolves clients for invoice creation.
type ClientDirectory interface {
	GetClient(ctx context.Context, orgID, clientID snowflake.ID) (*Client, error)
}
