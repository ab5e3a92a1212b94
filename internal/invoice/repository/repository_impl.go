package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/whizlyai/whizly/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListFilter) ([]*domain.Invoice, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ?", orgID)

	switch filter.Status {
	case "":
	case domain.InvoiceStatusOverdue:
		stmt = stmt.Where("status IN ? AND due_date < ?",
			[]domain.InvoiceStatus{domain.InvoiceStatusPending, domain.InvoiceStatusPartiallyPaid},
			filter.Today,
		)
	case domain.InvoiceStatusPending, domain.InvoiceStatusPartiallyPaid:
		stmt = stmt.Where("status = ? AND due_date >= ?", filter.Status, filter.Today)
	default:
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.IssuedFrom != nil {
		stmt = stmt.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		stmt = stmt.Where("issue_date <= ?", *filter.IssuedTo)
	}

	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	if filter.AfterIssue != nil {
		if filter.Ascending {
			stmt = stmt.Where("(issue_date > ? OR (issue_date = ? AND id > ?))", *filter.AfterIssue, *filter.AfterIssue, filter.AfterID)
		} else {
			stmt = stmt.Where("(issue_date < ? OR (issue_date = ? AND id < ?))", *filter.AfterIssue, *filter.AfterIssue, filter.AfterID)
		}
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var invoices []*domain.Invoice
	err := stmt.
		Order("issue_date " + direction).
		Order("id " + direction).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ApplyPayment(ctx context.Context, db *gorm.DB, update domain.PaymentUpdate) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ? AND id = ? AND version = ?", update.OrgID, update.InvoiceID, update.ExpectedVersion).
		Updates(map[string]any{
			"amount_paid": update.AmountPaid,
			"status":      update.Status,
			"paid_at":     update.PaidAt,
			"updated_at":  update.UpdatedAt,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.InvoicePayment) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(payment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindPaymentByProviderID(ctx context.Context, db *gorm.DB, method domain.PaymentMethod, providerPaymentID string) (*domain.InvoicePayment, error) {
	var payment domain.InvoicePayment
	err := db.WithContext(ctx).
		Where("method = ? AND provider_payment_id = ?", method, providerPaymentID).
		Take(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]domain.InvoicePayment, error) {
	var payments []domain.InvoicePayment
	err := db.WithContext(ctx).
		Where("org_id = ? AND invoice_id = ?", orgID, invoiceID).
		Order("recorded_at ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// NextSequence atomically increments and returns the organization's
// invoice counter. Call it inside the invoice creation transaction.
func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, orgID snowflake.ID, now time.Time) (int64, error) {
	increment := gorm.Expr("last_value + 1")
	if db.Dialector.Name() == "postgres" {
		increment = gorm.Expr("invoice_sequences.last_value + 1")
	}

	seq := domain.InvoiceSequence{OrgID: orgID, LastValue: 1, UpdatedAt: now}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": increment,
				"updated_at": now,
			}),
		}).
		Create(&seq).Error
	if err != nil {
		return 0, err
	}

	var value int64
	err = db.WithContext(ctx).
		Model(&domain.InvoiceSequence{}).
		Where("org_id = ?", orgID).
		Select("last_value").
		Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
