package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions are "<target>.<verb>".
const (
	ActionInvoiceCreated         = "invoice.created"
	ActionInvoicePaymentRecorded = "invoice.payment_recorded"
	ActionCustomerCreated        = "customer.created"
)

const (
	TargetInvoice  = "invoice"
	TargetCustomer = "customer"
)

// AuditLog is an append-only record of a tenant mutation.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	TargetType string            `gorm:"size:32;not null" json:"target_type"`
	TargetID   string            `gorm:"size:64;index" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	// Entries strictly older than (CreatedAt, ID).
	After *AuditLog
	Limit int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter) ([]*AuditLog, error)
}
