package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Customer is a billable client of an organization.
type Customer struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	Name      string            `gorm:"size:255;not null" json:"name"`
	Email     string            `gorm:"size:255" json:"email,omitempty"`
	Phone     string            `gorm:"size:32" json:"phone,omitempty"`
	Address   string            `gorm:"type:text" json:"address,omitempty"`
	TaxID     string            `gorm:"size:32" json:"tax_id,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

type CustomerCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}
