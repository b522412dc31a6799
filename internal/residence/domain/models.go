package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Residence is a billable lot inside a project. CustomerID is zero while the
// lot is unassigned.
type Residence struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	Code       string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_residences_code"`
	Address    string       `json:"address" gorm:"type:text"`
	Detail     string       `json:"detail" gorm:"type:text"`
	ProjectID  snowflake.ID `json:"project_id" gorm:"not null;index:ix_residences_project"`
	CustomerID snowflake.ID `json:"customer_id" gorm:"not null;default:0"`
	Active     bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Residence) TableName() string { return "residences" }

// PriceOverride replaces a catalog item's list price for one residence. At
// most one active override per (residence, catalog item); the partial unique
// index lives in the schema.
type PriceOverride struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	ResidenceID   snowflake.ID    `json:"residence_id" gorm:"not null;index:ix_price_overrides_residence"`
	CatalogItemID snowflake.ID    `json:"catalog_item_id" gorm:"not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null;default:0"`
	Active        bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PriceOverride) TableName() string { return "price_overrides" }

// StatementRow is one reading joined to the invoice line it priced, scanned
// straight out of the statement query.
type StatementRow struct {
	ReadingID     snowflake.ID    `json:"reading_id"`
	IsInitial     bool            `json:"is_initial"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	CurrentValue  float64         `json:"current_value"`
	Consumption   float64         `json:"consumption"`
	TotalCharge   decimal.Decimal `json:"total_charge"`
	CustomerID    snowflake.ID    `json:"customer_id"`
	InvoiceID     snowflake.ID    `json:"invoice_id"`
	InvoiceStatus string          `json:"invoice_status"`
	InvoiceTotal  decimal.Decimal `json:"invoice_total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	LineAmount    decimal.Decimal `json:"line_amount"`
}
