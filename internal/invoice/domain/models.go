package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

// Invoice is the accounting document monthly billing hands its lines to.
// Posting and payments are modeled at the level the billing subsystem needs;
// ledger postings stay out of scope.
type Invoice struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	JournalID  snowflake.ID    `json:"journal_id" gorm:"not null"`
	CustomerID snowflake.ID    `json:"customer_id" gorm:"not null;index:ix_invoices_customer"`
	Date       time.Time       `json:"date" gorm:"not null"`
	Reference  string          `json:"reference" gorm:"type:text"`
	Status     Status          `json:"status" gorm:"type:text;not null;default:'draft'"`
	Total      decimal.Decimal `json:"total" gorm:"type:numeric(14,2);not null;default:0"`
	AmountPaid decimal.Decimal `json:"amount_paid" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Residual is the outstanding balance.
func (i *Invoice) Residual() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// InvoiceLine prices one catalog item on an invoice. ReadingID links back to
// the meter reading that produced the charge, zero when the line is not
// reading-driven.
type InvoiceLine struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceID     snowflake.ID    `json:"invoice_id" gorm:"not null;index:ix_invoice_lines_invoice"`
	CatalogItemID snowflake.ID    `json:"catalog_item_id" gorm:"not null"`
	ReadingID     snowflake.ID    `json:"reading_id" gorm:"not null;default:0;index:ix_invoice_lines_reading"`
	Description   string          `json:"description" gorm:"type:text"`
	Quantity      float64         `json:"quantity" gorm:"not null;default:1"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null;default:0"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }
