package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// Reading statuses recorded on billing lines.
const (
	ReadingValid    = "valid_reading"
	ReadingMissing  = "no_reading"
	ReadingInactive = "inactive"
)

// BillingRun is one monthly billing batch for a project. Non-cancelled runs
// are unique per (project, month, year); the partial unique index lives in
// the schema.
type BillingRun struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	ProjectID     snowflake.ID      `json:"project_id" gorm:"not null;index:ix_billing_runs_project"`
	Month         int               `json:"month" gorm:"not null"`
	Year          int               `json:"year" gorm:"not null"`
	Name          string            `json:"name" gorm:"type:text;not null"`
	Status        Status            `json:"status" gorm:"type:text;not null;default:'draft'"`
	TotalToCharge decimal.Decimal   `json:"total_to_charge" gorm:"type:numeric(14,2);not null;default:0"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingRun) TableName() string { return "billing_runs" }

// DisplayName builds the run name shown everywhere.
func DisplayName(projectName string, month, year int) string {
	return fmt.Sprintf("%s - %02d/%04d", projectName, month, year)
}

// BillingLine records the outcome of billing one residence inside a run.
type BillingLine struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	RunID         snowflake.ID    `json:"run_id" gorm:"not null;index:ix_billing_lines_run"`
	ProjectID     snowflake.ID    `json:"project_id" gorm:"not null"`
	ResidenceID   snowflake.ID    `json:"residence_id" gorm:"not null;index:ix_billing_lines_residence"`
	CustomerID    snowflake.ID    `json:"customer_id" gorm:"not null"`
	InvoiceID     snowflake.ID    `json:"invoice_id" gorm:"not null;default:0"`
	AmountTotal   decimal.Decimal `json:"amount_total" gorm:"type:numeric(14,2);not null;default:0"`
	ReadingStatus string          `json:"reading_status" gorm:"type:text;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingLine) TableName() string { return "billing_lines" }

// StatementRow is one posted billing line joined to its invoice, scanned
// straight out of the statement query.
type StatementRow struct {
	RunID         snowflake.ID    `json:"run_id"`
	RunName       string          `json:"run_name"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	ResidenceID   snowflake.ID    `json:"residence_id"`
	CustomerID    snowflake.ID    `json:"customer_id"`
	InvoiceID     snowflake.ID    `json:"invoice_id"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	ReadingStatus string          `json:"reading_status"`
	InvoiceStatus string          `json:"invoice_status"`
	InvoiceTotal  decimal.Decimal `json:"invoice_total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}
