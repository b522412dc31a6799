package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, projectID string) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	// Generate wipes and rebuilds the run's lines and draft invoices from
	// current residence, catalog and reading state. Draft runs only.
	Generate(ctx context.Context, id string) (*Response, error)
	Confirm(ctx context.Context, id string) (*Response, error)
	Cancel(ctx context.Context, id string) (*Response, error)
	ResetToDraft(ctx context.Context, id string) (*Response, error)
	Statement(ctx context.Context, req StatementRequest) (*StatementResponse, error)
}

type CreateRequest struct {
	ProjectID string `json:"project_id"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
}

type StatementRequest struct {
	ProjectID           string `json:"project_id"`
	ResidenceID         string `json:"residence_id"`
	OnlyCurrentCustomer bool   `json:"only_current_customer"`
}

type LineResponse struct {
	ID            string          `json:"id"`
	ResidenceID   string          `json:"residence_id"`
	CustomerID    string          `json:"customer_id"`
	InvoiceID     string          `json:"invoice_id,omitempty"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	ReadingStatus string          `json:"reading_status"`
}

type Response struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"project_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Name          string          `json:"name"`
	Status        string          `json:"status"`
	TotalToCharge decimal.Decimal `json:"total_to_charge"`
	Lines         []LineResponse  `json:"lines,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type StatementEntry struct {
	RunID         string          `json:"run_id"`
	RunName       string          `json:"run_name"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	InvoiceID     string          `json:"invoice_id,omitempty"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	ReadingStatus string          `json:"reading_status"`
	InvoiceStatus string          `json:"invoice_status"`
	Residual      decimal.Decimal `json:"residual"`
}

type StatementResponse struct {
	ProjectID   string           `json:"project_id"`
	ResidenceID string           `json:"residence_id"`
	Entries     []StatementEntry `json:"entries"`
}

var (
	ErrInvalidID                = errors.New("invalid_id")
	ErrInvalidProjectID         = errors.New("invalid_project_id")
	ErrInvalidPeriod            = errors.New("invalid_period")
	ErrNotFound                 = errors.New("not_found")
	ErrDuplicatePeriod          = errors.New("duplicate_billing_period")
	ErrNotDraft                 = errors.New("billing_run_not_draft")
	ErrNotPosted                = errors.New("billing_run_not_posted")
	ErrResidenceMissingCustomer = errors.New("residence_missing_customer")
	ErrMissingJournal           = errors.New("missing_billing_journal")
	ErrNoAutoBilledItems        = errors.New("no_auto_billed_items")
	ErrNoResidences             = errors.New("project_has_no_residences")
	ErrNothingToBill            = errors.New("nothing_to_bill")
	ErrResidenceNotInProject    = errors.New("residence_not_in_project")
	ErrGenerationFailed         = errors.New("billing_generation_failed")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
