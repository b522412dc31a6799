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
	Update(ctx context.Context, req UpdateRequest) (*Response, error)

	CreateOverride(ctx context.Context, req OverrideCreateRequest) (*OverrideResponse, error)
	UpdateOverride(ctx context.Context, req OverrideUpdateRequest) (*OverrideResponse, error)
	ListOverrides(ctx context.Context, residenceID string) ([]OverrideResponse, error)

	// NewReadingSeed resolves the meter the next reading should target and
	// pre-fills the expected period and previous value.
	NewReadingSeed(ctx context.Context, residenceID string) (*ReadingSeed, error)
	Statement(ctx context.Context, residenceID string) (*StatementResponse, error)
}

type CreateRequest struct {
	Code       string `json:"code"`
	Address    string `json:"address"`
	Detail     string `json:"detail"`
	ProjectID  string `json:"project_id"`
	CustomerID string `json:"customer_id"`
}

type UpdateRequest struct {
	ID         string  `json:"id"`
	Code       *string `json:"code,omitempty"`
	Address    *string `json:"address,omitempty"`
	Detail     *string `json:"detail,omitempty"`
	CustomerID *string `json:"customer_id,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

type Response struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Address    string    `json:"address"`
	Detail     string    `json:"detail"`
	ProjectID  string    `json:"project_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type OverrideCreateRequest struct {
	ResidenceID   string          `json:"residence_id"`
	CatalogItemID string          `json:"catalog_item_id"`
	Price         decimal.Decimal `json:"price"`
}

type OverrideUpdateRequest struct {
	ID     string           `json:"id"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Active *bool            `json:"active,omitempty"`
}

type OverrideResponse struct {
	ID            string          `json:"id"`
	ResidenceID   string          `json:"residence_id"`
	CatalogItemID string          `json:"catalog_item_id"`
	Price         decimal.Decimal `json:"price"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ReadingSeed pre-fills the reading form for a residence.
type ReadingSeed struct {
	MeterID       string  `json:"meter_id"`
	IsInitial     bool    `json:"is_initial"`
	Month         int     `json:"month,omitempty"`
	Year          int     `json:"year,omitempty"`
	PreviousValue float64 `json:"previous_value"`
}

// Reading invoice statuses as shown on the statement.
const (
	StatementNotInvoiced = "not_invoiced"
	StatementDraft       = "draft"
	StatementPosted      = "posted"
	StatementPaid        = "paid"
)

type StatementEntry struct {
	ReadingID    string          `json:"reading_id"`
	IsInitial    bool            `json:"is_initial"`
	Month        int             `json:"month,omitempty"`
	Year         int             `json:"year,omitempty"`
	CurrentValue float64         `json:"current_value"`
	Consumption  float64         `json:"consumption"`
	TotalCharge  decimal.Decimal `json:"total_charge"`
	InvoiceID    string          `json:"invoice_id,omitempty"`
	Status       string          `json:"status"`
	Pending      decimal.Decimal `json:"pending"`
	Balance      decimal.Decimal `json:"balance"`
}

type StatementResponse struct {
	ResidenceID    string           `json:"residence_id"`
	MeterID        string           `json:"meter_id"`
	PendingBalance decimal.Decimal  `json:"pending_balance"`
	Entries        []StatementEntry `json:"entries"`
}

var (
	ErrInvalidCode          = errors.New("invalid_code")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidProjectID     = errors.New("invalid_project_id")
	ErrInvalidCustomerID    = errors.New("invalid_customer_id")
	ErrInvalidCatalogItemID = errors.New("invalid_catalog_item_id")
	ErrNegativePrice        = errors.New("negative_price")
	ErrDuplicateCode        = errors.New("duplicate_residence_code")
	ErrDuplicateOverride    = errors.New("duplicate_price_override")
	ErrNotFound             = errors.New("not_found")
	ErrPendingBalance       = errors.New("residence_has_pending_balance")
	ErrNoMeter              = errors.New("residence_has_no_meter")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
