package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the invoicing facade. Mutating operations accept the caller's
// open transaction; passing a nil tx runs against the root handle.
type Service interface {
	CreateDraft(ctx context.Context, tx *gorm.DB, req CreateDraftRequest) (*Invoice, error)
	Post(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) error
	ResetToDraft(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) error
	DeleteDraft(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
}

type LineSpec struct {
	CatalogItemID snowflake.ID
	ReadingID     snowflake.ID
	Description   string
	Quantity      float64
	UnitPrice     decimal.Decimal
}

type CreateDraftRequest struct {
	JournalID  snowflake.ID
	CustomerID snowflake.ID
	Date       time.Time
	Reference  string
	Lines      []LineSpec
}

type ApplyPaymentRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type LineResponse struct {
	ID            string          `json:"id"`
	CatalogItemID string          `json:"catalog_item_id"`
	ReadingID     string          `json:"reading_id,omitempty"`
	Description   string          `json:"description"`
	Quantity      float64         `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Amount        decimal.Decimal `json:"amount"`
}

type Response struct {
	ID         string          `json:"id"`
	JournalID  string          `json:"journal_id"`
	CustomerID string          `json:"customer_id"`
	Date       time.Time       `json:"date"`
	Reference  string          `json:"reference"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Residual   decimal.Decimal `json:"residual"`
	Lines      []LineResponse  `json:"lines,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrNotFound               = errors.New("not_found")
	ErrInvoiceNotDraft        = errors.New("invoice_not_draft")
	ErrInvoiceNotPosted       = errors.New("invoice_not_posted")
	ErrPaymentExceedsResidual = errors.New("payment_exceeds_residual")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
