package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	RegisterInitial(ctx context.Context, req RegisterInitialRequest) (*Response, error)
	RegisterPeriod(ctx context.Context, req RegisterPeriodRequest) (*Response, error)
	// Preview prices a prospective reading without persisting anything.
	Preview(ctx context.Context, req RegisterPeriodRequest) (*PreviewResponse, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Response, error)
	ListByMeter(ctx context.Context, meterID string) ([]Response, error)
	NextExpectedPeriod(ctx context.Context, meterID string) (*PeriodResponse, error)
}

type RegisterInitialRequest struct {
	MeterID string  `json:"meter_id"`
	Value   float64 `json:"value"`
}

type RegisterPeriodRequest struct {
	MeterID      string  `json:"meter_id"`
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	CurrentValue float64 `json:"current_value"`
}

type UpdateRequest struct {
	ID           string   `json:"id"`
	MeterID      *string  `json:"meter_id,omitempty"`
	Month        *int     `json:"month,omitempty"`
	Year         *int     `json:"year,omitempty"`
	CurrentValue *float64 `json:"current_value,omitempty"`
}

type Response struct {
	ID            string          `json:"id"`
	MeterID       string          `json:"meter_id"`
	IsInitial     bool            `json:"is_initial"`
	Month         int             `json:"month,omitempty"`
	Year          int             `json:"year,omitempty"`
	CurrentValue  float64         `json:"current_value"`
	PreviousValue float64         `json:"previous_value"`
	Consumption   float64         `json:"consumption"`
	BaseCharge    decimal.Decimal `json:"base_charge"`
	ExcessVolume  float64         `json:"excess_volume"`
	ExcessCharge  decimal.Decimal `json:"excess_charge"`
	TotalCharge   decimal.Decimal `json:"total_charge"`
	ResidenceID   string          `json:"residence_id"`
	ProjectID     string          `json:"project_id"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PreviewResponse struct {
	MeterID       string          `json:"meter_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	CurrentValue  float64         `json:"current_value"`
	PreviousValue float64         `json:"previous_value"`
	Consumption   float64         `json:"consumption"`
	BaseCharge    decimal.Decimal `json:"base_charge"`
	ExcessVolume  float64         `json:"excess_volume"`
	ExcessCharge  decimal.Decimal `json:"excess_charge"`
	TotalCharge   decimal.Decimal `json:"total_charge"`
}

type PeriodResponse struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidMeterID       = errors.New("invalid_meter_id")
	ErrNotFound             = errors.New("not_found")
	ErrMeterNotFound        = errors.New("meter_not_found")
	ErrResidenceNotFound    = errors.New("residence_not_found")
	ErrProjectNotFound      = errors.New("project_not_found")
	ErrDuplicateInitial     = errors.New("duplicate_initial_reading")
	ErrMissingPeriod        = errors.New("missing_period")
	ErrDuplicatePeriod      = errors.New("duplicate_period")
	ErrPeriodGap            = errors.New("period_gap")
	ErrReadingBelowPrevious = errors.New("reading_below_previous")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
