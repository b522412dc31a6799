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
	List(ctx context.Context) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name              string           `json:"name"`
	Address           string           `json:"address"`
	Detail            string           `json:"detail"`
	BaseFee           decimal.Decimal  `json:"base_fee"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	IncludedAllowance *float64         `json:"included_allowance"`
	InactiveFee       decimal.Decimal  `json:"inactive_fee"`
}

type UpdateRequest struct {
	ID                string           `json:"id"`
	Name              *string          `json:"name,omitempty"`
	Address           *string          `json:"address,omitempty"`
	Detail            *string          `json:"detail,omitempty"`
	BaseFee           *decimal.Decimal `json:"base_fee,omitempty"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	IncludedAllowance *float64         `json:"included_allowance,omitempty"`
	InactiveFee       *decimal.Decimal `json:"inactive_fee,omitempty"`
}

type Response struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	Detail            string          `json:"detail"`
	BaseFee           decimal.Decimal `json:"base_fee"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	IncludedAllowance float64         `json:"included_allowance"`
	InactiveFee       decimal.Decimal `json:"inactive_fee"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNegativeTariff = errors.New("negative_tariff")
	ErrDuplicateName  = errors.New("duplicate_project_name")
	ErrNotFound       = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
