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
}

type CreateRequest struct {
	Name                 string          `json:"name"`
	Kind                 string          `json:"kind"`
	ListPrice            decimal.Decimal `json:"list_price"`
	IsAssociationService bool            `json:"is_association_service"`
	AutoMonthly          bool            `json:"auto_monthly"`
	WaterDependent       bool            `json:"water_dependent"`
	InactiveMeterFee     bool            `json:"inactive_meter_fee"`
	BaseWaterFee         bool            `json:"base_water_fee"`
	ExcessWaterFee       bool            `json:"excess_water_fee"`
}

type UpdateRequest struct {
	ID                   string           `json:"id"`
	Name                 *string          `json:"name,omitempty"`
	Kind                 *string          `json:"kind,omitempty"`
	ListPrice            *decimal.Decimal `json:"list_price,omitempty"`
	IsAssociationService *bool            `json:"is_association_service,omitempty"`
	AutoMonthly          *bool            `json:"auto_monthly,omitempty"`
	WaterDependent       *bool            `json:"water_dependent,omitempty"`
	InactiveMeterFee     *bool            `json:"inactive_meter_fee,omitempty"`
	BaseWaterFee         *bool            `json:"base_water_fee,omitempty"`
	ExcessWaterFee       *bool            `json:"excess_water_fee,omitempty"`
	Active               *bool            `json:"active,omitempty"`
}

type Response struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Kind                 string          `json:"kind"`
	ListPrice            decimal.Decimal `json:"list_price"`
	IsAssociationService bool            `json:"is_association_service"`
	AutoMonthly          bool            `json:"auto_monthly"`
	WaterDependent       bool            `json:"water_dependent"`
	InactiveMeterFee     bool            `json:"inactive_meter_fee"`
	BaseWaterFee         bool            `json:"base_water_fee"`
	ExcessWaterFee       bool            `json:"excess_water_fee"`
	Active               bool            `json:"active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidKind       = errors.New("invalid_kind")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrDuplicateName     = errors.New("duplicate_catalog_name")
	ErrDuplicateTag      = errors.New("duplicate_catalog_tag")
	ErrItemNotService    = errors.New("catalog_item_not_service")
	ErrNegativeListPrice = errors.New("negative_list_price")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
