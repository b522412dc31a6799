// Package domain contains persistence models for association projects.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Project is a gated community or development managed by the association.
// Its tariff fields drive the water charges computed for every meter reading
// registered under its residences.
type Project struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	Name    string       `json:"name" gorm:"type:text;not null;uniqueIndex:ux_projects_name"`
	Address string       `json:"address" gorm:"type:text"`
	Detail  string       `json:"detail" gorm:"type:text"`

	// BaseFee is charged to every active residence with a meter reading.
	BaseFee decimal.Decimal `json:"base_fee" gorm:"type:numeric(14,2);not null;default:0"`
	// UnitPrice is charged per cubic meter consumed above IncludedAllowance.
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null;default:0"`
	// IncludedAllowance is the consumption covered by the base fee.
	IncludedAllowance float64 `json:"included_allowance" gorm:"not null;default:0"`
	// InactiveFee is the flat fee billed to inactive residences.
	InactiveFee decimal.Decimal `json:"inactive_fee" gorm:"type:numeric(14,2);not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// Tariff bundles the project parameters consumed by the tariff resolver.
type Tariff struct {
	BaseFee           decimal.Decimal
	UnitPrice         decimal.Decimal
	IncludedAllowance float64
}

// Tariff returns the project's tariff parameters.
func (p *Project) Tariff() Tariff {
	return Tariff{
		BaseFee:           p.BaseFee,
		UnitPrice:         p.UnitPrice,
		IncludedAllowance: p.IncludedAllowance,
	}
}
