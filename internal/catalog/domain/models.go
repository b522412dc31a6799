package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ItemKind string

const (
	KindService ItemKind = "service"
	KindGood    ItemKind = "good"
)

// WaterTag identifies the single catalog item bound to a water billing role.
type WaterTag string

const (
	TagInactiveMeterFee WaterTag = "inactive_meter_fee"
	TagBaseWaterFee     WaterTag = "base_water_fee"
	TagExcessWaterFee   WaterTag = "excess_water_fee"
)

// CatalogItem is a billable service or good. Water-tagged items are unique
// system-wide; the partial unique indexes live in the schema.
type CatalogItem struct {
	ID                   snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name                 string          `json:"name" gorm:"type:text;not null;uniqueIndex:ux_catalog_items_name"`
	Kind                 ItemKind        `json:"kind" gorm:"type:text;not null;default:'service'"`
	ListPrice            decimal.Decimal `json:"list_price" gorm:"type:numeric(14,2);not null;default:0"`
	IsAssociationService bool            `json:"is_association_service" gorm:"not null;default:false"`
	AutoMonthly          bool            `json:"auto_monthly" gorm:"not null;default:false"`
	WaterDependent       bool            `json:"water_dependent" gorm:"not null;default:false"`
	InactiveMeterFee     bool            `json:"inactive_meter_fee" gorm:"not null;default:false"`
	BaseWaterFee         bool            `json:"base_water_fee" gorm:"not null;default:false"`
	ExcessWaterFee       bool            `json:"excess_water_fee" gorm:"not null;default:false"`
	Active               bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt            time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CatalogItem) TableName() string { return "catalog_items" }

// WaterTagOf reports which water role the item carries, if any.
func (c *CatalogItem) WaterTagOf() (WaterTag, bool) {
	switch {
	case c.InactiveMeterFee:
		return TagInactiveMeterFee, true
	case c.BaseWaterFee:
		return TagBaseWaterFee, true
	case c.ExcessWaterFee:
		return TagExcessWaterFee, true
	}
	return "", false
}

// ClearConflictingBilling enforces that auto_monthly and water_dependent are
// mutually exclusive, keeping the flag named by keep.
func (c *CatalogItem) ClearConflictingBilling(keep string) {
	switch keep {
	case "auto_monthly":
		if c.AutoMonthly {
			c.WaterDependent = false
		}
	case "water_dependent":
		if c.WaterDependent {
			c.AutoMonthly = false
		}
	}
}

// ClearConflictingWaterTag enforces that at most one of the three water tags
// is set, keeping the tag named by keep.
func (c *CatalogItem) ClearConflictingWaterTag(keep WaterTag) {
	switch keep {
	case TagInactiveMeterFee:
		if c.InactiveMeterFee {
			c.BaseWaterFee = false
			c.ExcessWaterFee = false
		}
	case TagBaseWaterFee:
		if c.BaseWaterFee {
			c.InactiveMeterFee = false
			c.ExcessWaterFee = false
		}
	case TagExcessWaterFee:
		if c.ExcessWaterFee {
			c.InactiveMeterFee = false
			c.BaseWaterFee = false
		}
	}
}
