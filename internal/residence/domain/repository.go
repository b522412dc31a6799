package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, residence *Residence) error
	Update(ctx context.Context, db *gorm.DB, residence *Residence) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Residence, error)
	List(ctx context.Context, db *gorm.DB) ([]Residence, error)
	ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]Residence, error)
	// HasPendingBalance reports whether any posted invoice billed to the
	// residence still has outstanding balance.
	HasPendingBalance(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) (bool, error)
	Statement(ctx context.Context, db *gorm.DB, meterID snowflake.ID) ([]StatementRow, error)

	InsertOverride(ctx context.Context, db *gorm.DB, override *PriceOverride) error
	UpdateOverride(ctx context.Context, db *gorm.DB, override *PriceOverride) error
	FindOverrideByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PriceOverride, error)
	ListOverrides(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) ([]PriceOverride, error)
	FindActiveOverride(ctx context.Context, db *gorm.DB, residenceID, catalogItemID snowflake.ID) (*PriceOverride, error)
}
