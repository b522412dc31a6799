package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, meter *Meter) error
	Update(ctx context.Context, db *gorm.DB, meter *Meter) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Meter, error)
	// LockByID loads the meter row under a write lock so reading appends
	// serialize per meter. On sqlite the lock clause is omitted.
	LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Meter, error)
	ListByResidence(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) ([]Meter, error)
	FindActiveByResidence(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) (*Meter, error)
	FindLatestByResidence(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) (*Meter, error)
	DeactivateSiblings(ctx context.Context, db *gorm.DB, residenceID, exceptID snowflake.ID) error
}
