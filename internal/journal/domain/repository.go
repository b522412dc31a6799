package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, journal *Journal) error
	Update(ctx context.Context, db *gorm.DB, journal *Journal) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Journal, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Journal, error)
	FindAssociationJournal(ctx context.Context, db *gorm.DB) (*Journal, error)
	List(ctx context.Context, db *gorm.DB) ([]Journal, error)
}
