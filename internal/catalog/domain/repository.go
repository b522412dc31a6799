package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *CatalogItem) error
	Update(ctx context.Context, db *gorm.DB, item *CatalogItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CatalogItem, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*CatalogItem, error)
	List(ctx context.Context, db *gorm.DB) ([]CatalogItem, error)
	ListAutoBilled(ctx context.Context, db *gorm.DB) ([]CatalogItem, error)
	FindByWaterTag(ctx context.Context, db *gorm.DB, tag WaterTag) (*CatalogItem, error)
}
