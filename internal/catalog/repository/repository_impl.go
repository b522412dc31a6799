package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

const selectColumns = `id, name, kind, list_price, is_association_service,
	auto_monthly, water_dependent, inactive_meter_fee, base_water_fee,
	excess_water_fee, active, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *catalogdomain.CatalogItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO catalog_items (id, name, kind, list_price, is_association_service,
		 auto_monthly, water_dependent, inactive_meter_fee, base_water_fee,
		 excess_water_fee, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Name,
		item.Kind,
		item.ListPrice,
		item.IsAssociationService,
		item.AutoMonthly,
		item.WaterDependent,
		item.InactiveMeterFee,
		item.BaseWaterFee,
		item.ExcessWaterFee,
		item.Active,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *catalogdomain.CatalogItem) error {
	return db.WithContext(ctx).Exec(
		`UPDATE catalog_items
		 SET name = ?, kind = ?, list_price = ?, is_association_service = ?,
		     auto_monthly = ?, water_dependent = ?, inactive_meter_fee = ?,
		     base_water_fee = ?, excess_water_fee = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name,
		item.Kind,
		item.ListPrice,
		item.IsAssociationService,
		item.AutoMonthly,
		item.WaterDependent,
		item.InactiveMeterFee,
		item.BaseWaterFee,
		item.ExcessWaterFee,
		item.Active,
		item.UpdatedAt,
		item.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.CatalogItem, error) {
	var item catalogdomain.CatalogItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM catalog_items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*catalogdomain.CatalogItem, error) {
	var item catalogdomain.CatalogItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM catalog_items WHERE name = ?`,
		name,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]catalogdomain.CatalogItem, error) {
	var items []catalogdomain.CatalogItem
	err := db.WithContext(ctx).Raw(
		`SELECT ` + selectColumns + ` FROM catalog_items ORDER BY name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAutoBilled(ctx context.Context, db *gorm.DB) ([]catalogdomain.CatalogItem, error) {
	var items []catalogdomain.CatalogItem
	err := db.WithContext(ctx).Raw(
		`SELECT ` + selectColumns + ` FROM catalog_items
		 WHERE active AND is_association_service AND auto_monthly
		 ORDER BY name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByWaterTag(ctx context.Context, db *gorm.DB, tag catalogdomain.WaterTag) (*catalogdomain.CatalogItem, error) {
	var column string
	switch tag {
	case catalogdomain.TagInactiveMeterFee:
		column = "inactive_meter_fee"
	case catalogdomain.TagBaseWaterFee:
		column = "base_water_fee"
	case catalogdomain.TagExcessWaterFee:
		column = "excess_water_fee"
	default:
		return nil, nil
	}

	var item catalogdomain.CatalogItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM catalog_items WHERE active AND `+column+` LIMIT 1`,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
