package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() residencedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, res *residencedomain.Residence) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO residences (id, code, address, detail, project_id, customer_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.Code,
		res.Address,
		res.Detail,
		res.ProjectID,
		res.CustomerID,
		res.Active,
		res.CreatedAt,
		res.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, res *residencedomain.Residence) error {
	return db.WithContext(ctx).Exec(
		`UPDATE residences
		 SET code = ?, address = ?, detail = ?, customer_id = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		res.Code,
		res.Address,
		res.Detail,
		res.CustomerID,
		res.Active,
		res.UpdatedAt,
		res.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*residencedomain.Residence, error) {
	var residence residencedomain.Residence
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, address, detail, project_id, customer_id, active, created_at, updated_at
		 FROM residences WHERE id = ?`,
		id,
	).Scan(&residence).Error
	if err != nil {
		return nil, err
	}
	if residence.ID == 0 {
		return nil, nil
	}
	return &residence, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]residencedomain.Residence, error) {
	var residences []residencedomain.Residence
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, address, detail, project_id, customer_id, active, created_at, updated_at
		 FROM residences ORDER BY code ASC`,
	).Scan(&residences).Error
	if err != nil {
		return nil, err
	}
	return residences, nil
}

func (r *repo) ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]residencedomain.Residence, error) {
	var residences []residencedomain.Residence
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, address, detail, project_id, customer_id, active, created_at, updated_at
		 FROM residences WHERE project_id = ? ORDER BY code ASC`,
		projectID,
	).Scan(&residences).Error
	if err != nil {
		return nil, err
	}
	return residences, nil
}

func (r *repo) HasPendingBalance(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM billing_lines bl
		 JOIN invoices inv ON inv.id = bl.invoice_id
		 WHERE bl.residence_id = ?
		   AND inv.status = 'posted'
		   AND inv.total > inv.amount_paid`,
		residenceID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Statement(ctx context.Context, db *gorm.DB, meterID snowflake.ID) ([]residencedomain.StatementRow, error) {
	// A reading may be priced by several invoice lines (base + excess);
	// the sum collapses them into one statement row per reading.
	var rows []residencedomain.StatementRow
	err := db.WithContext(ctx).Raw(
		`SELECT mr.id AS reading_id,
		        mr.is_initial,
		        mr.month,
		        mr.year,
		        mr.current_value,
		        mr.consumption,
		        mr.total_charge,
		        mr.customer_id,
		        COALESCE(il.invoice_id, 0) AS invoice_id,
		        COALESCE(inv.status, '') AS invoice_status,
		        COALESCE(inv.total, 0) AS invoice_total,
		        COALESCE(inv.amount_paid, 0) AS amount_paid,
		        COALESCE(SUM(il.amount), 0) AS line_amount
		 FROM meter_readings mr
		 LEFT JOIN invoice_lines il ON il.reading_id = mr.id
		 LEFT JOIN invoices inv ON inv.id = il.invoice_id
		 WHERE mr.meter_id = ?
		 GROUP BY mr.id, mr.is_initial, mr.month, mr.year, mr.current_value,
		          mr.consumption, mr.total_charge, mr.customer_id,
		          il.invoice_id, inv.status, inv.total, inv.amount_paid
		 ORDER BY mr.is_initial DESC, mr.year ASC, mr.month ASC`,
		meterID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) InsertOverride(ctx context.Context, db *gorm.DB, o *residencedomain.PriceOverride) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO price_overrides (id, residence_id, catalog_item_id, price, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.ResidenceID,
		o.CatalogItemID,
		o.Price,
		o.Active,
		o.CreatedAt,
		o.UpdatedAt,
	).Error
}

func (r *repo) UpdateOverride(ctx context.Context, db *gorm.DB, o *residencedomain.PriceOverride) error {
	return db.WithContext(ctx).Exec(
		`UPDATE price_overrides
		 SET price = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		o.Price,
		o.Active,
		o.UpdatedAt,
		o.ID,
	).Error
}

func (r *repo) FindOverrideByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*residencedomain.PriceOverride, error) {
	var override residencedomain.PriceOverride
	err := db.WithContext(ctx).Raw(
		`SELECT id, residence_id, catalog_item_id, price, active, created_at, updated_at
		 FROM price_overrides WHERE id = ?`,
		id,
	).Scan(&override).Error
	if err != nil {
		return nil, err
	}
	if override.ID == 0 {
		return nil, nil
	}
	return &override, nil
}

func (r *repo) ListOverrides(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) ([]residencedomain.PriceOverride, error) {
	var overrides []residencedomain.PriceOverride
	err := db.WithContext(ctx).Raw(
		`SELECT id, residence_id, catalog_item_id, price, active, created_at, updated_at
		 FROM price_overrides WHERE residence_id = ? ORDER BY id ASC`,
		residenceID,
	).Scan(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *repo) FindActiveOverride(ctx context.Context, db *gorm.DB, residenceID, catalogItemID snowflake.ID) (*residencedomain.PriceOverride, error) {
	var override residencedomain.PriceOverride
	err := db.WithContext(ctx).Raw(
		`SELECT id, residence_id, catalog_item_id, price, active, created_at, updated_at
		 FROM price_overrides
		 WHERE residence_id = ? AND catalog_item_id = ? AND active
		 LIMIT 1`,
		residenceID,
		catalogItemID,
	).Scan(&override).Error
	if err != nil {
		return nil, err
	}
	if override.ID == 0 {
		return nil, nil
	}
	return &override, nil
}
