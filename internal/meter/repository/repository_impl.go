package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() meterdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO meters (id, name, residence_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.Name,
		m.ResidenceID,
		m.Active,
		m.CreatedAt,
		m.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Exec(
		`UPDATE meters
		 SET name = ?, residence_id = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		m.Name,
		m.ResidenceID,
		m.Active,
		m.UpdatedAt,
		m.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, residence_id, active, created_at, updated_at
		 FROM meters WHERE id = ?`,
		id,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*meterdomain.Meter, error) {
	query := `SELECT id, name, residence_id, active, created_at, updated_at
		 FROM meters WHERE id = ?`
	// sqlite locks the whole database on write; FOR UPDATE is not valid there.
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(query, id).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) ListByResidence(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) ([]meterdomain.Meter, error) {
	var meters []meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, residence_id, active, created_at, updated_at
		 FROM meters WHERE residence_id = ? ORDER BY id ASC`,
		residenceID,
	).Scan(&meters).Error
	if err != nil {
		return nil, err
	}
	return meters, nil
}

func (r *repo) FindActiveByResidence(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, residence_id, active, created_at, updated_at
		 FROM meters WHERE residence_id = ? AND active LIMIT 1`,
		residenceID,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) FindLatestByResidence(ctx context.Context, db *gorm.DB, residenceID snowflake.ID) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, residence_id, active, created_at, updated_at
		 FROM meters WHERE residence_id = ? ORDER BY id DESC LIMIT 1`,
		residenceID,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) DeactivateSiblings(ctx context.Context, db *gorm.DB, residenceID, exceptID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE meters SET active = ? WHERE residence_id = ? AND id <> ?`,
		false,
		residenceID,
		exceptID,
	).Error
}
