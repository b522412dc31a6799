package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() projectdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *projectdomain.Project) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO projects (id, name, address, detail, base_fee, unit_price, included_allowance, inactive_fee, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Name,
		p.Address,
		p.Detail,
		p.BaseFee,
		p.UnitPrice,
		p.IncludedAllowance,
		p.InactiveFee,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *projectdomain.Project) error {
	return db.WithContext(ctx).Exec(
		`UPDATE projects
		 SET name = ?, address = ?, detail = ?, base_fee = ?, unit_price = ?, included_allowance = ?, inactive_fee = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		p.Address,
		p.Detail,
		p.BaseFee,
		p.UnitPrice,
		p.IncludedAllowance,
		p.InactiveFee,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM projects WHERE id = ?`,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*projectdomain.Project, error) {
	var project projectdomain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, detail, base_fee, unit_price, included_allowance, inactive_fee, created_at, updated_at
		 FROM projects WHERE id = ?`,
		id,
	).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == 0 {
		return nil, nil
	}
	return &project, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]projectdomain.Project, error) {
	var projects []projectdomain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, detail, base_fee, unit_price, included_allowance, inactive_fee, created_at, updated_at
		 FROM projects ORDER BY name ASC`,
	).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
