package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() journaldomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, j *journaldomain.Journal) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO journals (id, code, name, type, association_charge, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID,
		j.Code,
		j.Name,
		j.Type,
		j.AssociationCharge,
		j.CreatedAt,
		j.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, j *journaldomain.Journal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE journals
		 SET name = ?, association_charge = ?, updated_at = ?
		 WHERE id = ?`,
		j.Name,
		j.AssociationCharge,
		j.UpdatedAt,
		j.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*journaldomain.Journal, error) {
	var journal journaldomain.Journal
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, type, association_charge, created_at, updated_at
		 FROM journals WHERE id = ?`,
		id,
	).Scan(&journal).Error
	if err != nil {
		return nil, err
	}
	if journal.ID == 0 {
		return nil, nil
	}
	return &journal, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*journaldomain.Journal, error) {
	var journal journaldomain.Journal
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, type, association_charge, created_at, updated_at
		 FROM journals WHERE code = ?`,
		code,
	).Scan(&journal).Error
	if err != nil {
		return nil, err
	}
	if journal.ID == 0 {
		return nil, nil
	}
	return &journal, nil
}

func (r *repo) FindAssociationJournal(ctx context.Context, db *gorm.DB) (*journaldomain.Journal, error) {
	var journal journaldomain.Journal
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, type, association_charge, created_at, updated_at
		 FROM journals WHERE association_charge ORDER BY id ASC LIMIT 1`,
	).Scan(&journal).Error
	if err != nil {
		return nil, err
	}
	if journal.ID == 0 {
		return nil, nil
	}
	return &journal, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]journaldomain.Journal, error) {
	var journals []journaldomain.Journal
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, type, association_charge, created_at, updated_at
		 FROM journals ORDER BY code ASC`,
	).Scan(&journals).Error
	if err != nil {
		return nil, err
	}
	return journals, nil
}
