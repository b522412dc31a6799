package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	"github.com/iitsoft/asovec/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  journaldomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  journaldomain.Repository
	genID *snowflake.Node
}

func New(p Params) journaldomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("journal.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req journaldomain.CreateRequest) (*journaldomain.Response, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, journaldomain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, journaldomain.ErrInvalidName
	}

	journalType := strings.TrimSpace(req.Type)
	if journalType == "" {
		journalType = "sale"
	}

	now := time.Now().UTC()
	journal := &journaldomain.Journal{
		ID:                s.genID.Generate(),
		Code:              code,
		Name:              name,
		Type:              journalType,
		AssociationCharge: req.AssociationCharge,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, journal); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, journaldomain.ErrDuplicateCode
		}
		return nil, err
	}
	return s.toResponse(journal), nil
}

func (s *Service) List(ctx context.Context) ([]journaldomain.Response, error) {
	journals, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]journaldomain.Response, 0, len(journals))
	for i := range journals {
		resp = append(resp, *s.toResponse(&journals[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req journaldomain.UpdateRequest) (*journaldomain.Response, error) {
	journalID, err := journaldomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, journaldomain.ErrInvalidID
	}

	journal, err := s.repo.FindByID(ctx, s.db, journalID)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, journaldomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, journaldomain.ErrInvalidName
		}
		journal.Name = name
	}
	if req.AssociationCharge != nil {
		journal.AssociationCharge = *req.AssociationCharge
	}

	journal.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, journal); err != nil {
		return nil, err
	}
	return s.toResponse(journal), nil
}

func (s *Service) toResponse(j *journaldomain.Journal) *journaldomain.Response {
	return &journaldomain.Response{
		ID:                j.ID.String(),
		Code:              j.Code,
		Name:              j.Name,
		Type:              j.Type,
		AssociationCharge: j.AssociationCharge,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
	}
}
