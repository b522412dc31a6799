package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  meterdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  meterdomain.Repository
	genID *snowflake.Node
}

func New(p Params) meterdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("meter.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req meterdomain.CreateRequest) (*meterdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, meterdomain.ErrInvalidName
	}
	residenceID, err := meterdomain.ParseID(strings.TrimSpace(req.ResidenceID))
	if err != nil || residenceID == 0 {
		return nil, meterdomain.ErrInvalidResidenceID
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	meter := &meterdomain.Meter{
		ID:          s.genID.Generate(),
		Name:        name,
		ResidenceID: residenceID,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, meter); err != nil {
			return err
		}
		if meter.Active {
			return s.repo.DeactivateSiblings(ctx, tx, residenceID, meter.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(meter), nil
}

func (s *Service) ListByResidence(ctx context.Context, residenceID string) ([]meterdomain.Response, error) {
	id, err := meterdomain.ParseID(strings.TrimSpace(residenceID))
	if err != nil {
		return nil, meterdomain.ErrInvalidResidenceID
	}

	meters, err := s.repo.ListByResidence(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]meterdomain.Response, 0, len(meters))
	for i := range meters {
		resp = append(resp, *s.toResponse(&meters[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*meterdomain.Response, error) {
	meterID, err := meterdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	meter, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, meterdomain.ErrNotFound
	}
	return s.toResponse(meter), nil
}

func (s *Service) Update(ctx context.Context, req meterdomain.UpdateRequest) (*meterdomain.Response, error) {
	meterID, err := meterdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	meter, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, meterdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, meterdomain.ErrInvalidName
		}
		meter.Name = name
	}

	meter.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, meter); err != nil {
		return nil, err
	}
	return s.toResponse(meter), nil
}

// Activate marks the meter active and deactivates every sibling on the same
// residence in the same transaction.
func (s *Service) Activate(ctx context.Context, id string) (*meterdomain.Response, error) {
	meterID, err := meterdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	var meter *meterdomain.Meter
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meter, err = s.repo.LockByID(ctx, tx, meterID)
		if err != nil {
			return err
		}
		if meter == nil {
			return meterdomain.ErrNotFound
		}

		meter.Active = true
		meter.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, meter); err != nil {
			return err
		}
		return s.repo.DeactivateSiblings(ctx, tx, meter.ResidenceID, meter.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(meter), nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*meterdomain.Response, error) {
	meterID, err := meterdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	meter, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, meterdomain.ErrNotFound
	}

	meter.Active = false
	meter.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, meter); err != nil {
		return nil, err
	}
	return s.toResponse(meter), nil
}

func (s *Service) toResponse(m *meterdomain.Meter) *meterdomain.Response {
	return &meterdomain.Response{
		ID:          m.ID.String(),
		Name:        m.Name,
		ResidenceID: m.ResidenceID.String(),
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
