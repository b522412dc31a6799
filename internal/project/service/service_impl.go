package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	"github.com/iitsoft/asovec/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  projectdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  projectdomain.Repository
	genID *snowflake.Node
}

func New(p Params) projectdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req projectdomain.CreateRequest) (*projectdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, projectdomain.ErrInvalidName
	}

	allowance := 0.0
	if req.IncludedAllowance != nil {
		allowance = *req.IncludedAllowance
	}
	if err := validateTariff(req.BaseFee, req.UnitPrice, allowance, req.InactiveFee); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project := &projectdomain.Project{
		ID:                s.genID.Generate(),
		Name:              name,
		Address:           strings.TrimSpace(req.Address),
		Detail:            strings.TrimSpace(req.Detail),
		BaseFee:           req.BaseFee,
		UnitPrice:         req.UnitPrice,
		IncludedAllowance: allowance,
		InactiveFee:       req.InactiveFee,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, project); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, projectdomain.ErrDuplicateName
		}
		return nil, err
	}

	return s.toResponse(project), nil
}

func (s *Service) List(ctx context.Context) ([]projectdomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]projectdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*projectdomain.Response, error) {
	projectID, err := projectdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, projectdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, projectdomain.ErrNotFound
	}
	return s.toResponse(item), nil
}

func (s *Service) Update(ctx context.Context, req projectdomain.UpdateRequest) (*projectdomain.Response, error) {
	projectID, err := projectdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, projectdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, projectdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, projectdomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Address != nil {
		item.Address = strings.TrimSpace(*req.Address)
	}
	if req.Detail != nil {
		item.Detail = strings.TrimSpace(*req.Detail)
	}
	if req.BaseFee != nil {
		item.BaseFee = *req.BaseFee
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.IncludedAllowance != nil {
		item.IncludedAllowance = *req.IncludedAllowance
	}
	if req.InactiveFee != nil {
		item.InactiveFee = *req.InactiveFee
	}

	if err := validateTariff(item.BaseFee, item.UnitPrice, item.IncludedAllowance, item.InactiveFee); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, projectdomain.ErrDuplicateName
		}
		return nil, err
	}

	return s.toResponse(item), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	projectID, err := projectdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return projectdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return err
	}
	if item == nil {
		return projectdomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, projectID)
}

func validateTariff(baseFee, unitPrice decimal.Decimal, allowance float64, inactiveFee decimal.Decimal) error {
	if baseFee.IsNegative() || unitPrice.IsNegative() || inactiveFee.IsNegative() || allowance < 0 {
		return projectdomain.ErrNegativeTariff
	}
	return nil
}

func (s *Service) toResponse(p *projectdomain.Project) *projectdomain.Response {
	return &projectdomain.Response{
		ID:                p.ID.String(),
		Name:              p.Name,
		Address:           p.Address,
		Detail:            p.Detail,
		BaseFee:           p.BaseFee,
		UnitPrice:         p.UnitPrice,
		IncludedAllowance: p.IncludedAllowance,
		InactiveFee:       p.InactiveFee,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
