package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
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
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  catalogdomain.Repository
	genID *snowflake.Node
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req catalogdomain.CreateRequest) (*catalogdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalogdomain.ErrInvalidName
	}

	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if req.ListPrice.IsNegative() {
		return nil, catalogdomain.ErrNegativeListPrice
	}

	now := time.Now().UTC()
	item := &catalogdomain.CatalogItem{
		ID:                   s.genID.Generate(),
		Name:                 name,
		Kind:                 kind,
		ListPrice:            req.ListPrice,
		IsAssociationService: req.IsAssociationService,
		AutoMonthly:          req.AutoMonthly,
		WaterDependent:       req.WaterDependent,
		InactiveMeterFee:     req.InactiveMeterFee,
		BaseWaterFee:         req.BaseWaterFee,
		ExcessWaterFee:       req.ExcessWaterFee,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	normalizeFlags(item)

	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrDuplicateName
		}
		return nil, err
	}
	return s.toResponse(item), nil
}

func (s *Service) List(ctx context.Context) ([]catalogdomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]catalogdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*catalogdomain.Response, error) {
	itemID, err := catalogdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return s.toResponse(item), nil
}

func (s *Service) Update(ctx context.Context, req catalogdomain.UpdateRequest) (*catalogdomain.Response, error) {
	itemID, err := catalogdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, catalogdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, catalogdomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Kind != nil {
		kind, err := parseKind(*req.Kind)
		if err != nil {
			return nil, err
		}
		item.Kind = kind
	}
	if req.ListPrice != nil {
		if req.ListPrice.IsNegative() {
			return nil, catalogdomain.ErrNegativeListPrice
		}
		item.ListPrice = *req.ListPrice
	}
	if req.IsAssociationService != nil {
		item.IsAssociationService = *req.IsAssociationService
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	// The most recently toggled-on flag wins over its conflicting siblings.
	if req.AutoMonthly != nil {
		item.AutoMonthly = *req.AutoMonthly
		item.ClearConflictingBilling("auto_monthly")
	}
	if req.WaterDependent != nil {
		item.WaterDependent = *req.WaterDependent
		item.ClearConflictingBilling("water_dependent")
	}
	if req.InactiveMeterFee != nil {
		item.InactiveMeterFee = *req.InactiveMeterFee
		item.ClearConflictingWaterTag(catalogdomain.TagInactiveMeterFee)
	}
	if req.BaseWaterFee != nil {
		item.BaseWaterFee = *req.BaseWaterFee
		item.ClearConflictingWaterTag(catalogdomain.TagBaseWaterFee)
	}
	if req.ExcessWaterFee != nil {
		item.ExcessWaterFee = *req.ExcessWaterFee
		item.ClearConflictingWaterTag(catalogdomain.TagExcessWaterFee)
	}

	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrDuplicateName
		}
		return nil, err
	}
	return s.toResponse(item), nil
}

// validate applies the cross-field rules after flag normalization.
func (s *Service) validate(ctx context.Context, item *catalogdomain.CatalogItem) error {
	if item.IsAssociationService && item.Kind != catalogdomain.KindService {
		return catalogdomain.ErrItemNotService
	}
	if tag, ok := item.WaterTagOf(); ok && item.Active {
		existing, err := s.repo.FindByWaterTag(ctx, s.db, tag)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != item.ID {
			return catalogdomain.ErrDuplicateTag
		}
	}
	return nil
}

func (s *Service) toResponse(item *catalogdomain.CatalogItem) *catalogdomain.Response {
	return &catalogdomain.Response{
		ID:                   item.ID.String(),
		Name:                 item.Name,
		Kind:                 string(item.Kind),
		ListPrice:            item.ListPrice,
		IsAssociationService: item.IsAssociationService,
		AutoMonthly:          item.AutoMonthly,
		WaterDependent:       item.WaterDependent,
		InactiveMeterFee:     item.InactiveMeterFee,
		BaseWaterFee:         item.BaseWaterFee,
		ExcessWaterFee:       item.ExcessWaterFee,
		Active:               item.Active,
		CreatedAt:            item.CreatedAt,
		UpdatedAt:            item.UpdatedAt,
	}
}

func parseKind(value string) (catalogdomain.ItemKind, error) {
	switch catalogdomain.ItemKind(strings.ToLower(strings.TrimSpace(value))) {
	case catalogdomain.KindService, catalogdomain.ItemKind(""):
		return catalogdomain.KindService, nil
	case catalogdomain.KindGood:
		return catalogdomain.KindGood, nil
	default:
		return "", catalogdomain.ErrInvalidKind
	}
}

// normalizeFlags resolves conflicting create-time flags deterministically,
// preferring the water-dependent side and the first water tag set.
func normalizeFlags(item *catalogdomain.CatalogItem) {
	if item.WaterDependent {
		item.ClearConflictingBilling("water_dependent")
	} else {
		item.ClearConflictingBilling("auto_monthly")
	}
	switch {
	case item.InactiveMeterFee:
		item.ClearConflictingWaterTag(catalogdomain.TagInactiveMeterFee)
	case item.BaseWaterFee:
		item.ClearConflictingWaterTag(catalogdomain.TagBaseWaterFee)
	case item.ExcessWaterFee:
		item.ClearConflictingWaterTag(catalogdomain.TagExcessWaterFee)
	}
}
