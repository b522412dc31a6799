package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/iitsoft/asovec/internal/clock"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	"github.com/iitsoft/asovec/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        residencedomain.Repository
	MeterRepo   meterdomain.Repository
	ReadingRepo readingdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        residencedomain.Repository
	meterRepo   meterdomain.Repository
	readingRepo readingdomain.Repository
}

func New(p Params) residencedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("residence.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		meterRepo:   p.MeterRepo,
		readingRepo: p.ReadingRepo,
	}
}

func (s *Service) Create(ctx context.Context, req residencedomain.CreateRequest) (*residencedomain.Response, error) {
	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, residencedomain.ErrInvalidCode
	}
	projectID, err := residencedomain.ParseID(strings.TrimSpace(req.ProjectID))
	if err != nil || projectID == 0 {
		return nil, residencedomain.ErrInvalidProjectID
	}

	var customerID snowflake.ID
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err = residencedomain.ParseID(strings.TrimSpace(req.CustomerID))
		if err != nil {
			return nil, residencedomain.ErrInvalidCustomerID
		}
	}

	now := time.Now().UTC()
	residence := &residencedomain.Residence{
		ID:         s.genID.Generate(),
		Code:       code,
		Address:    strings.TrimSpace(req.Address),
		Detail:     strings.TrimSpace(req.Detail),
		ProjectID:  projectID,
		CustomerID: customerID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, residence); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, residencedomain.ErrDuplicateCode
		}
		return nil, err
	}
	return s.toResponse(residence), nil
}

func (s *Service) List(ctx context.Context, projectID string) ([]residencedomain.Response, error) {
	var (
		residences []residencedomain.Residence
		err        error
	)
	if strings.TrimSpace(projectID) == "" {
		residences, err = s.repo.List(ctx, s.db)
	} else {
		var id snowflake.ID
		id, err = residencedomain.ParseID(strings.TrimSpace(projectID))
		if err != nil {
			return nil, residencedomain.ErrInvalidProjectID
		}
		residences, err = s.repo.ListByProject(ctx, s.db, id)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]residencedomain.Response, 0, len(residences))
	for i := range residences {
		resp = append(resp, *s.toResponse(&residences[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*residencedomain.Response, error) {
	residenceID, err := residencedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, residencedomain.ErrInvalidID
	}

	residence, err := s.repo.FindByID(ctx, s.db, residenceID)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, residencedomain.ErrNotFound
	}
	return s.toResponse(residence), nil
}

func (s *Service) Update(ctx context.Context, req residencedomain.UpdateRequest) (*residencedomain.Response, error) {
	residenceID, err := residencedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, residencedomain.ErrInvalidID
	}

	residence, err := s.repo.FindByID(ctx, s.db, residenceID)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, residencedomain.ErrNotFound
	}

	if req.Code != nil {
		code := slug.Make(strings.TrimSpace(*req.Code))
		if code == "" {
			return nil, residencedomain.ErrInvalidCode
		}
		residence.Code = code
	}
	if req.Address != nil {
		residence.Address = strings.TrimSpace(*req.Address)
	}
	if req.Detail != nil {
		residence.Detail = strings.TrimSpace(*req.Detail)
	}
	if req.Active != nil {
		residence.Active = *req.Active
	}

	if req.CustomerID != nil {
		var customerID snowflake.ID
		if strings.TrimSpace(*req.CustomerID) != "" {
			customerID, err = residencedomain.ParseID(strings.TrimSpace(*req.CustomerID))
			if err != nil {
				return nil, residencedomain.ErrInvalidCustomerID
			}
		}
		if customerID != residence.CustomerID {
			pending, err := s.repo.HasPendingBalance(ctx, s.db, residence.ID)
			if err != nil {
				return nil, err
			}
			if pending {
				return nil, residencedomain.ErrPendingBalance
			}
			residence.CustomerID = customerID
		}
	}

	residence.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, residence); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, residencedomain.ErrDuplicateCode
		}
		return nil, err
	}
	return s.toResponse(residence), nil
}

func (s *Service) CreateOverride(ctx context.Context, req residencedomain.OverrideCreateRequest) (*residencedomain.OverrideResponse, error) {
	residenceID, err := residencedomain.ParseID(strings.TrimSpace(req.ResidenceID))
	if err != nil {
		return nil, residencedomain.ErrInvalidID
	}
	catalogItemID, err := residencedomain.ParseID(strings.TrimSpace(req.CatalogItemID))
	if err != nil || catalogItemID == 0 {
		return nil, residencedomain.ErrInvalidCatalogItemID
	}
	if req.Price.IsNegative() {
		return nil, residencedomain.ErrNegativePrice
	}

	residence, err := s.repo.FindByID(ctx, s.db, residenceID)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, residencedomain.ErrNotFound
	}

	existing, err := s.repo.FindActiveOverride(ctx, s.db, residenceID, catalogItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, residencedomain.ErrDuplicateOverride
	}

	now := time.Now().UTC()
	override := &residencedomain.PriceOverride{
		ID:            s.genID.Generate(),
		ResidenceID:   residenceID,
		CatalogItemID: catalogItemID,
		Price:         req.Price,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertOverride(ctx, s.db, override); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, residencedomain.ErrDuplicateOverride
		}
		return nil, err
	}
	return s.toOverrideResponse(override), nil
}

func (s *Service) UpdateOverride(ctx context.Context, req residencedomain.OverrideUpdateRequest) (*residencedomain.OverrideResponse, error) {
	overrideID, err := residencedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, residencedomain.ErrInvalidID
	}

	override, err := s.repo.FindOverrideByID(ctx, s.db, overrideID)
	if err != nil {
		return nil, err
	}
	if override == nil {
		return nil, residencedomain.ErrNotFound
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, residencedomain.ErrNegativePrice
		}
		override.Price = *req.Price
	}
	if req.Active != nil && *req.Active != override.Active {
		if *req.Active {
			existing, err := s.repo.FindActiveOverride(ctx, s.db, override.ResidenceID, override.CatalogItemID)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != override.ID {
				return nil, residencedomain.ErrDuplicateOverride
			}
		}
		override.Active = *req.Active
	}

	override.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateOverride(ctx, s.db, override); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, residencedomain.ErrDuplicateOverride
		}
		return nil, err
	}
	return s.toOverrideResponse(override), nil
}

func (s *Service) ListOverrides(ctx context.Context, residenceID string) ([]residencedomain.OverrideResponse, error) {
	id, err := residencedomain.ParseID(strings.TrimSpace(residenceID))
	if err != nil {
		return nil, residencedomain.ErrInvalidID
	}

	overrides, err := s.repo.ListOverrides(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]residencedomain.OverrideResponse, 0, len(overrides))
	for i := range overrides {
		resp = append(resp, *s.toOverrideResponse(&overrides[i]))
	}
	return resp, nil
}

// resolveMeter returns the residence's active meter, falling back to the most
// recently attached one.
func (s *Service) resolveMeter(ctx context.Context, residenceID snowflake.ID) (*meterdomain.Meter, error) {
	meter, err := s.meterRepo.FindActiveByResidence(ctx, s.db, residenceID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		meter, err = s.meterRepo.FindLatestByResidence(ctx, s.db, residenceID)
		if err != nil {
			return nil, err
		}
	}
	if meter == nil {
		return nil, residencedomain.ErrNoMeter
	}
	return meter, nil
}

func (s *Service) NewReadingSeed(ctx context.Context, residenceID string) (*residencedomain.ReadingSeed, error) {
	id, err := residencedomain.ParseID(strings.TrimSpace(residenceID))
	if err != nil {
		return nil, residencedomain.ErrInvalidID
	}

	residence, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, residencedomain.ErrNotFound
	}

	meter, err := s.resolveMeter(ctx, id)
	if err != nil {
		return nil, err
	}

	initial, err := s.readingRepo.FindInitial(ctx, s.db, meter.ID, 0)
	if err != nil {
		return nil, err
	}
	if initial == nil {
		return &residencedomain.ReadingSeed{
			MeterID:   meter.ID.String(),
			IsInitial: true,
		}, nil
	}

	latest, err := s.readingRepo.FindLatestMonthly(ctx, s.db, meter.ID, 0)
	if err != nil {
		return nil, err
	}

	seed := &residencedomain.ReadingSeed{MeterID: meter.ID.String()}
	if latest == nil {
		now := s.clock.Now()
		seed.Month = int(now.Month())
		seed.Year = now.Year()
		seed.PreviousValue = initial.CurrentValue
	} else {
		seed.Month, seed.Year = readingdomain.NextPeriod(latest.Month, latest.Year)
		seed.PreviousValue = latest.CurrentValue
	}
	return seed, nil
}

func (s *Service) Statement(ctx context.Context, residenceID string) (*residencedomain.StatementResponse, error) {
	id, err := residencedomain.ParseID(strings.TrimSpace(residenceID))
	if err != nil {
		return nil, residencedomain.ErrInvalidID
	}

	residence, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, residencedomain.ErrNotFound
	}

	meter, err := s.resolveMeter(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Statement(ctx, s.db, meter.ID)
	if err != nil {
		return nil, err
	}

	// Rows come oldest first so the balance accumulates chronologically;
	// entries are then flipped newest first for display.
	balance := decimal.Zero
	entries := make([]residencedomain.StatementEntry, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entry := residencedomain.StatementEntry{
			ReadingID:    row.ReadingID.String(),
			IsInitial:    row.IsInitial,
			Month:        row.Month,
			Year:         row.Year,
			CurrentValue: row.CurrentValue,
			Consumption:  row.Consumption,
			TotalCharge:  row.TotalCharge,
			Status:       residencedomain.StatementNotInvoiced,
			Pending:      decimal.Zero,
		}
		if row.InvoiceID != 0 {
			entry.InvoiceID = row.InvoiceID.String()
			switch {
			case row.InvoiceStatus == "posted" && row.AmountPaid.GreaterThanOrEqual(row.InvoiceTotal):
				entry.Status = residencedomain.StatementPaid
			case row.InvoiceStatus == "posted":
				entry.Status = residencedomain.StatementPosted
				entry.Pending = row.LineAmount
			default:
				entry.Status = residencedomain.StatementDraft
			}
		}
		balance = balance.Add(entry.Pending)
		entry.Balance = balance
		entries = append(entries, entry)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return &residencedomain.StatementResponse{
		ResidenceID:    residence.ID.String(),
		MeterID:        meter.ID.String(),
		PendingBalance: balance,
		Entries:        entries,
	}, nil
}

func (s *Service) toResponse(r *residencedomain.Residence) *residencedomain.Response {
	resp := &residencedomain.Response{
		ID:        r.ID.String(),
		Code:      r.Code,
		Address:   r.Address,
		Detail:    r.Detail,
		ProjectID: r.ProjectID.String(),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.CustomerID != 0 {
		resp.CustomerID = r.CustomerID.String()
	}
	return resp
}

func (s *Service) toOverrideResponse(o *residencedomain.PriceOverride) *residencedomain.OverrideResponse {
	return &residencedomain.OverrideResponse{
		ID:            o.ID.String(),
		ResidenceID:   o.ResidenceID.String(),
		CatalogItemID: o.CatalogItemID.String(),
		Price:         o.Price,
		Active:        o.Active,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
