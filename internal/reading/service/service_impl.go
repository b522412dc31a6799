package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/iitsoft/asovec/internal/clock"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          readingdomain.Repository
	MeterRepo     meterdomain.Repository
	ResidenceRepo residencedomain.Repository
	ProjectRepo   projectdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          readingdomain.Repository
	meterRepo     meterdomain.Repository
	residenceRepo residencedomain.Repository
	projectRepo   projectdomain.Repository
}

func New(p Params) readingdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("reading.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		meterRepo:     p.MeterRepo,
		residenceRepo: p.ResidenceRepo,
		projectRepo:   p.ProjectRepo,
	}
}

// billingContext is the meter's surroundings resolved at write time.
type billingContext struct {
	meter     *meterdomain.Meter
	residence *residencedomain.Residence
	tariff    projectdomain.Tariff
}

// resolve loads the meter under a row lock and walks up to its residence and
// project so charges and denormalized columns reflect the state at write time.
func (s *Service) resolve(ctx context.Context, tx *gorm.DB, meterID snowflake.ID) (*billingContext, error) {
	meter, err := s.meterRepo.LockByID(ctx, tx, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, readingdomain.ErrMeterNotFound
	}

	residence, err := s.residenceRepo.FindByID(ctx, tx, meter.ResidenceID)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, readingdomain.ErrResidenceNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, tx, residence.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, readingdomain.ErrProjectNotFound
	}

	return &billingContext{
		meter:     meter,
		residence: residence,
		tariff:    project.Tariff(),
	}, nil
}

func (s *Service) RegisterInitial(ctx context.Context, req readingdomain.RegisterInitialRequest) (*readingdomain.Response, error) {
	meterID, err := readingdomain.ParseID(strings.TrimSpace(req.MeterID))
	if err != nil {
		return nil, readingdomain.ErrInvalidMeterID
	}

	var reading *readingdomain.MeterReading
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bctx, err := s.resolve(ctx, tx, meterID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindInitial(ctx, tx, meterID, 0)
		if err != nil {
			return err
		}
		if existing != nil {
			return readingdomain.ErrDuplicateInitial
		}

		now := time.Now().UTC()
		charges := readingdomain.ZeroCharges()
		reading = &readingdomain.MeterReading{
			ID:           s.genID.Generate(),
			MeterID:      meterID,
			IsInitial:    true,
			CurrentValue: req.Value,
			BaseCharge:   charges.Base,
			ExcessCharge: charges.ExcessCharge,
			TotalCharge:  charges.Total,
			ResidenceID:  bctx.residence.ID,
			ProjectID:    bctx.residence.ProjectID,
			CustomerID:   bctx.residence.CustomerID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.repo.Insert(ctx, tx, reading)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(reading), nil
}

func (s *Service) RegisterPeriod(ctx context.Context, req readingdomain.RegisterPeriodRequest) (*readingdomain.Response, error) {
	meterID, err := readingdomain.ParseID(strings.TrimSpace(req.MeterID))
	if err != nil {
		return nil, readingdomain.ErrInvalidMeterID
	}
	if req.Month < 1 || req.Month > 12 || req.Year == 0 {
		return nil, readingdomain.ErrMissingPeriod
	}

	var reading *readingdomain.MeterReading
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bctx, err := s.resolve(ctx, tx, meterID)
		if err != nil {
			return err
		}

		previous, err := s.validateSequence(ctx, tx, meterID, req.Month, req.Year, 0)
		if err != nil {
			return err
		}
		if req.CurrentValue < previous {
			return readingdomain.ErrReadingBelowPrevious
		}

		consumption := req.CurrentValue - previous
		charges := readingdomain.ComputeCharges(bctx.tariff, consumption)

		now := time.Now().UTC()
		reading = &readingdomain.MeterReading{
			ID:            s.genID.Generate(),
			MeterID:       meterID,
			Month:         req.Month,
			Year:          req.Year,
			CurrentValue:  req.CurrentValue,
			PreviousValue: previous,
			Consumption:   consumption,
			BaseCharge:    charges.Base,
			ExcessVolume:  charges.ExcessVolume,
			ExcessCharge:  charges.ExcessCharge,
			TotalCharge:   charges.Total,
			ResidenceID:   bctx.residence.ID,
			ProjectID:     bctx.residence.ProjectID,
			CustomerID:    bctx.residence.CustomerID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return s.repo.Insert(ctx, tx, reading)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(reading), nil
}

// validateSequence runs the duplicate-period and gap checks for a period on
// the meter and returns the resolved previous value.
func (s *Service) validateSequence(ctx context.Context, tx *gorm.DB, meterID snowflake.ID, month, year int, exceptID snowflake.ID) (float64, error) {
	duplicate, err := s.repo.FindByPeriod(ctx, tx, meterID, month, year, exceptID)
	if err != nil {
		return 0, err
	}
	if duplicate != nil {
		return 0, readingdomain.ErrDuplicatePeriod
	}

	latest, err := s.repo.FindLatestMonthly(ctx, tx, meterID, exceptID)
	if err != nil {
		return 0, err
	}
	if latest != nil {
		nextMonth, nextYear := readingdomain.NextPeriod(latest.Month, latest.Year)
		if month != nextMonth || year != nextYear {
			return 0, readingdomain.ErrPeriodGap
		}
		return latest.CurrentValue, nil
	}

	initial, err := s.repo.FindInitial(ctx, tx, meterID, exceptID)
	if err != nil {
		return 0, err
	}
	if initial != nil {
		return initial.CurrentValue, nil
	}
	return 0, nil
}

func (s *Service) Preview(ctx context.Context, req readingdomain.RegisterPeriodRequest) (*readingdomain.PreviewResponse, error) {
	meterID, err := readingdomain.ParseID(strings.TrimSpace(req.MeterID))
	if err != nil {
		return nil, readingdomain.ErrInvalidMeterID
	}

	meter, err := s.meterRepo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, readingdomain.ErrMeterNotFound
	}

	residence, err := s.residenceRepo.FindByID(ctx, s.db, meter.ResidenceID)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, readingdomain.ErrResidenceNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, s.db, residence.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, readingdomain.ErrProjectNotFound
	}

	previous, err := s.resolvePrevious(ctx, s.db, meterID, 0)
	if err != nil {
		return nil, err
	}

	consumption := req.CurrentValue - previous
	if consumption < 0 {
		consumption = 0
	}
	charges := readingdomain.ComputeCharges(project.Tariff(), consumption)

	return &readingdomain.PreviewResponse{
		MeterID:       meterID.String(),
		Month:         req.Month,
		Year:          req.Year,
		CurrentValue:  req.CurrentValue,
		PreviousValue: previous,
		Consumption:   consumption,
		BaseCharge:    charges.Base,
		ExcessVolume:  charges.ExcessVolume,
		ExcessCharge:  charges.ExcessCharge,
		TotalCharge:   charges.Total,
	}, nil
}

// resolvePrevious returns the value the next reading continues from.
func (s *Service) resolvePrevious(ctx context.Context, db *gorm.DB, meterID, exceptID snowflake.ID) (float64, error) {
	latest, err := s.repo.FindLatestMonthly(ctx, db, meterID, exceptID)
	if err != nil {
		return 0, err
	}
	if latest != nil {
		return latest.CurrentValue, nil
	}

	initial, err := s.repo.FindInitial(ctx, db, meterID, exceptID)
	if err != nil {
		return 0, err
	}
	if initial != nil {
		return initial.CurrentValue, nil
	}
	return 0, nil
}

func (s *Service) Update(ctx context.Context, req readingdomain.UpdateRequest) (*readingdomain.Response, error) {
	readingID, err := readingdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, readingdomain.ErrInvalidID
	}

	var reading *readingdomain.MeterReading
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reading, err = s.repo.FindByID(ctx, tx, readingID)
		if err != nil {
			return err
		}
		if reading == nil {
			return readingdomain.ErrNotFound
		}

		targetMeterID := reading.MeterID
		if req.MeterID != nil {
			targetMeterID, err = readingdomain.ParseID(strings.TrimSpace(*req.MeterID))
			if err != nil {
				return readingdomain.ErrInvalidMeterID
			}
		}

		bctx, err := s.resolve(ctx, tx, targetMeterID)
		if err != nil {
			return err
		}

		month, year := reading.Month, reading.Year
		if req.Month != nil {
			month = *req.Month
		}
		if req.Year != nil {
			year = *req.Year
		}
		periodChanged := month != reading.Month || year != reading.Year
		meterChanged := targetMeterID != reading.MeterID

		if reading.IsInitial {
			if meterChanged {
				existing, err := s.repo.FindInitial(ctx, tx, targetMeterID, reading.ID)
				if err != nil {
					return err
				}
				if existing != nil {
					return readingdomain.ErrDuplicateInitial
				}
			}
			if req.CurrentValue != nil {
				reading.CurrentValue = *req.CurrentValue
			}
		} else {
			if month < 1 || month > 12 || year == 0 {
				return readingdomain.ErrMissingPeriod
			}
			if periodChanged || meterChanged {
				if _, err := s.validateSequence(ctx, tx, targetMeterID, month, year, reading.ID); err != nil {
					return err
				}
			}

			previous, err := s.precedingValue(ctx, tx, targetMeterID, month, year, reading.ID)
			if err != nil {
				return err
			}

			current := reading.CurrentValue
			if req.CurrentValue != nil {
				current = *req.CurrentValue
			}
			if current < previous {
				return readingdomain.ErrReadingBelowPrevious
			}

			consumption := current - previous
			charges := readingdomain.ComputeCharges(bctx.tariff, consumption)
			reading.Month = month
			reading.Year = year
			reading.CurrentValue = current
			reading.PreviousValue = previous
			reading.Consumption = consumption
			reading.BaseCharge = charges.Base
			reading.ExcessVolume = charges.ExcessVolume
			reading.ExcessCharge = charges.ExcessCharge
			reading.TotalCharge = charges.Total
		}

		reading.MeterID = targetMeterID
		reading.ResidenceID = bctx.residence.ID
		reading.ProjectID = bctx.residence.ProjectID
		reading.CustomerID = bctx.residence.CustomerID
		reading.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, reading)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(reading), nil
}

// precedingValue resolves the chain predecessor for a row sitting at the
// given period, falling back to the initial reading and then zero.
func (s *Service) precedingValue(ctx context.Context, tx *gorm.DB, meterID snowflake.ID, month, year int, exceptID snowflake.ID) (float64, error) {
	preceding, err := s.repo.FindPrecedingMonthly(ctx, tx, meterID, month, year, exceptID)
	if err != nil {
		return 0, err
	}
	if preceding != nil {
		return preceding.CurrentValue, nil
	}

	initial, err := s.repo.FindInitial(ctx, tx, meterID, exceptID)
	if err != nil {
		return 0, err
	}
	if initial != nil {
		return initial.CurrentValue, nil
	}
	return 0, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	readingID, err := readingdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return readingdomain.ErrInvalidID
	}

	reading, err := s.repo.FindByID(ctx, s.db, readingID)
	if err != nil {
		return err
	}
	if reading == nil {
		return readingdomain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, readingID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*readingdomain.Response, error) {
	readingID, err := readingdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, readingdomain.ErrInvalidID
	}

	reading, err := s.repo.FindByID(ctx, s.db, readingID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, readingdomain.ErrNotFound
	}
	return s.toResponse(reading), nil
}

func (s *Service) ListByMeter(ctx context.Context, meterID string) ([]readingdomain.Response, error) {
	id, err := readingdomain.ParseID(strings.TrimSpace(meterID))
	if err != nil {
		return nil, readingdomain.ErrInvalidMeterID
	}

	readings, err := s.repo.ListByMeter(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]readingdomain.Response, 0, len(readings))
	for i := range readings {
		resp = append(resp, *s.toResponse(&readings[i]))
	}
	return resp, nil
}

func (s *Service) NextExpectedPeriod(ctx context.Context, meterID string) (*readingdomain.PeriodResponse, error) {
	id, err := readingdomain.ParseID(strings.TrimSpace(meterID))
	if err != nil {
		return nil, readingdomain.ErrInvalidMeterID
	}

	meter, err := s.meterRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, readingdomain.ErrMeterNotFound
	}

	latest, err := s.repo.FindLatestMonthly(ctx, s.db, id, 0)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		now := s.clock.Now()
		return &readingdomain.PeriodResponse{Month: int(now.Month()), Year: now.Year()}, nil
	}

	month, year := readingdomain.NextPeriod(latest.Month, latest.Year)
	return &readingdomain.PeriodResponse{Month: month, Year: year}, nil
}

func (s *Service) toResponse(m *readingdomain.MeterReading) *readingdomain.Response {
	resp := &readingdomain.Response{
		ID:            m.ID.String(),
		MeterID:       m.MeterID.String(),
		IsInitial:     m.IsInitial,
		Month:         m.Month,
		Year:          m.Year,
		CurrentValue:  m.CurrentValue,
		PreviousValue: m.PreviousValue,
		Consumption:   m.Consumption,
		BaseCharge:    m.BaseCharge,
		ExcessVolume:  m.ExcessVolume,
		ExcessCharge:  m.ExcessCharge,
		TotalCharge:   m.TotalCharge,
		ResidenceID:   m.ResidenceID.String(),
		ProjectID:     m.ProjectID.String(),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.CustomerID != 0 {
		resp.CustomerID = m.CustomerID.String()
	}
	return resp
}
