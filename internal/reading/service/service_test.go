package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/iitsoft/asovec/internal/clock"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	meterrepository "github.com/iitsoft/asovec/internal/meter/repository"
	"github.com/iitsoft/asovec/internal/migration"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	projectrepository "github.com/iitsoft/asovec/internal/project/repository"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	"github.com/iitsoft/asovec/internal/reading/repository"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	residencerepository "github.com/iitsoft/asovec/internal/residence/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.FakeClock
	svc       readingdomain.Service
	project   *projectdomain.Project
	residence *residencedomain.Residence
	meter     *meterdomain.Meter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	fakeClock := clock.NewFakeClock(now)

	project := &projectdomain.Project{
		ID:                node.Generate(),
		Name:              "Vista Hermosa",
		BaseFee:           decimal.NewFromInt(100),
		UnitPrice:         decimal.NewFromInt(5),
		IncludedAllowance: 20,
		InactiveFee:       decimal.NewFromInt(50),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, db.Create(project).Error)

	residence := &residencedomain.Residence{
		ID:        node.Generate(),
		Code:      "vh-001",
		ProjectID: project.ID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(residence).Error)

	meter := &meterdomain.Meter{
		ID:          node.Generate(),
		Name:        "M-001",
		ResidenceID: residence.ID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(meter).Error)

	svc := New(Params{
		DB:            db,
		Log:           zaptest.NewLogger(t),
		GenID:         node,
		Clock:         fakeClock,
		Repo:          repository.Provide(),
		MeterRepo:     meterrepository.Provide(),
		ResidenceRepo: residencerepository.Provide(),
		ProjectRepo:   projectrepository.Provide(),
	})

	return &fixture{
		db:        db,
		node:      node,
		clock:     fakeClock,
		svc:       svc,
		project:   project,
		residence: residence,
		meter:     meter,
	}
}

func (f *fixture) registerInitial(t *testing.T, value float64) *readingdomain.Response {
	t.Helper()
	resp, err := f.svc.RegisterInitial(context.Background(), readingdomain.RegisterInitialRequest{
		MeterID: f.meter.ID.String(),
		Value:   value,
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) registerPeriod(t *testing.T, month, year int, value float64) *readingdomain.Response {
	t.Helper()
	resp, err := f.svc.RegisterPeriod(context.Background(), readingdomain.RegisterPeriodRequest{
		MeterID:      f.meter.ID.String(),
		Month:        month,
		Year:         year,
		CurrentValue: value,
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterInitial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.registerInitial(t, 1000)
	assert.True(t, resp.IsInitial)
	assert.Equal(t, 1000.0, resp.CurrentValue)
	assert.True(t, resp.TotalCharge.IsZero())

	_, err := f.svc.RegisterInitial(ctx, readingdomain.RegisterInitialRequest{
		MeterID: f.meter.ID.String(),
		Value:   1100,
	})
	assert.ErrorIs(t, err, readingdomain.ErrDuplicateInitial)
}

func TestRegisterPeriodChargesFromInitial(t *testing.T) {
	f := newFixture(t)

	f.registerInitial(t, 1000)
	resp := f.registerPeriod(t, 1, 2026, 1025)

	assert.Equal(t, 1000.0, resp.PreviousValue)
	assert.Equal(t, 25.0, resp.Consumption)
	assert.True(t, resp.BaseCharge.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 5.0, resp.ExcessVolume)
	assert.True(t, resp.ExcessCharge.Equal(decimal.NewFromInt(25)))
	assert.True(t, resp.TotalCharge.Equal(decimal.NewFromInt(125)))
	assert.Equal(t, f.residence.ID.String(), resp.ResidenceID)
	assert.Equal(t, f.project.ID.String(), resp.ProjectID)
}

func TestRegisterPeriodWithoutInitialStartsAtZero(t *testing.T) {
	f := newFixture(t)

	resp := f.registerPeriod(t, 1, 2026, 15)
	assert.Equal(t, 0.0, resp.PreviousValue)
	assert.Equal(t, 15.0, resp.Consumption)
	assert.True(t, resp.TotalCharge.Equal(decimal.NewFromInt(100)))
}

func TestRegisterPeriodSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.registerInitial(t, 1000)
	f.registerPeriod(t, 1, 2026, 1025)

	t.Run("DuplicatePeriod", func(t *testing.T) {
		_, err := f.svc.RegisterPeriod(ctx, readingdomain.RegisterPeriodRequest{
			MeterID: f.meter.ID.String(), Month: 1, Year: 2026, CurrentValue: 1030,
		})
		assert.ErrorIs(t, err, readingdomain.ErrDuplicatePeriod)
	})

	t.Run("PeriodGap", func(t *testing.T) {
		_, err := f.svc.RegisterPeriod(ctx, readingdomain.RegisterPeriodRequest{
			MeterID: f.meter.ID.String(), Month: 3, Year: 2026, CurrentValue: 1040,
		})
		assert.ErrorIs(t, err, readingdomain.ErrPeriodGap)
	})

	t.Run("BelowPrevious", func(t *testing.T) {
		_, err := f.svc.RegisterPeriod(ctx, readingdomain.RegisterPeriodRequest{
			MeterID: f.meter.ID.String(), Month: 2, Year: 2026, CurrentValue: 1020,
		})
		assert.ErrorIs(t, err, readingdomain.ErrReadingBelowPrevious)
	})

	t.Run("ConsecutiveMonth", func(t *testing.T) {
		resp := f.registerPeriod(t, 2, 2026, 1040)
		assert.Equal(t, 1025.0, resp.PreviousValue)
		assert.Equal(t, 15.0, resp.Consumption)
		assert.True(t, resp.TotalCharge.Equal(decimal.NewFromInt(100)))
	})
}

func TestRegisterPeriodYearWrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.registerInitial(t, 500)
	f.registerPeriod(t, 12, 2025, 520)

	_, err := f.svc.RegisterPeriod(ctx, readingdomain.RegisterPeriodRequest{
		MeterID: f.meter.ID.String(), Month: 12, Year: 2026, CurrentValue: 540,
	})
	assert.ErrorIs(t, err, readingdomain.ErrPeriodGap)

	resp := f.registerPeriod(t, 1, 2026, 540)
	assert.Equal(t, 520.0, resp.PreviousValue)
}

func TestRegisterPeriodValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterPeriod(ctx, readingdomain.RegisterPeriodRequest{
		MeterID: f.meter.ID.String(), Month: 13, Year: 2026, CurrentValue: 10,
	})
	assert.ErrorIs(t, err, readingdomain.ErrMissingPeriod)

	_, err = f.svc.RegisterPeriod(ctx, readingdomain.RegisterPeriodRequest{
		MeterID: f.meter.ID.String(), Month: 2, Year: 0, CurrentValue: 10,
	})
	assert.ErrorIs(t, err, readingdomain.ErrMissingPeriod)

	_, err = f.svc.RegisterPeriod(ctx, readingdomain.RegisterPeriodRequest{
		MeterID: f.node.Generate().String(), Month: 2, Year: 2026, CurrentValue: 10,
	})
	assert.ErrorIs(t, err, readingdomain.ErrMeterNotFound)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.registerInitial(t, 1000)

	preview, err := f.svc.Preview(ctx, readingdomain.RegisterPeriodRequest{
		MeterID: f.meter.ID.String(), Month: 1, Year: 2026, CurrentValue: 1025,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, preview.Consumption)
	assert.True(t, preview.TotalCharge.Equal(decimal.NewFromInt(125)))

	readings, err := f.svc.ListByMeter(ctx, f.meter.ID.String())
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestPreviewClampsNegativeConsumption(t *testing.T) {
	f := newFixture(t)

	f.registerInitial(t, 1000)
	preview, err := f.svc.Preview(context.Background(), readingdomain.RegisterPeriodRequest{
		MeterID: f.meter.ID.String(), Month: 1, Year: 2026, CurrentValue: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, preview.Consumption)
	assert.True(t, preview.TotalCharge.Equal(decimal.NewFromInt(100)))
}

func TestUpdateRecomputesCharges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.registerInitial(t, 1000)
	reading := f.registerPeriod(t, 1, 2026, 1010)

	newValue := 1030.0
	resp, err := f.svc.Update(ctx, readingdomain.UpdateRequest{
		ID:           reading.ID,
		CurrentValue: &newValue,
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, resp.Consumption)
	assert.Equal(t, 10.0, resp.ExcessVolume)
	assert.True(t, resp.TotalCharge.Equal(decimal.NewFromInt(150)))
}

func TestUpdatePeriodChangeRevalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.registerInitial(t, 1000)
	first := f.registerPeriod(t, 1, 2026, 1010)
	f.registerPeriod(t, 2, 2026, 1020)

	month := 2
	_, err := f.svc.Update(ctx, readingdomain.UpdateRequest{
		ID:    first.ID,
		Month: &month,
	})
	assert.ErrorIs(t, err, readingdomain.ErrDuplicatePeriod)
}

func TestUpdateBelowPredecessor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.registerInitial(t, 1000)
	f.registerPeriod(t, 1, 2026, 1010)
	second := f.registerPeriod(t, 2, 2026, 1020)

	newValue := 1005.0
	_, err := f.svc.Update(ctx, readingdomain.UpdateRequest{
		ID:           second.ID,
		CurrentValue: &newValue,
	})
	assert.ErrorIs(t, err, readingdomain.ErrReadingBelowPrevious)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reading := f.registerInitial(t, 1000)
	require.NoError(t, f.svc.Delete(ctx, reading.ID))

	_, err := f.svc.GetByID(ctx, reading.ID)
	assert.ErrorIs(t, err, readingdomain.ErrNotFound)

	err = f.svc.Delete(ctx, reading.ID)
	assert.ErrorIs(t, err, readingdomain.ErrNotFound)
}

func TestNextExpectedPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("NoReadingsUsesClock", func(t *testing.T) {
		resp, err := f.svc.NextExpectedPeriod(ctx, f.meter.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Month)
		assert.Equal(t, 2026, resp.Year)
	})

	t.Run("FollowsLatestReading", func(t *testing.T) {
		f.registerInitial(t, 1000)
		f.registerPeriod(t, 12, 2026, 1010)

		resp, err := f.svc.NextExpectedPeriod(ctx, f.meter.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Month)
		assert.Equal(t, 2027, resp.Year)
	})
}
