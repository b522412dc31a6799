package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *MeterReading) error
	Update(ctx context.Context, db *gorm.DB, reading *MeterReading) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MeterReading, error)
	ListByMeter(ctx context.Context, db *gorm.DB, meterID snowflake.ID) ([]MeterReading, error)
	FindInitial(ctx context.Context, db *gorm.DB, meterID snowflake.ID, exceptID snowflake.ID) (*MeterReading, error)
	// FindLatestMonthly returns the monthly reading with the greatest
	// (year, month), ignoring exceptID when non-zero.
	FindLatestMonthly(ctx context.Context, db *gorm.DB, meterID snowflake.ID, exceptID snowflake.ID) (*MeterReading, error)
	FindByPeriod(ctx context.Context, db *gorm.DB, meterID snowflake.ID, month, year int, exceptID snowflake.ID) (*MeterReading, error)
	// FindPrecedingMonthly returns the monthly reading immediately before the
	// given period in the meter's history, ignoring exceptID when non-zero.
	FindPrecedingMonthly(ctx context.Context, db *gorm.DB, meterID snowflake.ID, month, year int, exceptID snowflake.ID) (*MeterReading, error)
	// FindForResidencePeriod looks up the monthly reading billing uses for a
	// residence and period, regardless of which meter recorded it.
	FindForResidencePeriod(ctx context.Context, db *gorm.DB, residenceID snowflake.ID, month, year int) (*MeterReading, error)
}
