package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() readingdomain.Repository {
	return &repo{}
}

const selectColumns = `id, meter_id, is_initial, month, year, current_value,
	previous_value, consumption, base_charge, excess_volume, excess_charge,
	total_charge, residence_id, project_id, customer_id, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *readingdomain.MeterReading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO meter_readings (id, meter_id, is_initial, month, year,
		 current_value, previous_value, consumption, base_charge, excess_volume,
		 excess_charge, total_charge, residence_id, project_id, customer_id,
		 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.MeterID,
		m.IsInitial,
		m.Month,
		m.Year,
		m.CurrentValue,
		m.PreviousValue,
		m.Consumption,
		m.BaseCharge,
		m.ExcessVolume,
		m.ExcessCharge,
		m.TotalCharge,
		m.ResidenceID,
		m.ProjectID,
		m.CustomerID,
		m.CreatedAt,
		m.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *readingdomain.MeterReading) error {
	return db.WithContext(ctx).Exec(
		`UPDATE meter_readings
		 SET meter_id = ?, month = ?, year = ?, current_value = ?,
		     previous_value = ?, consumption = ?, base_charge = ?,
		     excess_volume = ?, excess_charge = ?, total_charge = ?,
		     residence_id = ?, project_id = ?, customer_id = ?, updated_at = ?
		 WHERE id = ?`,
		m.MeterID,
		m.Month,
		m.Year,
		m.CurrentValue,
		m.PreviousValue,
		m.Consumption,
		m.BaseCharge,
		m.ExcessVolume,
		m.ExcessCharge,
		m.TotalCharge,
		m.ResidenceID,
		m.ProjectID,
		m.CustomerID,
		m.UpdatedAt,
		m.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM meter_readings WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*readingdomain.MeterReading, error) {
	var reading readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM meter_readings WHERE id = ?`,
		id,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) ListByMeter(ctx context.Context, db *gorm.DB, meterID snowflake.ID) ([]readingdomain.MeterReading, error) {
	var readings []readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM meter_readings
		 WHERE meter_id = ?
		 ORDER BY is_initial DESC, year ASC, month ASC`,
		meterID,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) FindInitial(ctx context.Context, db *gorm.DB, meterID, exceptID snowflake.ID) (*readingdomain.MeterReading, error) {
	var reading readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM meter_readings
		 WHERE meter_id = ? AND is_initial AND id <> ?
		 LIMIT 1`,
		meterID,
		exceptID,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindLatestMonthly(ctx context.Context, db *gorm.DB, meterID, exceptID snowflake.ID) (*readingdomain.MeterReading, error) {
	var reading readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM meter_readings
		 WHERE meter_id = ? AND NOT is_initial AND id <> ?
		 ORDER BY year DESC, month DESC
		 LIMIT 1`,
		meterID,
		exceptID,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, meterID snowflake.ID, month, year int, exceptID snowflake.ID) (*readingdomain.MeterReading, error) {
	var reading readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM meter_readings
		 WHERE meter_id = ? AND NOT is_initial AND month = ? AND year = ? AND id <> ?
		 LIMIT 1`,
		meterID,
		month,
		year,
		exceptID,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindPrecedingMonthly(ctx context.Context, db *gorm.DB, meterID snowflake.ID, month, year int, exceptID snowflake.ID) (*readingdomain.MeterReading, error) {
	var reading readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM meter_readings
		 WHERE meter_id = ? AND NOT is_initial AND id <> ?
		   AND (year < ? OR (year = ? AND month < ?))
		 ORDER BY year DESC, month DESC
		 LIMIT 1`,
		meterID,
		exceptID,
		year,
		year,
		month,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindForResidencePeriod(ctx context.Context, db *gorm.DB, residenceID snowflake.ID, month, year int) (*readingdomain.MeterReading, error) {
	var reading readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM meter_readings
		 WHERE residence_id = ? AND NOT is_initial AND month = ? AND year = ?
		 ORDER BY id DESC
		 LIMIT 1`,
		residenceID,
		month,
		year,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}
