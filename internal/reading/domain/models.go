package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MeterReading is one row of the append-only reading ledger. Month and Year
// are zero on the initial reading. Residence, project and customer are
// denormalized from the meter's residence at write time so history survives
// later reassignments.
type MeterReading struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	MeterID       snowflake.ID    `json:"meter_id" gorm:"not null;index:ix_meter_readings_meter"`
	IsInitial     bool            `json:"is_initial" gorm:"not null;default:false"`
	Month         int             `json:"month" gorm:"not null;default:0"`
	Year          int             `json:"year" gorm:"not null;default:0"`
	CurrentValue  float64         `json:"current_value" gorm:"not null;default:0"`
	PreviousValue float64         `json:"previous_value" gorm:"not null;default:0"`
	Consumption   float64         `json:"consumption" gorm:"not null;default:0"`
	BaseCharge    decimal.Decimal `json:"base_charge" gorm:"type:numeric(14,2);not null;default:0"`
	ExcessVolume  float64         `json:"excess_volume" gorm:"not null;default:0"`
	ExcessCharge  decimal.Decimal `json:"excess_charge" gorm:"type:numeric(14,2);not null;default:0"`
	TotalCharge   decimal.Decimal `json:"total_charge" gorm:"type:numeric(14,2);not null;default:0"`
	ResidenceID   snowflake.ID    `json:"residence_id" gorm:"not null;index:ix_meter_readings_residence"`
	ProjectID     snowflake.ID    `json:"project_id" gorm:"not null"`
	CustomerID    snowflake.ID    `json:"customer_id" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MeterReading) TableName() string { return "meter_readings" }

// Period returns the reading's billing period.
func (m *MeterReading) Period() (month, year int) { return m.Month, m.Year }

// NextPeriod returns the month that follows the given one, wrapping December
// into January of the next year.
func NextPeriod(month, year int) (int, int) {
	if month >= 12 {
		return 1, year + 1
	}
	return month + 1, year
}
