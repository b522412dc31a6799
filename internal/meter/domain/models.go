package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Meter is a physical water meter attached to a residence. A residence has
// at most one active meter at a time.
type Meter struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	ResidenceID snowflake.ID `json:"residence_id" gorm:"not null;index:ix_meters_residence"`
	Active      bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Meter) TableName() string { return "meters" }
