package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Journal is the accounting book invoices are registered against. The
// association_charge flag marks the journal monthly billing posts to.
type Journal struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	Code              string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_journals_code"`
	Name              string       `json:"name" gorm:"type:text;not null"`
	Type              string       `json:"type" gorm:"type:text;not null;default:'sale'"`
	AssociationCharge bool         `json:"association_charge" gorm:"not null;default:false"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Journal) TableName() string { return "journals" }
