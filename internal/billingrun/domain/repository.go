package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertRun(ctx context.Context, db *gorm.DB, run *BillingRun) error
	UpdateRun(ctx context.Context, db *gorm.DB, run *BillingRun) error
	FindRunByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingRun, error)
	// LockRunByID loads the run under a write lock so state transitions
	// serialize. On sqlite the lock clause is omitted.
	LockRunByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingRun, error)
	ListRuns(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]BillingRun, error)
	// FindActivePeriod returns the non-cancelled run for a project period.
	FindActivePeriod(ctx context.Context, db *gorm.DB, projectID snowflake.ID, month, year int) (*BillingRun, error)

	InsertLine(ctx context.Context, db *gorm.DB, line *BillingLine) error
	DeleteLines(ctx context.Context, db *gorm.DB, runID snowflake.ID) error
	ListLines(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]BillingLine, error)
	Statement(ctx context.Context, db *gorm.DB, projectID, residenceID, customerID snowflake.ID) ([]StatementRow, error)
}
