package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/iitsoft/asovec/internal/migration"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	"github.com/iitsoft/asovec/internal/project/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) projectdomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateProject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	allowance := 20.0
	resp, err := svc.Create(ctx, projectdomain.CreateRequest{
		Name:              "Vista Hermosa",
		BaseFee:           decimal.NewFromInt(100),
		UnitPrice:         decimal.NewFromInt(5),
		IncludedAllowance: &allowance,
		InactiveFee:       decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "Vista Hermosa", resp.Name)
	assert.Equal(t, 20.0, resp.IncludedAllowance)

	_, err = svc.Create(ctx, projectdomain.CreateRequest{Name: "Vista Hermosa"})
	assert.ErrorIs(t, err, projectdomain.ErrDuplicateName)

	_, err = svc.Create(ctx, projectdomain.CreateRequest{Name: "   "})
	assert.ErrorIs(t, err, projectdomain.ErrInvalidName)

	_, err = svc.Create(ctx, projectdomain.CreateRequest{
		Name:    "Negative",
		BaseFee: decimal.NewFromInt(-10),
	})
	assert.ErrorIs(t, err, projectdomain.ErrNegativeTariff)
}

func TestUpdateProjectTariff(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, projectdomain.CreateRequest{
		Name:      "Vista Hermosa",
		BaseFee:   decimal.NewFromInt(100),
		UnitPrice: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	unitPrice := decimal.NewFromInt(7)
	resp, err := svc.Update(ctx, projectdomain.UpdateRequest{ID: created.ID, UnitPrice: &unitPrice})
	require.NoError(t, err)
	assert.True(t, resp.UnitPrice.Equal(unitPrice))

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, projectdomain.UpdateRequest{ID: created.ID, InactiveFee: &negative})
	assert.ErrorIs(t, err, projectdomain.ErrNegativeTariff)
}

func TestDeleteProject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, projectdomain.CreateRequest{Name: "Vista Hermosa"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, projectdomain.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, projectdomain.ErrNotFound)
}
