package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	"github.com/iitsoft/asovec/internal/catalog/repository"
	"github.com/iitsoft/asovec/internal/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) catalogdomain.Service {
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

func TestCreateDefaults(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Create(context.Background(), catalogdomain.CreateRequest{
		Name:      "Gardening",
		ListPrice: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.Equal(t, "service", resp.Kind)
	assert.True(t, resp.Active)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, catalogdomain.CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidName)

	_, err = svc.Create(ctx, catalogdomain.CreateRequest{Name: "Bad kind", Kind: "subscription"})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidKind)

	_, err = svc.Create(ctx, catalogdomain.CreateRequest{Name: "Negative", ListPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, catalogdomain.ErrNegativeListPrice)

	_, err = svc.Create(ctx, catalogdomain.CreateRequest{
		Name:                 "Bottled water",
		Kind:                 "good",
		IsAssociationService: true,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrItemNotService)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, catalogdomain.CreateRequest{Name: "Security"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, catalogdomain.CreateRequest{Name: "Security"})
	assert.ErrorIs(t, err, catalogdomain.ErrDuplicateName)
}

func TestWaterTagExclusivity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, catalogdomain.CreateRequest{
		Name:                 "Water base fee",
		IsAssociationService: true,
		WaterDependent:       true,
		BaseWaterFee:         true,
	})
	require.NoError(t, err)
	assert.True(t, first.BaseWaterFee)

	_, err = svc.Create(ctx, catalogdomain.CreateRequest{
		Name:                 "Another base fee",
		IsAssociationService: true,
		WaterDependent:       true,
		BaseWaterFee:         true,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrDuplicateTag)

	// Deactivating the holder frees the tag.
	inactive := false
	_, err = svc.Update(ctx, catalogdomain.UpdateRequest{ID: first.ID, Active: &inactive})
	require.NoError(t, err)

	_, err = svc.Create(ctx, catalogdomain.CreateRequest{
		Name:                 "Another base fee",
		IsAssociationService: true,
		WaterDependent:       true,
		BaseWaterFee:         true,
	})
	assert.NoError(t, err)
}

func TestCreateNormalizesConflictingFlags(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Create(context.Background(), catalogdomain.CreateRequest{
		Name:                 "Conflicted",
		IsAssociationService: true,
		AutoMonthly:          true,
		WaterDependent:       true,
		InactiveMeterFee:     true,
		BaseWaterFee:         true,
	})
	require.NoError(t, err)
	assert.True(t, resp.WaterDependent)
	assert.False(t, resp.AutoMonthly)
	assert.True(t, resp.InactiveMeterFee)
	assert.False(t, resp.BaseWaterFee)
}

func TestUpdateLastToggledFlagWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, catalogdomain.CreateRequest{
		Name:                 "Maintenance",
		IsAssociationService: true,
		AutoMonthly:          true,
	})
	require.NoError(t, err)

	on := true
	resp, err := svc.Update(ctx, catalogdomain.UpdateRequest{ID: item.ID, WaterDependent: &on})
	require.NoError(t, err)
	assert.True(t, resp.WaterDependent)
	assert.False(t, resp.AutoMonthly)

	resp, err = svc.Update(ctx, catalogdomain.UpdateRequest{ID: item.ID, BaseWaterFee: &on})
	require.NoError(t, err)
	assert.True(t, resp.BaseWaterFee)

	resp, err = svc.Update(ctx, catalogdomain.UpdateRequest{ID: item.ID, ExcessWaterFee: &on})
	require.NoError(t, err)
	assert.True(t, resp.ExcessWaterFee)
	assert.False(t, resp.BaseWaterFee)
}
