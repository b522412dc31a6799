package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	"github.com/iitsoft/asovec/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.AutoMigrate(db))
	return db
}

func TestEnsureDefaults(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, EnsureDefaults(db))

	var journals []journaldomain.Journal
	require.NoError(t, db.Where("association_charge = ?", true).Find(&journals).Error)
	require.Len(t, journals, 1)
	assert.Equal(t, "ASOC", journals[0].Code)

	var items []catalogdomain.CatalogItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.True(t, item.IsAssociationService)
		assert.True(t, item.WaterDependent)
		_, tagged := item.WaterTagOf()
		assert.True(t, tagged)
	}
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, EnsureDefaults(db))
	require.NoError(t, EnsureDefaults(db))

	var journalCount, itemCount int64
	require.NoError(t, db.Model(&journaldomain.Journal{}).Count(&journalCount).Error)
	require.NoError(t, db.Model(&catalogdomain.CatalogItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), journalCount)
	assert.Equal(t, int64(3), itemCount)
}
