// Package migration keeps the service usable out of the box: postgres gets
// the embedded SQL migrations, other dialects fall back to AutoMigrate plus
// the partial unique indexes declared below.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	customerdomain "github.com/iitsoft/asovec/internal/customer/domain"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

// RunMigrations applies the embedded SQL migrations against postgres.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// partialIndexes mirror the constraints of the SQL migrations for dialects
// that go through AutoMigrate. sqlite supports partial indexes natively.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_catalog_items_inactive_meter_fee
	 ON catalog_items (inactive_meter_fee) WHERE inactive_meter_fee AND active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_catalog_items_base_water_fee
	 ON catalog_items (base_water_fee) WHERE base_water_fee AND active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_catalog_items_excess_water_fee
	 ON catalog_items (excess_water_fee) WHERE excess_water_fee AND active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_meter_readings_initial
	 ON meter_readings (meter_id) WHERE is_initial`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_meter_readings_period
	 ON meter_readings (meter_id, month, year) WHERE NOT is_initial`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_price_overrides_item
	 ON price_overrides (residence_id, catalog_item_id) WHERE active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_billing_runs_period
	 ON billing_runs (project_id, month, year) WHERE status <> 'cancelled'`,
}

// AutoMigrate builds the schema through gorm. Used for sqlite and mysql, and
// by the test suites.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&projectdomain.Project{},
		&customerdomain.Customer{},
		&residencedomain.Residence{},
		&residencedomain.PriceOverride{},
		&catalogdomain.CatalogItem{},
		&journaldomain.Journal{},
		&meterdomain.Meter{},
		&readingdomain.MeterReading{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
		&billingrundomain.BillingRun{},
		&billingrundomain.BillingLine{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() == "mysql" {
		// mysql has no partial indexes; exclusivity is enforced in services.
		return nil
	}
	for _, ddl := range partialIndexes {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
