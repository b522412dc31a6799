package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
	"github.com/iitsoft/asovec/internal/billingrun/repository"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	catalogrepository "github.com/iitsoft/asovec/internal/catalog/repository"
	"github.com/iitsoft/asovec/internal/clock"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	invoicerepository "github.com/iitsoft/asovec/internal/invoice/repository"
	invoiceservice "github.com/iitsoft/asovec/internal/invoice/service"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	journalrepository "github.com/iitsoft/asovec/internal/journal/repository"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	"github.com/iitsoft/asovec/internal/migration"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	projectrepository "github.com/iitsoft/asovec/internal/project/repository"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	readingrepository "github.com/iitsoft/asovec/internal/reading/repository"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	residencerepository "github.com/iitsoft/asovec/internal/residence/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	svc      billingrundomain.Service
	invoices invoicedomain.Service

	project   *projectdomain.Project
	journal   *journaldomain.Journal
	baseItem  *catalogdomain.CatalogItem
	excess    *catalogdomain.CatalogItem
	inactive  *catalogdomain.CatalogItem
	residence *residencedomain.Residence
	meter     *meterdomain.Meter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fakeClock := clock.NewFakeClock(time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC))

	invoices := invoiceservice.New(invoiceservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  invoicerepository.Provide(),
	})

	svc := New(Params{
		DB:            db,
		Log:           log,
		GenID:         node,
		Clock:         fakeClock,
		Repo:          repository.Provide(),
		ProjectRepo:   projectrepository.Provide(),
		ResidenceRepo: residencerepository.Provide(),
		CatalogRepo:   catalogrepository.Provide(),
		JournalRepo:   journalrepository.Provide(),
		ReadingRepo:   readingrepository.Provide(),
		InvoiceRepo:   invoicerepository.Provide(),
		Invoices:      invoices,
	})

	f := &fixture{db: db, node: node, svc: svc, invoices: invoices}
	f.seed(t)
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()

	f.journal = &journaldomain.Journal{
		ID:                f.node.Generate(),
		Code:              "ASOC",
		Name:              "Association Charges",
		Type:              "sale",
		AssociationCharge: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, f.db.Create(f.journal).Error)

	newItem := func(name string, mutate func(*catalogdomain.CatalogItem)) *catalogdomain.CatalogItem {
		item := &catalogdomain.CatalogItem{
			ID:                   f.node.Generate(),
			Name:                 name,
			Kind:                 catalogdomain.KindService,
			ListPrice:            decimal.Zero,
			IsAssociationService: true,
			Active:               true,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		mutate(item)
		require.NoError(t, f.db.Create(item).Error)
		return item
	}

	f.baseItem = newItem("Water base fee", func(i *catalogdomain.CatalogItem) {
		i.WaterDependent = true
		i.BaseWaterFee = true
	})
	f.excess = newItem("Water excess fee", func(i *catalogdomain.CatalogItem) {
		i.WaterDependent = true
		i.ExcessWaterFee = true
	})
	f.inactive = newItem("Inactive meter fee", func(i *catalogdomain.CatalogItem) {
		i.WaterDependent = true
		i.InactiveMeterFee = true
	})

	f.project = &projectdomain.Project{
		ID:                f.node.Generate(),
		Name:              "Vista Hermosa",
		BaseFee:           decimal.NewFromInt(100),
		UnitPrice:         decimal.NewFromInt(5),
		IncludedAllowance: 20,
		InactiveFee:       decimal.NewFromInt(50),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, f.db.Create(f.project).Error)

	f.residence = &residencedomain.Residence{
		ID:         f.node.Generate(),
		Code:       "vh-001",
		ProjectID:  f.project.ID,
		CustomerID: f.node.Generate(),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.db.Create(f.residence).Error)

	f.meter = &meterdomain.Meter{
		ID:          f.node.Generate(),
		Name:        "M-001",
		ResidenceID: f.residence.ID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.db.Create(f.meter).Error)
}

func (f *fixture) addMonthlyItem(t *testing.T, name string, price decimal.Decimal) *catalogdomain.CatalogItem {
	t.Helper()
	now := time.Now().UTC()
	item := &catalogdomain.CatalogItem{
		ID:                   f.node.Generate(),
		Name:                 name,
		Kind:                 catalogdomain.KindService,
		ListPrice:            price,
		IsAssociationService: true,
		AutoMonthly:          true,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func (f *fixture) addReading(t *testing.T, residence *residencedomain.Residence, meterID snowflake.ID, month, year int, base, excess decimal.Decimal) *readingdomain.MeterReading {
	t.Helper()
	now := time.Now().UTC()
	reading := &readingdomain.MeterReading{
		ID:           f.node.Generate(),
		MeterID:      meterID,
		Month:        month,
		Year:         year,
		BaseCharge:   base,
		ExcessCharge: excess,
		TotalCharge:  base.Add(excess),
		ResidenceID:  residence.ID,
		ProjectID:    residence.ProjectID,
		CustomerID:   residence.CustomerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.db.Create(reading).Error)
	return reading
}

func (f *fixture) createRun(t *testing.T, month, year int) *billingrundomain.Response {
	t.Helper()
	run, err := f.svc.Create(context.Background(), billingrundomain.CreateRequest{
		ProjectID: f.project.ID.String(),
		Month:     month,
		Year:      year,
	})
	require.NoError(t, err)
	return run
}

func TestCreateRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	run := f.createRun(t, 3, 2026)
	assert.Equal(t, "Vista Hermosa - 03/2026", run.Name)
	assert.Equal(t, "draft", run.Status)

	_, err := f.svc.Create(ctx, billingrundomain.CreateRequest{
		ProjectID: f.project.ID.String(), Month: 3, Year: 2026,
	})
	assert.ErrorIs(t, err, billingrundomain.ErrDuplicatePeriod)

	_, err = f.svc.Create(ctx, billingrundomain.CreateRequest{
		ProjectID: f.project.ID.String(), Month: 13, Year: 2026,
	})
	assert.ErrorIs(t, err, billingrundomain.ErrInvalidPeriod)
}

func TestCancelledRunFreesPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	run := f.createRun(t, 3, 2026)
	_, err := f.svc.Cancel(ctx, run.ID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, billingrundomain.CreateRequest{
		ProjectID: f.project.ID.String(), Month: 3, Year: 2026,
	})
	assert.NoError(t, err)
}

func TestGenerateWithReading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	reading := f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.NewFromInt(25))
	run := f.createRun(t, 3, 2026)

	resp, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, billingrundomain.ReadingValid, resp.Lines[0].ReadingStatus)
	// Maintenance 50 + base 100 + excess 25.
	assert.True(t, resp.TotalToCharge.Equal(decimal.NewFromInt(175)))

	invoice, err := f.invoices.GetByID(ctx, resp.Lines[0].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "draft", invoice.Status)
	assert.Equal(t, "Vista Hermosa - 03/2026 - vh-001", invoice.Reference)
	require.Len(t, invoice.Lines, 3)

	var readingLinked int
	for _, line := range invoice.Lines {
		if line.ReadingID == reading.ID.String() {
			readingLinked++
		}
	}
	assert.Equal(t, 2, readingLinked)
}

func TestGenerateWithoutReadingFallsBackToProjectFee(t *testing.T) {
	f := newFixture(t)

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	run := f.createRun(t, 3, 2026)

	resp, err := f.svc.Generate(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, billingrundomain.ReadingMissing, resp.Lines[0].ReadingStatus)
	// Maintenance 50 + project base fee 100, no excess line.
	assert.True(t, resp.TotalToCharge.Equal(decimal.NewFromInt(150)))
}

func TestGenerateInactiveResidence(t *testing.T) {
	f := newFixture(t)

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	require.NoError(t, f.db.Model(f.residence).Update("active", false).Error)
	run := f.createRun(t, 3, 2026)

	resp, err := f.svc.Generate(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, billingrundomain.ReadingInactive, resp.Lines[0].ReadingStatus)
	// Maintenance 50 + inactive meter fee 50.
	assert.True(t, resp.TotalToCharge.Equal(decimal.NewFromInt(100)))
}

func TestGenerateZeroPriceSuppressesMonthlyLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&residencedomain.PriceOverride{
		ID:            f.node.Generate(),
		ResidenceID:   f.residence.ID,
		CatalogItemID: item.ID,
		Price:         decimal.Zero,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.Zero)
	run := f.createRun(t, 3, 2026)

	resp, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)
	// Only the base water line remains.
	assert.True(t, resp.TotalToCharge.Equal(decimal.NewFromInt(100)))

	invoice, err := f.invoices.GetByID(ctx, resp.Lines[0].InvoiceID)
	require.NoError(t, err)
	assert.Len(t, invoice.Lines, 1)
}

func TestGeneratePriceOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&residencedomain.PriceOverride{
		ID:            f.node.Generate(),
		ResidenceID:   f.residence.ID,
		CatalogItemID: item.ID,
		Price:         decimal.NewFromInt(30),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.Zero)
	run := f.createRun(t, 3, 2026)

	resp, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)
	// Overridden 30 + base 100.
	assert.True(t, resp.TotalToCharge.Equal(decimal.NewFromInt(130)))
}

func TestGeneratePreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("NoAutoBilledItems", func(t *testing.T) {
		run := f.createRun(t, 1, 2026)
		_, err := f.svc.Generate(ctx, run.ID)
		assert.ErrorIs(t, err, billingrundomain.ErrNoAutoBilledItems)
	})

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))

	t.Run("MissingJournal", func(t *testing.T) {
		require.NoError(t, f.db.Model(f.journal).Update("association_charge", false).Error)
		run := f.createRun(t, 2, 2026)
		_, err := f.svc.Generate(ctx, run.ID)
		assert.ErrorIs(t, err, billingrundomain.ErrMissingJournal)
		require.NoError(t, f.db.Model(f.journal).Update("association_charge", true).Error)
	})

	t.Run("ResidenceMissingCustomer", func(t *testing.T) {
		require.NoError(t, f.db.Model(f.residence).Update("customer_id", 0).Error)
		run := f.createRun(t, 3, 2026)
		_, err := f.svc.Generate(ctx, run.ID)
		assert.ErrorIs(t, err, billingrundomain.ErrResidenceMissingCustomer)
		require.NoError(t, f.db.Model(f.residence).Update("customer_id", f.residence.CustomerID).Error)
	})
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.NewFromInt(25))
	run := f.createRun(t, 3, 2026)

	first, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)
	second, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)

	assert.True(t, first.TotalToCharge.Equal(second.TotalToCharge))
	require.Len(t, second.Lines, 1)

	// The first generation's draft invoice is gone.
	_, err = f.invoices.GetByID(ctx, first.Lines[0].InvoiceID)
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)

	var lineCount int64
	require.NoError(t, f.db.Model(&billingrundomain.BillingLine{}).Where("run_id = ?", run.ID).Count(&lineCount).Error)
	assert.Equal(t, int64(1), lineCount)
}

func TestConfirmAndReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.NewFromInt(25))
	run := f.createRun(t, 3, 2026)

	generated, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "posted", confirmed.Status)

	invoice, err := f.invoices.GetByID(ctx, generated.Lines[0].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "posted", invoice.Status)

	_, err = f.svc.Confirm(ctx, run.ID)
	assert.ErrorIs(t, err, billingrundomain.ErrNotDraft)
	_, err = f.svc.Generate(ctx, run.ID)
	assert.ErrorIs(t, err, billingrundomain.ErrNotDraft)

	reset, err := f.svc.ResetToDraft(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", reset.Status)

	invoice, err = f.invoices.GetByID(ctx, generated.Lines[0].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "draft", invoice.Status)
}

func TestCancelRemovesDraftInvoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.Zero)
	run := f.createRun(t, 3, 2026)

	generated, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.True(t, cancelled.TotalToCharge.IsZero())

	_, err = f.invoices.GetByID(ctx, generated.Lines[0].InvoiceID)
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)
}

func TestCancelBlockedByPostedInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.Zero)
	run := f.createRun(t, 3, 2026)

	generated, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)

	invoiceID, err := invoicedomain.ParseID(generated.Lines[0].InvoiceID)
	require.NoError(t, err)
	require.NoError(t, f.invoices.Post(ctx, nil, []snowflake.ID{invoiceID}))

	_, err = f.svc.Cancel(ctx, run.ID)
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotDraft)
}

func TestStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.NewFromInt(25))
	run := f.createRun(t, 3, 2026)

	_, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, run.ID)
	require.NoError(t, err)

	t.Run("WrongProject", func(t *testing.T) {
		_, err := f.svc.Statement(ctx, billingrundomain.StatementRequest{
			ProjectID:   f.node.Generate().String(),
			ResidenceID: f.residence.ID.String(),
		})
		assert.ErrorIs(t, err, billingrundomain.ErrResidenceNotInProject)
	})

	statement, err := f.svc.Statement(ctx, billingrundomain.StatementRequest{
		ProjectID:   f.project.ID.String(),
		ResidenceID: f.residence.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, statement.Entries, 1)
	entry := statement.Entries[0]
	assert.Equal(t, "Vista Hermosa - 03/2026", entry.RunName)
	assert.Equal(t, billingrundomain.ReadingValid, entry.ReadingStatus)
	assert.Equal(t, "posted", entry.InvoiceStatus)
	assert.True(t, entry.AmountTotal.Equal(decimal.NewFromInt(175)))
	assert.True(t, entry.Residual.Equal(decimal.NewFromInt(175)))

	t.Run("OnlyCurrentCustomer", func(t *testing.T) {
		// Settle and hand the residence to a new customer; the filtered
		// statement hides the previous customer's run.
		invoiceID, err := invoicedomain.ParseID(statement.Entries[0].InvoiceID)
		require.NoError(t, err)
		_, err = f.invoices.ApplyPayment(ctx, invoicedomain.ApplyPaymentRequest{
			InvoiceID: invoiceID.String(),
			Amount:    decimal.NewFromInt(175),
		})
		require.NoError(t, err)
		require.NoError(t, f.db.Model(f.residence).Update("customer_id", f.node.Generate()).Error)

		filtered, err := f.svc.Statement(ctx, billingrundomain.StatementRequest{
			ProjectID:           f.project.ID.String(),
			ResidenceID:         f.residence.ID.String(),
			OnlyCurrentCustomer: true,
		})
		require.NoError(t, err)
		assert.Empty(t, filtered.Entries)
	})
}

func (f *fixture) addResidence(t *testing.T, code string, active bool) *residencedomain.Residence {
	t.Helper()
	now := time.Now().UTC()
	residence := &residencedomain.Residence{
		ID:         f.node.Generate(),
		Code:       code,
		ProjectID:  f.project.ID,
		CustomerID: f.node.Generate(),
		Active:     active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.db.Create(residence).Error)
	require.NoError(t, f.db.Create(&meterdomain.Meter{
		ID:          f.node.Generate(),
		Name:        "M-" + code,
		ResidenceID: residence.ID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)
	return residence
}

func TestGenerateMixedResidences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	f.addReading(t, f.residence, f.meter.ID, 3, 2026, decimal.NewFromInt(100), decimal.NewFromInt(25))
	vacant := f.addResidence(t, "vh-002", false)
	run := f.createRun(t, 3, 2026)

	generated, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)

	// Batch total is the sum of both invoices: 175 metered + 100 inactive.
	assert.True(t, generated.TotalToCharge.Equal(decimal.NewFromInt(275)))
	require.Len(t, generated.Lines, 2)

	byResidence := map[string]billingrundomain.LineResponse{}
	for _, line := range generated.Lines {
		byResidence[line.ResidenceID] = line
	}

	metered := byResidence[f.residence.ID.String()]
	assert.Equal(t, billingrundomain.ReadingValid, metered.ReadingStatus)
	assert.True(t, metered.AmountTotal.Equal(decimal.NewFromInt(175)))

	inactive := byResidence[vacant.ID.String()]
	assert.Equal(t, billingrundomain.ReadingInactive, inactive.ReadingStatus)
	assert.True(t, inactive.AmountTotal.Equal(decimal.NewFromInt(100)))

	for _, line := range generated.Lines {
		invoice, err := f.invoices.GetByID(ctx, line.InvoiceID)
		require.NoError(t, err)
		assert.Equal(t, "draft", invoice.Status)
		assert.True(t, invoice.Total.Equal(line.AmountTotal))
	}
}

func TestConfirmMixedInvoiceStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMonthlyItem(t, "Maintenance", decimal.NewFromInt(50))
	f.addResidence(t, "vh-002", true)
	run := f.createRun(t, 3, 2026)

	generated, err := f.svc.Generate(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, generated.Lines, 2)

	firstID, err := invoicedomain.ParseID(generated.Lines[0].InvoiceID)
	require.NoError(t, err)
	require.NoError(t, f.invoices.Post(ctx, nil, []snowflake.ID{firstID}))

	// One already-posted invoice blocks the confirm; nothing else moves.
	_, err = f.svc.Confirm(ctx, run.ID)
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotDraft)

	second, err := f.invoices.GetByID(ctx, generated.Lines[1].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "draft", second.Status)

	reloaded, err := f.svc.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", reloaded.Status)
}
