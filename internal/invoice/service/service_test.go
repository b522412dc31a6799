package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	"github.com/iitsoft/asovec/internal/invoice/repository"
	"github.com/iitsoft/asovec/internal/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (invoicedomain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func draftRequest(node *snowflake.Node) invoicedomain.CreateDraftRequest {
	return invoicedomain.CreateDraftRequest{
		JournalID:  node.Generate(),
		CustomerID: node.Generate(),
		Date:       time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Reference:  "Vista Hermosa - 03/2026 - vh-001",
		Lines: []invoicedomain.LineSpec{
			{
				CatalogItemID: node.Generate(),
				Description:   "Water base fee",
				Quantity:      1,
				UnitPrice:     decimal.NewFromInt(100),
			},
			{
				CatalogItemID: node.Generate(),
				Description:   "Water excess fee",
				Quantity:      5,
				UnitPrice:     decimal.NewFromInt(5),
			},
		},
	}
}

func TestCreateDraftTotals(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateDraft(ctx, nil, draftRequest(node))
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.StatusDraft, invoice.Status)
	assert.True(t, invoice.Total.Equal(decimal.NewFromInt(125)))

	resp, err := svc.GetByID(ctx, invoice.ID.String())
	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.Lines[1].Amount.Equal(decimal.NewFromInt(25)))
	assert.True(t, resp.Residual.Equal(decimal.NewFromInt(125)))
}

func TestPostLifecycle(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateDraft(ctx, nil, draftRequest(node))
	require.NoError(t, err)

	require.NoError(t, svc.Post(ctx, nil, []snowflake.ID{invoice.ID}))

	resp, err := svc.GetByID(ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "posted", resp.Status)

	// Posting again fails: no longer draft.
	err = svc.Post(ctx, nil, []snowflake.ID{invoice.ID})
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotDraft)

	require.NoError(t, svc.ResetToDraft(ctx, nil, []snowflake.ID{invoice.ID}))
	err = svc.ResetToDraft(ctx, nil, []snowflake.ID{invoice.ID})
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotPosted)
}

func TestPostAllOrNothing(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateDraft(ctx, nil, draftRequest(node))
	require.NoError(t, err)
	second, err := svc.CreateDraft(ctx, nil, draftRequest(node))
	require.NoError(t, err)

	require.NoError(t, svc.Post(ctx, nil, []snowflake.ID{first.ID}))

	err = svc.Post(ctx, nil, []snowflake.ID{first.ID, second.ID})
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotDraft)

	resp, err := svc.GetByID(ctx, second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
}

func TestDeleteDraft(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateDraft(ctx, nil, draftRequest(node))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDraft(ctx, nil, invoice.ID))
	_, err = svc.GetByID(ctx, invoice.ID.String())
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)

	posted, err := svc.CreateDraft(ctx, nil, draftRequest(node))
	require.NoError(t, err)
	require.NoError(t, svc.Post(ctx, nil, []snowflake.ID{posted.ID}))
	err = svc.DeleteDraft(ctx, nil, posted.ID)
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotDraft)
}

func TestApplyPayment(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateDraft(ctx, nil, draftRequest(node))
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, invoicedomain.ApplyPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotPosted)

	require.NoError(t, svc.Post(ctx, nil, []snowflake.ID{invoice.ID}))

	resp, err := svc.ApplyPayment(ctx, invoicedomain.ApplyPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.True(t, resp.Residual.Equal(decimal.NewFromInt(75)))

	_, err = svc.ApplyPayment(ctx, invoicedomain.ApplyPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, invoicedomain.ErrPaymentExceedsResidual)

	resp, err = svc.ApplyPayment(ctx, invoicedomain.ApplyPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(75),
	})
	require.NoError(t, err)
	assert.True(t, resp.Residual.IsZero())

	_, err = svc.ApplyPayment(ctx, invoicedomain.ApplyPaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.Zero,
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidAmount)
}
