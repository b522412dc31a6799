package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, journal_id, customer_id, date, reference, status,
		 total, amount_paid, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.JournalID,
		inv.CustomerID,
		inv.Date,
		inv.Reference,
		inv.Status,
		inv.Total,
		inv.AmountPaid,
		inv.CreatedAt,
		inv.UpdatedAt,
	).Error
}

func (r *repo) InsertLine(ctx context.Context, db *gorm.DB, line *invoicedomain.InvoiceLine) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoice_lines (id, invoice_id, catalog_item_id, reading_id,
		 description, quantity, unit_price, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		line.ID,
		line.InvoiceID,
		line.CatalogItemID,
		line.ReadingID,
		line.Description,
		line.Quantity,
		line.UnitPrice,
		line.Amount,
		line.CreatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inv *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, total = ?, amount_paid = ?, reference = ?, updated_at = ?
		 WHERE id = ?`,
		inv.Status,
		inv.Total,
		inv.AmountPaid,
		inv.Reference,
		inv.UpdatedAt,
		inv.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id).Error
}

func (r *repo) DeleteLines(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM invoice_lines WHERE invoice_id = ?`, invoiceID).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, journal_id, customer_id, date, reference, status, total,
		 amount_paid, created_at, updated_at
		 FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]invoicedomain.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invoices []invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, journal_id, customer_id, date, reference, status, total,
		 amount_paid, created_at, updated_at
		 FROM invoices WHERE id IN ? ORDER BY id ASC`,
		ids,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]invoicedomain.InvoiceLine, error) {
	var lines []invoicedomain.InvoiceLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, catalog_item_id, reading_id, description,
		 quantity, unit_price, amount, created_at
		 FROM invoice_lines WHERE invoice_id = ? ORDER BY id ASC`,
		invoiceID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
