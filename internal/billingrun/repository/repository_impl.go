package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() billingrundomain.Repository {
	return &repo{}
}

const runColumns = `id, project_id, month, year, name, status, total_to_charge,
	metadata, created_at, updated_at`

func (r *repo) InsertRun(ctx context.Context, db *gorm.DB, run *billingrundomain.BillingRun) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO billing_runs (id, project_id, month, year, name, status,
		 total_to_charge, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.ProjectID,
		run.Month,
		run.Year,
		run.Name,
		run.Status,
		run.TotalToCharge,
		run.Metadata,
		run.CreatedAt,
		run.UpdatedAt,
	).Error
}

func (r *repo) UpdateRun(ctx context.Context, db *gorm.DB, run *billingrundomain.BillingRun) error {
	return db.WithContext(ctx).Exec(
		`UPDATE billing_runs
		 SET status = ?, total_to_charge = ?, name = ?, updated_at = ?
		 WHERE id = ?`,
		run.Status,
		run.TotalToCharge,
		run.Name,
		run.UpdatedAt,
		run.ID,
	).Error
}

func (r *repo) FindRunByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingrundomain.BillingRun, error) {
	var run billingrundomain.BillingRun
	err := db.WithContext(ctx).Raw(
		`SELECT `+runColumns+` FROM billing_runs WHERE id = ?`,
		id,
	).Scan(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, nil
	}
	return &run, nil
}

func (r *repo) LockRunByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingrundomain.BillingRun, error) {
	query := `SELECT ` + runColumns + ` FROM billing_runs WHERE id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var run billingrundomain.BillingRun
	err := db.WithContext(ctx).Raw(query, id).Scan(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, nil
	}
	return &run, nil
}

func (r *repo) ListRuns(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]billingrundomain.BillingRun, error) {
	query := `SELECT ` + runColumns + ` FROM billing_runs`
	args := []any{}
	if projectID != 0 {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY year DESC, month DESC, id DESC`

	var runs []billingrundomain.BillingRun
	err := db.WithContext(ctx).Raw(query, args...).Scan(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *repo) FindActivePeriod(ctx context.Context, db *gorm.DB, projectID snowflake.ID, month, year int) (*billingrundomain.BillingRun, error) {
	var run billingrundomain.BillingRun
	err := db.WithContext(ctx).Raw(
		`SELECT `+runColumns+` FROM billing_runs
		 WHERE project_id = ? AND month = ? AND year = ? AND status <> ?
		 LIMIT 1`,
		projectID,
		month,
		year,
		billingrundomain.StatusCancelled,
	).Scan(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, nil
	}
	return &run, nil
}

func (r *repo) InsertLine(ctx context.Context, db *gorm.DB, line *billingrundomain.BillingLine) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO billing_lines (id, run_id, project_id, residence_id,
		 customer_id, invoice_id, amount_total, reading_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		line.ID,
		line.RunID,
		line.ProjectID,
		line.ResidenceID,
		line.CustomerID,
		line.InvoiceID,
		line.AmountTotal,
		line.ReadingStatus,
		line.CreatedAt,
	).Error
}

func (r *repo) DeleteLines(ctx context.Context, db *gorm.DB, runID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM billing_lines WHERE run_id = ?`, runID).Error
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]billingrundomain.BillingLine, error) {
	var lines []billingrundomain.BillingLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, run_id, project_id, residence_id, customer_id, invoice_id,
		 amount_total, reading_status, created_at
		 FROM billing_lines WHERE run_id = ? ORDER BY id ASC`,
		runID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) Statement(ctx context.Context, db *gorm.DB, projectID, residenceID, customerID snowflake.ID) ([]billingrundomain.StatementRow, error) {
	query := `SELECT br.id AS run_id,
	        br.name AS run_name,
	        br.month,
	        br.year,
	        bl.residence_id,
	        bl.customer_id,
	        bl.invoice_id,
	        bl.amount_total,
	        bl.reading_status,
	        COALESCE(inv.status, '') AS invoice_status,
	        COALESCE(inv.total, 0) AS invoice_total,
	        COALESCE(inv.amount_paid, 0) AS amount_paid
	 FROM billing_lines bl
	 JOIN billing_runs br ON br.id = bl.run_id
	 LEFT JOIN invoices inv ON inv.id = bl.invoice_id
	 WHERE br.project_id = ? AND bl.residence_id = ? AND br.status = ?`
	args := []any{projectID, residenceID, billingrundomain.StatusPosted}
	if customerID != 0 {
		query += ` AND bl.customer_id = ?`
		args = append(args, customerID)
	}
	query += ` ORDER BY br.year DESC, br.month DESC`

	var rows []billingrundomain.StatementRow
	err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
