package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  invoicedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  invoicedomain.Repository
	genID *snowflake.Node
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

// conn picks the caller's transaction when one was handed in.
func (s *Service) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *Service) CreateDraft(ctx context.Context, tx *gorm.DB, req invoicedomain.CreateDraftRequest) (*invoicedomain.Invoice, error) {
	db := s.conn(tx)
	now := time.Now().UTC()

	total := decimal.Zero
	for i := range req.Lines {
		amount := req.Lines[i].UnitPrice.Mul(decimal.NewFromFloat(req.Lines[i].Quantity))
		total = total.Add(amount)
	}

	invoice := &invoicedomain.Invoice{
		ID:         s.genID.Generate(),
		JournalID:  req.JournalID,
		CustomerID: req.CustomerID,
		Date:       req.Date,
		Reference:  req.Reference,
		Status:     invoicedomain.StatusDraft,
		Total:      total,
		AmountPaid: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, db, invoice); err != nil {
		return nil, err
	}

	for i := range req.Lines {
		spec := &req.Lines[i]
		line := &invoicedomain.InvoiceLine{
			ID:            s.genID.Generate(),
			InvoiceID:     invoice.ID,
			CatalogItemID: spec.CatalogItemID,
			ReadingID:     spec.ReadingID,
			Description:   spec.Description,
			Quantity:      spec.Quantity,
			UnitPrice:     spec.UnitPrice,
			Amount:        spec.UnitPrice.Mul(decimal.NewFromFloat(spec.Quantity)),
			CreatedAt:     now,
		}
		if err := s.repo.InsertLine(ctx, db, line); err != nil {
			return nil, err
		}
	}
	return invoice, nil
}

// Post transitions every invoice in the set to posted. A single invoice not
// in draft aborts the whole set.
func (s *Service) Post(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) error {
	db := s.conn(tx)

	invoices, err := s.repo.FindByIDs(ctx, db, ids)
	if err != nil {
		return err
	}
	if len(invoices) != len(ids) {
		return invoicedomain.ErrNotFound
	}

	for i := range invoices {
		if invoices[i].Status != invoicedomain.StatusDraft {
			s.log.Warn("invoice blocks posting",
				zap.String("invoice_id", invoices[i].ID.String()),
				zap.String("status", string(invoices[i].Status)),
			)
			return invoicedomain.ErrInvoiceNotDraft
		}
	}

	now := time.Now().UTC()
	for i := range invoices {
		invoices[i].Status = invoicedomain.StatusPosted
		invoices[i].UpdatedAt = now
		if err := s.repo.Update(ctx, db, &invoices[i]); err != nil {
			return err
		}
	}
	return nil
}

// ResetToDraft reverses the posting of every invoice in the set.
func (s *Service) ResetToDraft(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) error {
	db := s.conn(tx)

	invoices, err := s.repo.FindByIDs(ctx, db, ids)
	if err != nil {
		return err
	}
	if len(invoices) != len(ids) {
		return invoicedomain.ErrNotFound
	}

	for i := range invoices {
		if invoices[i].Status != invoicedomain.StatusPosted {
			s.log.Warn("invoice blocks reset",
				zap.String("invoice_id", invoices[i].ID.String()),
				zap.String("status", string(invoices[i].Status)),
			)
			return invoicedomain.ErrInvoiceNotPosted
		}
	}

	now := time.Now().UTC()
	for i := range invoices {
		invoices[i].Status = invoicedomain.StatusDraft
		invoices[i].UpdatedAt = now
		if err := s.repo.Update(ctx, db, &invoices[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) DeleteDraft(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	db := s.conn(tx)

	invoice, err := s.repo.FindByID(ctx, db, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return invoicedomain.ErrNotFound
	}
	if invoice.Status != invoicedomain.StatusDraft {
		return invoicedomain.ErrInvoiceNotDraft
	}

	if err := s.repo.DeleteLines(ctx, db, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, db, id)
}

func (s *Service) ApplyPayment(ctx context.Context, req invoicedomain.ApplyPaymentRequest) (*invoicedomain.Response, error) {
	invoiceID, err := invoicedomain.ParseID(strings.TrimSpace(req.InvoiceID))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}
	if !req.Amount.IsPositive() {
		return nil, invoicedomain.ErrInvalidAmount
	}

	var invoice *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err = s.repo.FindByID(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return invoicedomain.ErrNotFound
		}
		if invoice.Status != invoicedomain.StatusPosted {
			return invoicedomain.ErrInvoiceNotPosted
		}
		if req.Amount.GreaterThan(invoice.Residual()) {
			return invoicedomain.ErrPaymentExceedsResidual
		}

		invoice.AmountPaid = invoice.AmountPaid.Add(req.Amount)
		invoice.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(invoice, nil), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Response, error) {
	invoiceID, err := invoicedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}

	lines, err := s.repo.ListLines(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(invoice, lines), nil
}

func (s *Service) toResponse(inv *invoicedomain.Invoice, lines []invoicedomain.InvoiceLine) *invoicedomain.Response {
	resp := &invoicedomain.Response{
		ID:         inv.ID.String(),
		JournalID:  inv.JournalID.String(),
		CustomerID: inv.CustomerID.String(),
		Date:       inv.Date,
		Reference:  inv.Reference,
		Status:     string(inv.Status),
		Total:      inv.Total,
		AmountPaid: inv.AmountPaid,
		Residual:   inv.Residual(),
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
	for i := range lines {
		line := invoicedomain.LineResponse{
			ID:            lines[i].ID.String(),
			CatalogItemID: lines[i].CatalogItemID.String(),
			Description:   lines[i].Description,
			Quantity:      lines[i].Quantity,
			UnitPrice:     lines[i].UnitPrice,
			Amount:        lines[i].Amount,
		}
		if lines[i].ReadingID != 0 {
			line.ReadingID = lines[i].ReadingID.String()
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
