package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	"github.com/iitsoft/asovec/internal/clock"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	"github.com/iitsoft/asovec/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          billingrundomain.Repository
	ProjectRepo   projectdomain.Repository
	ResidenceRepo residencedomain.Repository
	CatalogRepo   catalogdomain.Repository
	JournalRepo   journaldomain.Repository
	ReadingRepo   readingdomain.Repository
	InvoiceRepo   invoicedomain.Repository
	Invoices      invoicedomain.Service
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          billingrundomain.Repository
	projectRepo   projectdomain.Repository
	residenceRepo residencedomain.Repository
	catalogRepo   catalogdomain.Repository
	journalRepo   journaldomain.Repository
	readingRepo   readingdomain.Repository
	invoiceRepo   invoicedomain.Repository
	invoices      invoicedomain.Service
}

func New(p Params) billingrundomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("billingrun.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		projectRepo:   p.ProjectRepo,
		residenceRepo: p.ResidenceRepo,
		catalogRepo:   p.CatalogRepo,
		journalRepo:   p.JournalRepo,
		readingRepo:   p.ReadingRepo,
		invoiceRepo:   p.InvoiceRepo,
		invoices:      p.Invoices,
	}
}

func (s *Service) Create(ctx context.Context, req billingrundomain.CreateRequest) (*billingrundomain.Response, error) {
	projectID, err := billingrundomain.ParseID(strings.TrimSpace(req.ProjectID))
	if err != nil || projectID == 0 {
		return nil, billingrundomain.ErrInvalidProjectID
	}
	if req.Month < 1 || req.Month > 12 || req.Year == 0 {
		return nil, billingrundomain.ErrInvalidPeriod
	}

	project, err := s.projectRepo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, billingrundomain.ErrNotFound
	}

	existing, err := s.repo.FindActivePeriod(ctx, s.db, projectID, req.Month, req.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, billingrundomain.ErrDuplicatePeriod
	}

	now := time.Now().UTC()
	run := &billingrundomain.BillingRun{
		ID:            s.genID.Generate(),
		ProjectID:     projectID,
		Month:         req.Month,
		Year:          req.Year,
		Name:          billingrundomain.DisplayName(project.Name, req.Month, req.Year),
		Status:        billingrundomain.StatusDraft,
		TotalToCharge: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertRun(ctx, s.db, run); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, billingrundomain.ErrDuplicatePeriod
		}
		return nil, err
	}
	return s.toResponse(run, nil), nil
}

func (s *Service) List(ctx context.Context, projectID string) ([]billingrundomain.Response, error) {
	var id snowflake.ID
	if strings.TrimSpace(projectID) != "" {
		var err error
		id, err = billingrundomain.ParseID(strings.TrimSpace(projectID))
		if err != nil {
			return nil, billingrundomain.ErrInvalidProjectID
		}
	}

	runs, err := s.repo.ListRuns(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]billingrundomain.Response, 0, len(runs))
	for i := range runs {
		resp = append(resp, *s.toResponse(&runs[i], nil))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*billingrundomain.Response, error) {
	runID, err := billingrundomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingrundomain.ErrInvalidID
	}

	run, err := s.repo.FindRunByID(ctx, s.db, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, billingrundomain.ErrNotFound
	}

	lines, err := s.repo.ListLines(ctx, s.db, runID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(run, lines), nil
}

func (s *Service) Generate(ctx context.Context, id string) (*billingrundomain.Response, error) {
	runID, err := billingrundomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingrundomain.ErrInvalidID
	}

	var run *billingrundomain.BillingRun
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run, err = s.repo.LockRunByID(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run == nil {
			return billingrundomain.ErrNotFound
		}
		if run.Status != billingrundomain.StatusDraft {
			return billingrundomain.ErrNotDraft
		}

		if err := s.wipe(ctx, tx, run); err != nil {
			return err
		}

		journal, err := s.journalRepo.FindAssociationJournal(ctx, tx)
		if err != nil {
			return err
		}
		if journal == nil {
			return billingrundomain.ErrMissingJournal
		}

		project, err := s.projectRepo.FindByID(ctx, tx, run.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return billingrundomain.ErrNotFound
		}

		residences, err := s.residenceRepo.ListByProject(ctx, tx, run.ProjectID)
		if err != nil {
			return err
		}
		if len(residences) == 0 {
			return billingrundomain.ErrNoResidences
		}

		autoItems, err := s.catalogRepo.ListAutoBilled(ctx, tx)
		if err != nil {
			return err
		}
		if len(autoItems) == 0 {
			return billingrundomain.ErrNoAutoBilledItems
		}

		total := decimal.Zero
		for i := range residences {
			amount, err := s.billResidence(ctx, tx, run, project, journal, autoItems, &residences[i])
			if err != nil {
				return err
			}
			total = total.Add(amount)
		}

		run.TotalToCharge = total
		run.UpdatedAt = time.Now().UTC()
		return s.repo.UpdateRun(ctx, tx, run)
	})
	if err != nil {
		return nil, s.asGenerationError(err)
	}

	lines, err := s.repo.ListLines(ctx, s.db, runID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(run, lines), nil
}

// wipe removes the run's billing lines and their draft invoices so a draft
// run can be regenerated from scratch.
func (s *Service) wipe(ctx context.Context, tx *gorm.DB, run *billingrundomain.BillingRun) error {
	lines, err := s.repo.ListLines(ctx, tx, run.ID)
	if err != nil {
		return err
	}
	for i := range lines {
		if lines[i].InvoiceID == 0 {
			continue
		}
		if err := s.invoices.DeleteDraft(ctx, tx, lines[i].InvoiceID); err != nil {
			return err
		}
	}
	return s.repo.DeleteLines(ctx, tx, run.ID)
}

// billResidence produces the residence's invoice lines, creates its draft
// invoice and records the billing line. Returns the invoice total.
func (s *Service) billResidence(
	ctx context.Context,
	tx *gorm.DB,
	run *billingrundomain.BillingRun,
	project *projectdomain.Project,
	journal *journaldomain.Journal,
	autoItems []catalogdomain.CatalogItem,
	residence *residencedomain.Residence,
) (decimal.Decimal, error) {
	if residence.CustomerID == 0 {
		return decimal.Zero, billingrundomain.ErrResidenceMissingCustomer
	}

	var specs []invoicedomain.LineSpec
	for i := range autoItems {
		item := &autoItems[i]
		price := item.ListPrice
		override, err := s.residenceRepo.FindActiveOverride(ctx, tx, residence.ID, item.ID)
		if err != nil {
			return decimal.Zero, err
		}
		if override != nil {
			price = override.Price
		}
		// A resolved price of exactly zero suppresses the line.
		if price.IsZero() {
			continue
		}
		specs = append(specs, invoicedomain.LineSpec{
			CatalogItemID: item.ID,
			Description:   item.Name,
			Quantity:      1,
			UnitPrice:     price,
		})
	}

	readingStatus := billingrundomain.ReadingInactive
	if !residence.Active {
		item, err := s.waterTagItem(ctx, tx, catalogdomain.TagInactiveMeterFee)
		if err != nil {
			return decimal.Zero, err
		}
		specs = append(specs, invoicedomain.LineSpec{
			CatalogItemID: item.ID,
			Description:   item.Name,
			Quantity:      1,
			UnitPrice:     project.InactiveFee,
		})
	} else {
		reading, err := s.readingRepo.FindForResidencePeriod(ctx, tx, residence.ID, run.Month, run.Year)
		if err != nil {
			return decimal.Zero, err
		}

		baseItem, err := s.waterTagItem(ctx, tx, catalogdomain.TagBaseWaterFee)
		if err != nil {
			return decimal.Zero, err
		}

		basePrice := project.BaseFee
		var readingID snowflake.ID
		if reading != nil {
			readingStatus = billingrundomain.ReadingValid
			basePrice = reading.BaseCharge
			readingID = reading.ID
		} else {
			readingStatus = billingrundomain.ReadingMissing
		}

		specs = append(specs, invoicedomain.LineSpec{
			CatalogItemID: baseItem.ID,
			ReadingID:     readingID,
			Description:   baseItem.Name,
			Quantity:      1,
			UnitPrice:     basePrice,
		})

		if reading != nil && reading.ExcessCharge.IsPositive() {
			excessItem, err := s.waterTagItem(ctx, tx, catalogdomain.TagExcessWaterFee)
			if err != nil {
				return decimal.Zero, err
			}
			specs = append(specs, invoicedomain.LineSpec{
				CatalogItemID: excessItem.ID,
				ReadingID:     reading.ID,
				Description:   excessItem.Name,
				Quantity:      1,
				UnitPrice:     reading.ExcessCharge,
			})
		}
	}

	if len(specs) == 0 {
		return decimal.Zero, billingrundomain.ErrNothingToBill
	}

	invoice, err := s.invoices.CreateDraft(ctx, tx, invoicedomain.CreateDraftRequest{
		JournalID:  journal.ID,
		CustomerID: residence.CustomerID,
		Date:       s.clock.Now(),
		Reference:  run.Name + " - " + residence.Code,
		Lines:      specs,
	})
	if err != nil {
		return decimal.Zero, err
	}

	line := &billingrundomain.BillingLine{
		ID:            s.genID.Generate(),
		RunID:         run.ID,
		ProjectID:     run.ProjectID,
		ResidenceID:   residence.ID,
		CustomerID:    residence.CustomerID,
		InvoiceID:     invoice.ID,
		AmountTotal:   invoice.Total,
		ReadingStatus: readingStatus,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.InsertLine(ctx, tx, line); err != nil {
		return decimal.Zero, err
	}
	return invoice.Total, nil
}

func (s *Service) waterTagItem(ctx context.Context, tx *gorm.DB, tag catalogdomain.WaterTag) (*catalogdomain.CatalogItem, error) {
	item, err := s.catalogRepo.FindByWaterTag(ctx, tx, tag)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, billingrundomain.ErrNoAutoBilledItems
	}
	return item, nil
}

// asGenerationError keeps user-correctable failures verbatim and wraps the
// rest as a single generation failure.
func (s *Service) asGenerationError(err error) error {
	switch {
	case errors.Is(err, billingrundomain.ErrNotFound),
		errors.Is(err, billingrundomain.ErrNotDraft),
		errors.Is(err, billingrundomain.ErrMissingJournal),
		errors.Is(err, billingrundomain.ErrNoResidences),
		errors.Is(err, billingrundomain.ErrNoAutoBilledItems),
		errors.Is(err, billingrundomain.ErrResidenceMissingCustomer),
		errors.Is(err, billingrundomain.ErrNothingToBill):
		return err
	default:
		s.log.Error("billing generation failed", zap.Error(err))
		return billingrundomain.ErrGenerationFailed
	}
}

func (s *Service) Confirm(ctx context.Context, id string) (*billingrundomain.Response, error) {
	runID, err := billingrundomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingrundomain.ErrInvalidID
	}

	var run *billingrundomain.BillingRun
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run, err = s.repo.LockRunByID(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run == nil {
			return billingrundomain.ErrNotFound
		}
		if run.Status != billingrundomain.StatusDraft {
			return billingrundomain.ErrNotDraft
		}

		ids, err := s.lineInvoiceIDs(ctx, tx, runID)
		if err != nil {
			return err
		}
		if err := s.invoices.Post(ctx, tx, ids); err != nil {
			return err
		}

		run.Status = billingrundomain.StatusPosted
		run.UpdatedAt = time.Now().UTC()
		return s.repo.UpdateRun(ctx, tx, run)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(run, nil), nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*billingrundomain.Response, error) {
	runID, err := billingrundomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingrundomain.ErrInvalidID
	}

	var run *billingrundomain.BillingRun
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run, err = s.repo.LockRunByID(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run == nil {
			return billingrundomain.ErrNotFound
		}
		if run.Status != billingrundomain.StatusDraft {
			return billingrundomain.ErrNotDraft
		}

		ids, err := s.lineInvoiceIDs(ctx, tx, runID)
		if err != nil {
			return err
		}
		invoices, err := s.invoiceRepo.FindByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		for i := range invoices {
			if invoices[i].Status != invoicedomain.StatusDraft {
				return invoicedomain.ErrInvoiceNotDraft
			}
		}
		for _, invoiceID := range ids {
			if err := s.invoices.DeleteDraft(ctx, tx, invoiceID); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteLines(ctx, tx, runID); err != nil {
			return err
		}

		run.Status = billingrundomain.StatusCancelled
		run.TotalToCharge = decimal.Zero
		run.UpdatedAt = time.Now().UTC()
		return s.repo.UpdateRun(ctx, tx, run)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(run, nil), nil
}

func (s *Service) ResetToDraft(ctx context.Context, id string) (*billingrundomain.Response, error) {
	runID, err := billingrundomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingrundomain.ErrInvalidID
	}

	var run *billingrundomain.BillingRun
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run, err = s.repo.LockRunByID(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run == nil {
			return billingrundomain.ErrNotFound
		}
		if run.Status != billingrundomain.StatusPosted {
			return billingrundomain.ErrNotPosted
		}

		ids, err := s.lineInvoiceIDs(ctx, tx, runID)
		if err != nil {
			return err
		}
		if err := s.invoices.ResetToDraft(ctx, tx, ids); err != nil {
			return err
		}

		run.Status = billingrundomain.StatusDraft
		run.UpdatedAt = time.Now().UTC()
		return s.repo.UpdateRun(ctx, tx, run)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(run, nil), nil
}

func (s *Service) lineInvoiceIDs(ctx context.Context, tx *gorm.DB, runID snowflake.ID) ([]snowflake.ID, error) {
	lines, err := s.repo.ListLines(ctx, tx, runID)
	if err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(lines))
	for i := range lines {
		if lines[i].InvoiceID != 0 {
			ids = append(ids, lines[i].InvoiceID)
		}
	}
	return ids, nil
}

func (s *Service) Statement(ctx context.Context, req billingrundomain.StatementRequest) (*billingrundomain.StatementResponse, error) {
	projectID, err := billingrundomain.ParseID(strings.TrimSpace(req.ProjectID))
	if err != nil || projectID == 0 {
		return nil, billingrundomain.ErrInvalidProjectID
	}
	residenceID, err := billingrundomain.ParseID(strings.TrimSpace(req.ResidenceID))
	if err != nil || residenceID == 0 {
		return nil, billingrundomain.ErrInvalidID
	}

	residence, err := s.residenceRepo.FindByID(ctx, s.db, residenceID)
	if err != nil {
		return nil, err
	}
	if residence == nil {
		return nil, billingrundomain.ErrNotFound
	}
	if residence.ProjectID != projectID {
		return nil, billingrundomain.ErrResidenceNotInProject
	}

	var customerID snowflake.ID
	if req.OnlyCurrentCustomer {
		customerID = residence.CustomerID
	}

	rows, err := s.repo.Statement(ctx, s.db, projectID, residenceID, customerID)
	if err != nil {
		return nil, err
	}

	entries := make([]billingrundomain.StatementEntry, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entry := billingrundomain.StatementEntry{
			RunID:         row.RunID.String(),
			RunName:       row.RunName,
			Month:         row.Month,
			Year:          row.Year,
			AmountTotal:   row.AmountTotal,
			ReadingStatus: row.ReadingStatus,
			InvoiceStatus: row.InvoiceStatus,
			Residual:      row.InvoiceTotal.Sub(row.AmountPaid),
		}
		if row.InvoiceID != 0 {
			entry.InvoiceID = row.InvoiceID.String()
		}
		entries = append(entries, entry)
	}

	return &billingrundomain.StatementResponse{
		ProjectID:   projectID.String(),
		ResidenceID: residenceID.String(),
		Entries:     entries,
	}, nil
}

func (s *Service) toResponse(run *billingrundomain.BillingRun, lines []billingrundomain.BillingLine) *billingrundomain.Response {
	resp := &billingrundomain.Response{
		ID:            run.ID.String(),
		ProjectID:     run.ProjectID.String(),
		Month:         run.Month,
		Year:          run.Year,
		Name:          run.Name,
		Status:        string(run.Status),
		TotalToCharge: run.TotalToCharge,
		CreatedAt:     run.CreatedAt,
		UpdatedAt:     run.UpdatedAt,
	}
	for i := range lines {
		line := billingrundomain.LineResponse{
			ID:            lines[i].ID.String(),
			ResidenceID:   lines[i].ResidenceID.String(),
			CustomerID:    lines[i].CustomerID.String(),
			AmountTotal:   lines[i].AmountTotal,
			ReadingStatus: lines[i].ReadingStatus,
		}
		if lines[i].InvoiceID != 0 {
			line.InvoiceID = lines[i].InvoiceID.String()
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
