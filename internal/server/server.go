package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iitsoft/asovec/internal/billingrun"
	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
	"github.com/iitsoft/asovec/internal/catalog"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	"github.com/iitsoft/asovec/internal/clock"
	"github.com/iitsoft/asovec/internal/config"
	"github.com/iitsoft/asovec/internal/customer"
	customerdomain "github.com/iitsoft/asovec/internal/customer/domain"
	"github.com/iitsoft/asovec/internal/invoice"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	"github.com/iitsoft/asovec/internal/journal"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	"github.com/iitsoft/asovec/internal/meter"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	"github.com/iitsoft/asovec/internal/observability"
	obsmiddleware "github.com/iitsoft/asovec/internal/observability/logger"
	obsmetrics "github.com/iitsoft/asovec/internal/observability/metrics"
	obstracing "github.com/iitsoft/asovec/internal/observability/tracing"
	"github.com/iitsoft/asovec/internal/project"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	"github.com/iitsoft/asovec/internal/reading"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	"github.com/iitsoft/asovec/internal/residence"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	clock.Module,
	fx.Provide(registerGin),
	project.Module,
	customer.Module,
	residence.Module,
	meter.Module,
	reading.Module,
	catalog.Module,
	journal.Module,
	invoice.Module,
	billingrun.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	projectSvc    projectdomain.Service
	customerSvc   customerdomain.Service
	residenceSvc  residencedomain.Service
	meterSvc      meterdomain.Service
	readingSvc    readingdomain.Service
	catalogSvc    catalogdomain.Service
	journalSvc    journaldomain.Service
	invoiceSvc    invoicedomain.Service
	billingRunSvc billingrundomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	ProjectSvc    projectdomain.Service
	CustomerSvc   customerdomain.Service
	ResidenceSvc  residencedomain.Service
	MeterSvc      meterdomain.Service
	ReadingSvc    readingdomain.Service
	CatalogSvc    catalogdomain.Service
	JournalSvc    journaldomain.Service
	InvoiceSvc    invoicedomain.Service
	BillingRunSvc billingrundomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		projectSvc:    p.ProjectSvc,
		customerSvc:   p.CustomerSvc,
		residenceSvc:  p.ResidenceSvc,
		meterSvc:      p.MeterSvc,
		readingSvc:    p.ReadingSvc,
		catalogSvc:    p.CatalogSvc,
		journalSvc:    p.JournalSvc,
		invoiceSvc:    p.InvoiceSvc,
		billingRunSvc: p.BillingRunSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/projects", s.CreateProject)
	api.GET("/projects", s.ListProjects)
	api.GET("/projects/:id", s.GetProject)
	api.PATCH("/projects/:id", s.UpdateProject)
	api.DELETE("/projects/:id", s.DeleteProject)

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/:id", s.GetCustomer)
	api.PATCH("/customers/:id", s.UpdateCustomer)

	api.POST("/residences", s.CreateResidence)
	api.GET("/residences", s.ListResidences)
	api.GET("/residences/:id", s.GetResidence)
	api.PATCH("/residences/:id", s.UpdateResidence)
	api.GET("/residences/:id/meters", s.ListResidenceMeters)
	api.GET("/residences/:id/new-reading", s.NewReadingSeed)
	api.GET("/residences/:id/statement", s.ResidenceStatement)
	api.POST("/residences/:id/overrides", s.CreatePriceOverride)
	api.GET("/residences/:id/overrides", s.ListPriceOverrides)
	api.PATCH("/overrides/:id", s.UpdatePriceOverride)

	api.POST("/meters", s.CreateMeter)
	api.GET("/meters/:id", s.GetMeter)
	api.PATCH("/meters/:id", s.UpdateMeter)
	api.POST("/meters/:id/activate", s.ActivateMeter)
	api.POST("/meters/:id/deactivate", s.DeactivateMeter)
	api.GET("/meters/:id/readings", s.ListMeterReadings)
	api.GET("/meters/:id/next-period", s.NextExpectedPeriod)

	api.POST("/readings/initial", s.RegisterInitialReading)
	api.POST("/readings", s.RegisterPeriodReading)
	api.POST("/readings/preview", s.PreviewReading)
	api.GET("/readings/:id", s.GetReading)
	api.PATCH("/readings/:id", s.UpdateReading)
	api.DELETE("/readings/:id", s.DeleteReading)

	api.POST("/catalog-items", s.CreateCatalogItem)
	api.GET("/catalog-items", s.ListCatalogItems)
	api.GET("/catalog-items/:id", s.GetCatalogItem)
	api.PATCH("/catalog-items/:id", s.UpdateCatalogItem)

	api.POST("/journals", s.CreateJournal)
	api.GET("/journals", s.ListJournals)
	api.PATCH("/journals/:id", s.UpdateJournal)

	api.GET("/invoices/:id", s.GetInvoice)
	api.POST("/invoices/:id/payments", s.ApplyInvoicePayment)

	api.POST("/billing-runs", s.CreateBillingRun)
	api.GET("/billing-runs", s.ListBillingRuns)
	api.GET("/billing-runs/:id", s.GetBillingRun)
	api.POST("/billing-runs/:id/generate", s.GenerateBillingRun)
	api.POST("/billing-runs/:id/confirm", s.ConfirmBillingRun)
	api.POST("/billing-runs/:id/cancel", s.CancelBillingRun)
	api.POST("/billing-runs/:id/reset", s.ResetBillingRunToDraft)
	api.GET("/billing-runs/statement", s.BillingStatement)
}
