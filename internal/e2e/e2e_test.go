package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	billingrunrepository "github.com/iitsoft/asovec/internal/billingrun/repository"
	billingrunservice "github.com/iitsoft/asovec/internal/billingrun/service"
	catalogrepository "github.com/iitsoft/asovec/internal/catalog/repository"
	catalogservice "github.com/iitsoft/asovec/internal/catalog/service"
	"github.com/iitsoft/asovec/internal/clock"
	"github.com/iitsoft/asovec/internal/config"
	customerrepository "github.com/iitsoft/asovec/internal/customer/repository"
	customerservice "github.com/iitsoft/asovec/internal/customer/service"
	invoicerepository "github.com/iitsoft/asovec/internal/invoice/repository"
	invoiceservice "github.com/iitsoft/asovec/internal/invoice/service"
	journalrepository "github.com/iitsoft/asovec/internal/journal/repository"
	journalservice "github.com/iitsoft/asovec/internal/journal/service"
	meterrepository "github.com/iitsoft/asovec/internal/meter/repository"
	meterservice "github.com/iitsoft/asovec/internal/meter/service"
	"github.com/iitsoft/asovec/internal/migration"
	"github.com/iitsoft/asovec/internal/observability"
	obsmetrics "github.com/iitsoft/asovec/internal/observability/metrics"
	projectrepository "github.com/iitsoft/asovec/internal/project/repository"
	projectservice "github.com/iitsoft/asovec/internal/project/service"
	readingrepository "github.com/iitsoft/asovec/internal/reading/repository"
	readingservice "github.com/iitsoft/asovec/internal/reading/service"
	residencerepository "github.com/iitsoft/asovec/internal/residence/repository"
	residenceservice "github.com/iitsoft/asovec/internal/residence/service"
	"github.com/iitsoft/asovec/internal/seed"
	"github.com/iitsoft/asovec/internal/server"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	server  *server.Server
	httpSrv *httptest.Server
	baseURL string
	clk     *clock.FakeClock
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.httpSrv.Close()
	os.Exit(code)
}

func startEnv() (*testEnv, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := migration.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := seed.EnsureDefaults(db); err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	projectRepo := projectrepository.Provide()
	customerRepo := customerrepository.Provide()
	residenceRepo := residencerepository.Provide()
	meterRepo := meterrepository.Provide()
	readingRepo := readingrepository.Provide()
	catalogRepo := catalogrepository.Provide()
	journalRepo := journalrepository.Provide()
	invoiceRepo := invoicerepository.Provide()
	runRepo := billingrunrepository.Provide()

	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Repo: invoiceRepo,
	})

	cfg := config.Config{AppName: "asovec", Environment: "test"}
	obsCfg := observability.LoadConfig(cfg)
	engine := server.NewEngine(obsCfg, obsmetrics.NewHTTPMetrics())

	srv := server.NewServer(server.ServerParams{
		Gin: engine,
		Cfg: cfg,
		ProjectSvc: projectservice.New(projectservice.Params{
			DB: db, Log: log, GenID: node, Repo: projectRepo,
		}),
		CustomerSvc: customerservice.New(customerservice.Params{
			DB: db, Log: log, GenID: node, Repo: customerRepo,
		}),
		ResidenceSvc: residenceservice.New(residenceservice.Params{
			DB: db, Log: log, GenID: node, Clock: clk,
			Repo: residenceRepo, MeterRepo: meterRepo, ReadingRepo: readingRepo,
		}),
		MeterSvc: meterservice.New(meterservice.Params{
			DB: db, Log: log, GenID: node, Repo: meterRepo,
		}),
		ReadingSvc: readingservice.New(readingservice.Params{
			DB: db, Log: log, GenID: node, Clock: clk,
			Repo: readingRepo, MeterRepo: meterRepo,
			ResidenceRepo: residenceRepo, ProjectRepo: projectRepo,
		}),
		CatalogSvc: catalogservice.New(catalogservice.Params{
			DB: db, Log: log, GenID: node, Repo: catalogRepo,
		}),
		JournalSvc: journalservice.New(journalservice.Params{
			DB: db, Log: log, GenID: node, Repo: journalRepo,
		}),
		InvoiceSvc: invoiceSvc,
		BillingRunSvc: billingrunservice.New(billingrunservice.Params{
			DB: db, Log: log, GenID: node, Clock: clk,
			Repo: runRepo, ProjectRepo: projectRepo, ResidenceRepo: residenceRepo,
			CatalogRepo: catalogRepo, JournalRepo: journalRepo,
			ReadingRepo: readingRepo, InvoiceRepo: invoiceRepo,
			Invoices: invoiceSvc,
		}),
	})

	httpSrv := httptest.NewServer(engine)

	return &testEnv{
		db:      db,
		server:  srv,
		httpSrv: httpSrv,
		baseURL: httpSrv.URL,
		clk:     clk,
	}, nil
}

func resetDatabase(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{
		"billing_lines",
		"billing_runs",
		"invoice_lines",
		"invoices",
		"meter_readings",
		"price_overrides",
		"meters",
		"residences",
		"customers",
		"projects",
		"catalog_items",
		"journals",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
	if err := seed.EnsureDefaults(db); err != nil {
		t.Fatalf("reseed defaults: %v", err)
	}
}

func doJSON(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, env.baseURL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, raw
}

func decodeData(t *testing.T, raw []byte, out any) {
	t.Helper()

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		t.Fatalf("decode response envelope: %v (%s)", err, string(raw))
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		t.Fatalf("decode response data: %v (%s)", err, string(wrapper.Data))
	}
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decodeError(t *testing.T, raw []byte) apiError {
	t.Helper()

	var wrapper struct {
		Error apiError `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, string(raw))
	}
	return wrapper.Error
}
