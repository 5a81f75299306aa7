package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	ledgerapp "github.com/pinshop/backend/internal/application/ledger"
	reportapp "github.com/pinshop/backend/internal/application/report"
	"github.com/pinshop/backend/internal/infrastructure/config"
	"github.com/pinshop/backend/internal/infrastructure/persistence"
	"github.com/pinshop/backend/internal/infrastructure/persistence/models"
	"github.com/pinshop/backend/internal/interfaces/http/handler"
	"github.com/pinshop/backend/internal/interfaces/http/middleware"
)

func newTestEngine(t *testing.T, httpCfg config.HTTPConfig, reader *sdkmetric.ManualReader) *gin.Engine {
	t.Helper()
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sales := persistence.NewGormSaleRepository(db)
	repairs := persistence.NewGormRepairOrderRepository(db)
	cash := persistence.NewGormCashTransactionRepository(db)
	orders := persistence.NewGormProductionOrderRepository(db)

	loc := time.FixedZone("ICT", 7*60*60)
	reports := reportapp.NewReportService(sales, repairs, cash, orders, nil, nil, reportapp.WithLocation(loc))
	ledger := ledgerapp.NewLedgerService(sales, repairs, cash, orders, nil, nil, ledgerapp.WithLocation(loc))

	system := handler.NewSystemHandler("pinshop-backend", "test")
	system.AddCheck("database", func(ctx context.Context) error { return sqlDB.PingContext(ctx) })

	opts := EngineOptions{HTTP: httpCfg, ServiceName: "pinshop-backend"}
	if reader != nil {
		opts.Meter = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	}

	return NewEngine(opts, Handlers{
		Report: handler.NewReportHandler(reports),
		Ledger: handler.NewLedgerHandler(ledger),
		System: system,
	})
}

func TestNewEngine_Routes(t *testing.T) {
	engine := newTestEngine(t, config.HTTPConfig{MaxBodySize: 1 << 20}, nil)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/system/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/system/info", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/daily?period=7days", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/summary?period=today", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/export?period=today", http.StatusOK},
		{http.MethodGet, "/api/v1/sales?start_date=2024-03-01&end_date=2024-03-31", http.StatusOK},
		{http.MethodGet, "/api/v1/repair-orders?start_date=2024-03-01&end_date=2024-03-31", http.StatusOK},
		{http.MethodGet, "/api/v1/cash-transactions?start_date=2024-03-01&end_date=2024-03-31", http.StatusOK},
		{http.MethodGet, "/api/v1/production-orders?start_date=2024-03-01&end_date=2024-03-31", http.StatusOK},
		{http.MethodPost, "/api/v1/cash-transactions/import", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/admin/reports/warmer", http.StatusOK},
		{http.MethodPost, "/api/v1/admin/reports/warmer/run", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/nothing-here", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestNewEngine_Middleware(t *testing.T) {
	engine := newTestEngine(t, config.HTTPConfig{
		MaxBodySize:      64,
		CORSAllowOrigins: []string{"https://shop.example.vn"},
		CORSAllowMethods: []string{"GET", "POST"},
	}, nil)

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("security headers", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/system/ping")
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports/daily", nil)
		req.Header.Set("Origin", "https://shop.example.vn")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://shop.example.vn", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("body limit", func(t *testing.T) {
		body := `{"code":"BH-1","notes":"` + strings.Repeat("x", 200) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestNewEngine_ExportRateLimit(t *testing.T) {
	engine := newTestEngine(t, config.HTTPConfig{
		MaxBodySize:      1 << 20,
		ExportRateLimit:  2,
		ExportRateWindow: time.Minute,
	}, nil)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/reports/export?period=today").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/reports/export?period=today").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/api/v1/reports/export?period=today").Code)

	// other report routes are not limited
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/reports/daily?period=today").Code)
}

func TestNewEngine_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	engine := newTestEngine(t, config.HTTPConfig{MaxBodySize: 1 << 20}, reader)

	serve(engine, http.MethodGet, "/api/v1/reports/daily?period=today")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["http_server_request_total"])
	assert.True(t, names["http_server_request_duration_seconds"])
}
