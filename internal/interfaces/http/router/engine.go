package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/pinshop/backend/internal/infrastructure/config"
	"github.com/pinshop/backend/internal/infrastructure/logger"
	"github.com/pinshop/backend/internal/interfaces/http/handler"
	"github.com/pinshop/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	Report *handler.ReportHandler
	Ledger *handler.LedgerHandler
	System *handler.SystemHandler
}

// EngineOptions configures the middleware stack
type EngineOptions struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Tracing     bool
	// Meter records HTTP metrics; nil disables them
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewEngine builds the gin engine: middleware stack, health check and the
// versioned API.
//
// Middleware order:
//  1. RequestID - generate/propagate request ID
//  2. Recovery - catch panics
//  3. Logger - log requests
//  4. Tracing - server span, enriched with the request ID, failed on 4xx/5xx
//  5. Metrics - request count, latency and size
//  6. Security headers and CORS
//  7. BodyLimit and Timeout
func NewEngine(opts EngineOptions, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: opts.ServiceName,
		Enabled:     opts.Tracing,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(opts.Meter))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfigFrom(opts.HTTP)))
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning and without a deadline)
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	if opts.HTTP.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.HTTP.RequestTimeout))
	}

	var exportLimiter *middleware.RateLimiter
	if opts.HTTP.ExportRateLimit > 0 {
		exportLimiter = middleware.NewRateLimiter(opts.HTTP.ExportRateLimit, opts.HTTP.ExportRateWindow)
	}

	// Report domain
	reportRoutes := NewDomainGroup("report", "/reports")
	reportRoutes.GET("/daily", h.Report.GetDailyReport)
	reportRoutes.GET("/daily/:date", h.Report.GetDayDetail)
	reportRoutes.GET("/summary", h.Report.GetSummary)
	reportRoutes.GET("/export", middleware.RateLimit(exportLimiter), h.Report.Export)

	// Ledger domain (the records the reports are built from)
	ledgerRoutes := NewDomainGroup("ledger", "")
	ledgerRoutes.POST("/sales", h.Ledger.CreateSale)
	ledgerRoutes.GET("/sales", h.Ledger.ListSales)
	ledgerRoutes.POST("/repair-orders", h.Ledger.CreateRepairOrder)
	ledgerRoutes.GET("/repair-orders", h.Ledger.ListRepairOrders)
	ledgerRoutes.POST("/cash-transactions", h.Ledger.CreateCashTransaction)
	ledgerRoutes.GET("/cash-transactions", h.Ledger.ListCashTransactions)
	ledgerRoutes.POST("/cash-transactions/import", h.Ledger.ImportCashBook)
	ledgerRoutes.POST("/production-orders", h.Ledger.CreateProductionOrder)
	ledgerRoutes.GET("/production-orders", h.Ledger.ListProductionOrders)
	ledgerRoutes.POST("/production-orders/:id/cancel", h.Ledger.CancelProductionOrder)

	// Admin: cache warmer
	adminRoutes := NewDomainGroup("admin", "/admin")
	adminRoutes.GET("/reports/warmer", h.Report.GetWarmerStatus)
	adminRoutes.POST("/reports/warmer/run", h.Report.TriggerWarmup)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)
	systemRoutes.GET("/ping", h.System.Ping)

	r.Register(reportRoutes).
		Register(ledgerRoutes).
		Register(adminRoutes).
		Register(systemRoutes)
	r.Setup()

	return engine
}
