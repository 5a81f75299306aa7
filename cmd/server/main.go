package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	ledgerapp "github.com/pinshop/backend/internal/application/ledger"
	reportapp "github.com/pinshop/backend/internal/application/report"
	"github.com/pinshop/backend/internal/infrastructure/cache"
	"github.com/pinshop/backend/internal/infrastructure/config"
	"github.com/pinshop/backend/internal/infrastructure/logger"
	"github.com/pinshop/backend/internal/infrastructure/migration"
	"github.com/pinshop/backend/internal/infrastructure/persistence"
	"github.com/pinshop/backend/internal/infrastructure/scheduler"
	"github.com/pinshop/backend/internal/infrastructure/storage"
	"github.com/pinshop/backend/internal/infrastructure/telemetry"
	"github.com/pinshop/backend/internal/interfaces/http/handler"
	"github.com/pinshop/backend/internal/interfaces/http/middleware"
	"github.com/pinshop/backend/internal/interfaces/http/router"
	"github.com/pinshop/backend/migrations"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap logger, replaced once the OTLP log bridge is known
	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	otelCfg := telemetry.ConfigFrom(cfg.Telemetry)

	logsCfg := otelCfg
	logsCfg.Enabled = otelCfg.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log, err = logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal("Invalid shop time zone", zap.Error(err))
	}

	log.Info("Starting pinshop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", loc.String()),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	metricsCfg := otelCfg
	metricsCfg.Enabled = otelCfg.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricsCfg, 0, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(telemetry.TracerName)
	reportMetrics, err := telemetry.NewReportMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create report metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.Driver), log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate && cfg.Database.Driver == "postgres" {
		if err := runMigrations(&cfg.Database, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Report cache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// reports still work uncached
			log.Error("Redis unavailable, report cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}
	reportCache := cache.NewReportCache(redisClient, cfg.Redis.ReportTTL, log)
	if err := reportCache.ListenForInvalidation(ctx, cache.BumpChannel); err != nil {
		log.Warn("Failed to subscribe to report invalidations", zap.Error(err))
	}

	// Repositories and services
	sales := persistence.NewGormSaleRepository(db.DB)
	repairs := persistence.NewGormRepairOrderRepository(db.DB)
	cash := persistence.NewGormCashTransactionRepository(db.DB)
	productionOrders := persistence.NewGormProductionOrderRepository(db.DB)

	reportOpts := []reportapp.Option{
		reportapp.WithLocation(loc),
		reportapp.WithMetrics(reportMetrics),
	}
	if cfg.Storage.Enabled {
		exportStore, err := storage.NewS3ExportStore(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize export storage", zap.Error(err))
		}
		if err := exportStore.EnsureBucket(ctx); err != nil {
			log.Warn("Export bucket check failed, exports will be returned inline on upload errors", zap.Error(err))
		}
		reportOpts = append(reportOpts, reportapp.WithExporter(exportStore))
		log.Info("Export storage enabled", zap.String("bucket", exportStore.Bucket()))
	}

	reportService := reportapp.NewReportService(sales, repairs, cash, productionOrders, reportCache, log, reportOpts...)
	ledgerService := ledgerapp.NewLedgerService(sales, repairs, cash, productionOrders, reportCache, log,
		ledgerapp.WithLocation(loc),
		ledgerapp.WithMetrics(reportMetrics),
	)

	// Cache warmer
	warmerCfg, err := scheduler.ConfigFrom(cfg.Scheduler)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	warmer := scheduler.NewReportCacheWarmer(warmerCfg, reportService, loc, log)
	if err := warmer.Start(ctx); err != nil {
		log.Fatal("Failed to start report cache warmer", zap.Error(err))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	reportHandler := handler.NewReportHandler(reportService)
	reportHandler.SetCacheWarmer(warmer)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	systemHandler.AddCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	engine := router.NewEngine(router.EngineOptions{
		HTTP:        cfg.HTTP,
		ServiceName: otelCfg.ServiceName,
		Tracing:     tracerProvider.IsEnabled(),
		Meter:       meter,
		Logger:      log,
	}, router.Handlers{
		Report: reportHandler,
		Ledger: ledgerHandler,
		System: systemHandler,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := warmer.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping report cache warmer", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies the migrations compiled into the binary
func runMigrations(cfg *config.DatabaseConfig, log *zap.Logger) error {
	m, err := migration.OpenEmbedded(cfg, migrations.FS, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
