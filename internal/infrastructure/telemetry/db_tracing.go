package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pinshop/backend/internal/infrastructure/config"
)

// DBTracingConfig controls query spans
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; development only
	SlowQueryThresh time.Duration
	DBSystem        string
	TracerProvider  trace.TracerProvider // nil uses the global provider
}

// DBTracingConfigFrom maps application configuration
func DBTracingConfigFrom(cfg config.TelemetryConfig, driver string) DBTracingConfig {
	system := "postgresql"
	if driver == "sqlite" {
		system = "sqlite"
	}
	return DBTracingConfig{
		Enabled:         cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
		DBSystem:        system,
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm plus callbacks that tag slow queries
// and record the affected table on the query span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateQuerySpan(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	register := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("pin:timing_before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("pin:timing_before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("pin:timing_before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("pin:timing_before_delete", before) },
		func() error { return cb.Create().After("gorm:create").Register("pin:timing_after_create", after) },
		func() error { return cb.Query().After("gorm:query").Register("pin:timing_after_query", after) },
		func() error { return cb.Update().After("gorm:update").Register("pin:timing_after_update", after) },
		func() error { return cb.Delete().After("gorm:delete").Register("pin:timing_after_delete", after) },
	}
	for _, r := range register {
		if err := r(); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func annotateQuerySpan(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || slow <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
