package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pinshop/backend/internal/infrastructure/config"
)

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func setupTracedDB(t *testing.T, slow time.Duration) (*gorm.DB, *tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: slow,
		DBSystem:        "sqlite",
		TracerProvider:  tp,
	}, zap.NewNop()))
	return db, recorder, tp
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, zap.NewNop()))
	assert.Empty(t, db.Plugins)
}

func TestRegisterDBTracing_RecordsQuerySpans(t *testing.T) {
	db, recorder, tp := setupTracedDB(t, time.Hour)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "pin"}).Error)
	var got tracedRow
	require.NoError(t, db.WithContext(ctx).First(&got, "name = ?", "pin").Error)
	parent.End()

	var dbSpans int
	for _, s := range recorder.Ended() {
		if s.Parent().SpanID() == parent.SpanContext().SpanID() {
			dbSpans++
		}
	}
	assert.GreaterOrEqual(t, dbSpans, 2)
}

func TestRegisterDBTracing_DoubleRegistrationFails(t *testing.T) {
	db, _, _ := setupTracedDB(t, time.Hour)
	err := RegisterDBTracing(db, DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	assert.Error(t, err)
}

func TestDBTracingConfigFrom(t *testing.T) {
	cfg := DBTracingConfigFrom(config.TelemetryConfig{
		DBTraceEnabled:    true,
		DBSlowQueryThresh: 50 * time.Millisecond,
	}, "sqlite")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "sqlite", cfg.DBSystem)
	assert.Equal(t, 50*time.Millisecond, cfg.SlowQueryThresh)
	assert.False(t, cfg.LogFullSQL)

	assert.Equal(t, "postgresql", DBTracingConfigFrom(config.TelemetryConfig{}, "postgres").DBSystem)
}
