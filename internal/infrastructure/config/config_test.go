package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pinEnvKeys = []string{
	"PIN_APP_NAME", "PIN_APP_ENV", "PIN_APP_PORT", "PIN_APP_TIMEZONE",
	"PIN_DATABASE_DRIVER", "PIN_DATABASE_HOST", "PIN_DATABASE_PORT",
	"PIN_DATABASE_PASSWORD", "PIN_DATABASE_SSLMODE",
	"PIN_DATABASE_MAX_OPEN_CONNS", "PIN_DATABASE_MAX_IDLE_CONNS",
	"PIN_REDIS_REPORT_TTL", "PIN_SCHEDULER_WARM_CRON_SCHEDULE",
	"PIN_STORAGE_ENABLED", "PIN_STORAGE_ACCESS_KEY_ID", "PIN_STORAGE_SECRET_ACCESS_KEY",
	"PIN_TELEMETRY_SAMPLING_RATIO", "PIN_TELEMETRY_DB_LOG_FULL_SQL",
}

// clearEnv blanks every key so values from the outer environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range pinEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pinshop-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.App.Timezone)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "pinshop", cfg.Database.DBName)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10*time.Minute, cfg.Redis.ReportTTL)
		assert.Equal(t, "30 0 * * *", cfg.Scheduler.WarmCronSchedule)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignTTL)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with PIN prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_APP_NAME", "test-app")
		t.Setenv("PIN_APP_PORT", "9000")
		t.Setenv("PIN_APP_TIMEZONE", "UTC")
		t.Setenv("PIN_DATABASE_DRIVER", "sqlite")
		t.Setenv("PIN_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("PIN_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("PIN_REDIS_REPORT_TTL", "90s")
		t.Setenv("PIN_SCHEDULER_WARM_CRON_SCHEDULE", "15 1 * * *")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "UTC", cfg.App.Timezone)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 90*time.Second, cfg.Redis.ReportTTL)
		assert.Equal(t, "15 1 * * *", cfg.Scheduler.WarmCronSchedule)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("PIN_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_APP_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app.timezone")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects out of range sampling ratio", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("storage requires credentials when enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.access_key_id")
	})
}

func TestProductionValidation(t *testing.T) {
	base := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PIN_APP_ENV", "production")
		t.Setenv("PIN_DATABASE_PASSWORD", "s3cret")
		t.Setenv("PIN_DATABASE_SSLMODE", "require")
	}

	t.Run("accepts a hardened configuration", func(t *testing.T) {
		base(t)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database password", func(t *testing.T) {
		base(t)
		t.Setenv("PIN_DATABASE_PASSWORD", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("rejects sslmode disable", func(t *testing.T) {
		base(t)
		t.Setenv("PIN_DATABASE_SSLMODE", "disable")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("rejects sqlite", func(t *testing.T) {
		base(t)
		t.Setenv("PIN_DATABASE_DRIVER", "sqlite")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("rejects full SQL logging", func(t *testing.T) {
		base(t)
		t.Setenv("PIN_TELEMETRY_DB_LOG_FULL_SQL", "true")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.local", Port: 5433, User: "pin", Password: "p@ss:word/1",
		DBName: "pinshop", SSLMode: "require",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://pin:")
	assert.Contains(t, dsn, "@db.local:5433/pinshop")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss:word/1")
}

func TestAppConfig_Location(t *testing.T) {
	loc, err := AppConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", loc.String())

	_, err = AppConfig{Timezone: "Nope/Zone"}.Location()
	assert.Error(t, err)
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
