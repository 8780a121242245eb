package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shopsync", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())

	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "shopsync", cfg.JWT.Issuer)

	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
	assert.Equal(t, 15*time.Second, cfg.Shopify.RequestTimeout)
	assert.Equal(t, 250, cfg.Shopify.PageSize)
	assert.Equal(t, 2.0, cfg.Shopify.RatePerSecond)

	assert.Equal(t, time.Hour, cfg.Sync.Interval)
	assert.Equal(t, 10*time.Second, cfg.Sync.StartupDelay)
	assert.Equal(t, time.Second, cfg.Sync.TenantPacing)
	assert.Equal(t, 30*time.Minute, cfg.Sync.LeaseTTL)
	assert.False(t, cfg.Sync.RequireRedis)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SHOPSYNC_APP_PORT", "9090")
	t.Setenv("SHOPSYNC_DATABASE_PASSWORD", "sekret")
	t.Setenv("SHOPSYNC_SYNC_INTERVAL", "2h")
	t.Setenv("SHOPSYNC_SYNC_REQUIRE_REDIS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "sekret", cfg.Database.Password)
	assert.Equal(t, 2*time.Hour, cfg.Sync.Interval)
	assert.True(t, cfg.Sync.RequireRedis)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("production requires a jwt secret", func(t *testing.T) {
		t.Setenv("SHOPSYNC_APP_ENV", "production")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production with a jwt secret passes", func(t *testing.T) {
		t.Setenv("SHOPSYNC_APP_ENV", "production")
		t.Setenv("SHOPSYNC_JWT_SECRET", "super-secret")

		_, err := Load()
		assert.NoError(t, err)
	})

	t.Run("rejects page size above the API maximum", func(t *testing.T) {
		t.Setenv("SHOPSYNC_SHOPIFY_PAGE_SIZE", "300")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects a sub-minute sync interval", func(t *testing.T) {
		t.Setenv("SHOPSYNC_SYNC_INTERVAL", "5s")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		DBName:   "shopsync",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=app password=pw dbname=shopsync sslmode=require",
		cfg.DSN())
}
