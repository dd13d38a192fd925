package config_test

import (
	"testing"

	"inventory/internal/config"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("PORT", "8080")
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "inventory")
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("GO_ENV", "dev")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("NEAR_EXPIRY_DAYS", "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(10), cfg.LowStockThreshold)
	assert.Equal(t, 30, cfg.NearExpiryDays)
}

func TestLoad_ThresholdOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOW_STOCK_THRESHOLD", "25")
	t.Setenv("NEAR_EXPIRY_DAYS", "14")

	cfg, err := config.Load()

	assert.NoError(t, err)
	assert.Equal(t, int64(25), cfg.LowStockThreshold)
	assert.Equal(t, 14, cfg.NearExpiryDays)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOW_STOCK_THRESHOLD", "-1")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_MissingPostgresPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_PORT", "")

	_, err := config.Load()
	assert.Error(t, err)
}
