package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SHUTDOWN_TIMEOUT", "ORDERS_DATA_FILE", "DATABASE_URL", "METRICS_ENABLED", "METRICS_TOKEN", "LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "data/orders.json", cfg.Storage.DataFile)
	assert.False(t, cfg.UsePostgres())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("ORDERS_DATA_FILE", "/var/lib/orders/data.json")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/orders")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_TOKEN", "tok")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "/var/lib/orders/data.json", cfg.Storage.DataFile)
	assert.True(t, cfg.UsePostgres())
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "tok", cfg.Metrics.Token)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
