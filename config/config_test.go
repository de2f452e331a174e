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

	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "dispatchq.db", cfg.DatabaseDSN)
	assert.Equal(t, QueueBackendRedis, cfg.QueueBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "dispatchq:jobs", cfg.QueueKey)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, time.Minute, cfg.SweepGrace)
	assert.Empty(t, cfg.OpenWeatherAPIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISPATCHQ_SERVER_PORT", "9100")
	t.Setenv("DISPATCHQ_DATABASE_DRIVER", "postgres")
	t.Setenv("DISPATCHQ_DATABASE_DSN", "host=db user=app dbname=jobs")
	t.Setenv("DISPATCHQ_QUEUE_BACKEND", "memory")
	t.Setenv("DISPATCHQ_WORKER_CONCURRENCY", "16")
	t.Setenv("DISPATCHQ_SWEEP_INTERVAL", "10s")
	t.Setenv("DISPATCHQ_SWEEP_GRACE", "5m")
	t.Setenv("DISPATCHQ_OPENWEATHER_API_KEY", "abc123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "host=db user=app dbname=jobs", cfg.DatabaseDSN)
	assert.Equal(t, QueueBackendMemory, cfg.QueueBackend)
	assert.Equal(t, 16, cfg.WorkerConcurrency)
	assert.Equal(t, 10*time.Second, cfg.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.SweepGrace)
	assert.Equal(t, "abc123", cfg.OpenWeatherAPIKey)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("DISPATCHQ_DATABASE_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestLoad_UnknownQueueBackend(t *testing.T) {
	t.Setenv("DISPATCHQ_QUEUE_BACKEND", "kafka")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown queue backend")
}
