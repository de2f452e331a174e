// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Queue backend selectors.
const (
	QueueBackendRedis  = "redis"
	QueueBackendMemory = "memory"
)

// Database driver selectors.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds configuration for the server and worker processes.
type Config struct {
	ServerPort string

	DatabaseDriver string
	DatabaseDSN    string

	QueueBackend string
	RedisAddr    string
	QueueKey     string

	WorkerConcurrency int
	SweepInterval     time.Duration
	SweepGrace        time.Duration

	OpenWeatherAPIKey string
}

// Load reads configuration from DISPATCHQ_* environment variables, applying
// defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("dispatchq")
	v.AutomaticEnv()

	v.SetDefault("server_port", "8000")
	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_dsn", "dispatchq.db")
	v.SetDefault("queue_backend", QueueBackendRedis)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("queue_key", "dispatchq:jobs")
	v.SetDefault("worker_concurrency", 4)
	v.SetDefault("sweep_interval", 30*time.Second)
	v.SetDefault("sweep_grace", time.Minute)
	v.SetDefault("openweather_api_key", "")

	cfg := &Config{
		ServerPort:        v.GetString("server_port"),
		DatabaseDriver:    v.GetString("database_driver"),
		DatabaseDSN:       v.GetString("database_dsn"),
		QueueBackend:      v.GetString("queue_backend"),
		RedisAddr:         v.GetString("redis_addr"),
		QueueKey:          v.GetString("queue_key"),
		WorkerConcurrency: v.GetInt("worker_concurrency"),
		SweepInterval:     v.GetDuration("sweep_interval"),
		SweepGrace:        v.GetDuration("sweep_grace"),
		OpenWeatherAPIKey: v.GetString("openweather_api_key"),
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("config: unknown database driver %q", cfg.DatabaseDriver)
	}
	switch cfg.QueueBackend {
	case QueueBackendRedis, QueueBackendMemory:
	default:
		return nil, fmt.Errorf("config: unknown queue backend %q", cfg.QueueBackend)
	}

	return cfg, nil
}
