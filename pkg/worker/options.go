package worker

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/security"
)

// Config holds worker configuration.
type Config struct {
	Concurrency  int
	WorkerID     string
	PopBackoff   time.Duration
	StorageRetry *RetryConfig

	// EnableSweeper turns on the reconciliation sweep that re-enqueues
	// queued jobs whose reference never reached a worker.
	EnableSweeper bool
	SweepInterval time.Duration
	SweepGrace    time.Duration

	Events *core.Broadcaster
	Logger *slog.Logger
}

// Option configures a Worker.
type Option interface {
	ApplyWorker(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) ApplyWorker(c *Config) { f(c) }

// Concurrency sets the number of executor loops.
// Values are clamped to [1, security.MaxConcurrency].
func Concurrency(n int) Option {
	return optionFunc(func(c *Config) {
		c.Concurrency = security.ClampConcurrency(n)
	})
}

// WithWorkerID overrides the generated worker id.
func WithWorkerID(id string) Option {
	return optionFunc(func(c *Config) {
		c.WorkerID = id
	})
}

// WithStorageRetry overrides the retry policy for store operations.
func WithStorageRetry(cfg RetryConfig) Option {
	return optionFunc(func(c *Config) {
		c.StorageRetry = &cfg
	})
}

// WithSweeper enables the orphan sweep. Jobs still queued grace after
// creation get their reference pushed again; duplicates are safe.
func WithSweeper(interval, grace time.Duration) Option {
	return optionFunc(func(c *Config) {
		c.EnableSweeper = true
		if interval > 0 {
			c.SweepInterval = interval
		}
		if grace > 0 {
			c.SweepGrace = grace
		}
	})
}

// WithEvents attaches a broadcaster receiving job lifecycle events.
func WithEvents(b *core.Broadcaster) Option {
	return optionFunc(func(c *Config) {
		c.Events = b
	})
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *Config) {
		c.Logger = l
	})
}

func newWorkerID() string {
	return uuid.New().String()
}
