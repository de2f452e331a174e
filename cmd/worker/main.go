// Command worker runs the executor pool processing tasks from the queue.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forgeworks/dispatchq/config"
	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/queue"
	"github.com/forgeworks/dispatchq/pkg/registry"
	"github.com/forgeworks/dispatchq/pkg/storage"
	"github.com/forgeworks/dispatchq/pkg/tasks"
	"github.com/forgeworks/dispatchq/pkg/worker"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to open job store", "error", err)
		os.Exit(1)
	}
	if err := store.Migrate(context.Background()); err != nil {
		log.Error("failed to migrate job store", "error", err)
		os.Exit(1)
	}

	q := openQueue(cfg)

	reg := registry.New()
	weather := tasks.NewWeatherFetcher(tasks.WeatherConfig{APIKey: cfg.OpenWeatherAPIKey})
	tasks.Register(reg, weather)

	w := worker.New(store, q, reg,
		worker.Concurrency(cfg.WorkerConcurrency),
		worker.WithSweeper(cfg.SweepInterval, cfg.SweepGrace),
		worker.WithLogger(log),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

func openStorage(cfg *config.Config) (*storage.GormStorage, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return storage.NewGormStorage(db), nil
}

func openQueue(cfg *config.Config) core.Queue {
	if cfg.QueueBackend == config.QueueBackendMemory {
		return queue.NewMemory(0)
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return queue.NewRedis(client, queue.WithRedisKey(cfg.QueueKey))
}
