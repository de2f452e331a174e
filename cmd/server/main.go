// Command server runs the HTTP front end: task submission and status polling.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forgeworks/dispatchq/api/rest/routes"
	"github.com/forgeworks/dispatchq/config"
	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/dispatcher"
	"github.com/forgeworks/dispatchq/pkg/queue"
	"github.com/forgeworks/dispatchq/pkg/storage"
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
	d := dispatcher.New(store, q, dispatcher.WithLogger(log))

	r := mux.NewRouter()
	routes.Setup(r, d, log)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
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
