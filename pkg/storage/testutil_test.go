package storage

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forgeworks/dispatchq/pkg/core"
)

var dbCounter atomic.Int64

// openTestDB opens a database for storage tests. When TEST_DATABASE_URL is
// set it connects to PostgreSQL; otherwise it creates a unique file-based
// SQLite database removed on cleanup.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err, "open postgres test db")

		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(1)

		cleanupTestDB(t, db)
		t.Cleanup(func() {
			cleanupTestDB(t, db)
			_ = sqlDB.Close()
		})
		return db
	}

	n := dbCounter.Add(1)
	dbPath := fmt.Sprintf("%s/dispatchq_test_%d_%d.db", t.TempDir(), os.Getpid(), n)

	// busy_timeout keeps concurrent-writer tests from tripping SQLITE_BUSY.
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite test db")
	return db
}

func cleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	_ = db.Exec("DROP TABLE IF EXISTS jobs").Error
}

// openTestStorage opens a DB, creates a GormStorage, and migrates.
func openTestStorage(t *testing.T) *GormStorage {
	t.Helper()
	s := NewGormStorage(openTestDB(t))
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// createTestJob persists a fresh queued job and returns it.
func createTestJob(t *testing.T, s *GormStorage, ref string) *core.Job {
	t.Helper()
	job := &core.Job{FunctionRef: ref, Args: []byte(`[]`)}
	require.NoError(t, s.Create(context.Background(), job))
	return job
}
