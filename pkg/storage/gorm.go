// Package storage provides the GORM-backed Storage implementation.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/security"
)

// GormStorage implements core.Storage using GORM. Every state transition is
// a single conditional UPDATE, so transitions are atomic and at most one
// concurrent writer wins a claim or a terminal write.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a GORM-backed storage.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// DB returns the underlying gorm handle.
func (s *GormStorage) DB() *gorm.DB {
	return s.db
}

// Migrate creates the jobs table.
func (s *GormStorage) Migrate(ctx context.Context) error {
	return storeErr(s.db.WithContext(ctx).AutoMigrate(&core.Job{}))
}

// Create persists a new record in the queued state.
func (s *GormStorage) Create(ctx context.Context, job *core.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = core.StatusQueued
	}
	return storeErr(s.db.WithContext(ctx).Create(job).Error)
}

// Get retrieves a job by ID.
func (s *GormStorage) Get(ctx context.Context, jobID string) (*core.Job, error) {
	var job core.Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrJobNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &job, nil
}

// MarkRunning claims a queued job for workerID. The status guard in the
// WHERE clause makes the claim single-winner under concurrent workers.
func (s *GormStorage) MarkRunning(ctx context.Context, jobID, workerID string) (bool, error) {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("id = ? AND status = ?", jobID, core.StatusQueued).
		Updates(map[string]any{
			"status":     core.StatusRunning,
			"started_at": now,
			"locked_by":  workerID,
		})
	if result.Error != nil {
		return false, storeErr(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MarkSucceeded writes the terminal succeeded record.
func (s *GormStorage) MarkSucceeded(ctx context.Context, jobID, workerID string, resultData []byte) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("id = ? AND status = ? AND locked_by = ?", jobID, core.StatusRunning, workerID).
		Updates(map[string]any{
			"status":      core.StatusSucceeded,
			"result":      resultData,
			"finished_at": now,
			"locked_by":   "",
		})
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrAlreadyTerminal
	}
	return nil
}

// MarkFailed writes the terminal failed record. The message is sanitized
// before storage.
func (s *GormStorage) MarkFailed(ctx context.Context, jobID, workerID, kind, message string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("id = ? AND status = ? AND locked_by = ?", jobID, core.StatusRunning, workerID).
		Updates(map[string]any{
			"status":        core.StatusFailed,
			"error_kind":    kind,
			"error_message": security.SanitizeErrorMessage(message),
			"finished_at":   now,
			"locked_by":     "",
		})
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrAlreadyTerminal
	}
	return nil
}

// GetOrphaned returns queued jobs created before now-grace, oldest first.
func (s *GormStorage) GetOrphaned(ctx context.Context, grace time.Duration, limit int) ([]*core.Job, error) {
	var jobs []*core.Job
	cutoff := time.Now().Add(-grace)
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", core.StatusQueued, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return jobs, nil
}

// CountByStatus returns the number of jobs in the given state.
func (s *GormStorage) CountByStatus(ctx context.Context, status core.JobStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

// Ping reports backend liveness.
func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeErr(err)
	}
	return storeErr(sqlDB.PingContext(ctx))
}

// storeErr tags backend failures so callers can classify with errors.Is.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
}
