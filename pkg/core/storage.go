package core

import (
	"context"
	"time"
)

// Storage defines the persistence layer owning the authoritative job records.
// All state transitions are atomic: a reader never observes a partially
// applied update, and a transition into a terminal state succeeds for at
// most one caller.
type Storage interface {
	// Migrate creates the necessary database tables.
	Migrate(ctx context.Context) error

	// Create persists a new record in the queued state. The job's Args are
	// owned by the store after the call.
	Create(ctx context.Context, job *Job) error

	// Get returns the full current record, reflecting the most recent
	// committed update. Unknown ids return ErrJobNotFound.
	Get(ctx context.Context, jobID string) (*Job, error)

	// MarkRunning claims a queued job for the given worker and stamps
	// StartedAt. It returns false when another worker already claimed the
	// job or the job is terminal; exactly one concurrent caller wins.
	MarkRunning(ctx context.Context, jobID, workerID string) (bool, error)

	// MarkSucceeded writes the terminal succeeded record with its result
	// and FinishedAt. Jobs not running under workerID return
	// ErrAlreadyTerminal: the transition was lost to another writer.
	MarkSucceeded(ctx context.Context, jobID, workerID string, result []byte) error

	// MarkFailed writes the terminal failed record with a classified error.
	MarkFailed(ctx context.Context, jobID, workerID, kind, message string) error

	// GetOrphaned returns queued jobs created before now-grace, oldest
	// first. Used by the reconciliation sweep to re-enqueue references
	// that never reached a worker.
	GetOrphaned(ctx context.Context, grace time.Duration, limit int) ([]*Job, error)

	// CountByStatus returns the number of jobs in the given state.
	CountByStatus(ctx context.Context, status JobStatus) (int64, error)

	// Ping reports backend liveness.
	Ping(ctx context.Context) error
}

// Queue is the ordered hand-off channel of job ids between the dispatcher
// and workers. Delivery is at-least-once: a reference may reach more than
// one consumer, and duplicate pushes of the same id are tolerated. The
// store's single-winner claim makes duplicates a no-op for the job's final
// outcome.
type Queue interface {
	// Push appends a reference. It blocks only up to backend capacity or
	// context cancellation.
	Push(ctx context.Context, jobID string) error

	// Pop removes and returns the oldest pending reference. It blocks until
	// a reference arrives, the context is cancelled, or the backend's wait
	// timeout elapses (ErrQueueEmpty).
	Pop(ctx context.Context) (string, error)

	// Len returns the number of pending references.
	Len(ctx context.Context) (int64, error)

	// Ping reports backend liveness.
	Ping(ctx context.Context) error
}
