// Package dispatchq provides a durable background job queue with polling
// status: submit work through a synchronous front door, get an opaque
// handle back immediately, and poll later for the outcome.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Create storage, queue, and dispatcher
//	db, _ := gorm.Open(sqlite.Open("dispatchq.db"), &gorm.Config{})
//	store := dispatchq.NewGormStorage(db)
//	store.Migrate(context.Background())
//	q := dispatchq.NewMemoryQueue(0)
//	d := dispatchq.NewDispatcher(store, q)
//
//	// Register functions and start a worker
//	reg := dispatchq.NewRegistry()
//	reg.Register("add", func(ctx context.Context, a, b int) (int, error) {
//	    return a + b, nil
//	})
//	w := dispatchq.NewWorker(store, q, reg)
//	go w.Start(ctx)
//
//	// Submit and poll
//	id, _ := d.Submit(ctx, "add", 1, 2)
//	job, _ := d.Status(ctx, id)
package dispatchq

import (
	"time"

	"gorm.io/gorm"

	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/dispatcher"
	"github.com/forgeworks/dispatchq/pkg/queue"
	"github.com/forgeworks/dispatchq/pkg/registry"
	"github.com/forgeworks/dispatchq/pkg/security"
	"github.com/forgeworks/dispatchq/pkg/storage"
	"github.com/forgeworks/dispatchq/pkg/worker"
)

// Type aliases re-exporting the public API.
type (
	// Job is the durable record for one unit of requested work.
	Job = core.Job

	// JobStatus represents the current lifecycle state of a job.
	JobStatus = core.JobStatus

	// JobError is the structured failure description stored on a failed job.
	JobError = core.JobError

	// Storage defines the persistence layer owning the job records.
	Storage = core.Storage

	// Queue is the ordered hand-off channel of job ids.
	Queue = core.Queue

	// Event is the interface for all job lifecycle events.
	Event = core.Event

	// JobQueued is emitted when the dispatcher accepts a job.
	JobQueued = core.JobQueued

	// JobStarted is emitted when a worker begins executing a job.
	JobStarted = core.JobStarted

	// JobSucceeded is emitted when a job reaches the succeeded state.
	JobSucceeded = core.JobSucceeded

	// JobFailed is emitted when a job reaches the failed state.
	JobFailed = core.JobFailed

	// Broadcaster fans lifecycle events out to subscribers.
	Broadcaster = core.Broadcaster

	// Dispatcher accepts new work and reads job status.
	Dispatcher = dispatcher.Dispatcher

	// Registry is a fixed table of job functions keyed by function ref.
	Registry = registry.Registry

	// Worker runs a pool of executor loops against a queue and store.
	Worker = worker.Worker

	// WorkerOption configures a Worker.
	WorkerOption = worker.Option

	// RetryConfig controls backoff for transient storage failures.
	RetryConfig = worker.RetryConfig

	// GormStorage implements Storage using GORM.
	GormStorage = storage.GormStorage

	// MemoryQueue is the in-process Queue backend.
	MemoryQueue = queue.Memory

	// RedisQueue is the Redis list Queue backend.
	RedisQueue = queue.Redis
)

// Job states.
const (
	StatusQueued    = core.StatusQueued
	StatusRunning   = core.StatusRunning
	StatusSucceeded = core.StatusSucceeded
	StatusFailed    = core.StatusFailed
)

// Error kinds recorded on failed jobs.
const (
	ErrorKindUnknownFunction = core.ErrorKindUnknownFunction
	ErrorKindExecution       = core.ErrorKindExecution
)

// Limits enforced at the submission boundary.
const (
	MaxFunctionRefLength = security.MaxFunctionRefLength
	MaxArgsSize          = security.MaxArgsSize
)

// Error variables.
var (
	ErrInvalidFunctionRef = core.ErrInvalidFunctionRef
	ErrFunctionRefTooLong = core.ErrFunctionRefTooLong
	ErrArgsTooLarge       = core.ErrArgsTooLarge
	ErrJobNotFound        = core.ErrJobNotFound
	ErrAlreadyTerminal    = core.ErrAlreadyTerminal
	ErrStoreUnavailable   = core.ErrStoreUnavailable
	ErrQueueUnavailable   = core.ErrQueueUnavailable
	ErrQueueEmpty         = core.ErrQueueEmpty
)

// NewDispatcher creates a Dispatcher over the given store and queue.
func NewDispatcher(store Storage, q Queue, opts ...dispatcher.Option) *Dispatcher {
	return dispatcher.New(store, q, opts...)
}

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return registry.New()
}

// NewWorker creates a worker over the given store, queue, and registry.
func NewWorker(store Storage, q Queue, reg *Registry, opts ...WorkerOption) *Worker {
	return worker.New(store, q, reg, opts...)
}

// NewGormStorage creates a GORM-backed storage.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return storage.NewGormStorage(db)
}

// NewMemoryQueue creates an in-process queue with the given capacity.
func NewMemoryQueue(capacity int, opts ...queue.MemoryOption) *MemoryQueue {
	return queue.NewMemory(capacity, opts...)
}

// NewBroadcaster creates an event broadcaster.
func NewBroadcaster() *Broadcaster {
	return core.NewBroadcaster()
}

// Worker option functions.

// Concurrency sets the number of executor loops.
func Concurrency(n int) WorkerOption {
	return worker.Concurrency(n)
}

// WithSweeper enables the orphan reconciliation sweep.
func WithSweeper(interval, grace time.Duration) WorkerOption {
	return worker.WithSweeper(interval, grace)
}

// WithEvents attaches a broadcaster receiving job lifecycle events.
func WithEvents(b *Broadcaster) WorkerOption {
	return worker.WithEvents(b)
}
