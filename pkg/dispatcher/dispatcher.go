// Package dispatcher provides the producer-facing API: synchronous job
// submission returning an opaque handle, and status polling.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/security"
)

// Dispatcher accepts new work and reads job status. It never blocks on job
// execution; completion is observed by polling Status.
type Dispatcher struct {
	store  core.Storage
	queue  core.Queue
	events *core.Broadcaster
	logger *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithEvents attaches a broadcaster receiving JobQueued events.
func WithEvents(b *core.Broadcaster) Option {
	return func(d *Dispatcher) { d.events = b }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a Dispatcher over the given store and queue.
func New(store core.Storage, q core.Queue, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		queue:  q,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit validates the function ref, persists a queued record, pushes its
// reference onto the queue, and returns the job id. The ref is not checked
// against any registry here: an unknown function is only detected when a
// worker attempts it.
//
// If the push fails after the record was created, Submit returns the id
// together with the error; the record stays queued until the worker's
// reconciliation sweep re-enqueues it.
func (d *Dispatcher) Submit(ctx context.Context, functionRef string, args ...any) (string, error) {
	if err := security.ValidateFunctionRef(functionRef); err != nil {
		return "", err
	}

	if args == nil {
		args = []any{}
	}
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("dispatchq: failed to marshal args: %w", err)
	}
	if len(argsBytes) > security.MaxArgsSize {
		return "", core.ErrArgsTooLarge
	}

	job := &core.Job{
		ID:          uuid.New().String(),
		FunctionRef: functionRef,
		Args:        argsBytes,
		Status:      core.StatusQueued,
	}

	if err := d.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("dispatchq: failed to create job: %w", err)
	}

	if err := d.queue.Push(ctx, job.ID); err != nil {
		d.logger.Warn("job created but not enqueued, awaiting sweep",
			"job_id", job.ID, "error", err)
		return job.ID, fmt.Errorf("dispatchq: job %s created but not enqueued: %w", job.ID, err)
	}

	d.events.Emit(&core.JobQueued{Job: job, Timestamp: time.Now()})
	return job.ID, nil
}

// Status returns the current record for the given id. Unknown ids return
// core.ErrJobNotFound. Pure read, safe to call arbitrarily often.
func (d *Dispatcher) Status(ctx context.Context, jobID string) (*core.Job, error) {
	return d.store.Get(ctx, jobID)
}

// QueueLen returns the number of pending references, a read-only diagnostic.
func (d *Dispatcher) QueueLen(ctx context.Context) (int64, error) {
	return d.queue.Len(ctx)
}

// Healthy probes the store and queue backends.
func (d *Dispatcher) Healthy(ctx context.Context) error {
	if err := d.store.Ping(ctx); err != nil {
		return err
	}
	return d.queue.Ping(ctx)
}
