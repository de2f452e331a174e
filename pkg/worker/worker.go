// Package worker provides the executor pool that runs jobs from the queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/registry"
)

// Worker runs a pool of executor loops against a shared queue and store.
// Multiple Worker processes may compete over the same backends; the store's
// single-winner claim keeps duplicate deliveries harmless.
type Worker struct {
	store    core.Storage
	queue    core.Queue
	registry *registry.Registry
	config   Config
	events   *core.Broadcaster
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates a worker over the given store, queue, and function registry.
func New(store core.Storage, q core.Queue, reg *registry.Registry, opts ...Option) *Worker {
	config := Config{
		Concurrency:   4,
		PopBackoff:    time.Second,
		SweepInterval: 30 * time.Second,
		SweepGrace:    time.Minute,
	}
	for _, opt := range opts {
		opt.ApplyWorker(&config)
	}
	if config.WorkerID == "" {
		config.WorkerID = newWorkerID()
	}
	if config.StorageRetry == nil {
		defaultCfg := DefaultRetryConfig()
		config.StorageRetry = &defaultCfg
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		store:    store,
		queue:    q,
		registry: reg,
		config:   config,
		events:   config.Events,
		logger:   logger,
	}
}

// Start runs the executor loops and, if enabled, the orphan sweeper. It
// blocks until the context is cancelled, then waits for in-flight jobs to
// finish their terminal store writes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"concurrency", w.config.Concurrency,
		"functions", w.registry.Refs(),
	)

	if w.config.EnableSweeper {
		w.wg.Add(1)
		go w.runSweeper(ctx)
	}

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.runLoop(ctx)
	}

	<-ctx.Done()
	w.wg.Wait()
	return ctx.Err()
}

// runLoop is one executor: pop a reference, process it, repeat. The loop
// never exits on a job failure, only on context cancellation.
func (w *Worker) runLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobID, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, core.ErrQueueEmpty) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.logger.Error("failed to pop from queue", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.config.PopBackoff):
			}
			continue
		}

		w.processJob(ctx, jobID)
	}
}

// processJob drives one job through the state machine. Stale or duplicate
// references are dropped silently; execution failures are recorded on the
// job, never raised.
func (w *Worker) processJob(ctx context.Context, jobID string) {
	job, err := w.getWithRetry(ctx, jobID)
	if err != nil {
		if errors.Is(err, core.ErrJobNotFound) {
			w.logger.Debug("dropping unknown job reference", "job_id", jobID)
		} else {
			w.logger.Error("failed to load job", "job_id", jobID, "error", err)
		}
		return
	}
	if job.Status.Terminal() {
		w.logger.Debug("dropping duplicate reference to finished job", "job_id", jobID)
		return
	}

	claimed, err := w.claimWithRetry(ctx, jobID)
	if err != nil {
		w.logger.Error("failed to claim job", "job_id", jobID, "error", err)
		return
	}
	if !claimed {
		w.logger.Debug("lost claim race, dropping reference", "job_id", jobID)
		return
	}

	startTime := time.Now()
	job.Status = core.StatusRunning
	w.events.Emit(&core.JobStarted{Job: job, Timestamp: startTime})
	w.logger.Info("job started", "job_id", job.ID, "function", job.FunctionRef)

	h, ok := w.registry.Lookup(job.FunctionRef)
	if !ok {
		w.failJob(ctx, job, core.ErrorKindUnknownFunction,
			fmt.Sprintf("no function registered for %q", job.FunctionRef))
		return
	}

	result, err := w.invoke(ctx, h, job.Args)
	if err != nil {
		w.failJob(ctx, job, core.ErrorKindExecution, err.Error())
		return
	}
	w.succeedJob(ctx, job, result, time.Since(startTime))
}

// invoke runs the job function, converting panics into ordinary errors so
// a misbehaving function never takes down the executor.
func (w *Worker) invoke(ctx context.Context, h *registry.Handler, args []byte) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Invoke(ctx, args)
}

func (w *Worker) succeedJob(ctx context.Context, job *core.Job, result []byte, duration time.Duration) {
	// The terminal write must land even when ctx was cancelled mid-execution:
	// shutdown drains in-flight jobs, and a dropped write would wedge the job
	// in running with its queue reference already consumed.
	writeCtx := context.WithoutCancel(ctx)
	err := retryWithBackoff(writeCtx, *w.config.StorageRetry, func() error {
		err := w.store.MarkSucceeded(writeCtx, job.ID, w.config.WorkerID, result)
		if errors.Is(err, core.ErrAlreadyTerminal) {
			// Lost the terminal race to a duplicate delivery.
			return nil
		}
		return err
	})
	if err != nil {
		w.logger.Error("failed to record job success", "job_id", job.ID, "error", err)
		return
	}

	job.Status = core.StatusSucceeded
	job.Result = result
	w.events.Emit(&core.JobSucceeded{Job: job, Duration: duration, Timestamp: time.Now()})
	w.logger.Info("job succeeded", "job_id", job.ID, "duration", duration)
}

func (w *Worker) failJob(ctx context.Context, job *core.Job, kind, message string) {
	// Same drain guarantee as succeedJob: the failure record must land even
	// when ctx was cancelled while the function ran.
	writeCtx := context.WithoutCancel(ctx)
	err := retryWithBackoff(writeCtx, *w.config.StorageRetry, func() error {
		err := w.store.MarkFailed(writeCtx, job.ID, w.config.WorkerID, kind, message)
		if errors.Is(err, core.ErrAlreadyTerminal) {
			return nil
		}
		return err
	})
	if err != nil {
		w.logger.Error("failed to record job failure", "job_id", job.ID, "error", err)
		return
	}

	job.Status = core.StatusFailed
	job.ErrorKind = kind
	job.ErrorMessage = message
	w.events.Emit(&core.JobFailed{Job: job, Kind: kind, Message: message, Timestamp: time.Now()})
	w.logger.Warn("job failed", "job_id", job.ID, "kind", kind, "error", message)
}

func (w *Worker) getWithRetry(ctx context.Context, jobID string) (*core.Job, error) {
	var job *core.Job
	err := retryWithBackoff(ctx, *w.config.StorageRetry, func() error {
		var getErr error
		job, getErr = w.store.Get(ctx, jobID)
		if errors.Is(getErr, core.ErrJobNotFound) {
			// Lookup miss, not a transient backend failure.
			return retryHalt(getErr)
		}
		return getErr
	})
	return job, err
}

func (w *Worker) claimWithRetry(ctx context.Context, jobID string) (bool, error) {
	var claimed bool
	err := retryWithBackoff(ctx, *w.config.StorageRetry, func() error {
		var claimErr error
		claimed, claimErr = w.store.MarkRunning(ctx, jobID, w.config.WorkerID)
		return claimErr
	})
	return claimed, err
}
