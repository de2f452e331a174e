package worker

import (
	"context"
	"time"
)

// sweepBatchSize bounds how many orphans one tick re-enqueues.
const sweepBatchSize = 100

// runSweeper periodically re-enqueues queued jobs whose reference never
// reached a worker, closing the gap left when a push fails after the record
// was created. Re-pushing a job that is merely backlogged produces a
// duplicate reference, which the claim guard makes harmless.
func (w *Worker) runSweeper(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

func (w *Worker) sweepOnce(ctx context.Context) {
	jobs, err := w.store.GetOrphaned(ctx, w.config.SweepGrace, sweepBatchSize)
	if err != nil {
		w.logger.Error("orphan sweep failed", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	requeued := 0
	for _, job := range jobs {
		if err := w.queue.Push(ctx, job.ID); err != nil {
			w.logger.Error("failed to re-enqueue orphaned job", "job_id", job.ID, "error", err)
			continue
		}
		requeued++
	}
	w.logger.Info("re-enqueued orphaned jobs", "count", requeued)
}
