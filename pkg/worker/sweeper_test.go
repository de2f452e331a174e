package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/dispatchq/pkg/core"
)

// backdateJob rewrites created_at so the job looks older than the sweep grace.
func backdateJob(t *testing.T, rig *testRig, jobID string, age time.Duration) {
	t.Helper()
	err := rig.store.DB().Model(&core.Job{}).
		Where("id = ?", jobID).
		Update("created_at", time.Now().Add(-age)).Error
	require.NoError(t, err)
}

func TestSweepOnce_RequeuesOrphans(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// Create records without pushing references, as if every push had failed.
	old := &core.Job{FunctionRef: "noop", Args: []byte(`[]`)}
	require.NoError(t, rig.store.Create(ctx, old))
	backdateJob(t, rig, old.ID, 2*time.Minute)

	fresh := &core.Job{FunctionRef: "noop", Args: []byte(`[]`)}
	require.NoError(t, rig.store.Create(ctx, fresh))

	w := New(rig.store, rig.queue, rig.registry, WithSweeper(time.Hour, time.Minute))
	w.sweepOnce(ctx)

	// Only the old record is past the grace period.
	n, err := rig.queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := rig.queue.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, old.ID, got)
}

func TestSweepOnce_IgnoresRunningAndTerminal(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	running := &core.Job{FunctionRef: "noop", Args: []byte(`[]`)}
	require.NoError(t, rig.store.Create(ctx, running))
	claimed, err := rig.store.MarkRunning(ctx, running.ID, "w1")
	require.NoError(t, err)
	require.True(t, claimed)
	backdateJob(t, rig, running.ID, time.Hour)

	done := &core.Job{FunctionRef: "noop", Args: []byte(`[]`)}
	require.NoError(t, rig.store.Create(ctx, done))
	claimed, err = rig.store.MarkRunning(ctx, done.ID, "w1")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, rig.store.MarkSucceeded(ctx, done.ID, "w1", []byte(`true`)))
	backdateJob(t, rig, done.ID, time.Hour)

	w := New(rig.store, rig.queue, rig.registry, WithSweeper(time.Hour, time.Minute))
	w.sweepOnce(ctx)

	n, err := rig.queue.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "running and finished jobs must not be re-enqueued")
}

func TestSweeper_EndToEndRecovery(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	ran := make(chan struct{}, 1)
	rig.registry.Register("orphan_job", func(ctx context.Context) (string, error) {
		ran <- struct{}{}
		return "recovered", nil
	})

	// Simulate a submit whose push was lost.
	job := &core.Job{FunctionRef: "orphan_job", Args: []byte(`[]`)}
	require.NoError(t, rig.store.Create(ctx, job))
	backdateJob(t, rig, job.ID, 2*time.Minute)

	rig.startWorker(t, WithSweeper(50*time.Millisecond, time.Minute))

	select {
	case <-ran:
	case <-time.After(10 * time.Second):
		t.Fatal("sweeper never recovered the orphaned job")
	}

	got := rig.waitTerminal(t, job.ID)
	assert.Equal(t, core.StatusSucceeded, got.Status)
	assert.JSONEq(t, `"recovered"`, string(got.Result))
}
