// Package queue provides the hand-off channel implementations between the
// dispatcher and workers.
package queue

import (
	"context"
	"time"

	"github.com/forgeworks/dispatchq/pkg/core"
)

// Memory is an in-process core.Queue backed by a buffered channel. FIFO,
// at-least-once only in the sense that duplicate pushes are tolerated; a
// popped reference lost to a crash is not redelivered. Intended for tests
// and single-process deployments.
type Memory struct {
	ch      chan string
	popWait time.Duration
}

// MemoryOption configures a Memory queue.
type MemoryOption func(*Memory)

// WithMemoryPopWait sets how long Pop blocks before returning ErrQueueEmpty.
func WithMemoryPopWait(d time.Duration) MemoryOption {
	return func(m *Memory) { m.popWait = d }
}

// NewMemory creates a Memory queue with the given capacity.
func NewMemory(capacity int, opts ...MemoryOption) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	m := &Memory{
		ch:      make(chan string, capacity),
		popWait: time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Push appends a job reference. Blocks only while the channel is at
// capacity or until the context is cancelled.
func (m *Memory) Push(ctx context.Context, jobID string) error {
	select {
	case m.ch <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop returns the oldest pending reference, ErrQueueEmpty after the wait
// timeout, or the context error on cancellation.
func (m *Memory) Pop(ctx context.Context) (string, error) {
	timer := time.NewTimer(m.popWait)
	defer timer.Stop()

	select {
	case jobID := <-m.ch:
		return jobID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", core.ErrQueueEmpty
	}
}

// Len returns the number of pending references.
func (m *Memory) Len(ctx context.Context) (int64, error) {
	return int64(len(m.ch)), nil
}

// Ping reports liveness; an in-process queue is always live.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}
