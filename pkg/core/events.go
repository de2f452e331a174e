package core

import (
	"sync"
	"time"
)

// Event is the interface for all job lifecycle events.
type Event interface {
	eventMarker()
}

// JobQueued is emitted when the dispatcher accepts a job.
type JobQueued struct {
	Job       *Job
	Timestamp time.Time
}

func (*JobQueued) eventMarker() {}

// JobStarted is emitted when a worker claims a job and begins executing it.
type JobStarted struct {
	Job       *Job
	Timestamp time.Time
}

func (*JobStarted) eventMarker() {}

// JobSucceeded is emitted when a job reaches the succeeded state.
type JobSucceeded struct {
	Job       *Job
	Duration  time.Duration
	Timestamp time.Time
}

func (*JobSucceeded) eventMarker() {}

// JobFailed is emitted when a job reaches the failed state.
type JobFailed struct {
	Job       *Job
	Kind      string
	Message   string
	Timestamp time.Time
}

func (*JobFailed) eventMarker() {}

// Broadcaster fans lifecycle events out to subscriber channels. Sends never
// block: events are dropped for subscribers that fall behind.
type Broadcaster struct {
	mu   sync.RWMutex
	subs []chan Event
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe returns a channel receiving future events. Callers must
// Unsubscribe when done to avoid leaking the subscription.
func (b *Broadcaster) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel created by Subscribe. The channel
// is not closed; after Unsubscribe returns no further events are sent to it.
func (b *Broadcaster) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers an event to all current subscribers. A nil Broadcaster is a
// no-op so components can treat events as optional.
func (b *Broadcaster) Emit(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]chan Event, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}
