package core

import "errors"

// Submission validation errors.
var (
	ErrInvalidFunctionRef = errors.New("dispatchq: invalid function ref (must be alphanumeric, start with letter)")
	ErrFunctionRefTooLong = errors.New("dispatchq: function ref too long")
	ErrArgsTooLarge       = errors.New("dispatchq: job arguments exceed size limit")
)

// Lookup and transition errors.
var (
	// ErrJobNotFound is returned for ids that were never created. A lookup
	// miss, not a system error.
	ErrJobNotFound = errors.New("dispatchq: job not found")

	// ErrAlreadyTerminal signals a lost race on a terminal transition. The
	// worker swallows it; it is never surfaced to submitters.
	ErrAlreadyTerminal = errors.New("dispatchq: job already in a terminal state")
)

// Backend errors. Concrete store and queue implementations wrap their
// backend failures with these so callers can classify with errors.Is.
var (
	ErrStoreUnavailable = errors.New("dispatchq: job store unavailable")
	ErrQueueUnavailable = errors.New("dispatchq: queue unavailable")

	// ErrQueueEmpty is returned by Pop when the wait timeout elapses with
	// nothing to deliver.
	ErrQueueEmpty = errors.New("dispatchq: queue empty")
)
