// Package core provides the domain models and interfaces for dispatchq.
package core

import (
	"time"
)

// JobStatus represents the current lifecycle state of a job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Error kinds recorded on failed jobs.
const (
	ErrorKindUnknownFunction = "unknown_function"
	ErrorKindExecution       = "execution_error"
)

// Job is the durable record for one unit of requested work. The store owns
// the authoritative copy; the queue carries only the ID.
type Job struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FunctionRef string    `gorm:"index;size:255;not null" json:"function_ref"`
	Args        []byte    `gorm:"type:bytes" json:"args,omitempty"`
	Status      JobStatus `gorm:"index;size:20;default:'queued'" json:"status"`

	Result       []byte `gorm:"type:bytes" json:"result,omitempty"`
	ErrorKind    string `gorm:"size:64" json:"error_kind,omitempty"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt  time.Time  `gorm:"index;autoCreateTime" json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// LockedBy records which worker claimed the job. Bookkeeping for the
	// single-winner transition guard, not part of the caller-visible contract.
	LockedBy string `gorm:"size:255" json:"-"`
}

// JobError is the structured failure description stored on a failed job.
type JobError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Err returns the structured error for failed jobs, nil otherwise.
func (j *Job) Err() *JobError {
	if j.Status != StatusFailed {
		return nil
	}
	return &JobError{Kind: j.ErrorKind, Message: j.ErrorMessage}
}
