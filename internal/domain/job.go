package domain

import (
	"context"
	"sync"
	"time"
)

// Result is what a Job's completion sink carries: either a value or a
// typed failure, never both.
type Result struct {
	Value any
	Err   error
}

// Job is a single scheduled unit of work. It is created at submission,
// mutated only by the pool scheduler (to attach the runtime attributes
// below), and completed exactly once via Complete.
type Job struct {
	ID         string
	Descriptor Descriptor
	Args       []any
	Priority   Priority
	Timeout    time.Duration

	// Cancel is the caller-supplied cancellation handle. Nil means the
	// job has no external cancellation source.
	Cancel context.Context

	// done is the one-shot completion sink. Buffered with capacity 1 so
	// Complete never blocks the caller that resolves it.
	done chan Result
	once sync.Once

	// StartedAt, WorkerID, and Timer are runtime attributes stamped by
	// the scheduler when the job is bound to a worker. WorkerID is -1
	// while the job is unbound (queued or not yet dispatched); 0 is a
	// valid worker slot index.
	StartedAt time.Time
	WorkerID  int
	Timer     *time.Timer
}

// NewJob constructs a Job with its completion sink ready to receive
// exactly one Result.
func NewJob(id string, d Descriptor, args []any, priority Priority, timeout time.Duration, cancel context.Context) *Job {
	return &Job{
		ID:         id,
		Descriptor: d,
		Args:       args,
		Priority:   priority,
		Timeout:    timeout,
		Cancel:     cancel,
		done:       make(chan Result, 1),
		WorkerID:   -1,
	}
}

// Complete signals the job's completion sink exactly once. Subsequent
// calls are no-ops, preserving the single-completion invariant even if
// two racing paths (e.g. a timeout firing just as a response arrives)
// both attempt to resolve the same Job.
func (j *Job) Complete(value any, err error) {
	j.once.Do(func() {
		j.done <- Result{Value: value, Err: err}
		close(j.done)
	})
}

// Done returns the channel the submitting caller (or an internal adapter)
// receives the single Result from.
func (j *Job) Done() <-chan Result {
	return j.done
}
