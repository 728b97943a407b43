// Package errs defines the sentinel errors a submitted Job can fail with
// and a helper for attaching call-site detail to them, mirroring the
// errs.New(sentinel, detail) idiom the pool's ancestor used.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when strict-mode input validation rejects
	// a submission (function policy or argument shape).
	ErrValidation = errors.New("taskpool: validation failed")

	// ErrClosing is returned when Submit is called after Close has begun.
	ErrClosing = errors.New("taskpool: pool is closing")

	// ErrTimeout is returned when a job's configured timeout elapses
	// before the worker responds.
	ErrTimeout = errors.New("taskpool: job timed out")

	// ErrCancelled is returned when the caller's cancellation handle
	// fires before the job completes.
	ErrCancelled = errors.New("taskpool: job cancelled")

	// ErrWorkerCrash is returned when the worker executing a job panics,
	// or had already been torn down when the job was handed to it.
	ErrWorkerCrash = errors.New("taskpool: worker crashed")

	// ErrPoolShutdown is returned for a job that Terminate abandoned
	// (running, queued, or not yet dispatched) when it tore the pool
	// down.
	ErrPoolShutdown = errors.New("taskpool: pool has been shut down")

	// ErrJobNotFound is returned when an operation references a job ID
	// the pool has no record of.
	ErrJobNotFound = errors.New("taskpool: job not found")
)

// New wraps a sentinel with call-site detail, preserving errors.Is
// against the sentinel.
func New(sentinel error, detail string) error {
	return fmt.Errorf("%w: %s", sentinel, detail)
}

// UserError wraps the error payload a worker reported from the caller's
// submitted function itself (as opposed to a pool-level failure kind).
// It preserves the worker's reported kind/message/trace. It has no Unwrap
// method: callers match it with errors.As against *UserError and read the
// fields directly.
type UserError struct {
	Kind    string
	Message string
	Trace   string
}

func (e *UserError) Error() string {
	if e.Kind == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
