// Package taskpool implements a priority-aware, self-healing thread pool
// executor: a fixed or autoscaling set of persistent worker goroutines
// that pull from a priority queue, each job wrapped in a single-completion
// Future, with per-job timeout and cancellation, worker crash and
// unresponsiveness recovery, and graceful or immediate shutdown.
package taskpool

import (
	"context"
	"time"

	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/metrics"
	"github.com/osmike/taskpool/internal/pool"
)

// Priority is the scheduling band a job is queued under.
type Priority = domain.Priority

const (
	HIGH   = domain.HIGH
	NORMAL = domain.NORMAL
	LOW    = domain.LOW
)

// Metrics is a point-in-time snapshot of a Pool's counters and gauges.
type Metrics = metrics.Snapshot

// Pool is a running thread pool executor. Construct one with New; every
// method is safe to call concurrently from any number of goroutines.
type Pool struct {
	inner *pool.Pool
}

// New starts a Pool per cfg. ctx bounds the pool's lifetime: cancelling it
// is equivalent to calling Terminate.
func New(ctx context.Context, cfg Config) *Pool {
	return &Pool{inner: pool.New(ctx, cfg.resolve())}
}

// SubmitOptions carries the per-job knobs Submit and SubmitFunc accept.
// The zero value submits at HIGH priority with no timeout and no external
// cancellation source — callers that want NORMAL priority (the usual
// default for background work) must set it explicitly, since HIGH sorts
// first in Priority's own zero-value ordering.
type SubmitOptions struct {
	Priority Priority
	Timeout  time.Duration
	Cancel   context.Context
}

// Submit schedules fn for execution and returns a Future for its result.
// source is the function's textual form, scanned by the strict-mode
// validator when enabled; pass "" for a plain Go callable with nothing
// meaningful to scan (see SubmitFunc).
func Submit[R any](p *Pool, opts SubmitOptions, source string, fn func(args []any) (any, error), args ...any) *Future[R] {
	d := domain.Descriptor{Source: source, Fn: fn}
	job := p.inner.Submit(d, args, opts.Priority, opts.Timeout, opts.Cancel)
	return &Future[R]{job: job}
}

// SubmitFunc schedules a native Go callable, skipping the function-text
// policy scan (there is no source text to scan) while still running the
// argument-shape check when strict mode is enabled.
func SubmitFunc[R any](p *Pool, opts SubmitOptions, fn func(args []any) (any, error), args ...any) *Future[R] {
	return Submit[R](p, opts, "", fn, args...)
}

// Close stops accepting new submissions and blocks until every already
// accepted job has completed, then terminates the workers.
func (p *Pool) Close() error {
	return p.inner.Close()
}

// Terminate forcibly and immediately shuts the pool down without waiting
// for in-flight or queued work to finish. Idempotent, and safe whether or
// not Close has already been called.
func (p *Pool) Terminate() {
	p.inner.Terminate()
}

// Metrics returns a live snapshot of the pool's counters and gauges.
func (p *Pool) Metrics() Metrics {
	return p.inner.Metrics()
}

// ResetMetrics zeroes the pool's counters and rebases its uptime clock.
func (p *Pool) ResetMetrics() {
	p.inner.ResetMetrics()
}

// Size returns the current number of worker goroutines.
func (p *Pool) Size() int {
	return p.inner.Size()
}
