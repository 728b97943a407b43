// Package worker implements the Worker Handle: one isolated execution
// context (a goroutine) plus its liveness metadata, and the request side
// of the worker protocol. Every Handle reports completed/crashed events
// onto a channel shared by the whole pool, which the scheduler's
// single dispatch loop fans in and reacts to.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osmike/taskpool/internal/domain"
	"go.uber.org/zap"
)

// Handle is the scheduler-visible reference to one worker goroutine. At
// any time it is either idle or bound to exactly one in-flight Job; the
// binding itself lives in the pool's map, not here, but the liveness
// fields below are this Handle's own.
type Handle struct {
	ID int

	requests chan *domain.Job
	events   chan<- Event

	cancel context.CancelFunc
	done   chan struct{}
	term   sync.Once

	failureCount  atomic.Int32
	lastHeartbeat atomic.Int64
	healthy       atomic.Bool

	log *zap.Logger
}

// Spawn starts a new worker goroutine bound to id and returns its Handle.
// events is the pool's shared fan-in channel; every Handle spawned by the
// same pool shares it, so the pool's dispatch loop can select over one
// channel regardless of how many workers exist.
func Spawn(ctx context.Context, id int, events chan<- Event, log *zap.Logger) *Handle {
	workerCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ID:       id,
		requests: make(chan *domain.Job),
		events:   events,
		cancel:   cancel,
		done:     make(chan struct{}),
		log:      log.Named("worker").With(zap.Int("worker_id", id)),
	}
	h.healthy.Store(true)
	h.Touch()

	go h.run(workerCtx)
	return h
}

// Touch bumps the worker's last-activity timestamp. Send calls this when
// the pool hands a job to the worker; execute calls it again once the
// job's Fn returns or panics, just before the worker emits its event.
func (h *Handle) Touch() {
	h.lastHeartbeat.Store(time.Now().UnixNano())
}

// LastHeartbeat returns the worker's last-activity timestamp.
func (h *Handle) LastHeartbeat() time.Time {
	return time.Unix(0, h.lastHeartbeat.Load())
}

// IsHealthy reports whether the worker is still considered fit to
// receive work.
func (h *Handle) IsHealthy() bool {
	return h.healthy.Load()
}

// MarkUnhealthy flips the worker's health flag. Used on crash, timeout
// kill, and health-check eviction.
func (h *Handle) MarkUnhealthy() {
	h.healthy.Store(false)
}

// FailureCount returns the number of crashes observed since the last
// successful completion.
func (h *Handle) FailureCount() int {
	return int(h.failureCount.Load())
}

// IncrementFailures records a crash against this worker.
func (h *Handle) IncrementFailures() int {
	return int(h.failureCount.Add(1))
}

// ResetFailures clears the crash count, called on every successful
// completion so a worker that recovers isn't penalized for past crashes.
func (h *Handle) ResetFailures() {
	h.failureCount.Store(0)
}

// Send hands a job to the worker. The caller (the pool's dispatch loop,
// the sole owner of scheduler state) is responsible for having already
// recorded the binding; Send only delivers the request and bumps the
// heartbeat.
func (h *Handle) Send(job *domain.Job) {
	h.Touch()
	select {
	case h.requests <- job:
	case <-h.done:
		// Worker already torn down; report it as a crash so the job
		// isn't silently lost. This path is only reachable if the
		// dispatch loop races a terminate against a send to the same
		// slot, which its own single-goroutine serialisation prevents in
		// normal operation.
		h.events <- Event{Kind: EventCrashed, WorkerID: h.ID, Job: job, Origin: h, Cause: fmt.Errorf("worker %d terminated before accepting job", h.ID)}
	}
}

// Terminate stops the worker: orderly if it is idle and picks up the
// cancellation between jobs, forced (context cancellation aborts the
// blocked send/receive) otherwise. Idempotent.
func (h *Handle) Terminate() {
	h.term.Do(func() {
		h.cancel()
	})
}

// run is the worker's execution loop: receive a job, execute it with
// panic recovery, report exactly one event, repeat until the context is
// cancelled.
func (h *Handle) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-h.requests:
			h.execute(ctx, job)
		}
	}
}

func (h *Handle) execute(ctx context.Context, job *domain.Job) {
	defer func() {
		if r := recover(); r != nil {
			h.Touch()
			cause := fmt.Errorf("panic: %v", r)
			h.log.Error("worker panicked executing job",
				zap.String("job_id", job.ID),
				zap.String("descriptor", job.Descriptor.Name),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			h.emit(ctx, Event{Kind: EventCrashed, WorkerID: h.ID, Job: job, Origin: h, Cause: cause})
		}
	}()

	result, err := job.Descriptor.Fn(job.Args)
	h.Touch()

	if err != nil {
		h.emit(ctx, Event{
			Kind:     EventCompleted,
			WorkerID: h.ID,
			Job:      job,
			Origin:   h,
			Err:      &ExecError{Kind: "UserError", Message: err.Error()},
		})
		return
	}
	h.emit(ctx, Event{Kind: EventCompleted, WorkerID: h.ID, Job: job, Origin: h, Result: result})
}

// emit delivers an event unless this worker has already been torn down
// by the pool (e.g. after a timeout kill on a job whose Fn kept running
// in the background). Without the ctx.Done escape hatch this send would
// block forever, since a replaced worker's events are no longer read.
func (h *Handle) emit(ctx context.Context, ev Event) {
	select {
	case h.events <- ev:
	case <-ctx.Done():
	}
}
