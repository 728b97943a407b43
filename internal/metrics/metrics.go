// Package metrics implements the Metrics Recorder: monotonic counters and
// derived averages over a Pool's lifetime, snapshot-on-demand.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a consistent point-in-time read of the recorder's counters
// plus the live gauges the pool supplies at snapshot time.
type Snapshot struct {
	CompletedJobs     int64
	FailedJobs        int64
	WorkerRestarts    int64
	TotalExecutionTime time.Duration
	AvgExecutionTime   time.Duration

	ActiveJobs int
	QueueDepth int
	WorkerCount int
	Uptime      time.Duration
}

// Recorder holds the monotonic counters. All fields are accessed via
// atomics so RecordX methods never need to take a lock; only Reset takes
// the mutex, to rebase startedAt consistently with the zeroed counters.
type Recorder struct {
	completed      atomic.Int64
	failed         atomic.Int64
	restarts       atomic.Int64
	totalExecNanos atomic.Int64

	mu        sync.Mutex
	startedAt time.Time
}

// New returns a Recorder with its uptime clock started now.
func New() *Recorder {
	return &Recorder{startedAt: time.Now()}
}

// RecordCompletion increments completedJobs and accumulates execution
// time, used on every successful normal completion path.
func (r *Recorder) RecordCompletion(d time.Duration) {
	r.completed.Add(1)
	r.totalExecNanos.Add(d.Nanoseconds())
}

// RecordFailure increments failedJobs, used on timeout, cancellation,
// crash, and user-error completions alike.
func (r *Recorder) RecordFailure() {
	r.failed.Add(1)
}

// RecordRestart increments workerRestarts, used every time the pool
// replaces a Worker Handle in place.
func (r *Recorder) RecordRestart() {
	r.restarts.Add(1)
}

// Snapshot returns a consistent read of the counters plus the supplied
// live gauges (active jobs, queue depth, worker count), which only the
// caller — the pool, holding its own state — can supply accurately.
func (r *Recorder) Snapshot(active, queueDepth, workerCount int) Snapshot {
	r.mu.Lock()
	startedAt := r.startedAt
	r.mu.Unlock()

	completed := r.completed.Load()
	total := time.Duration(r.totalExecNanos.Load())
	var avg time.Duration
	if completed > 0 {
		avg = total / time.Duration(completed)
	}

	return Snapshot{
		CompletedJobs:       completed,
		FailedJobs:          r.failed.Load(),
		WorkerRestarts:      r.restarts.Load(),
		TotalExecutionTime:  total,
		AvgExecutionTime:    avg,
		ActiveJobs:          active,
		QueueDepth:          queueDepth,
		WorkerCount:         workerCount,
		Uptime:              time.Since(startedAt),
	}
}

// Reset zeroes all counters and rebases the uptime clock.
func (r *Recorder) Reset() {
	r.completed.Store(0)
	r.failed.Store(0)
	r.restarts.Store(0)
	r.totalExecNanos.Store(0)

	r.mu.Lock()
	r.startedAt = time.Now()
	r.mu.Unlock()
}
