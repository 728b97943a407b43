// Package pool implements the Pool Scheduler: the single decision-making
// loop that owns the priority queue, the worker handles, and every binding
// between them. All mutable scheduler state is touched from exactly one
// goroutine (run, in dispatch.go's companion files) so no additional mutex
// is needed to satisfy SPEC_FULL.md's single-serialisation-domain
// requirement — the dispatch loop is the serialisation domain.
package pool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/errs"
	"github.com/osmike/taskpool/internal/metrics"
	"github.com/osmike/taskpool/internal/queue"
	"github.com/osmike/taskpool/internal/validate"
	"github.com/osmike/taskpool/internal/worker"
	"go.uber.org/zap"
)

// Pool is the scheduler. Every exported method is safe to call from any
// goroutine: methods that need to observe or mutate scheduler state hand
// off to the dispatch loop over a channel rather than taking a lock;
// methods that only need a consistent read (Metrics, Size) use the atomic
// counters the dispatch loop keeps up to date as it runs, plus the
// queue's own mutex-guarded Len for queue depth.
type Pool struct {
	cfg Config
	log *zap.Logger

	rootCtx context.Context
	stopped chan struct{}

	validator *validate.Validator
	metrics   *metrics.Recorder

	// Scheduler state. Touched only inside run().
	workers   []*worker.Handle
	bindings  map[int]*domain.Job
	idleSince map[int]time.Time
	queue     *queue.Queue
	waiters    []chan struct{}
	drained    bool
	terminated bool

	healthTicker *time.Ticker

	// Channels into the dispatch loop.
	submissions   chan *domain.Job
	events        chan worker.Event
	cancellations chan *domain.Job
	timeouts      chan *domain.Job
	closeRequests chan chan struct{}
	terminateCh   chan struct{}

	closing atomic.Bool
	activeJobs  atomic.Int32
	workerCount atomic.Int32
}

// New constructs a Pool sized and configured per cfg, spawns its initial
// workers, and starts the dispatch loop. ctx bounds the whole pool's
// lifetime: cancelling it is equivalent to calling Terminate.
func New(ctx context.Context, cfg Config) *Pool {
	cfg = cfg.Resolve()

	p := &Pool{
		cfg:           cfg,
		log:           cfg.Logger.Named("pool"),
		rootCtx:       ctx,
		stopped:       make(chan struct{}),
		validator:     validate.New(),
		metrics:       metrics.New(),
		bindings:      make(map[int]*domain.Job),
		idleSince:     make(map[int]time.Time),
		queue:         queue.New(),
		submissions:   make(chan *domain.Job, 64),
		events:        make(chan worker.Event, 64),
		cancellations: make(chan *domain.Job, 16),
		timeouts:      make(chan *domain.Job, 16),
		closeRequests: make(chan chan struct{}, 1),
		terminateCh:   make(chan struct{}, 1),
		healthTicker:  time.NewTicker(cfg.HealthCheckInterval),
	}

	now := time.Now()
	for i := 0; i < cfg.PoolSize; i++ {
		p.workers = append(p.workers, worker.Spawn(ctx, i, p.events, p.log))
		p.idleSince[i] = now
	}
	p.workerCount.Store(int32(len(p.workers)))

	go p.run()
	go func() {
		select {
		case <-ctx.Done():
			p.Terminate()
		case <-p.stopped:
		}
	}()

	return p
}

// Submit enqueues a unit of work for execution and returns a handle to its
// eventual result. Validation (strict mode) and cancellation-already-fired
// checks happen synchronously, before the job ever reaches the dispatch
// loop, so a rejected submission never touches scheduler state or reaches
// a worker.
func (p *Pool) Submit(d domain.Descriptor, args []any, priority domain.Priority, timeout time.Duration, cancel context.Context) *domain.Job {
	job := domain.NewJob(uuid.NewString(), d, args, priority, timeout, cancel)

	if p.closing.Load() {
		job.Complete(nil, errs.New(errs.ErrClosing, "pool is closing"))
		return job
	}

	if p.cfg.StrictMode {
		if err := p.validator.Validate(d, args); err != nil {
			job.Complete(nil, err)
			return job
		}
	}

	if cancel != nil {
		select {
		case <-cancel.Done():
			job.Complete(nil, errs.New(errs.ErrCancelled, "cancellation already fired at submission time"))
			return job
		default:
		}
		go p.watchCancellation(job)
	}

	select {
	case p.submissions <- job:
	case <-p.stopped:
		job.Complete(nil, errs.New(errs.ErrPoolShutdown, "pool has been terminated"))
	}

	return job
}

// watchCancellation waits for job's caller-supplied context to fire or for
// the job to resolve by any other path, whichever happens first. It exits
// on its own once the job completes, with no explicit deregistration step.
func (p *Pool) watchCancellation(job *domain.Job) {
	select {
	case <-job.Cancel.Done():
		select {
		case p.cancellations <- job:
		case <-p.stopped:
		}
	case <-job.Done():
	}
}

// Metrics returns a live snapshot without going through the dispatch
// loop: the counters, active jobs and worker count are atomics, and the
// queue depth comes from the queue's Len, which takes its short internal
// lock.
func (p *Pool) Metrics() metrics.Snapshot {
	return p.metrics.Snapshot(int(p.activeJobs.Load()), p.queue.Len(), int(p.workerCount.Load()))
}

// ResetMetrics zeroes the recorder's counters and rebases its uptime clock.
func (p *Pool) ResetMetrics() {
	p.metrics.Reset()
}

// Size returns the current number of worker handles.
func (p *Pool) Size() int {
	return int(p.workerCount.Load())
}

// Recorder exposes the pool's metrics recorder so a caller can wrap it in
// a prometheus.Collector alongside this pool's own live gauges.
func (p *Pool) Recorder() *metrics.Recorder {
	return p.metrics
}

// Gauges returns the live (active jobs, queue depth, worker count) triple
// a metrics.PrometheusCollector needs at scrape time.
func (p *Pool) Gauges() (active, queueDepth, workers int) {
	return int(p.activeJobs.Load()), p.queue.Len(), int(p.workerCount.Load())
}
