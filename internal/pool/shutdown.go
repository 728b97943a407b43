package pool

import (
	"github.com/osmike/taskpool/internal/errs"
	"go.uber.org/zap"
)

// Close stops accepting new submissions and blocks until every already
// queued or bound job has completed, then terminates the workers. It is
// safe to call more than once; later callers simply wait on the same
// drain.
func (p *Pool) Close() error {
	p.closing.Store(true)

	waiter := make(chan struct{})
	select {
	case p.closeRequests <- waiter:
	case <-p.stopped:
		return nil
	}

	select {
	case <-waiter:
	case <-p.stopped:
	}
	return nil
}

// Terminate forcibly and immediately tears the pool down: every worker is
// killed regardless of what it is doing, the queue is discarded, and every
// abandoned job's future is resolved with ErrPoolShutdown so no submitter
// waits forever. Idempotent, and safe to call whether or not Close has
// already been called.
func (p *Pool) Terminate() {
	select {
	case p.terminateCh <- struct{}{}:
	default:
	}
}

// handleCloseRequest is the dispatch loop's reaction to a Close call. It
// first dispatches any submissions still buffered in p.submissions, so a
// job accepted before Close is never dropped. If the pool is then drained
// it terminates immediately; otherwise the waiter is parked until the last
// outstanding job resolves.
func (p *Pool) handleCloseRequest(waiter chan struct{}) {
	for pending := true; pending; {
		select {
		case job := <-p.submissions:
			p.dispatch(job)
		default:
			pending = false
		}
	}
	if p.queue.IsEmpty() && p.activeJobs.Load() == 0 {
		p.finishDraining()
		close(waiter)
		return
	}
	p.waiters = append(p.waiters, waiter)
}

// checkDrained runs after every completion, crash, timeout, and
// cancellation path; if a Close is pending and the pool just became empty,
// it finishes the drain and releases every waiter.
func (p *Pool) checkDrained() {
	if !p.closing.Load() || len(p.waiters) == 0 {
		return
	}
	if p.queue.IsEmpty() && p.activeJobs.Load() == 0 {
		p.finishDraining()
	}
}

// finishDraining terminates every worker, releases every Close waiter, and
// closes p.stopped so the dispatch loop (run, which checks p.drained right
// after this returns) and the ctx-watcher goroutine spawned by New both
// exit instead of idling forever. Idempotent within the dispatch loop's
// own serialisation.
func (p *Pool) finishDraining() {
	if p.drained {
		return
	}
	p.drained = true
	p.healthTicker.Stop()
	p.log.Info("pool drained, stopping workers", zap.Int("worker_count", len(p.workers)))
	for _, w := range p.workers {
		w.Terminate()
	}
	for _, waiter := range p.waiters {
		close(waiter)
	}
	p.waiters = nil
	close(p.stopped)
}

// handleTerminate is the dispatch loop's reaction to a Terminate call: it
// resolves every abandoned job (bound, queued, or still buffered in
// p.submissions) with ErrPoolShutdown,
// kills every worker, and returns, ending the dispatch loop for good.
func (p *Pool) handleTerminate() {
	if p.terminated {
		return
	}
	p.terminated = true
	p.closing.Store(true)
	p.healthTicker.Stop()
	p.log.Warn("pool terminated",
		zap.Int("abandoned_bound_jobs", len(p.bindings)),
		zap.Int("abandoned_queued_jobs", p.queue.Len()))

	for idx, job := range p.bindings {
		if job.Timer != nil {
			job.Timer.Stop()
		}
		job.Complete(nil, errs.New(errs.ErrPoolShutdown, "pool was terminated while job was running"))
		delete(p.bindings, idx)
	}
	p.activeJobs.Store(0)

	for _, job := range p.queue.DrainAll() {
		job.Complete(nil, errs.New(errs.ErrPoolShutdown, "pool was terminated while job was queued"))
	}
	for pending := true; pending; {
		select {
		case job := <-p.submissions:
			job.Complete(nil, errs.New(errs.ErrPoolShutdown, "pool was terminated before job was dispatched"))
		default:
			pending = false
		}
	}

	for _, w := range p.workers {
		w.Terminate()
	}

	for _, waiter := range p.waiters {
		close(waiter)
	}
	p.waiters = nil

	close(p.stopped)
}
