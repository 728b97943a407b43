package pool

import (
	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/errs"
)

// handleTimeout reacts to a job's timer firing. If the job is still bound
// to the worker it was dispatched to, that worker is presumed stuck: it is
// terminated and replaced even though nothing has actually reported a
// crash, because a hung Fn can otherwise occupy a slot forever. A timer
// that fires after the job already resolved by another path is a stale
// message and is ignored.
func (p *Pool) handleTimeout(job *domain.Job) {
	idx := job.WorkerID
	if idx < 0 {
		return
	}
	if bound, ok := p.bindings[idx]; !ok || bound != job {
		return
	}

	p.unbindIfCurrent(idx, job)
	job.Complete(nil, errs.New(errs.ErrTimeout, "job exceeded its configured timeout"))
	p.metrics.RecordFailure()

	p.workers[idx].MarkUnhealthy()
	p.restartWorker(idx)
	p.metrics.RecordRestart()

	p.pump()
	p.checkDrained()
}

// handleCancellation reacts to a caller's context firing. The job may
// still be sitting in the queue (removed eagerly, for accurate queue-depth
// metrics) or already bound to a worker (terminated and restarted, same as
// a timeout). If neither is true, another path already resolved the job
// first and this message is stale.
func (p *Pool) handleCancellation(job *domain.Job) {
	idx := job.WorkerID
	if idx >= 0 {
		if bound, ok := p.bindings[idx]; ok && bound == job {
			p.unbindIfCurrent(idx, job)
			job.Complete(nil, errs.New(errs.ErrCancelled, "job cancelled by caller"))
			p.metrics.RecordFailure()

			p.workers[idx].MarkUnhealthy()
			p.restartWorker(idx)
			p.metrics.RecordRestart()

			p.pump()
			p.checkDrained()
			return
		}
	}

	if removed, ok := p.queue.Remove(job.ID); ok {
		removed.Complete(nil, errs.New(errs.ErrCancelled, "job cancelled by caller"))
		p.metrics.RecordFailure()
		p.checkDrained()
	}
}
