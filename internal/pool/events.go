package pool

import (
	"time"

	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/errs"
	"github.com/osmike/taskpool/internal/worker"
	"go.uber.org/zap"
)

// handleEvent routes a worker-reported event to its specific handler.
func (p *Pool) handleEvent(ev worker.Event) {
	switch ev.Kind {
	case worker.EventCompleted:
		p.handleCompleted(ev)
	case worker.EventCrashed:
		p.handleWorkerFailure(ev.WorkerID, ev.Origin, ev.Job, ev.Cause)
	}
}

// unbindIfCurrent releases the binding at idx if it still holds job,
// reporting whether it did. A mismatch means some other path (an earlier
// timeout, cancellation, or crash) already resolved this job; the caller
// should treat the event as stale and take no further action on it.
func (p *Pool) unbindIfCurrent(idx int, job *domain.Job) bool {
	bound, ok := p.bindings[idx]
	if !ok || bound != job {
		return false
	}
	delete(p.bindings, idx)
	p.activeJobs.Add(-1)
	if job.Timer != nil {
		job.Timer.Stop()
	}
	return true
}

// handleCompleted resolves a job that a worker actually ran to completion
// (successfully or with a reported user error), as opposed to one this
// pool gave up on via timeout, cancellation, or crash.
func (p *Pool) handleCompleted(ev worker.Event) {
	if !p.unbindIfCurrent(ev.WorkerID, ev.Job) {
		return
	}
	job := ev.Job
	execTime := time.Since(job.StartedAt)

	if ev.Err != nil {
		job.Complete(nil, &errs.UserError{Kind: ev.Err.Kind, Message: ev.Err.Message, Trace: ev.Err.Trace})
		p.metrics.RecordFailure()
	} else {
		job.Complete(ev.Result, nil)
		p.metrics.RecordCompletion(execTime)
	}

	if ev.Origin == p.workers[ev.WorkerID] {
		p.workers[ev.WorkerID].ResetFailures()
	}
	p.markIdle(ev.WorkerID)
	p.pump()
	p.checkDrained()
}

// handleWorkerFailure is the crashed-worker path: mark the worker
// unhealthy, fail its bound job (if the event still refers to the job
// currently occupying that slot), and restart in place.
// Origin gates the worker-level bookkeeping so a stale event from an
// already-replaced Handle cannot poison the worker that succeeded it.
func (p *Pool) handleWorkerFailure(idx int, origin *worker.Handle, evJob *domain.Job, cause error) {
	current := p.workers[idx]
	stillLive := origin == current

	if stillLive {
		current.MarkUnhealthy()
		failures := current.IncrementFailures()
		p.log.Error("worker failure",
			zap.Int("worker_id", idx),
			zap.Int("failure_count", failures),
			zap.Error(cause))
	} else {
		p.log.Debug("ignoring stale failure event from replaced worker", zap.Int("worker_id", idx))
	}

	if evJob != nil && p.unbindIfCurrent(idx, evJob) {
		reason := "worker crashed"
		if cause != nil {
			reason = cause.Error()
		}
		evJob.Complete(nil, errs.New(errs.ErrWorkerCrash, reason))
		p.metrics.RecordFailure()
	}

	if stillLive {
		p.restartWorker(idx)
		p.metrics.RecordRestart()
	}
	p.pump()
	p.checkDrained()
}
