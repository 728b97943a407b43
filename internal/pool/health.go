package pool

import (
	"time"

	"go.uber.org/zap"
)

// runHealthCheck sweeps every bound worker for missed heartbeats, evicts
// and restarts any that have gone quiet longer than MaxInactivity, and
// then considers shrinking the pool back toward MinPoolSize.
func (p *Pool) runHealthCheck() {
	now := time.Now()

	var stalled []int
	for idx := range p.bindings {
		if now.Sub(p.workers[idx].LastHeartbeat()) > p.cfg.MaxInactivity {
			stalled = append(stalled, idx)
		}
	}

	for _, idx := range stalled {
		job := p.bindings[idx]
		p.unbindIfCurrent(idx, job)
		job.WorkerID = -1

		if p.cfg.RequeuePolicy == RequeueBack {
			p.queue.Enqueue(job)
		} else {
			p.queue.EnqueueFront(job)
		}

		p.workers[idx].MarkUnhealthy()
		p.log.Warn("worker evicted on missed heartbeat",
			zap.Int("worker_id", idx),
			zap.String("job_id", job.ID),
			zap.Duration("max_inactivity", p.cfg.MaxInactivity))
		p.restartWorker(idx)
		p.metrics.RecordRestart()
	}

	p.pump()
	p.maybeScaleDown(now)
	p.checkDrained()
}

// maybeScaleDown retires idle workers from the tail of the pool one at a
// time, down to MinPoolSize, once each has sat idle past ScaleDownDelay.
// This is a minimal scale-down: it only ever considers the last slot, so a
// long-idle worker in the middle of the slice (behind a busy one nearer
// the tail) is left running until the tail catches up to it. MinPoolSize
// is always honored as a floor.
func (p *Pool) maybeScaleDown(now time.Time) {
	if !p.cfg.AutoScale {
		return
	}
	for len(p.workers) > p.cfg.MinPoolSize {
		last := len(p.workers) - 1
		if _, bound := p.bindings[last]; bound {
			return
		}
		since, ok := p.idleSince[last]
		if !ok || now.Sub(since) < p.cfg.ScaleDownDelay {
			return
		}
		p.workers[last].Terminate()
		p.workers = p.workers[:last]
		delete(p.idleSince, last)
		p.workerCount.Store(int32(len(p.workers)))
		p.log.Info("scaled down", zap.Int("worker_id", last), zap.Int("pool_size", len(p.workers)))
	}
}
