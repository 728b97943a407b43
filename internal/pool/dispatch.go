package pool

import (
	"time"

	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/worker"
	"go.uber.org/zap"
)

// dispatch places a freshly submitted job: onto an idle worker immediately
// if one exists, onto the queue otherwise. Queueing past the scale-up
// threshold grows the pool, bounded by MaxPoolSize, before the job even
// waits its first tick.
func (p *Pool) dispatch(job *domain.Job) {
	if idx := p.findIdleWorker(); idx >= 0 {
		p.startOnWorker(idx, job)
		return
	}

	p.queue.Enqueue(job)

	if p.cfg.AutoScale && p.queue.Len() >= p.cfg.ScaleUpThreshold && len(p.workers) < p.cfg.MaxPoolSize {
		p.spawnWorker()
	}
	p.pump()
}

// findIdleWorker returns the index of the first healthy worker with no
// bound job, or -1 if every worker is busy.
func (p *Pool) findIdleWorker() int {
	for i, w := range p.workers {
		if _, bound := p.bindings[i]; !bound && w.IsHealthy() {
			return i
		}
	}
	return -1
}

// startOnWorker binds job to the worker at idx, arms its timeout if any,
// and hands it off. The caller is responsible for having already
// confirmed idx is idle.
func (p *Pool) startOnWorker(idx int, job *domain.Job) {
	job.StartedAt = time.Now()
	job.WorkerID = idx
	p.bindings[idx] = job
	delete(p.idleSince, idx)
	p.activeJobs.Add(1)

	if job.Timeout > 0 {
		job.Timer = time.AfterFunc(job.Timeout, func() {
			select {
			case p.timeouts <- job:
			case <-p.stopped:
			}
		})
	}

	p.workers[idx].Send(job)
}

// pump drains as many queued jobs as there are idle workers to receive
// them, called after every event that might have freed a worker or grown
// the pool.
func (p *Pool) pump() {
	for {
		idx := p.findIdleWorker()
		if idx < 0 {
			return
		}
		job, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		p.startOnWorker(idx, job)
	}
}

// spawnWorker grows the pool by one slot, appended at the end of the
// worker slice.
func (p *Pool) spawnWorker() {
	idx := len(p.workers)
	w := worker.Spawn(p.rootCtx, idx, p.events, p.log)
	p.workers = append(p.workers, w)
	p.idleSince[idx] = time.Now()
	p.workerCount.Store(int32(len(p.workers)))
	p.log.Info("scaled up", zap.Int("worker_id", idx), zap.Int("pool_size", len(p.workers)))
}

// restartWorker replaces the worker at idx in place, preserving pool size
// and the index's meaning to every other piece of bookkeeping keyed by it.
func (p *Pool) restartWorker(idx int) {
	p.workers[idx].Terminate()
	p.workers[idx] = worker.Spawn(p.rootCtx, idx, p.events, p.log)
	p.idleSince[idx] = time.Now()
	p.log.Warn("worker restarted", zap.Int("worker_id", idx))
}

// markIdle records idx as newly idle, used by every path that frees a
// worker's binding.
func (p *Pool) markIdle(idx int) {
	p.idleSince[idx] = time.Now()
}
