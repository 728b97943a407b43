// Package queue implements the pool's priority queue: three independent
// FIFO bands (HIGH, NORMAL, LOW) with strict ordering within a band and
// strict preemption across bands at dequeue time.
package queue

import (
	"container/list"
	"sync"

	"github.com/osmike/taskpool/internal/domain"
)

// Queue is safe for concurrent use; every operation takes the internal
// mutex. The pool mutates it only from its single dispatch loop (see
// internal/pool), but its Metrics and Gauges methods call Len from other
// goroutines, and the lock is what makes those reads safe. Being
// self-synchronising also keeps the type usable on its own (as the tests
// in this package do).
type Queue struct {
	mu    sync.Mutex
	bands [domain.NumBands]list.List
}

// New returns an empty Queue with its bands initialized.
func New() *Queue {
	q := &Queue{}
	for i := range q.bands {
		q.bands[i].Init()
	}
	return q
}

// Enqueue places job at the tail of its priority band.
func (q *Queue) Enqueue(job *domain.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.bands[job.Priority].PushBack(job)
}

// EnqueueFront places job at the head of its priority band, used when
// re-queueing a job evicted mid-flight by the health check so it does
// not lose its place behind jobs that arrived while it was stalled.
func (q *Queue) EnqueueFront(job *domain.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.bands[job.Priority].PushFront(job)
}

// Dequeue returns and removes the front of the highest non-empty band.
func (q *Queue) Dequeue() (*domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for p := 0; p < domain.NumBands; p++ {
		band := &q.bands[p]
		if front := band.Front(); front != nil {
			band.Remove(front)
			return front.Value.(*domain.Job), true
		}
	}
	return nil, false
}

// Remove deletes the first queued job with the given ID from whichever
// band holds it, eagerly applying a cancellation rather than waiting for
// the job to reach the front of its band. Returns false if no such job
// is queued (it has already been dispatched or never existed).
func (q *Queue) Remove(id string) (*domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for p := 0; p < domain.NumBands; p++ {
		band := &q.bands[p]
		for e := band.Front(); e != nil; e = e.Next() {
			if j := e.Value.(*domain.Job); j.ID == id {
				band.Remove(e)
				return j, true
			}
		}
	}
	return nil, false
}

// Len returns the total number of queued jobs across all bands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	total := 0
	for p := range q.bands {
		total += q.bands[p].Len()
	}
	return total
}

// IsEmpty reports whether every band is empty.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// DepthOf returns the number of jobs queued in a single priority band.
func (q *Queue) DepthOf(p domain.Priority) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bands[p].Len()
}

// Clear empties all bands, discarding their jobs without resolving them.
// The pool's forced termination uses DrainAll instead, so that each
// abandoned job can still be completed.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.bands {
		q.bands[i].Init()
	}
}

// DrainAll empties every band and returns whatever was queued, in
// priority-then-FIFO order, so a caller forcibly shutting down can still
// resolve each abandoned job's future instead of just discarding it.
func (q *Queue) DrainAll() []*domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	var drained []*domain.Job
	for p := range q.bands {
		band := &q.bands[p]
		for e := band.Front(); e != nil; e = e.Next() {
			drained = append(drained, e.Value.(*domain.Job))
		}
		band.Init()
	}
	return drained
}
