package queue

import (
	"testing"

	"github.com/osmike/taskpool/internal/domain"
	"github.com/stretchr/testify/assert"
)

func newJob(id string, p domain.Priority) *domain.Job {
	return domain.NewJob(id, domain.Descriptor{Name: id}, nil, p, 0, nil)
}

func TestDequeueReturnsHighWheneverPresent(t *testing.T) {
	q := New()
	q.Enqueue(newJob("low-1", domain.LOW))
	q.Enqueue(newJob("normal-1", domain.NORMAL))
	q.Enqueue(newJob("high-1", domain.HIGH))

	job, ok := q.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "high-1", job.ID)
}

func TestFIFOWithinBand(t *testing.T) {
	q := New()
	q.Enqueue(newJob("a", domain.NORMAL))
	q.Enqueue(newJob("b", domain.NORMAL))
	q.Enqueue(newJob("c", domain.NORMAL))

	var order []string
	for {
		job, ok := q.Dequeue()
		if !ok {
			break
		}
		order = append(order, job.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestDequeueEmpty(t *testing.T) {
	q := New()
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestDepthAndLen(t *testing.T) {
	q := New()
	q.Enqueue(newJob("h1", domain.HIGH))
	q.Enqueue(newJob("n1", domain.NORMAL))
	q.Enqueue(newJob("n2", domain.NORMAL))

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.DepthOf(domain.HIGH))
	assert.Equal(t, 2, q.DepthOf(domain.NORMAL))
	assert.Equal(t, 0, q.DepthOf(domain.LOW))
	assert.False(t, q.IsEmpty())
}

func TestClear(t *testing.T) {
	q := New()
	q.Enqueue(newJob("h1", domain.HIGH))
	q.Enqueue(newJob("l1", domain.LOW))
	q.Clear()
	assert.True(t, q.IsEmpty())
}

func TestEnqueueFrontPreservesPosition(t *testing.T) {
	q := New()
	q.Enqueue(newJob("a", domain.NORMAL))
	q.Enqueue(newJob("b", domain.NORMAL))
	q.EnqueueFront(newJob("evicted", domain.NORMAL))

	job, _ := q.Dequeue()
	assert.Equal(t, "evicted", job.ID)
}

func TestRemoveEagerlyCancelsQueuedJob(t *testing.T) {
	q := New()
	q.Enqueue(newJob("a", domain.NORMAL))
	q.Enqueue(newJob("b", domain.NORMAL))

	removed, ok := q.Remove("a")
	assert.True(t, ok)
	assert.Equal(t, "a", removed.ID)
	assert.Equal(t, 1, q.Len())

	_, ok = q.Remove("a")
	assert.False(t, ok)
}
