package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fn(f func(args []any) (any, error)) domain.Descriptor {
	return domain.Descriptor{Fn: f}
}

func await(t *testing.T, job *domain.Job) domain.Result {
	t.Helper()
	select {
	case res := <-job.Done():
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("job did not complete in time")
		return domain.Result{}
	}
}

func TestSimpleJobCompletes(t *testing.T) {
	p := New(context.Background(), Config{PoolSize: 2})
	defer p.Terminate()

	job := p.Submit(fn(func(args []any) (any, error) {
		return args[0].(int) * 2, nil
	}), []any{21}, domain.NORMAL, 0, nil)

	res := await(t, job)
	require.NoError(t, res.Err)
	assert.Equal(t, 42, res.Value)
}

// TestWorkersRunConcurrently proves the pool actually parallelises: n jobs
// each wait for all n to have started before returning. A pool that ran
// jobs one at a time would leave every job stuck waiting on peers that
// never got a chance to start, and the test would time out.
func TestWorkersRunConcurrently(t *testing.T) {
	const n = 4
	p := New(context.Background(), Config{PoolSize: n})
	defer p.Terminate()

	var arrived atomic.Int32
	release := make(chan struct{})

	jobs := make([]*domain.Job, n)
	for i := 0; i < n; i++ {
		jobs[i] = p.Submit(fn(func(args []any) (any, error) {
			if arrived.Add(1) == int32(n) {
				close(release)
			}
			select {
			case <-release:
				return "ok", nil
			case <-time.After(2 * time.Second):
				return nil, errors.New("not all workers ran concurrently")
			}
		}), nil, domain.NORMAL, 0, nil)
	}

	for _, job := range jobs {
		res := await(t, job)
		require.NoError(t, res.Err)
		assert.Equal(t, "ok", res.Value)
	}
}

func TestTimeoutReplacesWorkerAndPoolStaysUsable(t *testing.T) {
	p := New(context.Background(), Config{PoolSize: 1})
	defer p.Terminate()

	stuck := p.Submit(fn(func(args []any) (any, error) {
		<-make(chan struct{}) // never returns on its own
		return nil, nil
	}), nil, domain.NORMAL, 20*time.Millisecond, nil)

	res := await(t, stuck)
	assert.ErrorIs(t, res.Err, errs.ErrTimeout)
	assert.Equal(t, 1, p.Size())

	next := p.Submit(fn(func(args []any) (any, error) {
		return "still alive", nil
	}), nil, domain.NORMAL, 0, nil)
	res = await(t, next)
	require.NoError(t, res.Err)
	assert.Equal(t, "still alive", res.Value)
}

// TestHighPriorityPreemptsQueuedWork uses a single worker so both later
// submissions are forced to queue behind the busy one, then confirms the
// HIGH job runs before the NORMAL job despite arriving second.
func TestHighPriorityPreemptsQueuedWork(t *testing.T) {
	p := New(context.Background(), Config{PoolSize: 1})
	defer p.Terminate()

	gate := make(chan struct{})
	holder := p.Submit(fn(func(args []any) (any, error) {
		<-gate
		return nil, nil
	}), nil, domain.NORMAL, 0, nil)

	var mu sync.Mutex
	var order []string
	record := func(label string) domain.Descriptor {
		return fn(func(args []any) (any, error) {
			mu.Lock()
			order = append(order, label)
			mu.Unlock()
			return nil, nil
		})
	}

	normal := p.Submit(record("normal"), nil, domain.NORMAL, 0, nil)
	// Give the queue a moment to accept the NORMAL job before HIGH arrives,
	// so the test actually exercises preemption rather than submission race.
	time.Sleep(20 * time.Millisecond)
	high := p.Submit(record("high"), nil, domain.HIGH, 0, nil)

	close(gate)
	await(t, holder)
	await(t, normal)
	await(t, high)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 2)
	assert.Equal(t, "high", order[0])
	assert.Equal(t, "normal", order[1])
}

func TestExternalCancellation(t *testing.T) {
	p := New(context.Background(), Config{PoolSize: 1})
	defer p.Terminate()

	gate := make(chan struct{})
	holder := p.Submit(fn(func(args []any) (any, error) {
		<-gate
		return nil, nil
	}), nil, domain.NORMAL, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	queued := p.Submit(fn(func(args []any) (any, error) {
		return "should not run", nil
	}), nil, domain.NORMAL, 0, ctx)

	time.Sleep(10 * time.Millisecond)
	cancel()

	res := await(t, queued)
	assert.ErrorIs(t, res.Err, errs.ErrCancelled)

	close(gate)
	await(t, holder)
}

func TestStrictModeRejectsDisallowedPatterns(t *testing.T) {
	p := New(context.Background(), Config{PoolSize: 1, StrictMode: true})
	defer p.Terminate()

	cases := []string{
		`function(args) { return eval(args[0]); }`,
		`function(args) { return process.exit(1); }`,
		`function(args) { return require('child_process').exec(args[0]); }`,
	}

	for _, src := range cases {
		job := p.Submit(domain.Descriptor{Source: src, Fn: func(args []any) (any, error) {
			return "should never run", nil
		}}, nil, domain.NORMAL, 0, nil)
		res := await(t, job)
		assert.ErrorIs(t, res.Err, errs.ErrValidation)
	}
}

func TestCloseDrainsThenTerminatesWorkers(t *testing.T) {
	p := New(context.Background(), Config{PoolSize: 2})

	var done atomic.Int32
	jobs := make([]*domain.Job, 5)
	for i := range jobs {
		jobs[i] = p.Submit(fn(func(args []any) (any, error) {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
			return nil, nil
		}), nil, domain.NORMAL, 0, nil)
	}

	require.NoError(t, p.Close())
	assert.EqualValues(t, len(jobs), done.Load())

	snap := p.Metrics()
	assert.Equal(t, 0, snap.QueueDepth)
	assert.Equal(t, 0, snap.ActiveJobs)

	rejected := p.Submit(fn(func(args []any) (any, error) { return nil, nil }), nil, domain.NORMAL, 0, nil)
	res := await(t, rejected)
	assert.ErrorIs(t, res.Err, errs.ErrClosing)
}

func TestTerminateResolvesAbandonedJobs(t *testing.T) {
	p := New(context.Background(), Config{PoolSize: 1})

	gate := make(chan struct{})
	running := p.Submit(fn(func(args []any) (any, error) {
		<-gate
		return nil, nil
	}), nil, domain.NORMAL, 0, nil)

	queued := p.Submit(fn(func(args []any) (any, error) {
		return "should never run", nil
	}), nil, domain.NORMAL, 0, nil)

	p.Terminate()
	p.Terminate() // idempotent

	res := await(t, running)
	assert.ErrorIs(t, res.Err, errs.ErrPoolShutdown)
	res = await(t, queued)
	assert.ErrorIs(t, res.Err, errs.ErrPoolShutdown)

	close(gate)
}
