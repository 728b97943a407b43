package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotAveragesExecutionTime(t *testing.T) {
	r := New()
	r.RecordCompletion(100 * time.Millisecond)
	r.RecordCompletion(300 * time.Millisecond)

	snap := r.Snapshot(0, 0, 2)
	assert.Equal(t, int64(2), snap.CompletedJobs)
	assert.Equal(t, 400*time.Millisecond, snap.TotalExecutionTime)
	assert.Equal(t, 200*time.Millisecond, snap.AvgExecutionTime)
}

func TestSnapshotAvgIsZeroWithNoCompletions(t *testing.T) {
	r := New()
	snap := r.Snapshot(0, 0, 0)
	assert.Equal(t, time.Duration(0), snap.AvgExecutionTime)
}

func TestRecordFailureAndRestart(t *testing.T) {
	r := New()
	r.RecordFailure()
	r.RecordFailure()
	r.RecordRestart()

	snap := r.Snapshot(0, 0, 0)
	assert.Equal(t, int64(2), snap.FailedJobs)
	assert.Equal(t, int64(1), snap.WorkerRestarts)
}

func TestResetZeroesCountersAndRebasesUptime(t *testing.T) {
	r := New()
	r.RecordCompletion(time.Second)
	r.RecordFailure()
	r.RecordRestart()

	time.Sleep(5 * time.Millisecond)
	r.Reset()

	snap := r.Snapshot(0, 0, 0)
	assert.Equal(t, int64(0), snap.CompletedJobs)
	assert.Equal(t, int64(0), snap.FailedJobs)
	assert.Equal(t, int64(0), snap.WorkerRestarts)
	assert.Less(t, snap.Uptime, 5*time.Millisecond)
}

func TestGaugesReflectSnapshotArguments(t *testing.T) {
	r := New()
	snap := r.Snapshot(3, 7, 4)
	assert.Equal(t, 3, snap.ActiveJobs)
	assert.Equal(t, 7, snap.QueueDepth)
	assert.Equal(t, 4, snap.WorkerCount)
}
