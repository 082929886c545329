package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("events", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}

func TestQueueProcessesJobs(t *testing.T) {
	var handled atomic.Int32
	q := NewQueue("events", func(_ context.Context, job Job) error {
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "exams.scheduled"}))
	}

	assert.Eventually(t, func() bool { return handled.Load() == 5 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return q.Stats().Processed == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueRetriesThenAbandons(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("events", func(context.Context, Job) error {
		attempts.Add(1)
		return errors.New("broker down")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))

	assert.Eventually(t, func() bool { return q.Stats().Abandoned == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, uint64(2), q.Stats().Retried)
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var handled atomic.Int32
	busy := make(chan struct{})
	q := NewQueue("events", func(ctx context.Context, job Job) error {
		if job.ID == "slow" {
			close(busy)
			<-ctx.Done()
			return nil
		}
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 1, DrainTimeout: time.Second})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "slow"}))
	<-busy
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "buffered", Type: "exams.cleared"}))
	}

	q.Stop()
	assert.Equal(t, int32(3), handled.Load())
	assert.Zero(t, q.Stats().Pending)
	require.Error(t, q.Enqueue(Job{ID: "late"}))
}

func TestQueueStopCountsJobsWaitingForRetry(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	q := NewQueue("events", func(context.Context, Job) error {
		return errors.New("broker down")
	}, QueueConfig{RetryDelay: time.Hour, Logger: zap.New(core)})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "exams.scheduled"}))
	require.Eventually(t, func() bool { return q.Stats().Retried == 1 }, time.Second, 5*time.Millisecond)

	q.Stop()
	assert.Equal(t, uint64(1), q.Stats().Abandoned)
	entries := logs.FilterMessage("queue stopped before retry").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "job-1", entries[0].ContextMap()["job_id"])
}
