package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/disciplinebot/internal/metrics"
)

func TestQueue_RunsJobsInOrderOnOneWorker(t *testing.T) {
	q := NewQueue(8, metrics.NoopRecorder{})
	q.Start(t.Context())
	t.Cleanup(func() { q.Stop(context.Background()) })

	var (
		mu      sync.Mutex
		order   []int
		running int
		overlap bool
	)
	for i := range 5 {
		require.NoError(t, q.Enqueue(NewJob(JobKindTrigger, "job", func(context.Context) error {
			mu.Lock()
			running++
			if running > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			running--
			order = append(order, i)
			mu.Unlock()
			return nil
		})))
	}

	assert.Eventually(t, func() bool { return q.Processed() == 5 }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.False(t, overlap, "jobs must not run concurrently")
}

func TestQueue_FullDropsJob(t *testing.T) {
	q := NewQueue(1, nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, q.Enqueue(NewJob(JobKindUpdate, "first", noop)))
	err := q.Enqueue(NewJob(JobKindUpdate, "second", noop))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.Equal(t, int64(1), q.Dropped())
	assert.Equal(t, 1, q.Length())
	assert.Equal(t, 1, q.Capacity())
}

func TestQueue_StoppedRejectsJobs(t *testing.T) {
	q := NewQueue(4, nil)
	q.Start(t.Context())
	q.Stop(context.Background())

	err := q.Enqueue(NewJob(JobKindTrigger, "late", func(context.Context) error { return nil }))
	assert.True(t, errors.Is(err, ErrQueueStopped))
}

func TestQueue_FailuresAndPanicsAreCounted(t *testing.T) {
	q := NewQueue(4, nil)
	q.Start(t.Context())
	t.Cleanup(func() { q.Stop(context.Background()) })

	require.NoError(t, q.Enqueue(NewJob(JobKindTrigger, "fails", func(context.Context) error {
		return errors.New("boom")
	})))
	require.NoError(t, q.Enqueue(NewJob(JobKindTrigger, "panics", func(context.Context) error {
		panic("boom")
	})))
	require.NoError(t, q.Enqueue(NewJob(JobKindTrigger, "ok", func(context.Context) error { return nil })))

	assert.Eventually(t, func() bool { return q.Processed() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), q.Failed())
}

func TestQueue_RejectsInvalidJobs(t *testing.T) {
	q := NewQueue(2, nil)
	assert.Error(t, q.Enqueue(nil))
	assert.Error(t, q.Enqueue(&Job{ID: "x"}))
	assert.Error(t, q.Enqueue(&Job{Run: func(context.Context) error { return nil }}))
}

func TestNewJob_AssignsIdentity(t *testing.T) {
	a := NewJob(JobKindTrigger, "a", func(context.Context) error { return nil })
	b := NewJob(JobKindTrigger, "a", func(context.Context) error { return nil })
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
}
