package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/metrics"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer is full. The job is dropped.
	ErrQueueFull = errors.DaemonError("work queue is full").Warning().Build()

	// ErrQueueStopped is returned by Enqueue after Stop.
	ErrQueueStopped = errors.DaemonError("work queue is stopped").Warning().Build()
)

// JobKind tells where a unit of work came from.
type JobKind string

const (
	JobKindTrigger JobKind = "trigger" // fired by the scheduler
	JobKindUpdate  JobKind = "update"  // inbound chat update
)

// Job is one unit of work. All jobs run on the queue's single worker, so
// handlers never race each other on the progress state.
type Job struct {
	ID        string
	Kind      JobKind
	Name      string
	CreatedAt time.Time
	Run       func(ctx context.Context) error
}

// NewJob assigns an ID and creation time.
func NewJob(kind JobKind, name string, run func(ctx context.Context) error) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      name,
		CreatedAt: time.Now(),
		Run:       run,
	}
}

// Queue is a bounded FIFO served by exactly one worker goroutine.
type Queue struct {
	jobs      chan *Job
	maxSize   int
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	recorder  metrics.Recorder
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewQueue creates a queue with room for maxSize pending jobs.
func NewQueue(maxSize int, recorder metrics.Recorder) *Queue {
	if maxSize <= 0 {
		maxSize = 64
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Queue{
		jobs:     make(chan *Job, maxSize),
		maxSize:  maxSize,
		stopChan: make(chan struct{}),
		recorder: recorder,
	}
}

// Start launches the worker.
func (q *Queue) Start(ctx context.Context) {
	slog.Info("Starting work queue", slog.Int("max_size", q.maxSize))
	q.wg.Add(1)
	go q.worker(ctx)
}

// Stop signals the worker and waits for the running job to finish or ctx to expire.
// Jobs still buffered are discarded.
func (q *Queue) Stop(ctx context.Context) {
	slog.Info("Stopping work queue", slog.Int("pending", len(q.jobs)))
	q.stopOnce.Do(func() { close(q.stopChan) })

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("Work queue stopped")
	case <-ctx.Done():
		slog.Warn("Work queue stop timed out", logfields.Error(ctx.Err()))
	}
}

// Enqueue adds job without blocking.
func (q *Queue) Enqueue(job *Job) error {
	if job == nil || job.Run == nil {
		return fmt.Errorf("job and its run function are required")
	}
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}

	select {
	case <-q.stopChan:
		return ErrQueueStopped.WithContext("job", job.Name)
	default:
	}

	select {
	case q.jobs <- job:
		q.recorder.SetQueueDepth(len(q.jobs))
		slog.Debug("Job enqueued", logfields.JobID(job.ID), logfields.JobKind(string(job.Kind)), slog.String("name", job.Name))
		return nil
	default:
		q.dropped.Add(1)
		q.recorder.IncQueueDropped()
		return ErrQueueFull.WithContext("job", job.Name)
	}
}

// Length returns the number of pending jobs.
func (q *Queue) Length() int { return len(q.jobs) }

// Capacity returns the buffer size.
func (q *Queue) Capacity() int { return q.maxSize }

// Processed returns how many jobs have run.
func (q *Queue) Processed() int64 { return q.processed.Load() }

// Failed returns how many jobs returned an error or panicked.
func (q *Queue) Failed() int64 { return q.failed.Load() }

// Dropped returns how many jobs were rejected because the queue was full.
func (q *Queue) Dropped() int64 { return q.dropped.Load() }

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Queue worker stopped by context")
			return
		case <-q.stopChan:
			slog.Debug("Queue worker stopped by stop signal")
			return
		case job := <-q.jobs:
			q.recorder.SetQueueDepth(len(q.jobs))
			q.process(ctx, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, job *Job) {
	start := time.Now()
	err := q.runSafely(ctx, job)
	q.processed.Add(1)
	if err != nil {
		q.failed.Add(1)
		slog.Error("Job failed",
			logfields.JobID(job.ID),
			logfields.JobKind(string(job.Kind)),
			slog.String("name", job.Name),
			logfields.Elapsed(time.Since(start)),
			logfields.Error(err))
		return
	}
	slog.Debug("Job completed",
		logfields.JobID(job.ID),
		slog.String("name", job.Name),
		logfields.Elapsed(time.Since(start)))
}

func (q *Queue) runSafely(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}
