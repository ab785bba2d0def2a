// Package jobs runs translation work in the background on a single worker.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a job. A job only ever moves forward:
// queued, running, then completed or failed.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Finished reports whether s is a terminal status.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

var (
	// ErrUnknownJob is returned by Status for an id that was never enqueued
	// or has been evicted.
	ErrUnknownJob = errors.New("unknown job")
	// ErrStopped is returned by Enqueue once the runner has shut down.
	ErrStopped = errors.New("job runner stopped")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("job runner already started")
)

// ProgressFunc reports completion percentage from inside a work function.
type ProgressFunc func(percent int)

// WorkFunc is the body of a job. Its return value becomes the job result.
type WorkFunc func(ctx context.Context, progress ProgressFunc) (any, error)

// Snapshot is a point-in-time copy of a job's state.
type Snapshot struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Payload     any        `json:"payload,omitempty"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type job struct {
	snap Snapshot
	fn   WorkFunc
}

// Runner executes jobs one at a time in enqueue order.
type Runner struct {
	mu       sync.Mutex
	jobs     map[string]*job
	queue    []*job
	finished []string // ids of finished jobs, oldest first
	started  bool
	stopped  bool

	wake        chan struct{}
	done        chan struct{}
	maxFinished int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for job state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxFinished bounds how many finished jobs stay queryable. The oldest
// finished jobs are evicted first. By default, and for zero or negative n,
// every job is retained for the life of the process.
func WithMaxFinished(n int) Option {
	return func(r *Runner) {
		r.maxFinished = n
	}
}

// NewRunner creates a Runner. Call Start to begin processing.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		jobs:        make(map[string]*job),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the worker. The worker stops when ctx is cancelled; jobs
// still queued at that point are never run.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	go r.loop(ctx)
	return nil
}

// Done is closed once the worker has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Enqueue adds a job to the back of the queue and returns its id.
func (r *Runner) Enqueue(jobType string, payload any, fn WorkFunc) (string, error) {
	if fn == nil {
		return "", fmt.Errorf("enqueue %s: nil work function", jobType)
	}

	j := &job{
		snap: Snapshot{
			ID:        uuid.NewString(),
			Type:      jobType,
			Payload:   payload,
			Status:    StatusQueued,
			CreatedAt: r.now().UTC(),
		},
		fn: fn,
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return "", ErrStopped
	}
	r.jobs[j.snap.ID] = j
	r.queue = append(r.queue, j)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}

	r.logger.Debug("job queued", "job_id", j.snap.ID, "type", jobType)
	return j.snap.ID, nil
}

// Status returns a snapshot of the job.
func (r *Runner) Status(id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return Snapshot{}, ErrUnknownJob
	}
	return j.snap, nil
}

// QueueDepth returns the number of jobs waiting to run.
func (r *Runner) QueueDepth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	defer func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		j := r.next()
		if j == nil {
			select {
			case <-ctx.Done():
				return
			case <-r.wake:
			}
			continue
		}
		r.run(ctx, j)
	}
}

func (r *Runner) next() *job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil
	}
	j := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	return j
}

func (r *Runner) run(ctx context.Context, j *job) {
	started := r.now().UTC()
	r.mu.Lock()
	j.snap.Status = StatusRunning
	j.snap.StartedAt = &started
	id, typ := j.snap.ID, j.snap.Type
	r.mu.Unlock()

	r.logger.Info("job started", "job_id", id, "type", typ)

	result, err := r.execute(ctx, j)

	completed := r.now().UTC()
	r.mu.Lock()
	j.snap.CompletedAt = &completed
	if err != nil {
		j.snap.Status = StatusFailed
		j.snap.Error = err.Error()
	} else {
		j.snap.Status = StatusCompleted
		j.snap.Progress = 100
		j.snap.Result = result
	}
	j.fn = nil
	r.retire(id)
	r.mu.Unlock()

	duration := completed.Sub(started).Milliseconds()
	if err != nil {
		r.logger.Error("job failed", "job_id", id, "type", typ, "duration_ms", duration, "error", err)
		return
	}
	r.logger.Info("job completed", "job_id", id, "type", typ, "duration_ms", duration)
}

// execute runs the work function, converting a panic into an error.
func (r *Runner) execute(ctx context.Context, j *job) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	progress := func(percent int) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if j.snap.Status == StatusRunning && percent > j.snap.Progress {
			j.snap.Progress = percent
		}
	}

	return j.fn(ctx, progress)
}

// retire records a finished job and evicts the oldest ones over the limit.
// Callers hold r.mu.
func (r *Runner) retire(id string) {
	r.finished = append(r.finished, id)
	if r.maxFinished <= 0 {
		return
	}
	for len(r.finished) > r.maxFinished {
		delete(r.jobs, r.finished[0])
		r.finished = r.finished[1:]
	}
}
