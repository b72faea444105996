// Package jobs wraps the synchronous analysis engine in an asynchronous
// job state machine: pending -> processing -> {completed, failed}, with
// monotonic progress reporting and cancellation by job ID. It backs the
// polling contract the service layer exposes to clients.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/fractionworks/proceval/internal/engine"
)

// Status is the lifecycle state of one analysis job.
type Status string

// Job states. Completed and failed are terminal.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Progress milestones. Monte Carlo sampling fills the span between the
// processing floor and the completion ceiling; runs without a simulation
// jump across it.
const (
	progressProcessing = 5
	progressSimFloor   = 10
	progressSimCeiling = 95
	progressDone       = 100
)

// ErrNotFound is returned when no job exists for an ID.
var ErrNotFound = errors.New("job not found")

// ErrCanceled marks a job revoked by its ID before completion.
var ErrCanceled = errors.New("job canceled")

// Job is an immutable snapshot of one job's state. Result is set only in
// the completed state; Error only in failed.
type Job struct {
	ID         string                 `json:"id"`
	Status     Status                 `json:"status"`
	Progress   int                    `json:"progress"`
	Result     *engine.AnalysisResult `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	FinishedAt *time.Time             `json:"finished_at,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// jobState is the mutable record behind a snapshot.
type jobState struct {
	job    Job
	cancel context.CancelFunc
}

// Queue runs analysis jobs and tracks their states in memory.
type Queue struct {
	engine *engine.Engine
	log    zerolog.Logger

	mu   sync.RWMutex
	jobs map[string]*jobState
}

// NewQueue builds a queue around the given engine.
func NewQueue(eng *engine.Engine, log zerolog.Logger) *Queue {
	return &Queue{
		engine: eng,
		log:    log,
		jobs:   make(map[string]*jobState),
	}
}

// Submit registers a pending job for the request and starts it on its own
// goroutine. The returned ID is a ULID, sortable by submission time.
func (q *Queue) Submit(req *engine.AnalysisRequest) string {
	id := ulid.Make().String()
	ctx, cancel := context.WithCancel(context.Background())

	q.mu.Lock()
	q.jobs[id] = &jobState{
		job: Job{
			ID:        id,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		},
		cancel: cancel,
	}
	q.mu.Unlock()

	q.log.Info().Str("job_id", id).Msg("analysis job submitted")

	go q.run(ctx, id, req)
	return id
}

// Get returns a snapshot of the job.
func (q *Queue) Get(id string) (Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	state, ok := q.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return state.job, nil
}

// Cancel revokes a job by ID. Further Monte Carlo sample dispatch stops;
// in-flight samples are allowed to finish. Terminal jobs are unaffected.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if state.job.Terminal() {
		return nil
	}

	state.cancel()
	q.log.Info().Str("job_id", id).Msg("analysis job canceled")
	return nil
}

// run executes the analysis and drives the state transitions.
func (q *Queue) run(ctx context.Context, id string, req *engine.AnalysisRequest) {
	q.transition(id, StatusProcessing, progressProcessing)

	result, err := q.engine.AnalyzeWithProgress(ctx, req, func(done, total int) {
		if total <= 0 {
			return
		}
		span := progressSimCeiling - progressSimFloor
		q.setProgress(id, progressSimFloor+span*done/total)
	})

	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.Canceled) {
			reason = ErrCanceled.Error()
		}
		q.fail(id, reason)
		return
	}

	q.complete(id, result)
}

// transition moves a non-terminal job to a new status and progress.
func (q *Queue) transition(id string, status Status, progress int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.jobs[id]
	if !ok || state.job.Terminal() {
		return
	}
	state.job.Status = status
	if progress > state.job.Progress {
		state.job.Progress = progress
	}
}

// setProgress raises the job progress. Progress is monotonic: reports
// arriving out of order from concurrent sample batches never move it
// backwards.
func (q *Queue) setProgress(id string, progress int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.jobs[id]
	if !ok || state.job.Terminal() {
		return
	}
	if progress > state.job.Progress {
		state.job.Progress = progress
	}
}

func (q *Queue) complete(id string, result *engine.AnalysisResult) {
	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.jobs[id]
	if !ok || state.job.Terminal() {
		return
	}
	now := time.Now()
	state.job.Status = StatusCompleted
	state.job.Progress = progressDone
	state.job.Result = result
	state.job.FinishedAt = &now

	q.log.Info().Str("job_id", id).Msg("analysis job completed")
}

func (q *Queue) fail(id string, reason string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.jobs[id]
	if !ok || state.job.Terminal() {
		return
	}
	now := time.Now()
	state.job.Status = StatusFailed
	state.job.Error = reason
	state.job.FinishedAt = &now

	q.log.Warn().Str("job_id", id).Str("reason", reason).Msg("analysis job failed")
}
