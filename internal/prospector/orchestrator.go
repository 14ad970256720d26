// Package prospector orchestrates long-running local-business search jobs
// against the remote scraping engine: submission, polling, cancellation,
// result snapshots, and CSV export.
package prospector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coldreach/prospector/internal/cache"
	"github.com/coldreach/prospector/internal/engine"
	"github.com/coldreach/prospector/pkg/models"
)

// State is the orchestrator's position in the job lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateStopped    State = "stopped"
	StateTimedOut   State = "timed_out"
)

// Terminal reports whether the state is a final job outcome.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateStopped, StateTimedOut:
		return true
	default:
		return false
	}
}

const (
	recordTimeout  = 10 * time.Second
	jobStatusTTL   = time.Minute
	msgStarting    = "Starting..."
	msgStopping    = "Stopping..."
	msgFallbackErr = "Search failed."
)

// HistoryRecorder persists a completed search. Implemented by
// history.Service; recording failures never fail the job itself.
type HistoryRecorder interface {
	Record(ctx context.Context, entry *models.HistoryEntry) error
}

// Options tune the polling loop.
type Options struct {
	PollInterval    time.Duration
	MaxPollAttempts int
	Logger          *slog.Logger
}

// Snapshot is a point-in-time view of the orchestrator for rendering.
type Snapshot struct {
	State   State
	Job     *models.SearchJob
	Message string
}

// Orchestrator drives one session's search jobs. At most one job is
// polled at a time; submitting a new search tears down the previous
// polling loop first. All methods are safe for concurrent use.
type Orchestrator struct {
	engine   engine.Client
	recorder HistoryRecorder
	statuses cache.Cache
	sess     engine.Session
	owner    string

	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger

	// startMu serializes submission and teardown so two concurrent
	// searches cannot both arm a polling loop.
	startMu sync.Mutex

	mu      sync.Mutex
	state   State
	job     *models.SearchJob
	message string
	results *ResultStore
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an idle orchestrator for one session. The status cache may
// be nil; job-status mirroring is then skipped.
func New(ec engine.Client, recorder HistoryRecorder, statuses cache.Cache, sess engine.Session, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		engine:      ec,
		recorder:    recorder,
		statuses:    statuses,
		sess:        sess,
		owner:       sess.Token,
		interval:    opts.PollInterval,
		maxAttempts: opts.MaxPollAttempts,
		logger:      logger,
		state:       StateIdle,
		results:     NewResultStore(),
	}
}

// Results is the single read path for anything rendering or exporting
// the current snapshot.
func (o *Orchestrator) Results() *ResultStore {
	return o.results
}

// Status returns a point-in-time view of the orchestrator.
func (o *Orchestrator) Status() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{State: o.state, Message: o.message}
	if o.job != nil {
		job := *o.job
		snap.Job = &job
	}
	return snap
}

// Search validates the parameters, submits a new job, and arms the
// polling loop. Any previously active job is abandoned: its loop is torn
// down before the new submission is issued.
func (o *Orchestrator) Search(ctx context.Context, params SearchParams) (*models.SearchJob, error) {
	req, err := BuildRequest(params)
	if err != nil {
		return nil, err
	}

	o.startMu.Lock()
	defer o.startMu.Unlock()

	o.teardown()

	o.mu.Lock()
	o.state = StateSubmitting
	o.mu.Unlock()

	jobID, err := o.engine.Submit(ctx, o.sess, req)
	if err != nil {
		o.mu.Lock()
		o.state = StateIdle
		o.job = nil
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	job := &models.SearchJob{
		ID:       jobID,
		Query:    req.Query,
		Location: req.Location,
		Limit:    req.Limit,
		Options:  params.Options,
		Status:   models.JobStatusPending,
		Progress: msgStarting,
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.mu.Lock()
	o.job = job
	o.message = ""
	o.results.Replace(nil)
	o.state = StatePolling
	o.cancel = cancel
	o.done = done
	// The caller's copy is taken under the lock: once the polling loop
	// starts, ticks mutate job and an unlocked read would tear.
	out := *job
	o.mu.Unlock()

	o.logger.Info("search job submitted", "job_id", jobID, "query", req.Query, "location", req.Location)
	go o.pollLoop(pollCtx, jobID, done)

	return &out, nil
}

// Stop sends a best-effort stop directive for the active job. The next
// poll remains the authoritative source of truth for whether the job has
// actually ended, so a failed stop request is logged and swallowed.
func (o *Orchestrator) Stop(ctx context.Context, jobID string) error {
	o.mu.Lock()
	if o.state != StatePolling || o.job == nil || o.job.ID != jobID {
		o.mu.Unlock()
		return ErrNoActiveJob
	}
	o.job.Progress = msgStopping
	o.message = msgStopping
	o.mu.Unlock()

	if err := o.engine.Stop(ctx, o.sess, jobID); err != nil {
		o.logger.Warn("stop directive failed, waiting on next poll", "job_id", jobID, "error", err)
	}
	return nil
}

// Acknowledge drains a terminal outcome back to idle, returning the final
// snapshot. Reports false when no terminal outcome is pending. Results of
// the finished job remain readable until the next submission.
func (o *Orchestrator) Acknowledge() (Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.Terminal() {
		return Snapshot{}, false
	}
	snap := o.snapshotLocked()
	o.state = StateIdle
	o.message = ""
	return snap, true
}

// DismissMessage clears the current user-facing message.
func (o *Orchestrator) DismissMessage() {
	o.mu.Lock()
	o.message = ""
	o.mu.Unlock()
}

// Close tears down any active polling loop. Used on session teardown and
// server shutdown.
func (o *Orchestrator) Close() {
	o.startMu.Lock()
	defer o.startMu.Unlock()
	o.teardown()
}

// teardown cancels the active polling loop and waits for it to exit, so
// no orphaned timer can outlive its job. Callers hold startMu.
func (o *Orchestrator) teardown() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.cancel, o.done = nil, nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// pollLoop fetches job status at a fixed interval until a terminal
// condition or the attempt ceiling. Each tick runs synchronously in this
// goroutine and ticker ticks coalesce while a request is in flight, so
// requests never overlap and the ResultStore has a single writer.
func (o *Orchestrator) pollLoop(ctx context.Context, jobID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		attempts++
		if o.tick(ctx, jobID, attempts) {
			return
		}
	}
}

// tick performs one poll. Reports true when polling must stop.
func (o *Orchestrator) tick(ctx context.Context, jobID string, attempt int) bool {
	resp, err := o.engine.Poll(ctx, o.sess, jobID)
	if err != nil {
		if ctx.Err() != nil {
			// Torn down mid-request; the new owner of the state takes over.
			return true
		}
		// A poll failure ends the job attempt. No retry: the interval is
		// already coarse, and an unreachable engine mid-job is fatal here.
		o.logger.Error("poll failed, ending job", "job_id", jobID, "attempt", attempt, "error", err)
		o.finish(jobID, StateFailed, models.JobStatusFailed, msgFallbackErr, nil, false)
		return true
	}

	o.mirrorStatus(ctx, jobID, resp.Status)

	switch resp.Status {
	case models.JobStatusCompleted:
		msg := fmt.Sprintf("Done! Found %d businesses.", len(resp.Results))
		o.finish(jobID, StateCompleted, models.JobStatusCompleted, msg, resp.Results, true)
		return true

	case models.JobStatusFailed:
		msg := resp.Progress
		if msg == "" {
			msg = msgFallbackErr
		}
		o.finish(jobID, StateFailed, models.JobStatusFailed, msg, nil, false)
		return true

	case models.JobStatusStopped:
		msg := fmt.Sprintf("Stopped with %d results.", len(resp.Results))
		o.finish(jobID, StateStopped, models.JobStatusStopped, msg, resp.Results, true)
		return true

	default:
		// Still in progress: the response is the authoritative full
		// snapshot, so replace the store wholesale. Never append.
		o.mu.Lock()
		o.results.Replace(resp.Results)
		if o.job != nil && o.job.ID == jobID {
			if resp.Status != "" {
				o.job.Status = resp.Status
			}
			o.job.Progress = resp.Progress
		}
		o.mu.Unlock()

		if attempt >= o.maxAttempts {
			// Client-side safety net against an engine that never
			// reports termination. Presented exactly like a failure.
			o.logger.Error("poll attempt ceiling exceeded", "job_id", jobID, "attempts", attempt)
			o.finish(jobID, StateTimedOut, models.JobStatusFailed, "Search timed out.", nil, false)
			return true
		}
		return false
	}
}

// finish applies a terminal transition: final snapshot (when the engine
// provided one), job status, user-facing message, and history recording
// for completed or stopped searches.
func (o *Orchestrator) finish(jobID string, state State, jobStatus, message string, results []models.ResultRecord, record bool) {
	o.mu.Lock()
	if o.job == nil || o.job.ID != jobID {
		o.mu.Unlock()
		return
	}
	if results != nil {
		o.results.Replace(results)
	}
	o.job.Status = jobStatus
	o.job.Progress = message
	o.message = message
	o.state = state
	job := *o.job
	snapshot := o.results.Snapshot()
	o.mu.Unlock()

	o.logger.Info("search job finished", "job_id", jobID, "state", string(state), "total", len(snapshot))

	if !record || o.recorder == nil {
		return
	}

	entry := &models.HistoryEntry{
		ID:        uuid.New(),
		Owner:     o.owner,
		Query:     job.Query,
		Location:  job.Location,
		Total:     len(snapshot),
		Results:   snapshot,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancelRecord := context.WithTimeout(context.Background(), recordTimeout)
	defer cancelRecord()
	if err := o.recorder.Record(ctx, entry); err != nil {
		o.logger.Error("record search history", "job_id", jobID, "error", err)
	}
}

// mirrorStatus best-effort publishes the live status under a TTL key.
func (o *Orchestrator) mirrorStatus(ctx context.Context, jobID, status string) {
	if o.statuses == nil {
		return
	}
	if err := o.statuses.SetJobStatus(ctx, jobID, status, jobStatusTTL); err != nil {
		o.logger.Warn("mirror job status", "job_id", jobID, "error", err)
	}
}
