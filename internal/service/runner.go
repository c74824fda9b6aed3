package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/batchpub/internal/logger"
)

// ErrRunInProgress is returned when a run is started while another is active.
var ErrRunInProgress = errors.New("a publish run is already in progress")

// Runner executes at most one run at a time in the background.
type Runner struct {
	service *PublishService

	mu            sync.RWMutex
	isRunning     bool
	currentRunID  string
	cancel        context.CancelFunc
	lastStats     *RunStats
	lastRunTime   time.Time
	lastRunStatus string
	wg            sync.WaitGroup
}

// RunnerStatus is a snapshot of the runner state.
type RunnerStatus struct {
	IsRunning     bool      `json:"is_running"`
	CurrentRunID  string    `json:"current_run_id,omitempty"`
	LastRunTime   string    `json:"last_run_time,omitempty"`
	LastRunStatus string    `json:"last_run_status,omitempty"`
	LastStats     *RunStats `json:"last_stats,omitempty"`
}

// NewRunner creates a new Runner.
func NewRunner(svc *PublishService) *Runner {
	return &Runner{service: svc}
}

// Start launches a run in the background and returns its ID.
// Parameters:
//   - ctx: parent context; only its values are kept, its cancellation is not.
//   - opts: run options.
//
// Returns:
//   - string: ID of the started run.
//   - error: ErrRunInProgress if another run is active.
func (r *Runner) Start(ctx context.Context, opts RunOptions) (string, error) {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return "", ErrRunInProgress
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.isRunning = true
	r.currentRunID = opts.RunID
	r.cancel = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer cancel()

		stats, err := r.service.Run(runCtx, opts)

		r.mu.Lock()
		r.isRunning = false
		r.currentRunID = ""
		r.cancel = nil
		r.lastStats = stats
		r.lastRunTime = time.Now()
		switch {
		case err != nil:
			r.lastRunStatus = "failed: " + err.Error()
		case stats != nil && stats.Cancelled:
			r.lastRunStatus = "cancelled"
		default:
			r.lastRunStatus = "success"
		}
		r.mu.Unlock()

		if err != nil {
			logger.CtxError(runCtx, "Background run %s failed: %v", opts.RunID, err)
		}
	}()

	return opts.RunID, nil
}

// Status returns the current runner state.
func (r *Runner) Status() RunnerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := RunnerStatus{
		IsRunning:     r.isRunning,
		CurrentRunID:  r.currentRunID,
		LastRunStatus: r.lastRunStatus,
		LastStats:     r.lastStats,
	}
	if !r.lastRunTime.IsZero() {
		status.LastRunTime = r.lastRunTime.Format(time.RFC3339)
	}
	return status
}

// Cancel asks the active run to stop after its current row.
func (r *Runner) Cancel() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	return true
}

// Wait blocks until the active run, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
