package service

import (
	"context"
	"time"

	"github.com/timmy/batchpub/internal/domain"
	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/pipeline"
)

// HistoryRecorder persists runs for auditing. History failures never fail a run.
type HistoryRecorder interface {
	Create(ctx context.Context, run *domain.PublishRun) error
	Finish(ctx context.Context, run *domain.PublishRun) error
	AddRowResults(ctx context.Context, rows []domain.RowResult) error
}

func (s *PublishService) startHistory(ctx context.Context, stats *RunStats, opts RunOptions) *domain.PublishRun {
	if s.history == nil {
		return nil
	}
	run := &domain.PublishRun{
		ID:        stats.RunID,
		SheetPath: opts.SheetPath,
		SheetName: opts.SheetName,
		Schedule:  stats.Schedule,
		Simulate:  opts.Simulate,
		Status:    domain.RunStatusRunning,
		StartedAt: stats.StartTime,
	}
	if err := s.history.Create(ctx, run); err != nil {
		logger.CtxWarn(ctx, "Failed to record run start: %v", err)
		return nil
	}
	return run
}

func (s *PublishService) finishHistory(ctx context.Context, run *domain.PublishRun, stats *RunStats, runErr error) {
	if s.history == nil || run == nil {
		return
	}

	finished := stats.EndTime
	run.FinishedAt = &finished
	run.TotalRows = stats.Total
	run.Uploaded = stats.Uploaded
	run.Simulated = stats.Simulated
	run.Missing = stats.Missing
	run.Failed = stats.Failed
	run.Skipped = stats.Skipped
	run.NextSlot = stats.NextSlot
	switch {
	case runErr != nil:
		run.Status = domain.RunStatusFailed
		run.Error = runErr.Error()
	case stats.Cancelled:
		run.Status = domain.RunStatusCancelled
	default:
		run.Status = domain.RunStatusCompleted
	}

	if err := s.history.AddRowResults(ctx, rowRecords(run.ID, stats.Rows)); err != nil {
		logger.CtxWarn(ctx, "Failed to record row results: %v", err)
	}
	if err := s.history.Finish(ctx, run); err != nil {
		logger.CtxWarn(ctx, "Failed to record run end: %v", err)
	}
}

func rowRecords(runID string, rows []pipeline.RowResult) []domain.RowResult {
	records := make([]domain.RowResult, 0, len(rows))
	for _, r := range rows {
		rec := domain.RowResult{
			RunID:      runID,
			RowNumber:  r.Job.Row + 1,
			Identifier: r.Job.Identifier,
			State:      string(r.State),
			Outcome:    string(r.Outcome.Kind),
			RemoteID:   r.Outcome.RemoteID,
			MediaPath:  r.Job.MediaPath,
			Title:      r.Job.Title,
			Tags:       domain.StringArray(r.Job.Tags),
			StatusText: r.Outcome.StatusText(),
			DurationMs: r.Duration.Milliseconds(),
		}
		if r.ConsumedSlot() {
			slot := r.Job.Slot
			at := r.Job.PublishAt.UTC().Truncate(time.Second)
			rec.Slot = &slot
			rec.PublishAt = &at
		}
		records = append(records, rec)
	}
	return records
}
