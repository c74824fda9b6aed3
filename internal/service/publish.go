package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/media"
	"github.com/timmy/batchpub/internal/pipeline"
	"github.com/timmy/batchpub/internal/publisher"
	"github.com/timmy/batchpub/internal/schedule"
	"github.com/timmy/batchpub/internal/sheet"
	"github.com/timmy/batchpub/internal/storage"
)

// ErrNoPublisher is returned when a non-simulated run has no publisher configured.
var ErrNoPublisher = errors.New("publisher is not configured")

// PublishService runs the read, process and write cycle over a sheet.
type PublishService struct {
	store     storage.SheetStore
	publisher publisher.Publisher
	history   HistoryRecorder
	labels    sheet.Labels
	lister    media.Lister
	exts      []string
	thumbsDir string
	now       func() time.Time
}

// PublishConfig holds configuration for the publish service.
type PublishConfig struct {
	Labels        sheet.Labels
	Extensions    []string     // empty uses media.DefaultExtensions
	ThumbnailsDir string       // empty disables thumbnails
	Lister        media.Lister // nil lists the local file system
}

// NewPublishService creates a new publish service.
// Parameters:
//   - store: sheet reader and writer.
//   - pub: remote publisher; may be nil if every run is simulated.
//   - history: run history; nil disables it.
//   - cfg: header labels and media lookup settings.
//
// Returns:
//   - *PublishService: initialized service.
func NewPublishService(store storage.SheetStore, pub publisher.Publisher, history HistoryRecorder, cfg *PublishConfig) *PublishService {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = media.DefaultExtensions
	}
	return &PublishService{
		store:     store,
		publisher: pub,
		history:   history,
		labels:    cfg.Labels,
		lister:    cfg.Lister,
		exts:      exts,
		thumbsDir: cfg.ThumbnailsDir,
		now:       time.Now,
	}
}

// RunOptions holds options for a single run.
type RunOptions struct {
	RunID         string // generated when empty
	SheetPath     string
	SheetName     string
	MediaDir      string
	Schedule      schedule.Schedule // nil publishes immediately
	Simulate      bool
	SkipCompleted bool
	Privacy       string
}

// RunStats holds statistics for a run.
type RunStats struct {
	RunID     string               `json:"run_id"`
	Schedule  string               `json:"schedule"`
	Simulate  bool                 `json:"simulate"`
	Total     int                  `json:"total"`
	Uploaded  int                  `json:"uploaded"`
	Simulated int                  `json:"simulated"`
	Missing   int                  `json:"missing"`
	Failed    int                  `json:"failed"`
	Skipped   int                  `json:"skipped"`
	NextSlot  int                  `json:"next_slot"`
	Cancelled bool                 `json:"cancelled"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Rows      []pipeline.RowResult `json:"-"`
}

// Duration returns how long the run took.
func (s *RunStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func (s *RunStats) apply(res pipeline.RunResult) {
	s.Rows = res.Rows
	s.Total = len(res.Rows)
	s.Uploaded = res.Count(pipeline.KindUploaded)
	s.Simulated = res.Count(pipeline.KindSimulated)
	s.Missing = res.Count(pipeline.KindMissingFile)
	s.Failed = res.Count(pipeline.KindFailed)
	s.Skipped = res.Count(pipeline.KindSkipped)
	s.NextSlot = res.NextSlot
	s.Cancelled = res.Cancelled
}

// Run reads the sheet, processes every row and writes the sheet back once.
// Parameters:
//   - ctx: context; cancelling it stops before the next row, the sheet is still written.
//   - opts: sheet location, media folder, schedule and mode.
//
// Returns:
//   - *RunStats: per-outcome counters; nil when the run aborted before processing.
//   - error: non-nil for fatal errors (unreadable sheet, no identifier column,
//     invalid schedule, failed write). Row failures are only counted.
func (s *PublishService) Run(ctx context.Context, opts RunOptions) (*RunStats, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldRunID:     opts.RunID,
		logger.FieldComponent: "publish",
		logger.FieldSheet:     opts.SheetPath,
	})

	sched := opts.Schedule
	if sched == nil {
		sched = schedule.Immediate{}
	}
	if err := schedule.Validate(sched); err != nil {
		return nil, err
	}
	if !opts.Simulate && s.publisher == nil {
		return nil, ErrNoPublisher
	}

	m, err := s.store.Read(ctx, opts.SheetPath, opts.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	idx, err := sheet.Resolve(m, s.labels)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve header of %s: %w", opts.SheetPath, err)
	}

	stats := &RunStats{
		RunID:     opts.RunID,
		Schedule:  sched.String(),
		Simulate:  opts.Simulate,
		StartTime: s.now(),
	}
	logger.CtxInfo(ctx, "Starting run: rows=%d, schedule=%s, simulate=%v", m.DataRows(), stats.Schedule, opts.Simulate)
	run := s.startHistory(ctx, stats, opts)

	proc := pipeline.NewProcessor(media.NewMatcher(s.lister, s.exts), s.publisher, sched, pipeline.Options{
		MediaDir:      opts.MediaDir,
		Simulate:      opts.Simulate,
		SkipCompleted: opts.SkipCompleted,
		Privacy:       opts.Privacy,
	}).
		WithThumbnails(media.NewThumbnailFinder(s.thumbsDir, s.lister)).
		WithClock(s.now)
	stats.apply(proc.Run(ctx, m, idx))

	// The outcomes gathered so far are only in memory; flush them even when cancelled.
	flushCtx := context.WithoutCancel(ctx)
	writeErr := s.store.Write(flushCtx, opts.SheetPath, opts.SheetName, m)
	stats.EndTime = s.now()
	s.finishHistory(flushCtx, run, stats, writeErr)

	if writeErr != nil {
		logger.CtxError(ctx, "Failed to write sheet, outcomes of this run are lost: %v", writeErr)
		return stats, fmt.Errorf("failed to write sheet: %w", writeErr)
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: stats.Duration().Milliseconds(),
		logger.FieldCount:      stats.Total,
	}).Info(ctx, "Run completed: uploaded=%d, simulated=%d, missing=%d, failed=%d, skipped=%d, cancelled=%v",
		stats.Uploaded, stats.Simulated, stats.Missing, stats.Failed, stats.Skipped, stats.Cancelled)

	return stats, nil
}
