// Package pipeline turns sheet rows into publish calls and status cells.
//
// Rows are processed strictly in order. The schedule slot is an explicit
// accumulator: each step receives the current slot and returns the next one,
// advancing only when a scheduled row is uploaded or simulated.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/media"
	"github.com/timmy/batchpub/internal/publisher"
	"github.com/timmy/batchpub/internal/schedule"
	"github.com/timmy/batchpub/internal/sheet"
)

// Options controls how rows are processed.
type Options struct {
	MediaDir      string
	Simulate      bool // never call the publisher
	SkipCompleted bool // skip rows whose status already records an upload
	Privacy       string
}

// Processor runs the row state machine.
type Processor struct {
	matcher   *media.Matcher
	thumbs    *media.ThumbnailFinder
	publisher publisher.Publisher
	schedule  schedule.Schedule
	opts      Options
	now       func() time.Time
}

// NewProcessor creates a Processor.
// Parameters:
//   - matcher: media file resolver.
//   - pub: remote publisher; may be nil when opts.Simulate is set.
//   - sched: validated schedule, fixed for the whole run.
//   - opts: processing options.
//
// Returns:
//   - *Processor: processor ready to run.
func NewProcessor(matcher *media.Matcher, pub publisher.Publisher, sched schedule.Schedule, opts Options) *Processor {
	if sched == nil {
		sched = schedule.Immediate{}
	}
	return &Processor{
		matcher:   matcher,
		publisher: pub,
		schedule:  sched,
		opts:      opts,
		now:       time.Now,
	}
}

// WithThumbnails attaches a thumbnail finder.
func (p *Processor) WithThumbnails(f *media.ThumbnailFinder) *Processor {
	p.thumbs = f
	return p
}

// WithClock replaces the clock used for status timestamps.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// RowResult is the result of processing one row.
type RowResult struct {
	Job      Job
	State    RowState
	Outcome  Outcome
	Duration time.Duration
}

// ConsumedSlot reports whether the row took a scheduled timestamp.
func (r RowResult) ConsumedSlot() bool {
	return r.Job.PublishAt != nil && (r.State == StateUploaded || r.State == StateSimulated)
}

// RunResult is the fold of Step over every data row.
type RunResult struct {
	Rows      []RowResult
	NextSlot  int
	Cancelled bool // stopped early; remaining rows were not touched
}

// Count returns the number of rows with the given outcome kind.
func (r RunResult) Count(k Kind) int {
	n := 0
	for _, row := range r.Rows {
		if row.Outcome.Kind == k {
			n++
		}
	}
	return n
}

// Step processes a single data row.
// Parameters:
//   - ctx: context passed to the publisher.
//   - rowIndex: matrix index of the row (header is 0).
//   - row: the row cells.
//   - idx: resolved header.
//   - slot: current schedule slot.
//
// Returns:
//   - RowResult: job, final state and outcome.
//   - int: the slot for the next row.
func (p *Processor) Step(ctx context.Context, rowIndex int, row []string, idx sheet.FieldIndex, slot int) (RowResult, int) {
	start := p.now()
	var m rowMachine
	res := RowResult{Job: BuildJob(rowIndex, row, idx)}
	finish := func(next int) (RowResult, int) {
		res.State = m.state
		res.Duration = p.now().Sub(start)
		return res, next
	}

	if res.Job.Identifier == "" {
		m.to(StateSkipped)
		res.Outcome = Outcome{Kind: KindSkipped, At: start}
		return finish(slot)
	}
	m.to(StatePending)

	if p.opts.SkipCompleted {
		if prev, ok := ParseStatus(idx.Value(row, sheet.FieldStatus)); ok && prev.Kind == KindUploaded {
			m.to(StateSkipped)
			res.Outcome = Outcome{Kind: KindSkipped, At: start, RemoteID: prev.RemoteID}
			return finish(slot)
		}
	}

	path, ok := p.matcher.Match(p.opts.MediaDir, res.Job.Identifier)
	if !ok {
		m.to(StateMatchFailed)
		res.Outcome = Outcome{Kind: KindMissingFile, At: start, Identifier: res.Job.Identifier}
		return finish(slot)
	}
	res.Job.MediaPath = path
	m.to(StateReady)

	if thumb, err := p.thumbs.Find(res.Job.Identifier); err != nil {
		logger.CtxWarn(ctx, "Ignoring thumbnail: %v", err)
	} else if thumb != nil {
		res.Job.ThumbnailPath = thumb.Path
	}

	next := slot
	if at, scheduled := schedule.PublishAt(slot, p.schedule); scheduled {
		res.Job.Slot = slot
		res.Job.PublishAt = &at
		next = slot + 1
	}

	if p.opts.Simulate {
		m.to(StateSimulated)
		res.Outcome = Outcome{
			Kind:      KindSimulated,
			At:        start,
			MediaFile: filepath.Base(path),
			PublishAt: res.Job.PublishAt,
		}
		return finish(next)
	}

	remoteID, err := p.publisher.Publish(ctx, publisher.Request{
		MediaPath:     res.Job.MediaPath,
		Title:         res.Job.Title,
		Description:   res.Job.Description,
		Tags:          res.Job.Tags,
		PublishAt:     res.Job.PublishAt,
		ThumbnailPath: res.Job.ThumbnailPath,
		Privacy:       p.opts.Privacy,
	})
	if err != nil {
		m.to(StateFailed)
		res.Outcome = Outcome{Kind: KindFailed, At: start, Message: err.Error()}
		// The slot is handed to the next successful row.
		return finish(slot)
	}

	m.to(StateUploaded)
	res.Outcome = Outcome{
		Kind:      KindUploaded,
		At:        start,
		RemoteID:  remoteID,
		PublishAt: res.Job.PublishAt,
	}
	return finish(next)
}

// Run processes every data row of m in order and writes status cells in place.
// Rows with a skipped outcome keep their status cell untouched. When ctx is
// cancelled, Run stops before the next row and reports Cancelled.
func (p *Processor) Run(ctx context.Context, m sheet.Matrix, idx sheet.FieldIndex) RunResult {
	statusCol, hasStatus := idx.Column(sheet.FieldStatus)
	var res RunResult
	slot := 0

	for i := 1; i < len(m); i++ {
		if ctx.Err() != nil {
			res.Cancelled = true
			logger.CtxWarn(ctx, "Run cancelled before row %d: %v", i+1, ctx.Err())
			break
		}

		rowCtx := logger.SetRow(ctx, i+1, idx.Value(m[i], sheet.FieldIdentifier))
		row, next := p.Step(rowCtx, i, m[i], idx, slot)
		slot = next

		if text := row.Outcome.StatusText(); text != "" && hasStatus {
			m.Set(i, statusCol, text)
		}
		logRow(rowCtx, row)
		res.Rows = append(res.Rows, row)
	}

	res.NextSlot = slot
	return res
}

func logRow(ctx context.Context, row RowResult) {
	entry := logger.With(logger.Fields{logger.FieldStatus: string(row.Outcome.Kind)}).
		WithDuration(row.Duration.Milliseconds())
	if row.ConsumedSlot() {
		entry = entry.WithSlot(row.Job.Slot)
	}

	switch row.State {
	case StateFailed:
		entry.Warn(ctx, "Publish failed: %s", row.Outcome.Message)
	case StateMatchFailed:
		entry.Warn(ctx, "No media file for identifier")
	case StateSkipped:
		entry.Debug(ctx, "Row skipped")
	default:
		entry.Info(ctx, "Row processed")
	}
}
