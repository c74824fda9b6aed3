package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/timmy/batchpub/internal/domain"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRepository stores publish runs and their row results.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record.
func (r *RunRepository) Create(ctx context.Context, run *domain.PublishRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Finish stores the final counters and status of a run.
func (r *RunRepository) Finish(ctx context.Context, run *domain.PublishRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// AddRowResults inserts row results in batches.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rows: results to persist; empty is a no-op.
//
// Returns:
//   - error: non-nil if the insert fails.
func (r *RunRepository) AddRowResults(ctx context.Context, rows []domain.RowResult) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.PublishRun, error) {
	var run domain.PublishRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the most recent runs first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of runs to return.
//   - offset: number of runs to skip.
//
// Returns:
//   - []domain.PublishRun: runs ordered by start time descending.
//   - error: non-nil if the query fails.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]domain.PublishRun, error) {
	var runs []domain.PublishRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	return runs, err
}

// ListRowResults returns the rows of a run in sheet order.
func (r *RunRepository) ListRowResults(ctx context.Context, runID string) ([]domain.RowResult, error) {
	var rows []domain.RowResult
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("row_number ASC").
		Find(&rows).Error
	return rows, err
}

// CountByOutcome returns how many rows ended with each outcome across all runs.
func (r *RunRepository) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	var results []struct {
		Outcome string
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.RowResult{}).
		Select("outcome, COUNT(*) as count").
		Group("outcome").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, res := range results {
		counts[res.Outcome] = res.Count
	}
	return counts, nil
}
