package handler

import (
	"context"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/batchpub/internal/domain"
	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/repository"
	"github.com/timmy/batchpub/internal/service"
	"github.com/timmy/batchpub/internal/storage"
)

var (
	errSheetOutsideDir = errors.New("sheet_path must stay in the configured sheet directory")
	errMediaOutsideDir = errors.New("media_dir must stay in the configured media directory")
)

// RunHistory reads recorded runs.
type RunHistory interface {
	List(ctx context.Context, limit, offset int) ([]domain.PublishRun, error)
	GetByID(ctx context.Context, id string) (*domain.PublishRun, error)
	ListRowResults(ctx context.Context, runID string) ([]domain.RowResult, error)
	CountByOutcome(ctx context.Context) (map[string]int64, error)
}

// OptionsFunc builds the default run options from configuration.
type OptionsFunc func() (service.RunOptions, error)

// RunHandler triggers publish runs and exposes their history.
type RunHandler struct {
	runner   *service.Runner
	history  RunHistory
	defaults OptionsFunc
}

// NewRunHandler creates a new run handler.
// Parameters:
//   - runner: background runner.
//   - history: run history; nil when the history database is disabled.
//   - defaults: builds options for a run before request overrides apply.
//
// Returns:
//   - *RunHandler: initialized handler.
func NewRunHandler(runner *service.Runner, history RunHistory, defaults OptionsFunc) *RunHandler {
	return &RunHandler{
		runner:   runner,
		history:  history,
		defaults: defaults,
	}
}

// RunRequest overrides configured run options. Every field is optional.
type RunRequest struct {
	SheetPath     string `json:"sheet_path"`
	SheetName     string `json:"sheet_name"`
	MediaDir      string `json:"media_dir"`
	Simulate      *bool  `json:"simulate"`
	SkipCompleted *bool  `json:"skip_completed"`
}

// RunResponse is returned when a run is accepted.
type RunResponse struct {
	Message string `json:"message"`
	RunID   string `json:"run_id"`
}

// RunDetailResponse is a recorded run with its rows.
type RunDetailResponse struct {
	Run  *domain.PublishRun `json:"run"`
	Rows []domain.RowResult `json:"rows"`
}

// TriggerRun handles POST /api/v1/runs.
func (h *RunHandler) TriggerRun(c *gin.Context) {
	ctx := c.Request.Context()

	var req RunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.CtxWarn(ctx, "Invalid run request: client_ip=%s, error=%v", c.ClientIP(), err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	opts, err := h.defaults()
	if err != nil {
		logger.CtxWarn(ctx, "Run configuration rejected: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.apply(&opts); err != nil {
		logger.CtxWarn(ctx, "Run override rejected: client_ip=%s, error=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if opts.SheetPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sheet_path is required"})
		return
	}

	runID, err := h.runner.Start(ctx, opts)
	if errors.Is(err, service.ErrRunInProgress) {
		logger.CtxWarn(ctx, "Run request rejected: already running, client_ip=%s", c.ClientIP())
		c.JSON(http.StatusConflict, gin.H{"error": "A run is already in progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logger.With(logger.Fields{logger.FieldRunID: runID}).Info(ctx,
		"Run started: sheet=%s, simulate=%v", opts.SheetPath, opts.Simulate)

	c.JSON(http.StatusAccepted, RunResponse{
		Message: "Run started",
		RunID:   runID,
	})
}

// apply merges the overrides into opts. Paths may only point inside the
// configured sheet directory and media directory.
func (r RunRequest) apply(opts *service.RunOptions) error {
	if r.SheetPath != "" {
		if opts.SheetPath == "" || !within(sheetDir(opts.SheetPath), r.SheetPath) {
			return errSheetOutsideDir
		}
		opts.SheetPath = r.SheetPath
		opts.SheetName = r.SheetName
	} else if r.SheetName != "" {
		opts.SheetName = r.SheetName
	}
	if r.MediaDir != "" {
		if opts.MediaDir == "" || (r.MediaDir != opts.MediaDir && !within(opts.MediaDir, r.MediaDir)) {
			return errMediaOutsideDir
		}
		opts.MediaDir = r.MediaDir
	}
	if r.Simulate != nil {
		opts.Simulate = *r.Simulate
	}
	if r.SkipCompleted != nil {
		opts.SkipCompleted = *r.SkipCompleted
	}
	return nil
}

func sheetDir(p string) string {
	if strings.HasPrefix(p, storage.S3Scheme) {
		return storage.S3Scheme + path.Dir(strings.TrimPrefix(p, storage.S3Scheme))
	}
	return filepath.Dir(p)
}

// within reports whether target lies strictly below dir. Object storage
// URIs only match object storage directories.
func within(dir, target string) bool {
	remoteDir := strings.HasPrefix(dir, storage.S3Scheme)
	if remoteDir != strings.HasPrefix(target, storage.S3Scheme) {
		return false
	}
	if remoteDir {
		base := path.Clean(strings.TrimPrefix(dir, storage.S3Scheme))
		p := path.Clean(strings.TrimPrefix(target, storage.S3Scheme))
		return strings.HasPrefix(p, base+"/")
	}

	base, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// GetRunStatus handles GET /api/v1/runs/status.
func (h *RunHandler) GetRunStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Status())
}

// CancelRun handles POST /api/v1/runs/cancel.
func (h *RunHandler) CancelRun(c *gin.Context) {
	if !h.runner.Cancel() {
		c.JSON(http.StatusConflict, gin.H{"error": "No run in progress"})
		return
	}
	logger.CtxInfo(c.Request.Context(), "Run cancellation requested: client_ip=%s", c.ClientIP())
	c.JSON(http.StatusAccepted, gin.H{"message": "Cancellation requested"})
}

// ListRuns handles GET /api/v1/runs.
func (h *RunHandler) ListRuns(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is disabled"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	runs, err := h.history.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list runs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "limit": limit, "offset": offset})
}

// GetRun handles GET /api/v1/runs/:id.
func (h *RunHandler) GetRun(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is disabled"})
		return
	}

	id := c.Param("id")
	run, err := h.history.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.history.ListRowResults(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, RunDetailResponse{Run: run, Rows: rows})
}

// GetStats handles GET /api/v1/stats.
func (h *RunHandler) GetStats(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history is disabled"})
		return
	}

	counts, err := h.history.CountByOutcome(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count outcomes: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcomes": counts})
}
