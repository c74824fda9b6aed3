// Package app wires configuration into the services shared by the CLI and the API server.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/timmy/batchpub/internal/config"
	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/publisher"
	"github.com/timmy/batchpub/internal/repository"
	"github.com/timmy/batchpub/internal/service"
	"github.com/timmy/batchpub/internal/storage"
)

// App holds the components built from one configuration.
type App struct {
	Config  *config.Config
	Service *service.PublishService
	History *repository.RunRepository // nil when the history database is disabled

	db *gorm.DB
}

// InitLogger installs the default logger described by cfg.
func InitLogger(cfg *config.LogConfig, serviceName string) *logger.Logger {
	l := logger.NewWithOptions(cfg.Options(serviceName))
	logger.SetDefaultLogger(l)
	return l
}

// New builds the publish service and its collaborators.
// Parameters:
//   - ctx: context for client initialization.
//   - cfg: loaded configuration.
//
// Returns:
//   - *App: ready components; call Close when done.
//   - error: non-nil if object storage or the history database cannot be initialized.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var objects storage.ObjectStorage
	if cfg.Storage.Endpoint != "" || cfg.Storage.Type != "" || strings.HasPrefix(cfg.Sheet.Path, storage.S3Scheme) {
		s3, err := storage.NewStorage(ctx, cfg.Storage.S3())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		objects = s3
	}

	var pub publisher.Publisher
	if cfg.Publisher.BaseURL != "" {
		pub = publisher.NewRateLimited(publisher.NewHTTPPublisher(cfg.Publisher.HTTP()), cfg.Publisher.RatePerMinute)
	} else if cfg.Run.Simulate {
		logger.CtxDebug(ctx, "No publisher base URL configured")
	} else {
		logger.CtxWarn(ctx, "No publisher base URL configured, only simulated runs are possible")
	}

	var history service.HistoryRecorder
	if cfg.Database.Enabled {
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history database: %w", err)
		}
		a.db = db
		a.History = repository.NewRunRepository(db)
		history = a.History
	}

	a.Service = service.NewPublishService(storage.NewSheetStore(objects), pub, history, &service.PublishConfig{
		Labels:        cfg.Sheet.Labels(),
		Extensions:    cfg.Media.Extensions,
		ThumbnailsDir: cfg.Media.ThumbnailsDir,
	})
	return a, nil
}

// RunOptions builds run options from the configuration, deciding the schedule at now.
func (a *App) RunOptions(now time.Time) (service.RunOptions, error) {
	sched, err := a.Config.Schedule.Build(now)
	if err != nil {
		return service.RunOptions{}, err
	}
	return service.RunOptions{
		SheetPath:     a.Config.Sheet.Path,
		SheetName:     a.Config.Sheet.Name,
		MediaDir:      a.Config.Media.Dir,
		Schedule:      sched,
		Simulate:      a.Config.Run.Simulate,
		SkipCompleted: a.Config.Run.SkipCompleted,
		Privacy:       a.Config.Publisher.Privacy,
	}, nil
}

// Close releases the history database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
