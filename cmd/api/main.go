package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/batchpub/internal/api"
	"github.com/timmy/batchpub/internal/api/handler"
	"github.com/timmy/batchpub/internal/api/middleware"
	"github.com/timmy/batchpub/internal/app"
	"github.com/timmy/batchpub/internal/config"
	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/service"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	appLogger := app.InitLogger(&cfg.Log, "batchpub-api")
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize")
	}
	defer a.Close()

	runner := service.NewRunner(a.Service)

	var history handler.RunHistory
	if a.History != nil {
		history = a.History
	}
	runHandler := handler.NewRunHandler(runner, history, func() (service.RunOptions, error) {
		return a.RunOptions(time.Now())
	})

	router := api.SetupRouter(runHandler, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}, cfg.Server.Mode)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	// An active run stops after its current row and still writes the sheet.
	if runner.Cancel() {
		appLogger.Info("Waiting for the active run to flush its results")
	}
	runner.Wait()

	appLogger.Info("Server exited")
}
