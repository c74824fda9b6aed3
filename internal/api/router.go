package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/batchpub/internal/api/handler"
	"github.com/timmy/batchpub/internal/api/middleware"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	runHandler *handler.RunHandler,
	cors middleware.CORSConfig,
	mode string,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Runs
		v1.POST("/runs", runHandler.TriggerRun)
		v1.GET("/runs", runHandler.ListRuns)
		v1.GET("/runs/status", runHandler.GetRunStatus)
		v1.POST("/runs/cancel", runHandler.CancelRun)
		v1.GET("/runs/:id", runHandler.GetRun)

		// Stats
		v1.GET("/stats", runHandler.GetStats)
	}

	return r
}
