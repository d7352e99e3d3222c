package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timmy/facetrail/internal/api/handler"
	"github.com/timmy/facetrail/internal/api/middleware"
	"github.com/timmy/facetrail/internal/logger"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	batches handler.BatchHandler,
	log *logger.Logger,
	mode string,
) *gin.Engine {
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
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.Metrics())

	healthHandler := handler.NewHealthHandler()
	eventHandler := handler.NewEventHandler(batches)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// Same batch shape the function receives from S3 and SNS
		v1.POST("/events", eventHandler.Ingest)
	}

	return r
}
