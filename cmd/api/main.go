package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/facetrail/internal/api"
	"github.com/timmy/facetrail/internal/awsclient"
	"github.com/timmy/facetrail/internal/config"
	"github.com/timmy/facetrail/internal/detection"
	"github.com/timmy/facetrail/internal/logger"
	"github.com/timmy/facetrail/internal/repository"
	"github.com/timmy/facetrail/internal/service"
	"github.com/timmy/facetrail/internal/transcode"
)

func main() {
	appLogger := logger.NewDefault("facetrail-api")
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.ValidateProcessor(); err != nil {
		appLogger.WithError(err).Fatal("Invalid configuration")
	}

	ctx := context.Background()
	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load AWS configuration")
	}

	// Initialize stores
	stores, err := repository.OpenStores(cfg, awsCfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize stores")
	}
	defer stores.Close()

	// Initialize AWS job clients
	detector := detection.NewDetector(detection.NewClient(awsCfg), detection.Config{
		SNSTopicARN: cfg.Detection.SNSTopicARN,
		RoleARN:     cfg.Detection.RoleARN,
		PageSize:    cfg.Detection.PageSize,
	})
	extractor := transcode.NewExtractor(transcode.NewClient(awsCfg, cfg.Transcode.Endpoint), transcode.Config{
		RoleARN:     cfg.Transcode.RoleARN,
		FrameWidth:  cfg.Transcode.FrameWidth,
		FrameHeight: cfg.Transcode.FrameHeight,
	})

	pipeline := service.NewPipeline(
		detector,
		extractor,
		stores.Videos,
		stores.Appearances,
		appLogger,
		&service.PipelineConfig{Bucket: cfg.Storage.Bucket},
	)

	router := api.SetupRouter(pipeline, appLogger, cfg.Server.Mode)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
