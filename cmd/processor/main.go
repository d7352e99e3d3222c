package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/timmy/facetrail/internal/awsclient"
	"github.com/timmy/facetrail/internal/config"
	"github.com/timmy/facetrail/internal/detection"
	"github.com/timmy/facetrail/internal/logger"
	"github.com/timmy/facetrail/internal/repository"
	"github.com/timmy/facetrail/internal/service"
	"github.com/timmy/facetrail/internal/transcode"
)

func main() {
	appLogger := logger.NewDefault("facetrail-processor")
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.ValidateProcessor(); err != nil {
		appLogger.WithError(err).Fatal("Invalid processor configuration")
	}

	ctx := context.Background()
	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load AWS configuration")
	}

	stores, err := repository.OpenStores(cfg, awsCfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize stores")
	}
	defer stores.Close()

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

	appLogger.WithFields(logger.Fields{
		"store":  cfg.Store.Driver,
		"bucket": cfg.Storage.Bucket,
	}).Info("Event processor ready")

	lambda.Start(newHandler(pipeline, appLogger))
}

func newHandler(pipeline handler, log *logger.Logger) func(context.Context, json.RawMessage) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, payload json.RawMessage) (events.APIGatewayProxyResponse, error) {
		ctx = log.WithContext(ctx)
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			ctx = logger.SetRequestID(ctx, lc.AwsRequestID)
		}
		ctx = logger.SetComponent(ctx, "processor")

		result := pipeline.HandleBatch(ctx, payload)
		body, err := json.Marshal(result)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		return events.APIGatewayProxyResponse{
			StatusCode: result.StatusCode,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       string(body),
		}, nil
	}
}

type handler interface {
	HandleBatch(ctx context.Context, payload []byte) *service.BatchResult
}
