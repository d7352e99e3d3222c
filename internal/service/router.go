package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/timmy/facetrail/internal/event"
	"github.com/timmy/facetrail/internal/logger"
	"github.com/timmy/facetrail/internal/observability"
)

// ErrNoRecognizedRecords is reported when a batch carries no record the
// pipeline knows how to route.
var ErrNoRecognizedRecords = errors.New("invalid event: no recognized records")

// BatchResult summarizes the handling of one event batch.
type BatchResult struct {
	ProcessedRecords int      `json:"processedRecords"`
	Errors           []string `json:"errors"`
	StatusCode       int      `json:"-"`
}

// Pipeline routes event batches to the submission and completion handlers.
type Pipeline struct {
	submission *SubmissionController
	completion *CompletionHandler
	logger     *logger.Logger
}

// PipelineConfig holds configuration for the pipeline
type PipelineConfig struct {
	// Bucket holds uploaded videos and derived thumbnails.
	Bucket string
}

// NewPipeline wires the pipeline components around their collaborators.
func NewPipeline(
	detector FaceDetector,
	extractor FrameExtractor,
	videos VideoStore,
	appearances AppearanceStore,
	log *logger.Logger,
	cfg *PipelineConfig,
) *Pipeline {
	thumbnails := NewThumbnailTrigger(extractor, videos, log)
	return &Pipeline{
		submission: NewSubmissionController(detector, videos, log),
		completion: NewCompletionHandler(detector, videos, appearances, thumbnails, cfg.Bucket, log),
		logger:     log,
	}
}

func (p *Pipeline) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return p.logger
}

// HandleBatch parses and dispatches every record of payload. Records are
// handled one after another; a failing record does not stop its siblings.
func (p *Pipeline) HandleBatch(ctx context.Context, payload []byte) *BatchResult {
	start := time.Now()
	if _, ok := logger.Lookup(ctx); !ok {
		ctx = p.logger.WithContext(ctx)
	}

	batch, err := event.ParseBatch(payload)
	if err == nil && batch.Recognized() == 0 {
		err = ErrNoRecognizedRecords
	}
	if err != nil {
		p.log(ctx).WithError(err).Warn("Rejecting event batch")
		observability.BatchDuration.WithLabelValues("400").Observe(time.Since(start).Seconds())
		return &BatchResult{
			Errors:     []string{err.Error()},
			StatusCode: http.StatusBadRequest,
		}
	}

	result := &BatchResult{Errors: []string{}}
	for _, rec := range batch.Records {
		if rec.Kind == event.KindUnknown {
			p.log(ctx).WithFields(logger.Fields{
				logger.FieldRecordIndex: rec.Index,
				"record":                string(rec.Raw),
			}).Warn("Unknown event type structure")
			observability.RecordsProcessed.WithLabelValues(string(rec.Kind), "skipped").Inc()
			continue
		}

		if err := p.HandleRecord(ctx, rec); err != nil {
			p.log(ctx).WithField(logger.FieldRecordIndex, rec.Index).WithError(err).Error("Error processing record")
			result.Errors = append(result.Errors, err.Error())
			observability.RecordsProcessed.WithLabelValues(string(rec.Kind), "error").Inc()
			continue
		}
		result.ProcessedRecords++
		observability.RecordsProcessed.WithLabelValues(string(rec.Kind), "ok").Inc()
	}

	result.StatusCode = batchStatus(result.ProcessedRecords, len(result.Errors))
	observability.BatchDuration.WithLabelValues(fmt.Sprint(result.StatusCode)).Observe(time.Since(start).Seconds())
	summary := logger.With(logger.Fields{
		"processed": result.ProcessedRecords,
		"failed":    len(result.Errors),
	}).WithStatus(result.StatusCode).WithDuration(start)
	switch result.StatusCode {
	case http.StatusOK:
		summary.Info(ctx, "Batch handled")
	case http.StatusMultiStatus:
		summary.Warn(ctx, "Batch handled with failed records")
	default:
		summary.Error(ctx, "Batch failed")
	}
	return result
}

// HandleRecord dispatches a single classified record. A panic in a handler is
// returned as the record's error.
func (p *Pipeline) HandleRecord(ctx context.Context, rec event.Record) (err error) {
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldRecordIndex: rec.Index,
		logger.FieldEventKind:   string(rec.Kind),
	})
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while handling record %d: %v", rec.Index, r)
		}
	}()

	switch rec.Kind {
	case event.KindUpload:
		p.log(ctx).Info("Routing to video upload processing")
		return p.submission.Submit(logger.SetComponent(ctx, "submission"), rec.Upload)
	case event.KindCompletion:
		p.log(ctx).Info("Routing to detection results processing")
		return p.completion.Handle(logger.SetComponent(ctx, "completion"), rec.Completion)
	default:
		return fmt.Errorf("%w: unsupported record kind %q", event.ErrSkip, rec.Kind)
	}
}

func batchStatus(processed, failed int) int {
	switch {
	case failed == 0:
		return http.StatusOK
	case processed == 0:
		return http.StatusInternalServerError
	default:
		return http.StatusMultiStatus
	}
}
