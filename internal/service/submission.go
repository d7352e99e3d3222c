package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/facetrail/internal/domain"
	"github.com/timmy/facetrail/internal/event"
	"github.com/timmy/facetrail/internal/logger"
	"github.com/timmy/facetrail/internal/observability"
)

// SubmissionController starts face detection for uploaded videos.
type SubmissionController struct {
	detector FaceDetector
	videos   VideoStore
	logger   *logger.Logger
	now      func() time.Time
}

// NewSubmissionController creates a new submission controller
func NewSubmissionController(detector FaceDetector, videos VideoStore, log *logger.Logger) *SubmissionController {
	return &SubmissionController{
		detector: detector,
		videos:   videos,
		logger:   log,
		now:      time.Now,
	}
}

func (s *SubmissionController) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Submit marks the video PROCESSING and starts a detection job for it.
// Keys that do not name a video are skipped. Only a failure to mark the video
// PROCESSING, or to record a subsequent failure, is returned; detection
// failures are recorded on the video as ERROR.
func (s *SubmissionController) Submit(ctx context.Context, up *event.Upload) error {
	ref, err := event.ParseVideoKey(up.Key)
	if err != nil {
		s.log(ctx).WithField("key", up.Key).WithError(err).Warn("Skipping upload record")
		return nil
	}
	ctx = logger.SetVideo(ctx, ref.OrgID, ref.VideoID)

	status := domain.VideoStatusProcessing
	startedAt := s.now().UTC()
	videoKey := up.Key
	if err := s.videos.UpdateVideo(ctx, ref.OrgID, ref.VideoID, domain.VideoUpdate{
		Status:              &status,
		ProcessingStartedAt: &startedAt,
		VideoKey:            &videoKey,
	}); err != nil {
		return fmt.Errorf("failed to mark video processing: %w", err)
	}

	jobID, err := s.startDetection(ctx, ref, up)
	if err != nil {
		observability.DetectionJobsSubmitted.WithLabelValues("error").Inc()
		s.log(ctx).WithError(err).Error("Failed to start face detection")
		if werr := s.videos.UpdateVideo(ctx, ref.OrgID, ref.VideoID, domain.ErrorUpdate(err.Error())); werr != nil {
			return fmt.Errorf("failed to record submission error: %w", errors.Join(err, werr))
		}
		return nil
	}

	observability.DetectionJobsSubmitted.WithLabelValues("ok").Inc()
	s.log(ctx).WithField(logger.FieldJobID, jobID).Info("Face detection job started")
	return nil
}

func (s *SubmissionController) startDetection(ctx context.Context, ref event.VideoRef, up *event.Upload) (string, error) {
	tag, err := event.JobTag(up.Key)
	if err != nil {
		return "", err
	}
	jobID, err := s.detector.StartFaceDetection(ctx, DetectionRequest{
		Bucket: up.Bucket,
		Key:    up.Key,
		JobTag: tag,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start face detection: %w", err)
	}

	if err := s.videos.UpdateVideo(ctx, ref.OrgID, ref.VideoID, domain.VideoUpdate{
		DetectionJobID: &jobID,
	}); err != nil {
		return "", fmt.Errorf("failed to record detection job id: %w", err)
	}
	return jobID, nil
}
