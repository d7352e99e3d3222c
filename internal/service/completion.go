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

// DetectionFailedMessage is recorded on a video whose detection job failed.
const DetectionFailedMessage = "Rekognition job failed"

// CompletionHandler reconciles finished detection jobs into appearance
// records and the video's final status.
type CompletionHandler struct {
	detector    FaceDetector
	videos      VideoStore
	appearances AppearanceStore
	thumbnails  *ThumbnailTrigger
	bucket      string
	logger      *logger.Logger
	now         func() time.Time
}

// NewCompletionHandler creates a new completion handler. bucket is where
// videos and their thumbnails live.
func NewCompletionHandler(
	detector FaceDetector,
	videos VideoStore,
	appearances AppearanceStore,
	thumbnails *ThumbnailTrigger,
	bucket string,
	log *logger.Logger,
) *CompletionHandler {
	return &CompletionHandler{
		detector:    detector,
		videos:      videos,
		appearances: appearances,
		thumbnails:  thumbnails,
		bucket:      bucket,
		logger:      log,
		now:         time.Now,
	}
}

func (h *CompletionHandler) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return h.logger
}

// Handle processes one completion notification. Notices that cannot be
// correlated to a video are skipped. Failures while reconciling a successful
// job are recorded on the video as ERROR; only a failure of that write is
// returned.
func (h *CompletionHandler) Handle(ctx context.Context, c *event.Completion) error {
	notice, err := event.ParseNotice(c.Message)
	if err != nil {
		h.log(ctx).WithField("message_id", c.MessageID).WithError(err).Warn("Skipping completion record")
		return nil
	}
	ref, err := event.ParseJobTag(notice.JobTag)
	if err != nil {
		h.log(ctx).WithField(logger.FieldJobID, notice.JobID).WithError(err).Warn("Skipping completion record")
		return nil
	}

	ctx = logger.SetVideo(ctx, ref.OrgID, ref.VideoID)
	ctx = logger.SetJobID(ctx, notice.JobID)
	observability.DetectionJobsCompleted.WithLabelValues(notice.Status).Inc()

	switch notice.Status {
	case domain.DetectionSucceeded:
		if err := h.reconcile(ctx, ref, notice.JobID); err != nil {
			h.log(ctx).WithError(err).Error("Failed to process detection results")
			return h.markError(ctx, ref, err.Error())
		}
		return nil
	case domain.DetectionFailed:
		h.log(ctx).Warn("Detection job failed")
		return h.markError(ctx, ref, DetectionFailedMessage)
	default:
		h.log(ctx).WithField(logger.FieldStatus, notice.Status).Info("Ignoring detection status")
		return nil
	}
}

func (h *CompletionHandler) markError(ctx context.Context, ref event.VideoRef, message string) error {
	if err := h.videos.UpdateVideo(ctx, ref.OrgID, ref.VideoID, domain.ErrorUpdate(message)); err != nil {
		return fmt.Errorf("failed to mark video error: %w", err)
	}
	return nil
}

func (h *CompletionHandler) reconcile(ctx context.Context, ref event.VideoRef, jobID string) error {
	start := time.Now()

	faces, err := h.detector.GetFaceDetection(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get face detection results: %w", err)
	}

	builder := NewAppearanceBuilder(ref.OrgID, ref.VideoID)
	for _, face := range faces {
		appearance := builder.Build(face)
		if err := h.appearances.PutAppearance(ctx, appearance); err != nil {
			return fmt.Errorf("failed to store appearance %s: %w", appearance.SK, err)
		}
		observability.AppearancesStored.Inc()
	}
	logger.With(logger.Fields{}).WithCount(len(faces)).WithDuration(start).Info(ctx, "Stored appearances")

	status := domain.VideoStatusProcessed
	completedAt := h.now().UTC()
	update := domain.VideoUpdate{
		Status:                &status,
		ProcessingCompletedAt: &completedAt,
	}

	job, err := h.videos.GetVideo(ctx, ref.OrgID, ref.VideoID)
	switch {
	case errors.Is(err, domain.ErrVideoNotFound):
		h.log(ctx).Warn("Video record not found, completing without thumbnail")
	case err != nil:
		return fmt.Errorf("failed to get video: %w", err)
	default:
		videoKey := job.VideoKey
		if videoKey == "" {
			videoKey = fmt.Sprintf("%s/videos/%s.mp4", ref.OrgID, ref.VideoID)
		}

		thumb := h.thumbnails.Trigger(ctx, ref.OrgID, ref.VideoID, h.bucket, videoKey, faces)
		if thumb.Key != "" {
			url := fmt.Sprintf("s3://%s/%s", h.bucket, thumb.Key)
			update.ThumbnailURL = &url
			update.ThumbnailMetadata = &domain.ThumbnailMetadata{
				FrameTimestamp: thumb.FrameSecond,
				FaceCount:      len(faces),
				GeneratedAt:    completedAt,
				Status:         thumb.MetadataStatus(),
			}
		}
	}

	if err := h.videos.UpdateVideo(ctx, ref.OrgID, ref.VideoID, update); err != nil {
		return fmt.Errorf("failed to mark video processed: %w", err)
	}

	logger.With(logger.Fields{}).WithStatus(status).WithCount(len(faces)).WithDuration(start).
		Info(ctx, "Video processed")
	return nil
}
