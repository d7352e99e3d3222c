package service

import (
	"context"
	"fmt"

	"github.com/timmy/facetrail/internal/domain"
	"github.com/timmy/facetrail/internal/logger"
	"github.com/timmy/facetrail/internal/observability"
)

// ThumbnailOutcome tells a caller whether a thumbnail is on its way.
type ThumbnailOutcome string

const (
	// ThumbnailNone means no faces were found and nothing was submitted.
	ThumbnailNone ThumbnailOutcome = "none"
	// ThumbnailSubmitted means an extraction job was accepted.
	ThumbnailSubmitted ThumbnailOutcome = "submitted"
	// ThumbnailPlaceholder means submission failed; Key names an object that
	// will not be produced by this attempt.
	ThumbnailPlaceholder ThumbnailOutcome = "placeholder"
)

// ThumbnailResult is the outcome of a thumbnail trigger.
type ThumbnailResult struct {
	Key         string
	JobID       string
	FrameSecond int64
	Outcome     ThumbnailOutcome
}

// MetadataStatus returns the readiness flag recorded with the thumbnail metadata.
func (r ThumbnailResult) MetadataStatus() string {
	if r.Outcome == ThumbnailSubmitted {
		return domain.ThumbnailMetadataReady
	}
	return domain.ThumbnailMetadataPlaceholder
}

// ThumbnailKey is the deterministic object key of a video's thumbnail.
func ThumbnailKey(orgID, videoID string) string {
	return fmt.Sprintf("%s/thumbnails/%s.jpg", orgID, videoID)
}

// ThumbnailTrigger submits frame extraction at the earliest face of a video.
type ThumbnailTrigger struct {
	extractor FrameExtractor
	videos    VideoStore
	logger    *logger.Logger
}

// NewThumbnailTrigger creates a new thumbnail trigger
func NewThumbnailTrigger(extractor FrameExtractor, videos VideoStore, log *logger.Logger) *ThumbnailTrigger {
	return &ThumbnailTrigger{
		extractor: extractor,
		videos:    videos,
		logger:    log,
	}
}

func (t *ThumbnailTrigger) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return t.logger
}

// Trigger submits an extraction job for the frame of the earliest face.
// It never fails: a rejected submission yields a placeholder result.
func (t *ThumbnailTrigger) Trigger(ctx context.Context, orgID, videoID, bucket, videoKey string, faces []domain.FaceDetection) ThumbnailResult {
	if len(faces) == 0 {
		t.log(ctx).Info("No faces detected, skipping thumbnail")
		observability.ThumbnailJobs.WithLabelValues(string(ThumbnailNone)).Inc()
		return ThumbnailResult{Outcome: ThumbnailNone}
	}

	result := ThumbnailResult{
		Key:         ThumbnailKey(orgID, videoID),
		FrameSecond: EarliestTimestamp(faces) / 1000,
	}

	jobID, err := t.extractor.SubmitExtraction(ctx, ExtractionRequest{
		Bucket:      bucket,
		Key:         videoKey,
		OrgID:       orgID,
		VideoID:     videoID,
		FrameSecond: result.FrameSecond,
	})
	if err != nil {
		t.log(ctx).WithError(err).Warn("Failed to submit thumbnail job, returning placeholder")
		result.Outcome = ThumbnailPlaceholder
		observability.ThumbnailJobs.WithLabelValues(string(result.Outcome)).Inc()
		return result
	}

	result.JobID = jobID
	result.Outcome = ThumbnailSubmitted
	observability.ThumbnailJobs.WithLabelValues(string(result.Outcome)).Inc()

	status := domain.ThumbnailStatusProcessing
	if err := t.videos.UpdateVideo(ctx, orgID, videoID, domain.VideoUpdate{
		ThumbnailJobID:  &jobID,
		ThumbnailStatus: &status,
	}); err != nil {
		t.log(ctx).WithError(err).WithField(logger.FieldJobID, jobID).
			Warn("Failed to record thumbnail job")
		return result
	}

	t.log(ctx).WithFields(logger.Fields{
		logger.FieldJobID: jobID,
		"frame_second":    result.FrameSecond,
	}).Info("Thumbnail job submitted")
	return result
}

// EarliestTimestamp returns the smallest face timestamp in milliseconds, or 0.
func EarliestTimestamp(faces []domain.FaceDetection) int64 {
	if len(faces) == 0 {
		return 0
	}
	earliest := faces[0].TimestampMs
	for _, f := range faces[1:] {
		if f.TimestampMs < earliest {
			earliest = f.TimestampMs
		}
	}
	return earliest
}
