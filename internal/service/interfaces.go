package service

import (
	"context"

	"github.com/timmy/facetrail/internal/domain"
)

// DetectionRequest describes a face-detection job over a stored video.
type DetectionRequest struct {
	Bucket string
	Key    string
	JobTag string
}

// FaceDetector starts asynchronous face-detection jobs and fetches their results.
type FaceDetector interface {
	StartFaceDetection(ctx context.Context, req DetectionRequest) (string, error)
	// GetFaceDetection returns every face of a finished job, across all result pages.
	GetFaceDetection(ctx context.Context, jobID string) ([]domain.FaceDetection, error)
}

// ExtractionRequest describes a frame-extraction job starting at FrameSecond.
type ExtractionRequest struct {
	Bucket      string
	Key         string
	OrgID       string
	VideoID     string
	FrameSecond int64
}

// FrameExtractor submits thumbnail/frame-extraction jobs.
type FrameExtractor interface {
	SubmitExtraction(ctx context.Context, req ExtractionRequest) (string, error)
}

// VideoStore persists VideoJob records.
type VideoStore interface {
	// GetVideo returns domain.ErrVideoNotFound when no record exists.
	GetVideo(ctx context.Context, orgID, videoID string) (*domain.VideoJob, error)
	// UpdateVideo writes the named attributes, creating the record if missing.
	UpdateVideo(ctx context.Context, orgID, videoID string, update domain.VideoUpdate) error
}

// AppearanceStore persists Appearance records.
type AppearanceStore interface {
	PutAppearance(ctx context.Context, appearance *domain.Appearance) error
}
