package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// VideoStatus represents the processing status of an uploaded video.
// Values include VideoStatusUploaded, VideoStatusProcessing, VideoStatusProcessed, and VideoStatusError.
type VideoStatus string

const (
	VideoStatusUploaded   VideoStatus = "UPLOADED"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusProcessed  VideoStatus = "PROCESSED"
	VideoStatusError      VideoStatus = "ERROR"
)

// IsTerminal reports whether no further pipeline step follows the status.
func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusProcessed || s == VideoStatusError
}

// Thumbnail job bookkeeping values.
const (
	ThumbnailStatusProcessing = "processing"

	ThumbnailMetadataReady       = "metadata_ready"
	ThumbnailMetadataPlaceholder = "placeholder"
)

// ErrVideoNotFound is returned by stores when no VideoJob exists for a key.
var ErrVideoNotFound = errors.New("video not found")

// ThumbnailMetadata describes the derived thumbnail as known when detection completes.
// The image itself is produced out of band by the transcoding job.
type ThumbnailMetadata struct {
	FrameTimestamp int64     `json:"frameTimestamp" dynamodbav:"frameTimestamp"`
	FaceCount      int       `json:"faceCount" dynamodbav:"faceCount"`
	GeneratedAt    time.Time `json:"generatedAt" dynamodbav:"generatedAt"`
	Status         string    `json:"status" dynamodbav:"status"`
}

// Value implements the driver.Valuer interface for database serialization.
func (m ThumbnailMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (m *ThumbnailMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = ThumbnailMetadata{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan ThumbnailMetadata")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// VideoJob is the per-video processing record, keyed by (OrgID, VideoID).
type VideoJob struct {
	OrgID                 string             `gorm:"type:text;primaryKey" json:"orgId" dynamodbav:"orgId"`
	VideoID               string             `gorm:"type:text;primaryKey" json:"videoId" dynamodbav:"videoId"`
	Status                VideoStatus        `gorm:"type:text;index:idx_video_jobs_status;default:UPLOADED" json:"status" dynamodbav:"status"`
	VideoKey              string             `gorm:"type:text" json:"videoKey,omitempty" dynamodbav:"videoKey,omitempty"`
	DetectionJobID        string             `gorm:"type:text" json:"detectionJobId,omitempty" dynamodbav:"detectionJobId,omitempty"`
	ThumbnailJobID        string             `gorm:"type:text" json:"thumbnailJobId,omitempty" dynamodbav:"thumbnailJobId,omitempty"`
	ThumbnailStatus       string             `gorm:"type:text" json:"thumbnailStatus,omitempty" dynamodbav:"thumbnailStatus,omitempty"`
	ThumbnailURL          string             `gorm:"type:text" json:"thumbnailUrl,omitempty" dynamodbav:"thumbnailUrl,omitempty"`
	ThumbnailMetadata     *ThumbnailMetadata `gorm:"type:text" json:"thumbnailMetadata,omitempty" dynamodbav:"thumbnailMetadata,omitempty"`
	ErrorMessage          string             `gorm:"type:text" json:"errorMessage,omitempty" dynamodbav:"errorMessage,omitempty"`
	ProcessingStartedAt   *time.Time         `json:"processingStartedAt,omitempty" dynamodbav:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *time.Time         `json:"processingCompletedAt,omitempty" dynamodbav:"processingCompletedAt,omitempty"`
	UpdatedAt             time.Time          `json:"updatedAt" dynamodbav:"-"`
}

// TableName returns the database table name for VideoJob.
func (VideoJob) TableName() string {
	return "video_jobs"
}

// VideoUpdate is a partial update of a VideoJob. Only non-nil fields are written;
// attributes not named here are left untouched by the store.
type VideoUpdate struct {
	Status                *VideoStatus
	VideoKey              *string
	DetectionJobID        *string
	ThumbnailJobID        *string
	ThumbnailStatus       *string
	ThumbnailURL          *string
	ThumbnailMetadata     *ThumbnailMetadata
	ErrorMessage          *string
	ProcessingStartedAt   *time.Time
	ProcessingCompletedAt *time.Time
}

// IsEmpty reports whether the update names no attribute.
func (u VideoUpdate) IsEmpty() bool {
	return u.Status == nil &&
		u.VideoKey == nil &&
		u.DetectionJobID == nil &&
		u.ThumbnailJobID == nil &&
		u.ThumbnailStatus == nil &&
		u.ThumbnailURL == nil &&
		u.ThumbnailMetadata == nil &&
		u.ErrorMessage == nil &&
		u.ProcessingStartedAt == nil &&
		u.ProcessingCompletedAt == nil
}

// Apply copies the named attributes of u onto job.
func (u VideoUpdate) Apply(job *VideoJob) {
	if u.Status != nil {
		job.Status = *u.Status
	}
	if u.VideoKey != nil {
		job.VideoKey = *u.VideoKey
	}
	if u.DetectionJobID != nil {
		job.DetectionJobID = *u.DetectionJobID
	}
	if u.ThumbnailJobID != nil {
		job.ThumbnailJobID = *u.ThumbnailJobID
	}
	if u.ThumbnailStatus != nil {
		job.ThumbnailStatus = *u.ThumbnailStatus
	}
	if u.ThumbnailURL != nil {
		job.ThumbnailURL = *u.ThumbnailURL
	}
	if u.ThumbnailMetadata != nil {
		meta := *u.ThumbnailMetadata
		job.ThumbnailMetadata = &meta
	}
	if u.ErrorMessage != nil {
		job.ErrorMessage = *u.ErrorMessage
	}
	if u.ProcessingStartedAt != nil {
		t := *u.ProcessingStartedAt
		job.ProcessingStartedAt = &t
	}
	if u.ProcessingCompletedAt != nil {
		t := *u.ProcessingCompletedAt
		job.ProcessingCompletedAt = &t
	}
}

// ErrorUpdate returns an update that moves the video to ERROR with message.
func ErrorUpdate(message string) VideoUpdate {
	status := VideoStatusError
	return VideoUpdate{Status: &status, ErrorMessage: &message}
}
