package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/facetrail/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VideoRepository stores VideoJobs in a relational database.
type VideoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// GetVideo retrieves a video job by its identity.
// Returns domain.ErrVideoNotFound when no row matches.
func (r *VideoRepository) GetVideo(ctx context.Context, orgID, videoID string) (*domain.VideoJob, error) {
	var job domain.VideoJob
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND video_id = ?", orgID, videoID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &job, nil
}

// UpdateVideo writes the attributes named by update, inserting the row if it
// does not exist yet. Columns not named keep their stored values.
func (r *VideoRepository) UpdateVideo(ctx context.Context, orgID, videoID string, update domain.VideoUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	job := domain.VideoJob{OrgID: orgID, VideoID: videoID, UpdatedAt: time.Now().UTC()}
	update.Apply(&job)

	columns := append(updateColumns(update), "updated_at")
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&job).Error
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

// updateColumns returns the column names of the attributes an update names.
func updateColumns(u domain.VideoUpdate) []string {
	var cols []string
	if u.Status != nil {
		cols = append(cols, "status")
	}
	if u.VideoKey != nil {
		cols = append(cols, "video_key")
	}
	if u.DetectionJobID != nil {
		cols = append(cols, "detection_job_id")
	}
	if u.ThumbnailJobID != nil {
		cols = append(cols, "thumbnail_job_id")
	}
	if u.ThumbnailStatus != nil {
		cols = append(cols, "thumbnail_status")
	}
	if u.ThumbnailURL != nil {
		cols = append(cols, "thumbnail_url")
	}
	if u.ThumbnailMetadata != nil {
		cols = append(cols, "thumbnail_metadata")
	}
	if u.ErrorMessage != nil {
		cols = append(cols, "error_message")
	}
	if u.ProcessingStartedAt != nil {
		cols = append(cols, "processing_started_at")
	}
	if u.ProcessingCompletedAt != nil {
		cols = append(cols, "processing_completed_at")
	}
	return cols
}
