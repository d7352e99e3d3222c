package repository

import (
	"context"
	"fmt"

	"github.com/timmy/facetrail/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppearanceRepository stores Appearance records in a relational database.
type AppearanceRepository struct {
	db *gorm.DB
}

// NewAppearanceRepository creates a new AppearanceRepository.
func NewAppearanceRepository(db *gorm.DB) *AppearanceRepository {
	return &AppearanceRepository{db: db}
}

// PutAppearance writes an appearance, replacing any record with the same key.
func (r *AppearanceRepository) PutAppearance(ctx context.Context, appearance *domain.Appearance) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pk"}, {Name: "sk"}},
		UpdateAll: true,
	}).Create(appearance).Error
	if err != nil {
		return fmt.Errorf("failed to put appearance: %w", err)
	}
	return nil
}

// ListByVideo returns the appearances of one video ordered by frame time.
func (r *AppearanceRepository) ListByVideo(ctx context.Context, orgID, videoID string) ([]domain.Appearance, error) {
	var items []domain.Appearance
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND video_id = ?", orgID, videoID).
		Order("timestamp_ms ASC, sk ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appearances: %w", err)
	}
	return items, nil
}
