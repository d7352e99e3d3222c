package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/timmy/facetrail/internal/config"
	"github.com/timmy/facetrail/internal/domain"
)

// VideoStore reads and merges per-video processing records.
type VideoStore interface {
	GetVideo(ctx context.Context, orgID, videoID string) (*domain.VideoJob, error)
	UpdateVideo(ctx context.Context, orgID, videoID string, update domain.VideoUpdate) error
}

// AppearanceStore writes and lists face appearance records.
type AppearanceStore interface {
	PutAppearance(ctx context.Context, appearance *domain.Appearance) error
	ListByVideo(ctx context.Context, orgID, videoID string) ([]domain.Appearance, error)
}

// Stores bundles the record stores selected by store.driver.
type Stores struct {
	Videos      VideoStore
	Appearances AppearanceStore

	close func() error
}

// Close releases the underlying database handle, if any.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores builds the video and appearance stores for the configured driver.
func OpenStores(cfg *config.Config, awsCfg aws.Config) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverDynamoDB:
		store := NewDynamoStore(NewDynamoClient(awsCfg, cfg.Store.Endpoint), cfg.Store.Table)
		return &Stores{Videos: store, Appearances: store}, nil
	case config.StoreDriverGorm:
		db, err := InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
		}
		return &Stores{
			Videos:      NewVideoRepository(db),
			Appearances: NewAppearanceRepository(db),
			close:       sqlDB.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
