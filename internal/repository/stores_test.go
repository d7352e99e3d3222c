package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/timmy/facetrail/internal/config"
	"github.com/timmy/facetrail/internal/domain"
)

func TestOpenStores(t *testing.T) {
	t.Run("dynamodb", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverDynamoDB, Table: "facetrail-data"}}
		stores, err := OpenStores(cfg, aws.Config{Region: "us-east-1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := stores.Videos.(*DynamoStore); !ok {
			t.Errorf("expected dynamo video store, got %T", stores.Videos)
		}
		if err := stores.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	t.Run("gorm", func(t *testing.T) {
		cfg := &config.Config{
			Store: config.StoreConfig{Driver: config.StoreDriverGorm},
			Database: config.DatabaseConfig{
				Driver:      "sqlite",
				Path:        filepath.Join(t.TempDir(), "stores.db"),
				AutoMigrate: true,
			},
		}
		stores, err := OpenStores(cfg, aws.Config{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer stores.Close()

		ctx := context.Background()
		status := domain.VideoStatusProcessing
		if err := stores.Videos.UpdateVideo(ctx, "acme", "lobby", domain.VideoUpdate{Status: &status}); err != nil {
			t.Fatalf("update: %v", err)
		}
		job, err := stores.Videos.GetVideo(ctx, "acme", "lobby")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if job.Status != domain.VideoStatusProcessing {
			t.Errorf("expected PROCESSING, got %s", job.Status)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Driver: "redis"}}
		if _, err := OpenStores(cfg, aws.Config{}); err == nil {
			t.Fatal("expected error for unknown driver")
		}
	})
}
