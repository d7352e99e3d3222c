package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/timmy/facetrail/internal/config"
	"github.com/timmy/facetrail/internal/domain"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "facetrail.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestVideoRepository_GetVideoNotFound(t *testing.T) {
	repo := NewVideoRepository(newTestDB(t))

	_, err := repo.GetVideo(context.Background(), "acme", "missing")
	if !errors.Is(err, domain.ErrVideoNotFound) {
		t.Errorf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestVideoRepository_UpdateVideoIsPartial(t *testing.T) {
	repo := NewVideoRepository(newTestDB(t))
	ctx := context.Background()

	status := domain.VideoStatusProcessing
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	key := "acme/videos/lobby.mp4"
	if err := repo.UpdateVideo(ctx, "acme", "lobby", domain.VideoUpdate{
		Status:              &status,
		ProcessingStartedAt: &started,
		VideoKey:            &key,
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	jobID := "job-1"
	if err := repo.UpdateVideo(ctx, "acme", "lobby", domain.VideoUpdate{DetectionJobID: &jobID}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	job, err := repo.GetVideo(ctx, "acme", "lobby")
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if job.Status != domain.VideoStatusProcessing {
		t.Errorf("expected status to survive partial update, got %s", job.Status)
	}
	if job.VideoKey != key {
		t.Errorf("expected video key %q, got %q", key, job.VideoKey)
	}
	if job.DetectionJobID != jobID {
		t.Errorf("expected detection job id %q, got %q", jobID, job.DetectionJobID)
	}
	if job.ProcessingStartedAt == nil || !job.ProcessingStartedAt.Equal(started) {
		t.Errorf("expected started at %v, got %v", started, job.ProcessingStartedAt)
	}
}

func TestVideoRepository_ThumbnailMetadata(t *testing.T) {
	repo := NewVideoRepository(newTestDB(t))
	ctx := context.Background()

	generated := time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC)
	status := domain.VideoStatusProcessed
	url := "s3://videos/acme/thumbnails/lobby.jpg"
	if err := repo.UpdateVideo(ctx, "acme", "lobby", domain.VideoUpdate{
		Status:       &status,
		ThumbnailURL: &url,
		ThumbnailMetadata: &domain.ThumbnailMetadata{
			FrameTimestamp: 2,
			FaceCount:      3,
			GeneratedAt:    generated,
			Status:         domain.ThumbnailMetadataReady,
		},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	job, err := repo.GetVideo(ctx, "acme", "lobby")
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if job.ThumbnailURL != url {
		t.Errorf("expected url %q, got %q", url, job.ThumbnailURL)
	}
	meta := job.ThumbnailMetadata
	if meta == nil {
		t.Fatal("expected metadata")
	}
	if meta.FrameTimestamp != 2 || meta.FaceCount != 3 || meta.Status != domain.ThumbnailMetadataReady || !meta.GeneratedAt.Equal(generated) {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestVideoRepository_ErrorOverwritesStatus(t *testing.T) {
	repo := NewVideoRepository(newTestDB(t))
	ctx := context.Background()

	processed := domain.VideoStatusProcessed
	if err := repo.UpdateVideo(ctx, "acme", "lobby", domain.VideoUpdate{Status: &processed}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.UpdateVideo(ctx, "acme", "lobby", domain.ErrorUpdate("Rekognition job failed")); err != nil {
		t.Fatalf("update: %v", err)
	}

	job, err := repo.GetVideo(ctx, "acme", "lobby")
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if job.Status != domain.VideoStatusError || job.ErrorMessage != "Rekognition job failed" {
		t.Errorf("unexpected job %+v", job)
	}
}

func TestVideoRepository_EmptyUpdateIsNoop(t *testing.T) {
	repo := NewVideoRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.UpdateVideo(ctx, "acme", "lobby", domain.VideoUpdate{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.GetVideo(ctx, "acme", "lobby"); !errors.Is(err, domain.ErrVideoNotFound) {
		t.Errorf("expected no row to be created, got %v", err)
	}
}
