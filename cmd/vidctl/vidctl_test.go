package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/timmy/facetrail/internal/domain"
	"github.com/timmy/facetrail/internal/event"
)

func TestVideoKey_ParsesBack(t *testing.T) {
	key := VideoKey("acme", "videos", "lobby", ".mp4")
	if key != "acme/videos/lobby.mp4" {
		t.Fatalf("unexpected key %q", key)
	}
	ref, err := event.ParseVideoKey(key)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ref.OrgID != "acme" || ref.VideoID != "lobby" {
		t.Errorf("unexpected ref %+v", ref)
	}
}

func TestPrintVideo(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printVideo(&buf, &domain.VideoJob{
		OrgID:               "acme",
		VideoID:             "lobby",
		Status:              domain.VideoStatusProcessed,
		DetectionJobID:      "job-1",
		ProcessingStartedAt: &started,
		ThumbnailURL:        "s3://videos/acme/thumbnails/lobby.jpg",
		ThumbnailMetadata:   &domain.ThumbnailMetadata{FrameTimestamp: 2, FaceCount: 3, Status: domain.ThumbnailMetadataReady},
	})

	out := buf.String()
	for _, want := range []string{
		"Video: acme/lobby",
		"Status: PROCESSED",
		"Detection job: job-1",
		"Started: 2024-05-01T12:00:00Z",
		"Thumbnail frame: 2s, faces=3, metadata_ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Error:") {
		t.Error("unexpected error line")
	}
}

type pollingStore struct {
	calls  int
	states []domain.VideoStatus
	// block makes GetVideo wait for the context and return its error.
	block bool
}

func (s *pollingStore) GetVideo(ctx context.Context, orgID, videoID string) (*domain.VideoJob, error) {
	if s.block {
		s.calls++
		<-ctx.Done()
		return nil, ctx.Err()
	}
	i := s.calls
	s.calls++
	if i >= len(s.states) {
		i = len(s.states) - 1
	}
	if s.states[i] == "" {
		return nil, domain.ErrVideoNotFound
	}
	return &domain.VideoJob{OrgID: orgID, VideoID: videoID, Status: s.states[i]}, nil
}

func (s *pollingStore) UpdateVideo(ctx context.Context, orgID, videoID string, update domain.VideoUpdate) error {
	return nil
}

func TestWaitForTerminal(t *testing.T) {
	store := &pollingStore{states: []domain.VideoStatus{"", domain.VideoStatusProcessing, domain.VideoStatusProcessed}}

	job, err := waitForTerminal(context.Background(), store, "acme", "lobby", time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != domain.VideoStatusProcessed {
		t.Errorf("expected PROCESSED, got %s", job.Status)
	}
	if store.calls != 3 {
		t.Errorf("expected 3 polls, got %d", store.calls)
	}
}

func TestWaitForTerminal_Timeout(t *testing.T) {
	tests := []struct {
		name  string
		store *pollingStore
	}{
		{name: "never terminal", store: &pollingStore{states: []domain.VideoStatus{domain.VideoStatusProcessing}}},
		{name: "never found", store: &pollingStore{states: []domain.VideoStatus{""}}},
		{name: "store blocks past deadline", store: &pollingStore{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := waitForTerminal(context.Background(), tt.store, "acme", "lobby", time.Millisecond, 20*time.Millisecond)
			if err == nil {
				t.Fatal("expected timeout error")
			}
			if !strings.Contains(err.Error(), "not finished after") {
				t.Errorf("expected timeout message, got %v", err)
			}
		})
	}
}
