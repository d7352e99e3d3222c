package event

import (
	"errors"
	"testing"
)

func TestParseVideoKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    VideoRef
		wantErr bool
	}{
		{name: "standard", key: "acme/videos/lobby.mp4", want: VideoRef{OrgID: "acme", VideoID: "lobby"}},
		{name: "no extension", key: "acme/videos/lobby", want: VideoRef{OrgID: "acme", VideoID: "lobby"}},
		{name: "dotted name", key: "acme/videos/cam.01.mov", want: VideoRef{OrgID: "acme", VideoID: "cam.01"}},
		{name: "deeper path", key: "acme/videos/lobby.mp4/extra", want: VideoRef{OrgID: "acme", VideoID: "lobby"}},
		{name: "two segments", key: "acme/lobby.mp4", wantErr: true},
		{name: "one segment", key: "lobby.mp4", wantErr: true},
		{name: "empty org", key: "/videos/lobby.mp4", wantErr: true},
		{name: "extension only", key: "acme/videos/.mp4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideoKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrSkip) {
					t.Errorf("expected ErrSkip, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseJobTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		want    VideoRef
		wantErr bool
	}{
		{name: "plain", tag: "acme_lobby", want: VideoRef{OrgID: "acme", VideoID: "lobby"}},
		{name: "with extension", tag: "acme_lobby.mp4", want: VideoRef{OrgID: "acme", VideoID: "lobby"}},
		{name: "split on first separator", tag: "acme_front_door.mp4", want: VideoRef{OrgID: "acme", VideoID: "front_door"}},
		{name: "no separator", tag: "acmelobby", wantErr: true},
		{name: "empty", tag: "", wantErr: true},
		{name: "empty video", tag: "acme_", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJobTag(tt.tag)
			if tt.wantErr {
				if !errors.Is(err, ErrSkip) {
					t.Errorf("expected ErrSkip, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestJobTag(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "keeps extension", key: "acme/videos/lobby.mp4", want: "acme_lobby.mp4"},
		{name: "dotted name", key: "acme/videos/cam.01.mp4", want: "acme_cam.01.mp4"},
		{name: "no extension", key: "o/f/v", want: "o_v"},
		{name: "deeper path", key: "acme/videos/lobby.mp4/extra", want: "acme_lobby.mp4"},
		{name: "two segments", key: "acme/lobby.mp4", wantErr: true},
		{name: "empty org", key: "/videos/lobby.mp4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JobTag(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrSkip) {
					t.Errorf("expected ErrSkip, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestJobTagRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "standard", key: "acme/videos/lobby.mp4"},
		{name: "dotted name", key: "acme/videos/cam.01.mp4"},
		{name: "dotted date", key: "org-7/uploads/2024.06.01-cam.mkv"},
		{name: "separator in name", key: "acme/videos/front_door.mov"},
		{name: "no extension", key: "o/f/v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseVideoKey(tt.key)
			if err != nil {
				t.Fatalf("parse key: %v", err)
			}
			tag, err := JobTag(tt.key)
			if err != nil {
				t.Fatalf("build tag: %v", err)
			}
			back, err := ParseJobTag(tag)
			if err != nil {
				t.Fatalf("parse tag %q: %v", tag, err)
			}
			if back != ref {
				t.Errorf("expected %+v, got %+v", ref, back)
			}
		})
	}
}

func TestParseNotice(t *testing.T) {
	n, err := ParseNotice(`{"JobId":"j-1","Status":"SUCCEEDED","API":"StartFaceDetection","JobTag":"acme_lobby","Video":{"S3ObjectName":"acme/videos/lobby.mp4","S3Bucket":"videos"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.JobID != "j-1" || n.Status != "SUCCEEDED" || n.JobTag != "acme_lobby" {
		t.Errorf("unexpected notice: %+v", n)
	}
	if n.Video.S3Bucket != "videos" {
		t.Errorf("expected video bucket, got %q", n.Video.S3Bucket)
	}

	for _, body := range []string{`{`, `{"Status":"SUCCEEDED"}`, `{"JobId":"j-1"}`, ``} {
		if _, err := ParseNotice(body); !errors.Is(err, ErrSkip) {
			t.Errorf("body %q: expected ErrSkip, got %v", body, err)
		}
	}
}
