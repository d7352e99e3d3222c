package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/timmy/facetrail/internal/domain"
	"github.com/timmy/facetrail/internal/event"
	"github.com/timmy/facetrail/internal/logger"
)

type videoUpdateCall struct {
	OrgID   string
	VideoID string
	Update  domain.VideoUpdate
}

// fakeVideoStore keeps VideoJobs in memory and records every update.
type fakeVideoStore struct {
	mu      sync.Mutex
	jobs    map[string]*domain.VideoJob
	updates []videoUpdateCall
	// failUpdate, when set, is consulted before each update is applied.
	failUpdate func(videoID string, u domain.VideoUpdate) error
	getErr     error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{jobs: make(map[string]*domain.VideoJob)}
}

func (s *fakeVideoStore) GetVideo(ctx context.Context, orgID, videoID string) (*domain.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	job, ok := s.jobs[orgID+"/"+videoID]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *fakeVideoStore) UpdateVideo(ctx context.Context, orgID, videoID string, u domain.VideoUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		if err := s.failUpdate(videoID, u); err != nil {
			return err
		}
	}
	s.updates = append(s.updates, videoUpdateCall{OrgID: orgID, VideoID: videoID, Update: u})
	job, ok := s.jobs[orgID+"/"+videoID]
	if !ok {
		job = &domain.VideoJob{OrgID: orgID, VideoID: videoID}
		s.jobs[orgID+"/"+videoID] = job
	}
	u.Apply(job)
	return nil
}

func (s *fakeVideoStore) job(orgID, videoID string) *domain.VideoJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[orgID+"/"+videoID]
}

func (s *fakeVideoStore) put(job *domain.VideoJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.OrgID+"/"+job.VideoID] = job
}

type fakeAppearanceStore struct {
	mu    sync.Mutex
	items []*domain.Appearance
	err   error
}

func (s *fakeAppearanceStore) PutAppearance(ctx context.Context, a *domain.Appearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, a)
	return nil
}

type fakeDetector struct {
	jobID    string
	startErr error
	faces    map[string][]domain.FaceDetection
	getErr   error
	started  []DetectionRequest
}

func (d *fakeDetector) StartFaceDetection(ctx context.Context, req DetectionRequest) (string, error) {
	if d.startErr != nil {
		return "", d.startErr
	}
	d.started = append(d.started, req)
	return d.jobID, nil
}

func (d *fakeDetector) GetFaceDetection(ctx context.Context, jobID string) ([]domain.FaceDetection, error) {
	if d.getErr != nil {
		return nil, d.getErr
	}
	return d.faces[jobID], nil
}

type fakeExtractor struct {
	jobID    string
	err      error
	requests []ExtractionRequest
}

func (e *fakeExtractor) SubmitExtraction(ctx context.Context, req ExtractionRequest) (string, error) {
	e.requests = append(e.requests, req)
	if e.err != nil {
		return "", e.err
	}
	return e.jobID, nil
}

var errBoom = errors.New("boom")

func testLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = "error"
	return logger.New(cfg)
}

func boolPtr(v bool) *bool { return &v }

func s3Record(bucket, key string) events.S3EventRecord {
	return events.S3EventRecord{
		EventSource: "aws:s3",
		EventName:   "ObjectCreated:Put",
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucket},
			Object: events.S3Object{Key: key, Size: 1024},
		},
	}
}

func snsRecord(t *testing.T, jobID, status, tag string) events.SNSEventRecord {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"JobId":  jobID,
		"Status": status,
		"API":    "StartFaceDetection",
		"JobTag": tag,
	})
	if err != nil {
		t.Fatalf("marshal notice: %v", err)
	}
	return events.SNSEventRecord{
		EventSource: "aws:sns",
		SNS: events.SNSEntity{
			MessageID: "msg-" + jobID,
			TopicArn:  "arn:aws:sns:us-east-1:123456789012:video-processing",
			Message:   string(body),
		},
	}
}

func batchPayload(t *testing.T, records ...interface{}) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{"Records": records})
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	return payload
}

func completionFor(t *testing.T, jobID, status, tag string) *event.Completion {
	t.Helper()
	rec := snsRecord(t, jobID, status, tag)
	return &event.Completion{MessageID: rec.SNS.MessageID, TopicARN: rec.SNS.TopicArn, Message: rec.SNS.Message}
}
