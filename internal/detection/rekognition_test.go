package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/timmy/facetrail/internal/service"
)

type fakeRekognition struct {
	startIn  *rekognition.StartFaceDetectionInput
	startOut *rekognition.StartFaceDetectionOutput
	pages    []*rekognition.GetFaceDetectionOutput
	getIn    []*rekognition.GetFaceDetectionInput
	err      error
}

func (f *fakeRekognition) StartFaceDetection(ctx context.Context, in *rekognition.StartFaceDetectionInput, _ ...func(*rekognition.Options)) (*rekognition.StartFaceDetectionOutput, error) {
	f.startIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.startOut, nil
}

func (f *fakeRekognition) GetFaceDetection(ctx context.Context, in *rekognition.GetFaceDetectionInput, _ ...func(*rekognition.Options)) (*rekognition.GetFaceDetectionOutput, error) {
	f.getIn = append(f.getIn, in)
	if f.err != nil {
		return nil, f.err
	}
	out := f.pages[0]
	f.pages = f.pages[1:]
	return out, nil
}

func TestStartFaceDetection(t *testing.T) {
	client := &fakeRekognition{startOut: &rekognition.StartFaceDetectionOutput{JobId: aws.String("job-1")}}
	d := NewDetector(client, Config{SNSTopicARN: "arn:topic", RoleARN: "arn:role"})

	jobID, err := d.StartFaceDetection(context.Background(), service.DetectionRequest{
		Bucket: "videos",
		Key:    "acme/videos/lobby.mp4",
		JobTag: "acme_lobby",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobID != "job-1" {
		t.Errorf("expected job-1, got %q", jobID)
	}

	in := client.startIn
	if aws.ToString(in.Video.S3Object.Bucket) != "videos" || aws.ToString(in.Video.S3Object.Name) != "acme/videos/lobby.mp4" {
		t.Errorf("unexpected video %+v", in.Video.S3Object)
	}
	if aws.ToString(in.NotificationChannel.SNSTopicArn) != "arn:topic" || aws.ToString(in.NotificationChannel.RoleArn) != "arn:role" {
		t.Errorf("unexpected notification channel %+v", in.NotificationChannel)
	}
	if aws.ToString(in.JobTag) != "acme_lobby" {
		t.Errorf("unexpected job tag %q", aws.ToString(in.JobTag))
	}
	if in.FaceAttributes != types.FaceAttributesAll {
		t.Errorf("expected all face attributes, got %q", in.FaceAttributes)
	}
}

func TestStartFaceDetection_Errors(t *testing.T) {
	d := NewDetector(&fakeRekognition{err: errors.New("throttled")}, Config{})
	if _, err := d.StartFaceDetection(context.Background(), service.DetectionRequest{}); err == nil {
		t.Error("expected client error to propagate")
	}

	d = NewDetector(&fakeRekognition{startOut: &rekognition.StartFaceDetectionOutput{}}, Config{})
	if _, err := d.StartFaceDetection(context.Background(), service.DetectionRequest{}); err == nil {
		t.Error("expected error for missing job id")
	}
}

func TestGetFaceDetection_AllPages(t *testing.T) {
	client := &fakeRekognition{pages: []*rekognition.GetFaceDetectionOutput{
		{
			Faces: []types.FaceDetection{{
				Timestamp: 1500,
				Face: &types.FaceDetail{
					Confidence: aws.Float32(99.5),
					AgeRange:   &types.AgeRange{Low: aws.Int32(25), High: aws.Int32(33)},
					Gender:     &types.Gender{Value: types.GenderTypeFemale},
					Emotions: []types.Emotion{
						{Type: types.EmotionNameHappy, Confidence: aws.Float32(60)},
						{Type: types.EmotionNameSad, Confidence: aws.Float32(90)},
					},
					FaceOccluded: &types.FaceOccluded{Value: true},
				},
			}},
			NextToken: aws.String("page-2"),
		},
		{
			Faces: []types.FaceDetection{{Timestamp: 3000, Face: &types.FaceDetail{}}, {Timestamp: 4000}},
		},
	}}
	d := NewDetector(client, Config{PageSize: 500})

	faces, err := d.GetFaceDetection(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(faces) != 3 {
		t.Fatalf("expected 3 faces across pages, got %d", len(faces))
	}

	if len(client.getIn) != 2 {
		t.Fatalf("expected 2 page requests, got %d", len(client.getIn))
	}
	if client.getIn[0].NextToken != nil {
		t.Error("expected first page without token")
	}
	if aws.ToString(client.getIn[1].NextToken) != "page-2" {
		t.Errorf("expected second page token, got %q", aws.ToString(client.getIn[1].NextToken))
	}
	if aws.ToInt32(client.getIn[0].MaxResults) != 500 {
		t.Errorf("expected page size 500, got %d", aws.ToInt32(client.getIn[0].MaxResults))
	}

	first := faces[0]
	if first.TimestampMs != 1500 || first.Confidence != 99.5 {
		t.Errorf("unexpected first face %+v", first)
	}
	if first.AgeRange == nil || first.AgeRange.Low != 25 || first.AgeRange.High != 33 {
		t.Errorf("unexpected age range %+v", first.AgeRange)
	}
	if first.Gender != "Female" {
		t.Errorf("expected Female, got %q", first.Gender)
	}
	if len(first.Emotions) != 2 || first.Emotions[1].Type != "SAD" {
		t.Errorf("unexpected emotions %+v", first.Emotions)
	}
	if first.Occluded == nil || !*first.Occluded {
		t.Error("expected occluded face")
	}

	bare := faces[1]
	if bare.AgeRange != nil || bare.Gender != "" || bare.Occluded != nil || len(bare.Emotions) != 0 {
		t.Errorf("expected absent attributes to stay absent, got %+v", bare)
	}
	if faces[2].TimestampMs != 4000 {
		t.Errorf("expected face without detail to keep its timestamp, got %d", faces[2].TimestampMs)
	}
}

func TestGetFaceDetection_PageError(t *testing.T) {
	d := NewDetector(&fakeRekognition{err: errors.New("expired")}, Config{})
	if _, err := d.GetFaceDetection(context.Background(), "job-1"); err == nil {
		t.Error("expected error")
	}
}
