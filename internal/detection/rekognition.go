// Package detection runs asynchronous face detection on stored videos with
// Amazon Rekognition Video.
package detection

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/timmy/facetrail/internal/domain"
	"github.com/timmy/facetrail/internal/service"
)

// RekognitionAPI is the subset of the Rekognition client used by the detector.
type RekognitionAPI interface {
	StartFaceDetection(ctx context.Context, params *rekognition.StartFaceDetectionInput, optFns ...func(*rekognition.Options)) (*rekognition.StartFaceDetectionOutput, error)
	GetFaceDetection(ctx context.Context, params *rekognition.GetFaceDetectionInput, optFns ...func(*rekognition.Options)) (*rekognition.GetFaceDetectionOutput, error)
}

// Config holds the notification settings attached to every job.
type Config struct {
	SNSTopicARN string
	RoleARN     string
	// PageSize bounds the faces returned per result page.
	PageSize int
}

// Detector implements service.FaceDetector on top of Rekognition.
type Detector struct {
	client RekognitionAPI
	cfg    Config
}

var _ service.FaceDetector = (*Detector)(nil)

// NewDetector creates a new Detector.
func NewDetector(client RekognitionAPI, cfg Config) *Detector {
	return &Detector{client: client, cfg: cfg}
}

// NewClient creates a Rekognition client from a loaded AWS config.
func NewClient(awsCfg aws.Config) *rekognition.Client {
	return rekognition.NewFromConfig(awsCfg)
}

// StartFaceDetection starts a job reporting all face attributes. Completion is
// published to the configured SNS topic with req.JobTag attached.
func (d *Detector) StartFaceDetection(ctx context.Context, req service.DetectionRequest) (string, error) {
	out, err := d.client.StartFaceDetection(ctx, &rekognition.StartFaceDetectionInput{
		Video: &types.Video{
			S3Object: &types.S3Object{
				Bucket: aws.String(req.Bucket),
				Name:   aws.String(req.Key),
			},
		},
		NotificationChannel: &types.NotificationChannel{
			SNSTopicArn: aws.String(d.cfg.SNSTopicARN),
			RoleArn:     aws.String(d.cfg.RoleARN),
		},
		JobTag:         aws.String(req.JobTag),
		FaceAttributes: types.FaceAttributesAll,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start face detection: %w", err)
	}
	if out.JobId == nil || *out.JobId == "" {
		return "", errors.New("face detection started without a job id")
	}
	return *out.JobId, nil
}

// GetFaceDetection collects the faces of a finished job across all result pages.
func (d *Detector) GetFaceDetection(ctx context.Context, jobID string) ([]domain.FaceDetection, error) {
	var faces []domain.FaceDetection
	var nextToken *string
	for {
		in := &rekognition.GetFaceDetectionInput{
			JobId:     aws.String(jobID),
			NextToken: nextToken,
		}
		if d.cfg.PageSize > 0 {
			in.MaxResults = aws.Int32(int32(d.cfg.PageSize))
		}

		out, err := d.client.GetFaceDetection(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to get face detection page: %w", err)
		}
		for _, f := range out.Faces {
			faces = append(faces, toDomain(f))
		}

		if out.NextToken == nil || *out.NextToken == "" {
			return faces, nil
		}
		nextToken = out.NextToken
	}
}

// toDomain maps one reported face. Attributes live directly under Face.
func toDomain(f types.FaceDetection) domain.FaceDetection {
	face := domain.FaceDetection{TimestampMs: f.Timestamp}
	detail := f.Face
	if detail == nil {
		return face
	}

	if detail.Confidence != nil {
		face.Confidence = float64(*detail.Confidence)
	}
	if detail.AgeRange != nil {
		face.AgeRange = &domain.AgeRange{
			Low:  int(aws.ToInt32(detail.AgeRange.Low)),
			High: int(aws.ToInt32(detail.AgeRange.High)),
		}
	}
	if detail.Gender != nil {
		face.Gender = string(detail.Gender.Value)
	}
	for _, e := range detail.Emotions {
		face.Emotions = append(face.Emotions, domain.Emotion{
			Type:       string(e.Type),
			Confidence: float64(aws.ToFloat32(e.Confidence)),
		})
	}
	if detail.FaceOccluded != nil {
		occluded := detail.FaceOccluded.Value
		face.Occluded = &occluded
	}
	return face
}
