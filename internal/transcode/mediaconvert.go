// Package transcode submits frame-extraction jobs to AWS Elemental MediaConvert.
package transcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"
	"github.com/timmy/facetrail/internal/service"
)

// MediaConvertAPI is the subset of the MediaConvert client used by the extractor.
type MediaConvertAPI interface {
	CreateJob(ctx context.Context, params *mediaconvert.CreateJobInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.CreateJobOutput, error)
}

// Config holds the job role and output geometry.
type Config struct {
	RoleARN     string
	FrameWidth  int
	FrameHeight int
}

const (
	proxyMaxBitrate   = 1000000
	proxyQvbrQuality  = 7
	frameCaptureCount = 1
	frameQuality      = 80
)

// Extractor implements service.FrameExtractor on top of MediaConvert.
type Extractor struct {
	client MediaConvertAPI
	cfg    Config
}

var _ service.FrameExtractor = (*Extractor)(nil)

// NewExtractor creates a new Extractor.
func NewExtractor(client MediaConvertAPI, cfg Config) *Extractor {
	if cfg.FrameWidth <= 0 {
		cfg.FrameWidth = 320
	}
	if cfg.FrameHeight <= 0 {
		cfg.FrameHeight = 240
	}
	return &Extractor{client: client, cfg: cfg}
}

// NewClient creates a MediaConvert client bound to the account endpoint.
func NewClient(awsCfg aws.Config, endpoint string) *mediaconvert.Client {
	return mediaconvert.NewFromConfig(awsCfg, func(o *mediaconvert.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// SubmitExtraction creates a job that writes a low-bitrate proxy and a single
// frame capture, both starting at req.FrameSecond, next to the video's
// thumbnails.
func (e *Extractor) SubmitExtraction(ctx context.Context, req service.ExtractionRequest) (string, error) {
	out, err := e.client.CreateJob(ctx, &mediaconvert.CreateJobInput{
		Role:     aws.String(e.cfg.RoleARN),
		Settings: e.jobSettings(req),
		UserMetadata: map[string]string{
			"videoId":        req.VideoID,
			"orgId":          req.OrgID,
			"frameTimestamp": fmt.Sprint(req.FrameSecond),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create mediaconvert job: %w", err)
	}
	if out.Job == nil || out.Job.Id == nil {
		return "", errors.New("mediaconvert job created without an id")
	}
	return *out.Job.Id, nil
}

func (e *Extractor) jobSettings(req service.ExtractionRequest) *types.JobSettings {
	return &types.JobSettings{
		TimecodeConfig: &types.TimecodeConfig{
			Source: types.TimecodeSourceZerobased,
		},
		Inputs: []types.Input{{
			FileInput:      aws.String(fmt.Sprintf("s3://%s/%s", req.Bucket, req.Key)),
			TimecodeSource: types.InputTimecodeSourceZerobased,
			InputClippings: []types.InputClipping{{
				StartTimecode: aws.String(Timecode(req.FrameSecond)),
			}},
		}},
		OutputGroups: []types.OutputGroup{{
			Name: aws.String("File Group"),
			OutputGroupSettings: &types.OutputGroupSettings{
				Type: types.OutputGroupTypeFileGroupSettings,
				FileGroupSettings: &types.FileGroupSettings{
					Destination: aws.String(fmt.Sprintf("s3://%s/%s/thumbnails/", req.Bucket, req.OrgID)),
				},
			},
			Outputs: []types.Output{
				{
					NameModifier:      aws.String(fmt.Sprintf("_%s_video", req.VideoID)),
					ContainerSettings: &types.ContainerSettings{Container: types.ContainerTypeMp4},
					VideoDescription: &types.VideoDescription{
						Width:           aws.Int32(int32(e.cfg.FrameWidth)),
						Height:          aws.Int32(int32(e.cfg.FrameHeight)),
						ScalingBehavior: types.ScalingBehaviorDefault,
						CodecSettings: &types.VideoCodecSettings{
							Codec: types.VideoCodecH264,
							H264Settings: &types.H264Settings{
								MaxBitrate:      aws.Int32(proxyMaxBitrate),
								RateControlMode: types.H264RateControlModeQvbr,
								QvbrSettings: &types.H264QvbrSettings{
									QvbrQualityLevel: aws.Int32(proxyQvbrQuality),
								},
							},
						},
					},
				},
				{
					NameModifier:      aws.String(fmt.Sprintf("_%s_frame", req.VideoID)),
					ContainerSettings: &types.ContainerSettings{Container: types.ContainerTypeRaw},
					VideoDescription: &types.VideoDescription{
						Width:           aws.Int32(int32(e.cfg.FrameWidth)),
						Height:          aws.Int32(int32(e.cfg.FrameHeight)),
						ScalingBehavior: types.ScalingBehaviorDefault,
						CodecSettings: &types.VideoCodecSettings{
							Codec: types.VideoCodecFrameCapture,
							FrameCaptureSettings: &types.FrameCaptureSettings{
								MaxCaptures: aws.Int32(frameCaptureCount),
								Quality:     aws.Int32(frameQuality),
							},
						},
					},
				},
			},
		}},
	}
}

// Timecode formats a zero-based offset in seconds as HH:MM:SS:FF.
func Timecode(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d:00", seconds/3600, seconds/60%60, seconds%60)
}
