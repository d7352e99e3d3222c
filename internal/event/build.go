package event

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// DetectionAPI is the API name carried by face detection notices.
const DetectionAPI = "StartFaceDetection"

// NewUploadBatch builds an object-created batch for key in bucket, encoded the
// way the storage service delivers it.
func NewUploadBatch(bucket, key string, size int64) ([]byte, error) {
	return json.Marshal(events.S3Event{
		Records: []events.S3EventRecord{{
			EventVersion: "2.1",
			EventSource:  "aws:s3",
			EventTime:    time.Now().UTC(),
			EventName:    "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: encodeKey(key), Size: size},
			},
		}},
	})
}

// NewCompletionBatch builds a notification batch reporting status for a
// detection job.
func NewCompletionBatch(topicARN, jobID, status, jobTag string) ([]byte, error) {
	notice, err := json.Marshal(Notice{
		JobID:     jobID,
		Status:    status,
		API:       DetectionAPI,
		JobTag:    jobTag,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(events.SNSEvent{
		Records: []events.SNSEventRecord{{
			EventVersion: "1.0",
			EventSource:  "aws:sns",
			SNS: events.SNSEntity{
				MessageID: jobID,
				Type:      "Notification",
				TopicArn:  topicARN,
				Message:   string(notice),
				Timestamp: time.Now().UTC(),
			},
		}},
	})
}

// encodeKey form-encodes each path segment of key, keeping the separators.
func encodeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.QueryEscape(s)
	}
	return strings.Join(segments, "/")
}
