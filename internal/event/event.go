// Package event parses inbound invocation payloads into typed records.
//
// A payload is a batch {"Records": [...]} whose records are either S3
// object-created notifications (video uploads) or SNS notifications carrying a
// face-detection completion message. Each record is classified into exactly one
// Kind; parsing never fails for a single record, only for the batch envelope.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// Kind is the classified shape of an inbound record.
type Kind string

const (
	KindUpload     Kind = "upload"
	KindCompletion Kind = "completion"
	KindUnknown    Kind = "unknown"
)

// Event sources as they appear in the record envelopes.
const (
	SourceS3  = "aws:s3"
	SourceSNS = "aws:sns"
)

var (
	// ErrMalformedBatch is returned when the payload has no Records array.
	ErrMalformedBatch = errors.New("invalid event: missing Records")

	// ErrSkip classifies a record that cannot be acted upon and is skipped
	// without failing the batch.
	ErrSkip = errors.New("record skipped")
)

// Upload is a video-upload signal from an S3 object-created notification.
type Upload struct {
	Bucket    string
	Key       string
	Size      int64
	EventName string
}

// Completion is a detection-completion signal wrapped in an SNS notification.
// Message is the raw notification body; see ParseNotice.
type Completion struct {
	MessageID string
	TopicARN  string
	Message   string
}

// Record is one classified record of a batch. Exactly one of Upload and
// Completion is set unless Kind is KindUnknown.
type Record struct {
	Index      int
	Kind       Kind
	Upload     *Upload
	Completion *Completion
	Raw        json.RawMessage
}

// Batch is a parsed invocation payload.
type Batch struct {
	Records []Record
}

// Recognized returns the number of records with a known envelope.
func (b *Batch) Recognized() int {
	n := 0
	for _, r := range b.Records {
		if r.Kind != KindUnknown {
			n++
		}
	}
	return n
}

type envelope struct {
	Records []json.RawMessage `json:"Records"`
}

// recordHeader matches both "EventSource" (SNS) and "eventSource" (S3) since
// encoding/json falls back to case-insensitive field matching.
type recordHeader struct {
	EventSource string          `json:"EventSource"`
	SNS         json.RawMessage `json:"Sns"`
	S3          json.RawMessage `json:"s3"`
}

type s3Record struct {
	EventName string `json:"eventName"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size"`
		} `json:"object"`
	} `json:"s3"`
}

type snsRecord struct {
	SNS struct {
		MessageID string `json:"MessageId"`
		TopicArn  string `json:"TopicArn"`
		Message   string `json:"Message"`
	} `json:"Sns"`
}

// ParseBatch decodes an invocation payload and classifies every record.
// Only a missing or non-array Records field is an error.
func ParseBatch(payload []byte) (*Batch, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	if env.Records == nil {
		return nil, ErrMalformedBatch
	}

	batch := &Batch{Records: make([]Record, 0, len(env.Records))}
	for i, raw := range env.Records {
		batch.Records = append(batch.Records, classify(i, raw))
	}
	return batch, nil
}

func classify(index int, raw json.RawMessage) Record {
	rec := Record{Index: index, Kind: KindUnknown, Raw: raw}

	var p recordHeader
	if err := json.Unmarshal(raw, &p); err != nil {
		return rec
	}

	switch {
	case p.EventSource == SourceSNS || len(p.SNS) > 0:
		var r snsRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return rec
		}
		rec.Kind = KindCompletion
		rec.Completion = &Completion{
			MessageID: r.SNS.MessageID,
			TopicARN:  r.SNS.TopicArn,
			Message:   r.SNS.Message,
		}
	case len(p.S3) > 0:
		var r s3Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return rec
		}
		rec.Kind = KindUpload
		rec.Upload = &Upload{
			Bucket:    r.S3.Bucket.Name,
			Key:       decodeObjectKey(r.S3.Object.Key),
			Size:      r.S3.Object.Size,
			EventName: r.EventName,
		}
	}
	return rec
}

// decodeObjectKey undoes the form encoding S3 applies to keys in notifications.
func decodeObjectKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}
