package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/facetrail/internal/domain"
)

const appearanceTimeLayout = "2006-01-02T15:04:05.000Z"

// AppearanceBuilder turns the faces of one detection result set into
// Appearance records. It numbers faces that share a timestamp so each gets its
// own sort key; feeding the same result set in the same order yields the same
// keys.
type AppearanceBuilder struct {
	orgID   string
	videoID string
	seq     map[int64]int
	newID   func() string
}

// NewAppearanceBuilder creates a builder for the faces of one video.
func NewAppearanceBuilder(orgID, videoID string) *AppearanceBuilder {
	return &AppearanceBuilder{
		orgID:   orgID,
		videoID: videoID,
		seq:     make(map[int64]int),
		newID:   func() string { return uuid.New().String() },
	}
}

// Build returns the Appearance record for one detected face.
func (b *AppearanceBuilder) Build(face domain.FaceDetection) *domain.Appearance {
	ts := face.TimestampMs
	n := b.seq[ts]
	b.seq[ts] = n + 1

	at := time.UnixMilli(ts).UTC()
	rangeKey := fmt.Sprintf("%s%d", domain.AppearanceKeyPrefix, ts)

	return &domain.Appearance{
		PK:          domain.OrgPK(b.orgID),
		SK:          domain.AppearanceSK(b.videoID, ts, n),
		OrgID:       b.orgID,
		PersonID:    b.newID(),
		VideoID:     b.videoID,
		TimestampMs: ts,
		Timestamp:   at.Format(appearanceTimeLayout),
		Confidence:  face.Confidence,
		Attributes:  NormalizeAttributes(face),
		GSI1PK:      domain.ColorIndexPlaceholder,
		GSI1SK:      rangeKey,
		GSI2PK:      domain.VideoKeyPrefix + b.videoID,
		GSI2SK:      rangeKey,
		GSI3PK:      domain.TimeKeyPrefix + at.Format("20060102"),
		GSI3SK:      rangeKey,
	}
}
