package domain

import (
	"fmt"
	"time"
)

// Key prefixes of the single-table layout shared by every store adapter.
const (
	OrgKeyPrefix        = "ORG#"
	VideoKeyPrefix      = "VIDEO#"
	AppearanceKeyPrefix = "APPEAR#"
	TimeKeyPrefix       = "TIME#"

	// ColorIndexPlaceholder is the attribute index partition written until
	// color detection fills it in.
	ColorIndexPlaceholder = "ATTR#color#unknown"
)

// Categorical fallbacks for face attributes.
const (
	AgeBucketUnknown = "unknown"
	GenderUnknown    = "unknown"
	EmotionNeutral   = "neutral"
)

// AppearanceAttributes holds the normalized face attributes of an appearance.
type AppearanceAttributes struct {
	AgeBucket string `gorm:"type:text;index:idx_appearances_age" json:"ageBucket" dynamodbav:"ageBucket"`
	Gender    string `gorm:"type:text" json:"gender" dynamodbav:"gender"`
	Emotion   string `gorm:"type:text;index:idx_appearances_emotion" json:"emotion" dynamodbav:"emotion"`
	Mask      bool   `json:"mask" dynamodbav:"mask"`
}

// Appearance is one detected face occurrence in a video. PersonID is a fresh
// identifier per record; no identity is linked across frames or videos.
type Appearance struct {
	PK          string               `gorm:"type:text;primaryKey" json:"pk" dynamodbav:"PK"`
	SK          string               `gorm:"type:text;primaryKey" json:"sk" dynamodbav:"SK"`
	OrgID       string               `gorm:"type:text;not null" json:"orgId" dynamodbav:"orgId"`
	PersonID    string               `gorm:"type:text;not null;uniqueIndex" json:"personId" dynamodbav:"personId"`
	VideoID     string               `gorm:"type:text;not null" json:"videoId" dynamodbav:"videoId"`
	TimestampMs int64                `json:"timestampMs" dynamodbav:"timestampMs"`
	Timestamp   string               `gorm:"type:text" json:"timestamp" dynamodbav:"timestamp"`
	Confidence  float64              `json:"confidence" dynamodbav:"confidence"`
	Attributes  AppearanceAttributes `gorm:"embedded" json:"attributes" dynamodbav:"attributes"`
	GSI1PK      string               `gorm:"column:gsi1pk;type:text;index:idx_appearances_attr" json:"gsi1pk" dynamodbav:"GSI1PK"`
	GSI1SK      string               `gorm:"column:gsi1sk;type:text;index:idx_appearances_attr" json:"gsi1sk" dynamodbav:"GSI1SK"`
	GSI2PK      string               `gorm:"column:gsi2pk;type:text;index:idx_appearances_video" json:"gsi2pk" dynamodbav:"GSI2PK"`
	GSI2SK      string               `gorm:"column:gsi2sk;type:text;index:idx_appearances_video" json:"gsi2sk" dynamodbav:"GSI2SK"`
	GSI3PK      string               `gorm:"column:gsi3pk;type:text;index:idx_appearances_time" json:"gsi3pk" dynamodbav:"GSI3PK"`
	GSI3SK      string               `gorm:"column:gsi3sk;type:text;index:idx_appearances_time" json:"gsi3sk" dynamodbav:"GSI3SK"`
	CreatedAt   time.Time            `json:"createdAt" dynamodbav:"-"`
}

// TableName returns the database table name for Appearance.
func (Appearance) TableName() string {
	return "appearances"
}

// OrgPK returns the partition key of every item owned by an organization.
func OrgPK(orgID string) string {
	return OrgKeyPrefix + orgID
}

// VideoSK returns the sort key of a VideoJob item.
func VideoSK(videoID string) string {
	return VideoKeyPrefix + videoID
}

// AppearanceSK returns the sort key of an appearance. seq disambiguates faces
// that share a timestamp within one video; the first one carries no suffix.
func AppearanceSK(videoID string, timestampMs int64, seq int) string {
	if seq == 0 {
		return fmt.Sprintf("%s%s#%d", AppearanceKeyPrefix, videoID, timestampMs)
	}
	return fmt.Sprintf("%s%s#%d#%d", AppearanceKeyPrefix, videoID, timestampMs, seq)
}
