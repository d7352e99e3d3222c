package event

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// JobTagSeparator joins organization and video ids in a detection job tag.
const JobTagSeparator = "_"

// VideoRef identifies a video within an organization.
type VideoRef struct {
	OrgID   string
	VideoID string
}

// ParseVideoKey extracts the video reference from an object key of the form
// {orgId}/{folder}/{videoId}.{ext}. The trailing extension is stripped so the
// id matches the one recovered from a job tag.
func ParseVideoKey(key string) (VideoRef, error) {
	orgID, fileName, err := splitKey(key)
	if err != nil {
		return VideoRef{}, err
	}
	ref := VideoRef{OrgID: orgID, VideoID: stripExt(fileName)}
	if ref.VideoID == "" {
		return VideoRef{}, fmt.Errorf("%w: invalid key format %q", ErrSkip, key)
	}
	return ref, nil
}

// JobTag builds the tag attached to the detection job of the video stored at
// key, so that its completion notification can be correlated without a lookup
// table. The tag keeps the file name with its extension; ParseJobTag drops
// exactly that extension and recovers the id ParseVideoKey returns.
func JobTag(key string) (string, error) {
	orgID, fileName, err := splitKey(key)
	if err != nil {
		return "", err
	}
	return orgID + JobTagSeparator + fileName, nil
}

func splitKey(key string) (orgID, fileName string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) < 3 || parts[0] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: invalid key format %q", ErrSkip, key)
	}
	return parts[0], parts[2], nil
}

// ParseJobTag splits a job tag on its first separator. The remainder may carry
// a file extension, which is dropped.
func ParseJobTag(tag string) (VideoRef, error) {
	orgID, rest, ok := strings.Cut(tag, JobTagSeparator)
	if !ok {
		return VideoRef{}, fmt.Errorf("%w: invalid job tag %q", ErrSkip, tag)
	}
	ref := VideoRef{OrgID: orgID, VideoID: stripExt(rest)}
	if ref.OrgID == "" || ref.VideoID == "" {
		return VideoRef{}, fmt.Errorf("%w: invalid job tag %q", ErrSkip, tag)
	}
	return ref, nil
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// Notice is the body of a detection completion notification.
type Notice struct {
	JobID     string `json:"JobId"`
	Status    string `json:"Status"`
	API       string `json:"API,omitempty"`
	JobTag    string `json:"JobTag"`
	Timestamp int64  `json:"Timestamp,omitempty"`
	Video     struct {
		S3ObjectName string `json:"S3ObjectName,omitempty"`
		S3Bucket     string `json:"S3Bucket,omitempty"`
	} `json:"Video"`
}

// ParseNotice decodes a completion notification body. Unparseable bodies and
// bodies without JobId or Status are classified as ErrSkip.
func ParseNotice(message string) (*Notice, error) {
	var n Notice
	if err := json.Unmarshal([]byte(message), &n); err != nil {
		return nil, fmt.Errorf("%w: unparseable notification: %v", ErrSkip, err)
	}
	if n.JobID == "" || n.Status == "" {
		return nil, fmt.Errorf("%w: notification missing JobId or Status", ErrSkip)
	}
	return &n, nil
}
