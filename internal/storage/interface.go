package storage

import (
	"context"
	"io"
)

// ObjectStorage is the video bucket as seen by the operator tooling.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// URI returns the s3:// URI of an object
	URI(key string) string
}

// URI formats the s3:// URI of key in bucket.
func URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
