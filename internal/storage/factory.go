package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/timmy/facetrail/internal/config"
)

// Storage drivers.
const (
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - ctx: context for any initial bucket checks.
//   - cfg: storage configuration including driver, endpoint, and bucket.
//   - awsCfg: loaded AWS configuration used by the s3 driver.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(ctx context.Context, cfg config.StorageConfig, awsCfg aws.Config) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverS3:
		return NewS3Storage(awsCfg, &S3Config{
			Bucket:   cfg.Bucket,
			Endpoint: cfg.Endpoint,
		}), nil
	case DriverMinIO:
		s, err := NewMinIOStorage(ctx, &MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// normalizeEndpoint removes protocol prefix and path from endpoint
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}

	return strings.TrimSuffix(endpoint, "/")
}
