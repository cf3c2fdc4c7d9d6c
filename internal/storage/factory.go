package storage

import (
	"context"
	"fmt"

	"github.com/hab-telemetry/rockblock-receiver/internal/config"
)

// NewFromConfig builds the ObjectStorage backend selected by configuration.
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case "s3", "minio":
		return NewS3Client(S3Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case "gcs":
		return NewGCSClient(ctx, GCSConfig{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
