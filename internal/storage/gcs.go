package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSConfig encapsulates the connection info for Google Cloud Storage.
// With an empty CredentialsFile the client falls back to application
// default credentials.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string
}

// GCSClient implements ObjectStorage for Google Cloud Storage.
type GCSClient struct {
	client *gstorage.Client
	bucket string
}

func NewGCSClient(ctx context.Context, cfg GCSConfig) (*GCSClient, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("building gcs client: %w", err)
	}

	return &GCSClient{client: client, bucket: cfg.Bucket}, nil
}

// ListObjects lists all objects under the given prefix.
func (c *GCSClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	it := c.client.Bucket(c.bucket).Objects(ctx, &gstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", c.bucket, err)
		}
		results = append(results, ObjectInfo{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
		})
	}
	return results, nil
}

// GetObject downloads an object's full body.
func (c *GCSClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	r, err := c.client.Bucket(c.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// PutObject writes a new object under the given key.
func (c *GCSClient) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	w := c.client.Bucket(c.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client connections.
func (c *GCSClient) Close() error {
	return c.client.Close()
}

var _ ObjectStorage = (*GCSClient)(nil)
