package storage

import (
	"context"
	"time"
)

// ObjectInfo represents metadata for a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage captures the minimal operations the receiver and the
// retrieval CLI need: write-once puts, full-body gets and prefix listing.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}
