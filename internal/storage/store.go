package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store abstracts the bucket-scoped object store the catalog rows point at.
// RemoveObject is idempotent: removing an absent key is not an error.
type Store interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, key string) error
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignedGetWithFilename(ctx context.Context, key string, expiry time.Duration, filename, contentType string) (string, error)
}

// Default is the main object store instance.
var Default Store
