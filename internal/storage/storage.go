// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a bucket or object does not exist.
var ErrNotFound = errors.New("object not found")

// Blob is a lazily-read object body. The caller must Close it.
type Blob struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	Name         string
	Size         int64
	LastModified time.Time
}

// Storage is the interface for storing and retrieving named blobs in buckets.
// Object identity is the caller-supplied name; Put overwrites.
type Storage interface {
	// EnsureBucket creates the bucket if it does not exist.
	EnsureBucket(ctx context.Context, bucket string) error
	// Put streams data to the bucket under name. size must be the exact byte count or -1.
	Put(ctx context.Context, bucket, name string, reader io.Reader, size int64, contentType string) error
	// Get opens the named object. Missing objects yield ErrNotFound.
	Get(ctx context.Context, bucket, name string) (*Blob, error)
	// Stat describes the named object without opening it. Missing objects yield ErrNotFound.
	Stat(ctx context.Context, bucket, name string) (*ObjectInfo, error)
	// Delete removes the named object. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, name string) error
	// List returns every object in the bucket.
	List(ctx context.Context, bucket string) ([]ObjectInfo, error)
}

// Buckets names the two logical buckets used by the service.
type Buckets struct {
	Books  string
	Covers string
}

// All returns both bucket names, books first.
func (b Buckets) All() []string {
	return []string{b.Books, b.Covers}
}

// EnsureAll creates every bucket in b that is missing.
func EnsureAll(ctx context.Context, s Storage, b Buckets) error {
	for _, name := range b.All() {
		if err := s.EnsureBucket(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
