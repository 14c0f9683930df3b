// Package download streams stored book files and cover images.
package download

import (
	"context"
	"errors"

	"github.com/shelf/service/internal/storage"
)

// Service resolves blob names to readable streams.
type Service struct {
	store   storage.Storage
	buckets storage.Buckets
}

// NewService creates a new download Service.
func NewService(store storage.Storage, buckets storage.Buckets) *Service {
	return &Service{store: store, buckets: buckets}
}

// Cover opens a cover image by blob name. The caller must close the blob.
func (s *Service) Cover(ctx context.Context, name string) (*storage.Blob, error) {
	return s.StreamBlob(ctx, s.buckets.Covers, name)
}

// Book opens a book file by blob name. The caller must close the blob.
func (s *Service) Book(ctx context.Context, name string) (*storage.Blob, error) {
	return s.StreamBlob(ctx, s.buckets.Books, name)
}

// StreamBlob opens bucket/name. Missing objects yield storage.ErrNotFound.
func (s *Service) StreamBlob(ctx context.Context, bucket, name string) (*storage.Blob, error) {
	if name == "" {
		return nil, storage.ErrNotFound
	}
	return s.store.Get(ctx, bucket, name)
}

// IsNotFound returns true when the error indicates a missing blob.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
