package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client *minio.Client
}

// NewMinioStorage creates a MinIO client. Buckets are not touched until
// EnsureBucket is called.
func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStorage{client: client}, nil
}

// EnsureBucket checks for the bucket and creates it when absent. A concurrent
// creator winning the race is not an error.
func (s *MinioStorage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		if isBucketOwned(err) {
			return nil
		}
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	log.Printf("storage: created bucket %q", bucket)
	return nil
}

// Put streams reader to MinIO under name. size must be the exact byte count
// (pass -1 only if the size is genuinely unknown; MinIO will buffer it).
func (s *MinioStorage) Put(ctx context.Context, bucket, name string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", bucket, name, err)
	}
	return nil
}

// Get opens the object for streaming. GetObject itself is lazy, so the object
// is stat'ed first to surface a missing key before any bytes are written.
func (s *MinioStorage) Get(ctx context.Context, bucket, name string) (*Blob, error) {
	obj, err := s.client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, objectError(bucket, name, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, objectError(bucket, name, err)
	}
	return &Blob{ReadCloser: obj, Size: info.Size, ContentType: info.ContentType}, nil
}

// Stat reads the object's metadata.
func (s *MinioStorage) Stat(ctx context.Context, bucket, name string) (*ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{})
	if err != nil {
		return nil, objectError(bucket, name, err)
	}
	return &ObjectInfo{Name: info.Key, Size: info.Size, LastModified: info.LastModified}, nil
}

// Delete removes the object from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, bucket, name string) error {
	if err := s.client.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, name, err)
	}
	return nil
}

// List walks the bucket recursively.
func (s *MinioStorage) List(ctx context.Context, bucket string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, objectError(bucket, "", obj.Err)
		}
		out = append(out, ObjectInfo{Name: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

func objectError(bucket, name string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s/%s: %w", bucket, name, ErrNotFound)
	}
	return fmt.Errorf("object store %s/%s: %w", bucket, name, err)
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}

func isBucketOwned(err error) bool {
	return minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou"
}
