// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shelf/service/internal/storage"
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Memory is a concurrency-safe in-memory object store. Fail hooks let tests
// inject errors per operation.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]map[string]object
	now     func() time.Time

	FailPut    func(bucket, name string) error
	FailDelete func(bucket, name string) error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{buckets: map[string]map[string]object{}, now: time.Now}
}

// SetClock overrides the timestamp recorded on Put.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = map[string]object{}
	}
	return nil
}

func (m *Memory) Put(_ context.Context, bucket, name string, reader io.Reader, _ int64, contentType string) error {
	if m.FailPut != nil {
		if err := m.FailPut(bucket, name); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("%s/%s: %w", bucket, name, storage.ErrNotFound)
	}
	b[name] = object{data: data, contentType: contentType, modified: m.now()}
	return nil
}

func (m *Memory) Get(_ context.Context, bucket, name string) (*storage.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, name, storage.ErrNotFound)
	}
	return &storage.Blob{
		ReadCloser:  io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
	}, nil
}

func (m *Memory) Stat(_ context.Context, bucket, name string) (*storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, name, storage.ErrNotFound)
	}
	return &storage.ObjectInfo{Name: name, Size: int64(len(obj.data)), LastModified: obj.modified}, nil
}

func (m *Memory) Delete(_ context.Context, bucket, name string) error {
	if m.FailDelete != nil {
		if err := m.FailDelete(bucket, name); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets[bucket], name)
	return nil
}

func (m *Memory) List(_ context.Context, bucket string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("%s: %w", bucket, storage.ErrNotFound)
	}
	out := make([]storage.ObjectInfo, 0, len(b))
	for name, obj := range b {
		out = append(out, storage.ObjectInfo{Name: name, Size: int64(len(obj.data)), LastModified: obj.modified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Content returns the stored bytes, or false when the object is missing.
func (m *Memory) Content(bucket, name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][name]
	return obj.data, ok
}

// Has reports whether the object exists.
func (m *Memory) Has(bucket, name string) bool {
	_, ok := m.Content(bucket, name)
	return ok
}

var _ storage.Storage = (*Memory)(nil)
