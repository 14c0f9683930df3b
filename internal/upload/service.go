// Package upload ingests a book: blobs go to object storage first, then the
// catalog entry and content record are committed together.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shelf/service/internal/book"
	"github.com/shelf/service/internal/storage"
)

// ErrInvalidPayload is returned when the metadata or files of an upload are unusable.
var ErrInvalidPayload = errors.New("invalid upload payload")

// CatalogWriter persists a catalog entry together with its content record.
// Referenced tells compensation whether a committed entry still points at a
// blob name.
type CatalogWriter interface {
	SaveWithContent(ctx context.Context, e *book.Entry, c *book.Content) error
	Referenced(ctx context.Context, kind book.BlobKind, name string) (bool, error)
}

// File is one uploaded file part.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// Request is a decoded upload: the book file, an optional cover and the raw
// JSON metadata.
type Request struct {
	Book     File
	Cover    *File
	Metadata []byte
}

// Metadata is the JSON document sent alongside the files.
type Metadata struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Publisher  string    `json:"publisher"`
	PubDate    book.Date `json:"pubDate"`
	Language   string    `json:"language"`
	TotalPages int64     `json:"totalPages"`
	FileType   string    `json:"fileType"`
	DateTime   book.Date `json:"dateTime"`
}

type stagedBlob struct {
	kind   book.BlobKind
	bucket string
	name   string
}

// Upload results reported to the Observer.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultFailed  = "failed"
)

// Observer receives upload telemetry.
type Observer interface {
	ObserveUpload(result string)
	BlobCompensated(bucket string)
}

type nopObserver struct{}

func (nopObserver) ObserveUpload(string)   {}
func (nopObserver) BlobCompensated(string) {}

// Service coordinates the object store and catalog writes of an upload.
type Service struct {
	books   CatalogWriter
	store   storage.Storage
	buckets storage.Buckets
	now     func() time.Time
	obs     Observer
}

// NewService creates a new upload Service.
func NewService(books CatalogWriter, store storage.Storage, buckets storage.Buckets) *Service {
	return &Service{books: books, store: store, buckets: buckets, now: time.Now, obs: nopObserver{}}
}

// SetObserver installs o as the telemetry sink.
func (s *Service) SetObserver(o Observer) {
	s.obs = o
}

// Upload stores the files under their original names and then commits the
// catalog rows in one transaction. If a later step fails, blobs written by
// this call are removed again. A repeated id overwrites the previous entry.
func (s *Service) Upload(ctx context.Context, req Request) error {
	err := s.ingest(ctx, req)
	switch {
	case err == nil:
		s.obs.ObserveUpload(ResultOK)
	case errors.Is(err, ErrInvalidPayload):
		s.obs.ObserveUpload(ResultInvalid)
	default:
		s.obs.ObserveUpload(ResultFailed)
	}
	return err
}

func (s *Service) ingest(ctx context.Context, req Request) error {
	meta, err := DecodeMetadata(req.Metadata)
	if err != nil {
		return err
	}
	if req.Book.Name == "" || req.Book.Reader == nil {
		return fmt.Errorf("%w: book file is required", ErrInvalidPayload)
	}

	var staged []stagedBlob
	if err := s.put(ctx, book.BlobBook, s.buckets.Books, req.Book, &staged); err != nil {
		return fmt.Errorf("upload book file: %w", err)
	}

	image := ""
	if req.Cover != nil && req.Cover.Name != "" {
		if err := s.put(ctx, book.BlobCover, s.buckets.Covers, *req.Cover, &staged); err != nil {
			s.compensate(ctx, staged)
			return fmt.Errorf("upload cover file: %w", err)
		}
		image = req.Cover.Name
	}

	entry := &book.Entry{
		ID:         meta.ID,
		Title:      meta.Title,
		Author:     meta.Author,
		Publisher:  meta.Publisher,
		PubDate:    meta.PubDate.Ptr(),
		TotalPages: meta.TotalPages,
		Language:   meta.Language,
		Image:      image,
		Location:   req.Book.Name,
	}
	content := &book.Content{
		ID:        meta.ID,
		FileType:  meta.FileType,
		CreatedAt: s.now().UTC(),
		BookID:    meta.ID,
	}

	if err := s.books.SaveWithContent(ctx, entry, content); err != nil {
		s.compensate(ctx, staged)
		return fmt.Errorf("persist catalog entry %q: %w", meta.ID, err)
	}

	log.Printf("upload: stored book %q (location=%q image=%q)", meta.ID, entry.Location, entry.Image)
	return nil
}

// DecodeMetadata parses and validates the upload metadata document.
func DecodeMetadata(raw []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if meta.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidPayload)
	}
	return &meta, nil
}

func (s *Service) put(ctx context.Context, kind book.BlobKind, bucket string, f File, staged *[]stagedBlob) error {
	if err := s.store.Put(ctx, bucket, f.Name, f.Reader, f.Size, f.ContentType); err != nil {
		return err
	}
	*staged = append(*staged, stagedBlob{kind: kind, bucket: bucket, name: f.Name})
	return nil
}

// compensate deletes blobs staged by a failed upload. It runs even if the
// request context is already cancelled. A blob whose name a committed entry
// still references is kept, since the put replaced that entry's file in
// place. Failures are logged and left for the orphan sweeper.
func (s *Service) compensate(ctx context.Context, staged []stagedBlob) {
	ctx = context.WithoutCancel(ctx)
	for i := len(staged) - 1; i >= 0; i-- {
		b := staged[i]
		referenced, err := s.books.Referenced(ctx, b.kind, b.name)
		if err != nil {
			log.Printf("upload: compensation skipped for %s/%s: %v", b.bucket, b.name, err)
			continue
		}
		if referenced {
			log.Printf("upload: keeping %s/%s, still referenced by the catalog", b.bucket, b.name)
			continue
		}
		if err := s.store.Delete(ctx, b.bucket, b.name); err != nil {
			log.Printf("upload: compensation failed for %s/%s: %v", b.bucket, b.name, err)
			continue
		}
		s.obs.BlobCompensated(b.bucket)
		log.Printf("upload: removed staged blob %s/%s", b.bucket, b.name)
	}
}
