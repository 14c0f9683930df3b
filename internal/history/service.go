package history

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidProgress is returned for negative page counts.
var ErrInvalidProgress = errors.New("readPages must not be negative")

// ErrIDConflict is returned when a new record's id already belongs to another book.
var ErrIDConflict = errors.New("history id already in use")

// Store persists reading progress.
type Store interface {
	Upsert(ctx context.Context, rec *Record) (bool, error)
	List(ctx context.Context) ([]BookHistory, error)
}

// Progress is a client progress report.
type Progress struct {
	ID        string
	BookID    string
	ReadPages int64
}

// Service is the sole writer of reading-history records.
type Service struct {
	repo Store
	now  func() time.Time
}

// NewService creates a new history Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Upsert records progress for p.BookID. Reports for unknown books are dropped
// without error; the returned bool tells whether a record was written.
func (s *Service) Upsert(ctx context.Context, p Progress) (bool, error) {
	if p.ReadPages < 0 {
		return false, ErrInvalidProgress
	}
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	applied, err := s.repo.Upsert(ctx, &Record{
		ID:        id,
		BookID:    p.BookID,
		ReadPages: p.ReadPages,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return false, err
	}
	if !applied {
		log.Printf("history: ignoring progress for unknown book %q", p.BookID)
	}
	return applied, nil
}

// List returns every book with recorded progress.
func (s *Service) List(ctx context.Context) ([]BookHistory, error) {
	return s.repo.List(ctx)
}
