// Package history tracks per-book reading progress.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/shelf/service/internal/db"
)

// Record is a reading-progress record. At most one exists per book.
type Record struct {
	ID        string
	BookID    string
	ReadPages int64
	UpdatedAt time.Time
}

// BookHistory is the home-page view of a book with recorded progress.
type BookHistory struct {
	BookID     string `json:"bookId"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Publisher  string `json:"publisher"`
	TotalPages int64  `json:"totalPages"`
	Image      string `json:"image"`
	ReadPages  int64  `json:"readPages"`
}

// Repository handles reading-history persistence.
type Repository struct {
	db db.Pool
}

// NewRepository creates a new history Repository.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{db: pool}
}

// Upsert inserts a record for rec.BookID or, when one exists, overwrites its
// page count and timestamp while keeping the stored id. The insert selects
// from catalog_entries, so an unknown book writes nothing and reports false.
func (r *Repository) Upsert(ctx context.Context, rec *Record) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO reading_history (id, book_id, read_pages, updated_at)
		 SELECT $1::text, bd.id, $3::bigint, $4::timestamptz
		 FROM catalog_entries bd
		 WHERE bd.id = $2
		 ON CONFLICT (book_id) DO UPDATE SET
		   read_pages = EXCLUDED.read_pages,
		   updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.BookID, rec.ReadPages, rec.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return false, ErrIDConflict
		}
		return false, fmt.Errorf("upsert reading history: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns progress joined with catalog data, most recently read first.
func (r *Repository) List(ctx context.Context) ([]BookHistory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.title, b.author, b.publisher, b.total_pages, b.image, h.read_pages
		 FROM reading_history h
		 JOIN catalog_entries b ON b.id = h.book_id
		 ORDER BY h.updated_at DESC, b.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reading history: %w", err)
	}
	defer rows.Close()

	out := []BookHistory{}
	for rows.Next() {
		var h BookHistory
		if err := rows.Scan(&h.BookID, &h.Title, &h.Author, &h.Publisher, &h.TotalPages, &h.Image, &h.ReadPages); err != nil {
			return nil, fmt.Errorf("scan reading history: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reading history: %w", err)
	}
	return out, nil
}
