package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shelf/service/internal/db"
)

// Repository handles catalog persistence.
type Repository struct {
	db db.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{db: pool}
}

// SaveWithContent upserts a catalog entry and its content record in a single
// transaction. A repeated identifier overwrites both rows.
func (r *Repository) SaveWithContent(ctx context.Context, e *Entry, c *Content) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO catalog_entries (id, title, author, publisher, pub_date, total_pages, language, image, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   author = EXCLUDED.author,
		   publisher = EXCLUDED.publisher,
		   pub_date = EXCLUDED.pub_date,
		   total_pages = EXCLUDED.total_pages,
		   language = EXCLUDED.language,
		   image = EXCLUDED.image,
		   location = EXCLUDED.location`,
		e.ID, e.Title, e.Author, e.Publisher, e.PubDate, e.TotalPages, e.Language, e.Image, e.Location,
	)
	if err != nil {
		return fmt.Errorf("upsert catalog entry: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO book_contents (id, file_type, created_at, book_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
		   file_type = EXCLUDED.file_type,
		   created_at = EXCLUDED.created_at,
		   book_id = EXCLUDED.book_id`,
		c.ID, c.FileType, c.CreatedAt, c.BookID,
	)
	if err != nil {
		return fmt.Errorf("upsert content record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FindByTitle returns the joined view of the book with exactly this title.
// When several entries share a title the smallest id wins.
func (r *Repository) FindByTitle(ctx context.Context, title string) (*Detail, error) {
	d := &Detail{}
	var pub *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT bd.id, bd.title, bd.author, bd.publisher, bd.pub_date, bd.total_pages,
		        bd.language, b.file_type, COALESCE(h.read_pages, 0), bd.image, bd.location
		 FROM book_contents b
		 JOIN catalog_entries bd ON bd.id = b.book_id
		 LEFT JOIN reading_history h ON h.book_id = bd.id
		 WHERE bd.title = $1
		 ORDER BY bd.id
		 LIMIT 1`,
		title,
	).Scan(&d.ID, &d.Title, &d.Author, &d.Publisher, &pub, &d.TotalPages,
		&d.Language, &d.FileType, &d.ReadPages, &d.Image, &d.Location)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book by title: %w", err)
	}
	d.PubDate = DateOf(pub)
	return d, nil
}

// ListSummaries returns every catalog entry ordered by title.
func (r *Repository) ListSummaries(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, author, publisher, language, total_pages, image
		 FROM catalog_entries
		 ORDER BY title, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.Author, &s.Publisher, &s.Language, &s.TotalPages, &s.Image); err != nil {
			return nil, fmt.Errorf("scan book summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

// SearchTitles returns (title, id) for every entry.
func (r *Repository) SearchTitles(ctx context.Context) ([]SearchItem, error) {
	return r.searchItems(ctx, SearchTypeBook,
		`SELECT title, id FROM catalog_entries ORDER BY title, id`)
}

// SearchAuthors returns each distinct author with the smallest id carrying it.
func (r *Repository) SearchAuthors(ctx context.Context) ([]SearchItem, error) {
	return r.searchItems(ctx, SearchTypeAuthor,
		`SELECT author, MIN(id) FROM catalog_entries GROUP BY author ORDER BY author`)
}

// SearchPublishers returns each distinct publisher with the smallest id carrying it.
func (r *Repository) SearchPublishers(ctx context.Context) ([]SearchItem, error) {
	return r.searchItems(ctx, SearchTypePublisher,
		`SELECT publisher, MIN(id) FROM catalog_entries GROUP BY publisher ORDER BY publisher`)
}

func (r *Repository) searchItems(ctx context.Context, kind, query string) ([]SearchItem, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	defer rows.Close()

	out := []SearchItem{}
	for rows.Next() {
		item := SearchItem{Type: kind}
		if err := rows.Scan(&item.Name, &item.ID); err != nil {
			return nil, fmt.Errorf("scan %s search item: %w", kind, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	return out, nil
}

// Referenced reports whether any committed catalog entry points at name.
func (r *Repository) Referenced(ctx context.Context, kind BlobKind, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM catalog_entries WHERE location = $1)`
	if kind == BlobCover {
		query = `SELECT EXISTS (SELECT 1 FROM catalog_entries WHERE image = $1)`
	}

	var found bool
	if err := r.db.QueryRow(ctx, query, name).Scan(&found); err != nil {
		return false, fmt.Errorf("check blob reference %q: %w", name, err)
	}
	return found, nil
}

// BlobRefs returns every cover and book blob name referenced by the catalog.
func (r *Repository) BlobRefs(ctx context.Context) (*BlobRefs, error) {
	rows, err := r.db.Query(ctx, `SELECT image, location FROM catalog_entries`)
	if err != nil {
		return nil, fmt.Errorf("list blob refs: %w", err)
	}
	defer rows.Close()

	refs := &BlobRefs{}
	for rows.Next() {
		var image, location string
		if err := rows.Scan(&image, &location); err != nil {
			return nil, fmt.Errorf("scan blob refs: %w", err)
		}
		if image != "" {
			refs.Images = append(refs.Images, image)
		}
		refs.Locations = append(refs.Locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blob refs: %w", err)
	}
	return refs, nil
}
