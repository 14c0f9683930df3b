// Package book owns the catalog: catalog entries, their content records and
// the read-side projections served to the frontend.
package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no catalog entry matches a lookup.
var ErrNotFound = errors.New("book not found")

// Entry is the descriptive catalog record for a book.
type Entry struct {
	ID         string
	Title      string
	Author     string
	Publisher  string
	PubDate    *time.Time
	TotalPages int64
	Language   string
	Image      string // cover blob name, empty when no cover was uploaded
	Location   string // book blob name
}

// Content links a catalog entry to its stored file type and ingestion time.
// It shares the entry's identifier.
type Content struct {
	ID        string
	FileType  string
	CreatedAt time.Time
	BookID    string
}

// Detail is the fully joined view of a single book.
type Detail struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Publisher  string `json:"publisher"`
	PubDate    *Date  `json:"pubDate"`
	TotalPages int64  `json:"totalPages"`
	Language   string `json:"language"`
	FileType   string `json:"fileType"`
	ReadPages  int64  `json:"readPages"`
	Image      string `json:"image"`
	Location   string `json:"location"`
}

// Summary is the listing view of a catalog entry.
type Summary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Publisher  string `json:"publisher"`
	Language   string `json:"language"`
	TotalPages int64  `json:"totalPages"`
	Image      string `json:"image"`
}

// Search entry types, in the order they are returned.
const (
	SearchTypeBook      = "book"
	SearchTypeAuthor    = "author"
	SearchTypePublisher = "publisher"
)

// SearchItem is one entry of the search dropdown.
type SearchItem struct {
	Type string `json:"type"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// BlobKind selects which catalog column a blob name is matched against.
type BlobKind int

const (
	BlobBook  BlobKind = iota // catalog_entries.location
	BlobCover                 // catalog_entries.image
)

// BlobRefs lists the blob names catalog entries point at.
type BlobRefs struct {
	Images    []string
	Locations []string
}
