package book

import (
	"context"
	"errors"
	"fmt"
)

// Store is the catalog read model the service depends on.
type Store interface {
	FindByTitle(ctx context.Context, title string) (*Detail, error)
	ListSummaries(ctx context.Context) ([]Summary, error)
	SearchTitles(ctx context.Context) ([]SearchItem, error)
	SearchAuthors(ctx context.Context) ([]SearchItem, error)
	SearchPublishers(ctx context.Context) ([]SearchItem, error)
}

// Service resolves catalog lookups for the HTTP layer.
type Service struct {
	repo Store
}

// NewService creates a new book Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// FindByTitle returns the book whose title matches exactly (case-sensitive).
func (s *Service) FindByTitle(ctx context.Context, title string) (*Detail, error) {
	return s.repo.FindByTitle(ctx, title)
}

// ListBooks returns a summary of every catalog entry.
func (s *Service) ListBooks(ctx context.Context) ([]Summary, error) {
	return s.repo.ListSummaries(ctx)
}

// SearchList returns book titles, then distinct authors, then distinct publishers.
func (s *Service) SearchList(ctx context.Context) ([]SearchItem, error) {
	groups := []struct {
		kind  string
		fetch func(context.Context) ([]SearchItem, error)
	}{
		{SearchTypeBook, s.repo.SearchTitles},
		{SearchTypeAuthor, s.repo.SearchAuthors},
		{SearchTypePublisher, s.repo.SearchPublishers},
	}

	out := []SearchItem{}
	for _, g := range groups {
		items, err := g.fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", g.kind, err)
		}
		for _, item := range items {
			item.Type = g.kind
			out = append(out, item)
		}
	}
	return out, nil
}

// IsNotFound returns true when the error indicates a book was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
