package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mirrors the repository's insert-or-update semantics in memory.
type memStore struct {
	mu     sync.Mutex
	books  map[string]bool
	byBook map[string]*Record
	err    error
}

func newMemStore(bookIDs ...string) *memStore {
	m := &memStore{books: map[string]bool{}, byBook: map[string]*Record{}}
	for _, id := range bookIDs {
		m.books[id] = true
	}
	return m
}

func (m *memStore) Upsert(_ context.Context, rec *Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if !m.books[rec.BookID] {
		return false, nil
	}
	if existing, ok := m.byBook[rec.BookID]; ok {
		existing.ReadPages = rec.ReadPages
		existing.UpdatedAt = rec.UpdatedAt
		return true, nil
	}
	for _, r := range m.byBook {
		if r.ID == rec.ID {
			return false, ErrIDConflict
		}
	}
	cp := *rec
	m.byBook[rec.BookID] = &cp
	return true, nil
}

func (m *memStore) List(context.Context) ([]BookHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []BookHistory{}
	for bookID, r := range m.byBook {
		out = append(out, BookHistory{BookID: bookID, ReadPages: r.ReadPages})
	}
	return out, nil
}

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestService_Upsert_CreatesThenUpdatesSameRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemStore("b-1")
	svc := NewService(store)
	t1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(10 * time.Minute)
	svc.now = fixedClock(t1, t2)

	applied, err := svc.Upsert(ctx, Progress{ID: "session-a", BookID: "b-1", ReadPages: 10})
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, store.byBook, 1)
	assert.Equal(t, "session-a", store.byBook["b-1"].ID)
	assert.Equal(t, t1, store.byBook["b-1"].UpdatedAt)

	// a later report from a different session updates the existing record
	applied, err = svc.Upsert(ctx, Progress{ID: "session-b", BookID: "b-1", ReadPages: 25})
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, store.byBook, 1)
	rec := store.byBook["b-1"]
	assert.Equal(t, "session-a", rec.ID)
	assert.Equal(t, int64(25), rec.ReadPages)
	assert.Equal(t, t2, rec.UpdatedAt)
}

func TestService_Upsert_UnknownBookIsNoop(t *testing.T) {
	store := newMemStore("b-1")
	svc := NewService(store)

	applied, err := svc.Upsert(context.Background(), Progress{ID: "s", BookID: "ghost", ReadPages: 3})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, store.byBook)
}

func TestService_Upsert_RejectsNegativePages(t *testing.T) {
	store := newMemStore("b-1")
	svc := NewService(store)

	_, err := svc.Upsert(context.Background(), Progress{ID: "s", BookID: "b-1", ReadPages: -1})
	assert.ErrorIs(t, err, ErrInvalidProgress)
	assert.Empty(t, store.byBook)
}

func TestService_Upsert_GeneratesIDWhenBlank(t *testing.T) {
	store := newMemStore("b-1")
	svc := NewService(store)

	_, err := svc.Upsert(context.Background(), Progress{BookID: "b-1", ReadPages: 1})
	require.NoError(t, err)

	id := store.byBook["b-1"].ID
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr, "generated id %q", id)
}

func TestService_Upsert_PropagatesStoreErrors(t *testing.T) {
	store := newMemStore("b-1")
	store.err = errors.New("db down")
	svc := NewService(store)

	_, err := svc.Upsert(context.Background(), Progress{ID: "s", BookID: "b-1", ReadPages: 1})
	assert.EqualError(t, err, "db down")
}

func TestService_Upsert_ConcurrentReportsKeepOneRecord(t *testing.T) {
	store := newMemStore("b-1")
	svc := NewService(store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Upsert(context.Background(), Progress{ID: uuid.NewString(), BookID: "b-1", ReadPages: int64(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.byBook, 1)
}
