// Package reconcile removes blobs that no catalog entry references. Such
// orphans are left behind when an upload overwrites a name, when a failed
// upload's compensation could not delete its staged blobs, or when the
// process dies between the blob and catalog writes.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shelf/service/internal/book"
	"github.com/shelf/service/internal/storage"
)

// RefSource lists the blob names the catalog points at.
type RefSource interface {
	BlobRefs(ctx context.Context) (*book.BlobRefs, error)
}

// Observer receives sweep telemetry.
type Observer interface {
	OrphansRemoved(n int)
}

type nopObserver struct{}

func (nopObserver) OrphansRemoved(int) {}

// Sweeper deletes unreferenced blobs older than a grace period, either on
// demand or on a cron schedule.
type Sweeper struct {
	store   storage.Storage
	refs    RefSource
	buckets storage.Buckets
	grace   time.Duration
	now     func() time.Time
	obs     Observer

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	ctx     context.Context
}

// NewSweeper creates a Sweeper. Blobs modified within grace are never removed,
// which keeps in-flight uploads safe.
func NewSweeper(store storage.Storage, refs RefSource, buckets storage.Buckets, grace time.Duration) *Sweeper {
	return &Sweeper{
		store:   store,
		refs:    refs,
		buckets: buckets,
		grace:   grace,
		now:     time.Now,
		obs:     nopObserver{},
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// SetObserver installs o as the telemetry sink.
func (s *Sweeper) SetObserver(o Observer) {
	s.obs = o
}

// Sweep runs one reconciliation pass and returns the number of deleted blobs.
// Buckets are listed before the catalog refs are loaded, so an upload that
// commits during the listing is seen as a reference. Each candidate is
// stat'ed again right before deletion and skipped if it was rewritten
// within the grace period. Individual failures are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.grace)

	type candidate struct {
		bucket string
		name   string
	}
	var candidates []candidate
	seen := map[string]bool{}
	for _, bucket := range s.buckets.All() {
		if seen[bucket] {
			continue
		}
		seen[bucket] = true

		objects, err := s.store.List(ctx, bucket)
		if err != nil {
			return 0, fmt.Errorf("list %s: %w", bucket, err)
		}
		for _, obj := range objects {
			if !obj.LastModified.After(cutoff) {
				candidates = append(candidates, candidate{bucket: bucket, name: obj.Name})
			}
		}
	}

	refs, err := s.refs.BlobRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("load blob refs: %w", err)
	}

	keep := map[string]map[string]bool{}
	mark := func(bucket string, names []string) {
		if keep[bucket] == nil {
			keep[bucket] = map[string]bool{}
		}
		for _, n := range names {
			keep[bucket][n] = true
		}
	}
	mark(s.buckets.Books, refs.Locations)
	mark(s.buckets.Covers, refs.Images)

	deleted := 0
	defer func() { s.obs.OrphansRemoved(deleted) }()

	for _, c := range candidates {
		if keep[c.bucket][c.name] {
			continue
		}
		info, err := s.store.Stat(ctx, c.bucket, c.name)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				log.Printf("reconcile: stat %s/%s: %v", c.bucket, c.name, err)
			}
			continue
		}
		if info.LastModified.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, c.bucket, c.name); err != nil {
			log.Printf("reconcile: delete %s/%s: %v", c.bucket, c.name, err)
			continue
		}
		log.Printf("reconcile: removed orphan %s/%s", c.bucket, c.name)
		deleted++
	}
	return deleted, nil
}

// Start schedules Sweep. An empty schedule leaves the sweeper disabled.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if schedule == "" {
		log.Printf("reconcile: orphan sweeper disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.ctx = ctx
	s.cron.Start()
	s.running = true
	log.Printf("reconcile: orphan sweeper started with schedule %q (grace %s)", schedule, s.grace)
	return nil
}

// Stop waits for a running sweep to finish and stops the schedule.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Printf("reconcile: orphan sweeper stopped")
}

func (s *Sweeper) runScheduled() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	n, err := s.Sweep(ctx)
	if err != nil {
		log.Printf("reconcile: sweep failed after %d deletions: %v", n, err)
		return
	}
	log.Printf("reconcile: sweep complete, %d orphan(s) removed", n)
}
