// Package memory provides an in-memory seo.Store for development/testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pagewatch/internal/seo"
)

// Store keeps URLs and checks in process memory. It enforces the same
// contracts as the Postgres store: unique names, existing-URL checks,
// append-only records, store-assigned ids and timestamps.
type Store struct {
	mu          sync.RWMutex
	clock       seo.Clock
	urls        map[int64]seo.URL
	byName      map[string]int64
	checks      map[int64][]seo.Check
	nextURLID   int64
	nextCheckID int64
}

// NewStore constructs a Store.
func NewStore(clock seo.Clock) *Store {
	return &Store{
		clock:  clock,
		urls:   make(map[int64]seo.URL),
		byName: make(map[string]int64),
		checks: make(map[int64][]seo.Check),
	}
}

// CreateURL registers a new URL name.
func (s *Store) CreateURL(_ context.Context, name string) (seo.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; exists {
		return seo.URL{}, fmt.Errorf("url %q: %w", name, seo.ErrConflict)
	}
	s.nextURLID++
	rec := seo.URL{
		ID:        s.nextURLID,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	s.urls[rec.ID] = rec
	s.byName[name] = rec.ID
	return rec, nil
}

// GetURL fetches a URL by id.
func (s *Store) GetURL(_ context.Context, id int64) (seo.URL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.urls[id]
	if !ok {
		return seo.URL{}, seo.ErrNotFound
	}
	return rec, nil
}

// GetURLByName fetches a URL by its canonical name.
func (s *Store) GetURLByName(_ context.Context, name string) (seo.URL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return seo.URL{}, seo.ErrNotFound
	}
	return s.urls[id], nil
}

// ListURLs returns all URLs by id ascending with latest-check projections.
func (s *Store) ListURLs(_ context.Context) ([]seo.URL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]seo.URL, 0, len(s.urls))
	for id, rec := range s.urls {
		if checks := s.checks[id]; len(checks) > 0 {
			latest := checks[len(checks)-1]
			rec.LastCheck = &latest
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateCheck appends a check for an existing URL.
func (s *Store) CreateCheck(_ context.Context, check seo.Check) (seo.Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[check.URLID]; !ok {
		return seo.Check{}, fmt.Errorf("url id %d: %w", check.URLID, seo.ErrNotFound)
	}
	s.nextCheckID++
	check.ID = s.nextCheckID
	check.CreatedAt = s.clock.Now()
	s.checks[check.URLID] = append(s.checks[check.URLID], check)
	return check, nil
}

// ListChecks returns all checks for a URL, newest first.
func (s *Store) ListChecks(_ context.Context, urlID int64) ([]seo.Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checks := s.checks[urlID]
	out := make([]seo.Check, 0, len(checks))
	for i := len(checks) - 1; i >= 0; i-- {
		out = append(out, checks[i])
	}
	return out, nil
}

// LatestCheck returns the most recent check for a URL.
func (s *Store) LatestCheck(_ context.Context, urlID int64) (seo.Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checks := s.checks[urlID]
	if len(checks) == 0 {
		return seo.Check{}, seo.ErrNotFound
	}
	return checks[len(checks)-1], nil
}

// LatestChecks returns the most recent check per URL.
func (s *Store) LatestChecks(_ context.Context) (map[int64]seo.Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]seo.Check, len(s.checks))
	for urlID, checks := range s.checks {
		if len(checks) > 0 {
			out[urlID] = checks[len(checks)-1]
		}
	}
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}
