package seo

import (
	"context"
	"time"
)

// Store persists URLs and their checks. Both records are append-only:
// a URL's identity never changes after creation and checks are never
// updated or deleted. Implementations assign ids and creation timestamps.
type Store interface {
	// CreateURL inserts a new URL. Returns ErrConflict (possibly wrapped)
	// when the name is already registered.
	CreateURL(ctx context.Context, name string) (URL, error)
	// GetURL returns the URL with the given id, or ErrNotFound.
	GetURL(ctx context.Context, id int64) (URL, error)
	// GetURLByName returns the URL with the given canonical name, or ErrNotFound.
	GetURLByName(ctx context.Context, name string) (URL, error)
	// ListURLs returns all URLs ordered by id ascending, each with its
	// latest-check projection populated in the same query.
	ListURLs(ctx context.Context) ([]URL, error)

	// CreateCheck inserts a check for check.URLID. Returns ErrNotFound
	// when the URL does not exist.
	CreateCheck(ctx context.Context, check Check) (Check, error)
	// ListChecks returns all checks for a URL, newest first.
	ListChecks(ctx context.Context, urlID int64) ([]Check, error)
	// LatestCheck returns the most recent check for a URL, or ErrNotFound.
	LatestCheck(ctx context.Context, urlID int64) (Check, error)
	// LatestChecks returns the most recent check per URL in one bulk query.
	LatestChecks(ctx context.Context) (map[int64]Check, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
	// Close releases the store's resources.
	Close()
}

// Fetcher performs a single outbound GET against a canonical URL.
// Network-level failures yield a *FetchError; non-2xx statuses do not.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
