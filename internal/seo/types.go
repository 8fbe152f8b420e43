// Package seo defines core types shared across subsystems.
package seo

import "time"

// URL represents a registered site identified by its canonical address.
type URL struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// LastCheck is the latest-check projection, populated at read time
	// by the store. Nil when the URL has never been checked.
	LastCheck *Check `json:"last_check,omitempty"`
}

// Check is one persisted fetch-and-extract result for a URL.
// Title, H1 and Description are empty strings when the corresponding
// element or attribute is absent from the page, never null.
type Check struct {
	ID          int64     `json:"id"`
	URLID       int64     `json:"url_id"`
	StatusCode  int       `json:"status_code"`
	Title       string    `json:"title"`
	H1          string    `json:"h1"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// PageMetadata holds the SEO markers extracted from a fetched page body.
type PageMetadata struct {
	Title       string
	H1          string
	Description string
}

// FetchResponse is the outcome of a successful outbound GET. Non-2xx
// statuses are still successful fetches and carry the response body.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}
