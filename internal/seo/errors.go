package seo

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the normalizer and stores. Callers classify
// them with errors.Is; anything else from a store is a durability failure.
var (
	// ErrInvalidURL marks input that cannot be normalized into a
	// canonical URL (unparseable, or missing scheme/host).
	ErrInvalidURL = errors.New("invalid url")

	// ErrNotFound is returned when a referenced URL or check does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when creating a URL whose name already exists.
	ErrConflict = errors.New("already exists")
)

// FetchError reports a network-level failure reaching the target. It is
// never produced for non-2xx HTTP statuses, which are valid fetch results.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
