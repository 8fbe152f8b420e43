package seo

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL reduces raw user input to the canonical identity of a site:
// "scheme://host[:port]", lowercased. Path, query and fragment are
// discarded, so inputs differing only in those normalize to the same value.
// An explicitly supplied port is kept, even when it is the scheme default.
func NormalizeURL(rawInput string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawInput))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: scheme and host are required", ErrInvalidURL)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}
