package seo

import (
	"errors"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "https://example.com", want: "https://example.com"},
		{name: "strips path", input: "https://example.com/path/to/page", want: "https://example.com"},
		{name: "strips query and fragment", input: "https://example.com/a/b?q=1#frag", want: "https://example.com"},
		{name: "lowercases host", input: "https://EXAMPLE.com", want: "https://example.com"},
		{name: "lowercases scheme", input: "HTTPS://example.com", want: "https://example.com"},
		{name: "keeps explicit port", input: "https://EX.com:443/a/b?q=1", want: "https://ex.com:443"},
		{name: "keeps custom port", input: "http://localhost:7070/urls", want: "http://localhost:7070"},
		{name: "trims whitespace", input: "  https://example.com  ", want: "https://example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tt.input)
			if err != nil {
				t.Fatalf("NormalizeURL(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com/some/path?x=1",
		"HTTP://Example.COM:8080",
		"https://sub.domain.org#top",
	}
	for _, input := range inputs {
		once, err := NormalizeURL(input)
		if err != nil {
			t.Fatalf("NormalizeURL(%q) error = %v", input, err)
		}
		twice, err := NormalizeURL(once)
		if err != nil {
			t.Fatalf("NormalizeURL(%q) error = %v", once, err)
		}
		if once != twice {
			t.Fatalf("normalization not idempotent: %q -> %q -> %q", input, once, twice)
		}
	}
}

func TestNormalizeURLRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"not a url",
		"",
		"example.com",
		"/relative/path",
		"https://",
		"mailto:someone@example.com",
		"http://ex ample.com/%zz",
	}
	for _, input := range inputs {
		if _, err := NormalizeURL(input); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("NormalizeURL(%q) error = %v, want ErrInvalidURL", input, err)
		}
	}
}
