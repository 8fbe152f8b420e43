package seo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AnalyzePage extracts SEO markers from an HTML body. Missing elements
// degrade to empty fields; malformed markup is parsed best-effort and
// never aborts a check. The meta description is matched on
// name="description" exactly, so name="Description" does not count.
func AnalyzePage(body []byte) (PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageMetadata{}, fmt.Errorf("parse html: %w", err)
	}

	meta := PageMetadata{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		H1:    strings.TrimSpace(doc.Find("h1").First().Text()),
	}
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta.Description = strings.TrimSpace(content)
	}
	return meta, nil
}
