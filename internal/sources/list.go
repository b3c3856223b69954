// Package sources builds the ordered list of recipe pages to harvest.
package sources

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned for entries that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid recipe URL")

// List is an insertion-ordered set of page URLs.
type List struct {
	urls []string
	seen map[string]bool
}

// NewList creates an empty list.
func NewList() *List {
	return &List{seen: make(map[string]bool)}
}

// Add appends rawURL unless an equivalent URL is already present. It reports
// whether the URL was added. The URL is kept as given (trimmed); the
// normalized form is only used to detect duplicates.
func (l *List) Add(rawURL string) (bool, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return false, err
	}
	if l.seen[normalized] {
		return false, nil
	}
	l.seen[normalized] = true
	l.urls = append(l.urls, strings.TrimSpace(rawURL))
	return true, nil
}

// Contains reports whether an equivalent URL was added.
func (l *List) Contains(rawURL string) bool {
	normalized, err := NormalizeURL(rawURL)
	return err == nil && l.seen[normalized]
}

// URLs returns the URLs in insertion order.
func (l *List) URLs() []string {
	return append([]string(nil), l.urls...)
}

// Len returns the number of URLs.
func (l *List) Len() int {
	return len(l.urls)
}

// NormalizeURL canonicalizes a page URL for comparison: the fragment and a
// trailing path slash are removed and the host is lower-cased.
func NormalizeURL(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	parsed.Fragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	if len(parsed.Path) > 1 && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String(), nil
}

// IsSameDomain checks if two URLs are on the same host.
func IsSameDomain(url1, url2 string) bool {
	parsed1, err := url.Parse(url1)
	if err != nil {
		return false
	}
	parsed2, err := url.Parse(url2)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed1.Host, parsed2.Host)
}
