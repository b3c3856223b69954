package sources

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkSelector picks recipe links out of an index page.
type LinkSelector struct {
	CSSSelector string         // CSS selector for links to follow
	URLPattern  *regexp.Regexp // Regex pattern for URLs to match
	SameDomain  bool           // Drop links to other hosts
}

// NewLinkSelector creates a link selector.
func NewLinkSelector(cssSelector string, urlPattern string) (*LinkSelector, error) {
	ls := &LinkSelector{
		CSSSelector: cssSelector,
	}

	if urlPattern != "" {
		pattern, err := regexp.Compile(urlPattern)
		if err != nil {
			return nil, err
		}
		ls.URLPattern = pattern
	}

	return ls, nil
}

// ExtractLinks returns matching links from html resolved against baseURL, in
// document order without duplicates.
func (ls *LinkSelector) ExtractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	selector := ls.CSSSelector
	if selector == "" {
		selector = "a[href]"
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		link, ok := resolveHref(s, base)
		if !ok {
			return
		}
		if ls.URLPattern != nil && !ls.URLPattern.MatchString(link) {
			return
		}
		if ls.SameDomain && !IsSameDomain(link, baseURL) {
			return
		}
		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links, nil
}

// PaginationSelector finds the next index page.
type PaginationSelector struct {
	NextSelector string // CSS selector for "next" link
}

// FindNextPage finds the URL of the next page.
func (ps *PaginationSelector) FindNextPage(html string, baseURL string) (string, bool) {
	if ps == nil || ps.NextSelector == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}

	return resolveHref(doc.Find(ps.NextSelector).First(), base)
}

// resolveHref returns the absolute, fragment-free href of s.
func resolveHref(s *goquery.Selection, base *url.URL) (string, bool) {
	href, exists := s.Attr("href")
	href = strings.TrimSpace(href)
	if !exists || href == "" {
		return "", false
	}
	if strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", false
	}

	linkURL, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !linkURL.IsAbs() {
		linkURL = base.ResolveReference(linkURL)
	}
	linkURL.Fragment = ""
	return linkURL.String(), true
}
