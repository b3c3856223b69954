package fetcher

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/recipescrape/internal/logger"
)

// DefaultRequireSelector marks a page that already carries recipe markup.
const DefaultRequireSelector = `h1[itemprop="name"]`

// spaMarkers are empty mount points left by client-side frameworks.
var spaMarkers = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<app-root></app-root>`,
	`<div id="__next"></div>`,
	`<div id="__nuxt"></div>`,
}

// AutoFetcher tries a cheap static fetch first and re-fetches through the
// browser when the static markup lacks the required element or is an empty
// single-page-app shell.
type AutoFetcher struct {
	static          Fetcher
	dynamic         Fetcher
	requireSelector string
}

// NewAuto combines a static and a dynamic fetcher. An empty requireSelector
// uses DefaultRequireSelector.
func NewAuto(static, dynamic Fetcher, requireSelector string) *AutoFetcher {
	if requireSelector == "" {
		requireSelector = DefaultRequireSelector
	}
	return &AutoFetcher{static: static, dynamic: dynamic, requireSelector: requireSelector}
}

// RequireSelector returns the selector that marks complete static markup.
func (f *AutoFetcher) RequireSelector() string {
	return f.requireSelector
}

// Fetch retrieves url statically, falling back to the dynamic fetcher.
func (f *AutoFetcher) Fetch(ctx context.Context, url string, opts Options) (Content, error) {
	content, err := f.static.Fetch(ctx, url, opts)
	if err != nil {
		if ctx.Err() != nil {
			return content, err
		}
		logger.Debug("static fetch failed, using browser", "url", url, "error", err)
		return f.dynamic.Fetch(ctx, url, opts)
	}
	if f.needsRender(content.HTML) {
		logger.Debug("static markup incomplete, using browser", "url", url, "page_title", content.Title)
		return f.dynamic.Fetch(ctx, url, opts)
	}
	return content, nil
}

func (f *AutoFetcher) needsRender(html string) bool {
	lower := strings.ToLower(html)
	for _, marker := range spaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return true
	}
	return doc.Find(f.requireSelector).Length() == 0
}

// Close releases both fetchers.
func (f *AutoFetcher) Close() error {
	errStatic := f.static.Close()
	if err := f.dynamic.Close(); err != nil {
		return err
	}
	return errStatic
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return "auto"
}
