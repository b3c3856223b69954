package sources

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/pkg/fetcher"
)

// Expander turns index pages into the recipe links they list.
type Expander struct {
	Fetcher  fetcher.Fetcher
	Links    *LinkSelector
	Next     *PaginationSelector // optional
	MaxPages int                 // per index, including the first; 0 means 1
	Delay    time.Duration       // minimum gap between index fetches
	Options  fetcher.Options
}

// Expand fetches each index URL in order and appends the recipe links found
// to a new list. An index that cannot be fetched is logged and skipped; only
// context cancellation aborts the walk.
func (e *Expander) Expand(ctx context.Context, indexURLs []string) (*List, error) {
	list := NewList()
	maxPages := max(e.MaxPages, 1)

	limit := rate.Inf
	if e.Delay > 0 {
		limit = rate.Every(e.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for _, index := range indexURLs {
		page := index
		visited := map[string]bool{}
		for n := 0; n < maxPages && page != "" && !visited[page]; n++ {
			if err := ctx.Err(); err != nil {
				return list, err
			}
			visited[page] = true

			if err := limiter.Wait(ctx); err != nil {
				return list, err
			}
			content, err := e.Fetcher.Fetch(ctx, page, e.Options)
			if err != nil {
				if ctx.Err() != nil {
					return list, ctx.Err()
				}
				logger.WarnContext(ctx, "index page skipped", "url", page, "error", err)
				break
			}

			links, err := e.Links.ExtractLinks(content.HTML, page)
			if err != nil {
				logger.WarnContext(ctx, "index page unreadable", "url", page, "error", err)
				break
			}
			added := 0
			for _, link := range links {
				ok, err := list.Add(link)
				if err != nil {
					logger.DebugContext(ctx, "link ignored", "url", link, "error", err)
					continue
				}
				if ok {
					added++
				}
			}
			logger.InfoContext(ctx, "index page expanded", "url", page, "found", len(links), "added", added)

			page, _ = e.Next.FindNextPage(content.HTML, page)
		}
	}
	return list, nil
}

// Collect merges a links file (optional) and explicit URLs into one
// deduplicated list, file entries first.
func Collect(linksFile string, urls []string) (*List, error) {
	var entries []string
	if linksFile != "" {
		fromFile, err := LoadFile(linksFile)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}
	entries = append(entries, urls...)

	list := NewList()
	for _, entry := range entries {
		if _, err := list.Add(entry); err != nil {
			return nil, fmt.Errorf("source %q: %w", entry, err)
		}
	}
	return list, nil
}
