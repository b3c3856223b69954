package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/pkg/fetcher"
	"github.com/jmylchreest/recipescrape/pkg/recipe"
)

// Saver persists an assembled record and returns where it went.
type Saver interface {
	Save(r recipe.Recipe) (string, error)
}

// Result is the outcome for one page.
type Result struct {
	URL           string
	PageTitle     string // Document <title>, as reported by the fetcher
	Recipe        recipe.Recipe
	Path          string // Empty when no store is configured or saving failed
	Missing       []string
	FetchedAt     time.Time
	FetchDuration time.Duration
	Error         error
}

// Untitled reports whether the page was fetched and parsed but carried no
// recipe title. Such pages are skipped rather than failed.
func (r *Result) Untitled() bool {
	return !r.FetchedAt.IsZero() && !r.Recipe.HasTitle()
}

// Harvester fetches recipe pages, assembles records and stores them.
type Harvester struct {
	fetcher fetcher.Fetcher
	store   Saver
	config  Config
	limiter *rate.Limiter
	runID   string
	log     *slog.Logger
}

// New creates a harvester.
func New(opts ...Option) (*Harvester, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := cfg.Fetcher
	if f == nil {
		f = fetcher.NewStatic(fetcher.StaticConfig{
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.Timeout,
			MaxBodySize: cfg.MaxPageSize,
		})
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	runID := uuid.NewString()
	return &Harvester{
		fetcher: f,
		store:   cfg.Store,
		config:  cfg,
		limiter: rate.NewLimiter(limit, 1),
		runID:   runID,
		log:     logger.With("run", runID),
	}, nil
}

// RunID identifies this harvester's batch in logs.
func (h *Harvester) RunID() string {
	return h.runID
}

// Harvest fetches one page, assembles its record and saves it. Fetch and
// parse failures are returned as errors; a record that cannot be stored is
// returned together with the store error.
func (h *Harvester) Harvest(ctx context.Context, url string) (*Result, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := h.fetcher.Fetch(ctx, url, h.config.fetchOptions())
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	result := &Result{
		URL:           url,
		PageTitle:     content.Title,
		FetchedAt:     content.FetchedAt,
		FetchDuration: time.Since(start),
	}

	rec, err := recipe.FromHTML(content.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	result.Recipe = rec
	result.Missing = rec.MissingFields()

	if h.store == nil {
		return result, nil
	}
	path, err := h.store.Save(rec)
	if err != nil {
		return result, fmt.Errorf("store %s: %w", url, err)
	}
	result.Path = path
	return result, nil
}

// HarvestMany processes urls one at a time in order. A failed page is
// reported on its Result and the batch moves on; cancellation stops it.
func (h *Harvester) HarvestMany(ctx context.Context, urls []string) <-chan *Result {
	if h.config.Limit > 0 && len(urls) > h.config.Limit {
		urls = urls[:h.config.Limit]
	}

	results := make(chan *Result)
	go func() {
		defer close(results)
		for i, url := range urls {
			if ctx.Err() != nil {
				return
			}
			h.log.InfoContext(ctx, "harvesting", "url", url, "n", i+1, "of", len(urls))

			result, err := h.Harvest(ctx, url)
			if result == nil {
				result = &Result{URL: url}
			}
			result.Error = err
			switch {
			case err != nil && ctx.Err() != nil:
				return
			case result.Untitled():
				h.log.InfoContext(ctx, "page skipped, no recipe title", "url", url, "page_title", result.PageTitle)
			case err != nil:
				h.log.WarnContext(ctx, "page failed", "url", url, "error", err)
			default:
				h.log.InfoContext(ctx, "page saved", "url", url, "path", result.Path, "missing", len(result.Missing))
			}

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}
		}
	}()
	return results
}

// Close releases the fetcher.
func (h *Harvester) Close() error {
	if h.fetcher != nil {
		return h.fetcher.Close()
	}
	return nil
}
