package harvest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/recipescrape/internal/store"
	"github.com/jmylchreest/recipescrape/pkg/fetcher"
)

func readTestdata(t *testing.T, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to read testdata %s: %v", filename, err)
	}
	return string(data)
}

var errNotFound = errors.New("not found")

type fakeFetcher struct {
	pages   map[string]string
	title   string
	calls   []string
	gotOpts fetcher.Options
	closed  bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, opts fetcher.Options) (fetcher.Content, error) {
	if err := ctx.Err(); err != nil {
		return fetcher.Content{}, err
	}
	f.calls = append(f.calls, url)
	f.gotOpts = opts
	html, ok := f.pages[url]
	if !ok {
		return fetcher.Content{URL: url}, errNotFound
	}
	return fetcher.Content{URL: url, HTML: html, Title: f.title, StatusCode: 200, FetchedAt: time.Now()}, nil
}

func (f *fakeFetcher) Close() error { f.closed = true; return nil }
func (f *fakeFetcher) Type() string { return "fake" }

func newHarvester(t *testing.T, f *fakeFetcher, opts ...Option) (*Harvester, *store.JSONStore) {
	t.Helper()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]Option{WithFetcher(f), WithStore(s), WithDelay(0)}, opts...)
	h, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h, s
}

func TestHarvest_SavesRecord(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://example.com/egg-muffins": readTestdata(t, "recipe.html"),
	}}
	h, s := newHarvester(t, f, WithTimeout(5*time.Second), WithWaitForSelector("h1"), WithMaxPageSize(1024))

	result, err := h.Harvest(context.Background(), "https://example.com/egg-muffins")
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}
	if *result.Recipe.Title != "Egg Muffins" {
		t.Errorf("title = %v", result.Recipe.Title)
	}
	if want := filepath.Join(s.Dir, "egg-muffins.json"); result.Path != want {
		t.Errorf("Path = %q, want %q", result.Path, want)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("record not written: %v", err)
	}
	if *result.Recipe.Yield != "12 muffins" {
		t.Errorf("yield = %v", *result.Recipe.Yield)
	}
	if len(result.Missing) == 0 {
		t.Error("expected missing nutrition facts to be reported")
	}

	if f.gotOpts.Timeout != 5*time.Second || f.gotOpts.WaitForSelector != "h1" || f.gotOpts.MaxBodySize != 1024 {
		t.Errorf("fetch options not forwarded: %+v", f.gotOpts)
	}
}

func TestHarvest_FetchError(t *testing.T) {
	h, _ := newHarvester(t, &fakeFetcher{})
	_, err := h.Harvest(context.Background(), "https://example.com/missing")
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestHarvest_UntitledRecordRejected(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{"https://example.com/blank": "<html><body><p>No recipe here</p></body></html>"},
		title: "Blog archive",
	}
	h, _ := newHarvester(t, f)

	result, err := h.Harvest(context.Background(), "https://example.com/blank")
	if !errors.Is(err, store.ErrMissingTitle) {
		t.Fatalf("expected ErrMissingTitle, got %v", err)
	}
	if result == nil || result.Path != "" {
		t.Fatalf("result should carry the record without a path: %+v", result)
	}
	if !result.Untitled() {
		t.Error("Untitled() = false for a page without a recipe title")
	}
	if result.PageTitle != "Blog archive" {
		t.Errorf("PageTitle = %q", result.PageTitle)
	}
}

func TestHarvest_WithoutStore(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://example.com/r": readTestdata(t, "recipe.html")}}
	h, err := New(WithFetcher(f), WithDelay(0))
	if err != nil {
		t.Fatal(err)
	}
	result, err := h.Harvest(context.Background(), "https://example.com/r")
	if err != nil {
		t.Fatal(err)
	}
	if result.Path != "" {
		t.Errorf("Path = %q, want empty", result.Path)
	}
}

func TestHarvestMany_ContinuesAfterFailure(t *testing.T) {
	page := readTestdata(t, "recipe.html")
	f := &fakeFetcher{pages: map[string]string{
		"https://example.com/a": page,
		"https://example.com/c": page,
	}}
	h, _ := newHarvester(t, f)

	var summary Summary
	var urls []string
	for r := range h.HarvestMany(context.Background(), []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}) {
		urls = append(urls, r.URL)
		summary.Add(r)
	}

	if len(urls) != 3 || urls[0] != "https://example.com/a" || urls[2] != "https://example.com/c" {
		t.Errorf("results out of order: %v", urls)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 || summary.Total() != 3 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestHarvestMany_Limit(t *testing.T) {
	page := readTestdata(t, "recipe.html")
	f := &fakeFetcher{pages: map[string]string{"https://example.com/a": page, "https://example.com/b": page}}
	h, _ := newHarvester(t, f, WithLimit(1))

	n := 0
	for range h.HarvestMany(context.Background(), []string{"https://example.com/a", "https://example.com/b"}) {
		n++
	}
	if n != 1 || len(f.calls) != 1 {
		t.Errorf("processed %d pages (%d fetches), want 1", n, len(f.calls))
	}
}

func TestHarvestMany_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFetcher{}
	h, _ := newHarvester(t, f)

	for r := range h.HarvestMany(ctx, []string{"https://example.com/a"}) {
		t.Errorf("unexpected result %+v", r)
	}
	if len(f.calls) != 0 {
		t.Errorf("fetcher called after cancellation: %v", f.calls)
	}
}

func TestSummary_Untitled(t *testing.T) {
	var s Summary
	s.Add(&Result{URL: "x", FetchedAt: time.Now(), Error: store.ErrMissingTitle})
	s.Add(&Result{URL: "y", Error: errNotFound})
	if s.Untitled != 1 || s.Failed != 1 || s.Succeeded != 0 || s.Total() != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestHarvestMany_UntitledPageIsSkippedNotFailed(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://example.com/a":     readTestdata(t, "recipe.html"),
		"https://example.com/blank": "<html><body><p>Subscribe!</p></body></html>",
	}}
	h, _ := newHarvester(t, f)

	var summary Summary
	for r := range h.HarvestMany(context.Background(), []string{"https://example.com/a", "https://example.com/blank"}) {
		summary.Add(r)
	}
	if summary.Succeeded != 1 || summary.Untitled != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(WithFetcher(&fakeFetcher{}), WithTimeout(-time.Second), WithLimit(-1))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_RunIDAndClose(t *testing.T) {
	f := &fakeFetcher{}
	h, _ := newHarvester(t, f)
	if len(h.RunID()) != 36 {
		t.Errorf("RunID() = %q", h.RunID())
	}
	if err := h.Close(); err != nil || !f.closed {
		t.Errorf("Close() = %v, closed = %v", err, f.closed)
	}
}
