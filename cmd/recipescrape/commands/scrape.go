package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clifetcher "github.com/jmylchreest/recipescrape/cmd/recipescrape/fetcher"
	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/internal/sources"
	"github.com/jmylchreest/recipescrape/internal/store"
	"github.com/jmylchreest/recipescrape/pkg/fetcher"
	"github.com/jmylchreest/recipescrape/pkg/harvest"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Fetch recipe pages and write one JSON record per recipe",
	Long: `Fetch every recipe page, extract its record and write it to
<out>/<slug>.json, where the slug is the lower-cased title with spaces
turned into hyphens and commas removed. Pages without a title are skipped
and counted separately; they do not fail the run. A page that fails is logged
and the batch continues, and the command exits non-zero at the end.

Examples:
  recipescrape scrape --links links.txt
  recipescrape scrape -u "https://example.com/keto-pancakes" --fetch-mode static
  recipescrape scrape --links categories.txt --follow "a.recipe-card" --archive recipes.zip`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Inputs
	flags.StringSliceP("url", "u", nil, "recipe URL(s) (can be repeated)")
	flags.StringP("links", "l", "", "file with one URL per line (# comments allowed)")

	// Output
	flags.String("out", "recipes", "directory for <slug>.json records")
	flags.String("archive", "", "zip the output directory to this file when done")

	// Fetch settings
	flags.String("fetch-mode", "dynamic", "fetch mode: dynamic (headless Chrome), static, auto (static with browser fallback)")
	flags.Duration("timeout", 60*time.Second, "per-page timeout")
	flags.String("user-agent", "", "override the browser user agent")
	flags.String("wait-for", "", "CSS selector to wait for before reading the page (dynamic mode)")
	flags.Duration("wait", 0, "extra wait after page load (dynamic mode)")
	flags.String("require", "", "CSS selector that marks complete static markup (auto mode, default "+fetcher.DefaultRequireSelector+")")
	flags.String("max-page-size", "10MB", "max response size (e.g. 512KB, 10MB, 0=fetcher default)")
	flags.Duration("delay", time.Second, "minimum delay between requests")
	flags.Int("limit", 0, "max recipe pages to process (0=unlimited)")
	flags.String("chrome-path", "", "Chrome/Chromium binary (default: search PATH)")
	flags.String("screenshot-dir", "", "save a screenshot here when a dynamic fetch fails")

	// Index expansion
	flags.String("follow", "", "treat inputs as index pages and follow links matching this CSS selector")
	flags.String("follow-pattern", "", "regex the followed URLs must match")
	flags.String("next", "", "CSS selector for the index pagination link")
	flags.Int("max-pages", 1, "max index pages per input when --next is set")

	bindFlags(flags,
		"links", "out", "archive",
		"fetch-mode", "timeout", "user-agent", "wait-for", "wait", "require", "max-page-size",
		"delay", "limit", "chrome-path", "screenshot-dir",
		"follow", "follow-pattern", "next", "max-pages")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	urls, _ := cmd.Flags().GetStringSlice("url")
	urls = append(urls, args...)
	list, err := sources.Collect(viper.GetString("links"), urls)
	if err != nil {
		return err
	}
	if list.Len() == 0 {
		return cmd.Help()
	}

	maxPageSize, err := parseSize(viper.GetString("max_page_size"))
	if err != nil {
		return err
	}

	f, err := newFetcher(fetchSettings{
		Mode:      viper.GetString("fetch_mode"),
		Timeout:   viper.GetDuration("timeout"),
		UserAgent: viper.GetString("user_agent"),
		Require:   viper.GetString("require"),
	})
	if err != nil {
		return err
	}
	// Closed by the harvester.

	fetchOpts := fetcher.Options{
		UserAgent:       viper.GetString("user_agent"),
		Timeout:         viper.GetDuration("timeout"),
		WaitForSelector: viper.GetString("wait_for"),
		WaitDuration:    viper.GetDuration("wait"),
		MaxBodySize:     maxPageSize,
	}

	if follow := viper.GetString("follow"); follow != "" {
		list, err = expandIndexes(ctx, f, list.URLs(), follow, fetchOpts)
		if err != nil {
			_ = f.Close()
			return err
		}
	}

	recipes, err := store.New(viper.GetString("out"))
	if err != nil {
		_ = f.Close()
		return err
	}

	h, err := harvest.New(
		harvest.WithFetcher(f),
		harvest.WithStore(recipes),
		harvest.WithUserAgent(fetchOpts.UserAgent),
		harvest.WithTimeout(fetchOpts.Timeout),
		harvest.WithWaitForSelector(fetchOpts.WaitForSelector),
		harvest.WithWaitDuration(fetchOpts.WaitDuration),
		harvest.WithMaxPageSize(maxPageSize),
		harvest.WithDelay(viper.GetDuration("delay")),
		harvest.WithLimit(viper.GetInt("limit")),
	)
	if err != nil {
		_ = f.Close()
		return err
	}
	defer func() { _ = h.Close() }()

	log := logger.With("run", h.RunID())
	log.Info("starting harvest",
		"pages", list.Len(),
		"fetch_mode", f.Type(),
		"out", recipes.Dir)

	start := time.Now()
	var summary harvest.Summary
	for result := range h.HarvestMany(ctx, list.URLs()) {
		summary.Add(result)
	}
	summary.Elapsed = time.Since(start)

	if dest := viper.GetString("archive"); dest != "" && summary.Succeeded > 0 {
		if _, err := store.Archive(recipes.Dir, dest); err != nil {
			logger.ErrorContext(ctx, "archive failed", "run", h.RunID(), "path", dest, "error", err)
			return err
		}
	}

	log.Info("harvest finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"untitled", summary.Untitled,
		"elapsed", summary.Elapsed.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("harvest interrupted: %w", err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d pages failed", summary.Failed, summary.Total())
	}
	return nil
}

// fetchSettings selects and configures the page fetcher.
type fetchSettings struct {
	Mode      string
	Timeout   time.Duration
	UserAgent string
	Require   string // auto mode only
}

func newFetcher(s fetchSettings) (fetcher.Fetcher, error) {
	static := func() *fetcher.StaticFetcher {
		return fetcher.NewStatic(fetcher.StaticConfig{
			UserAgent: s.UserAgent,
			Timeout:   s.Timeout,
		})
	}
	dynamic := func() (*clifetcher.DynamicFetcher, error) {
		return clifetcher.NewDynamicFetcher(clifetcher.Config{
			UserAgent:     s.UserAgent,
			Timeout:       s.Timeout,
			Headless:      true,
			ChromePath:    viper.GetString("chrome_path"),
			ScreenshotDir: viper.GetString("screenshot_dir"),
		})
	}

	switch strings.ToLower(s.Mode) {
	case "dynamic", "":
		return dynamic()
	case "static":
		return static(), nil
	case "auto":
		d, err := dynamic()
		if err != nil {
			return nil, err
		}
		return fetcher.NewAuto(static(), d, s.Require), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'dynamic', 'static' or 'auto')", s.Mode)
	}
}

func expandIndexes(ctx context.Context, f fetcher.Fetcher, indexes []string, follow string, opts fetcher.Options) (*sources.List, error) {
	links, err := sources.NewLinkSelector(follow, viper.GetString("follow_pattern"))
	if err != nil {
		return nil, fmt.Errorf("invalid --follow-pattern: %w", err)
	}
	links.SameDomain = true

	e := &sources.Expander{
		Fetcher:  f,
		Links:    links,
		MaxPages: viper.GetInt("max_pages"),
		Delay:    viper.GetDuration("delay"),
		Options:  opts,
	}
	if next := viper.GetString("next"); next != "" {
		e.Next = &sources.PaginationSelector{NextSelector: next}
	}

	list, err := e.Expand(ctx, indexes)
	if err != nil {
		return nil, err
	}
	logger.Info("index pages expanded", "indexes", len(indexes), "recipes", list.Len())
	return list, nil
}

// parseSize accepts human byte sizes ("512KB", "10MB"); empty or "0" means
// no explicit limit.
func parseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int(n), nil
}
