// Package fetcher provides the headless-browser page fetcher used by the CLI.
// Recipe pages on the source site render parts of their markup with
// JavaScript, so the default batch mode drives a real Chrome via chromedp.
package fetcher

import (
	"time"

	"github.com/jmylchreest/recipescrape/pkg/fetcher"
)

// Config holds configuration for the dynamic fetcher.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	Headless   bool
	ChromePath string // Overrides the binary lookup when set

	// ScreenshotDir receives a PNG of the page when a browser run fails.
	// Empty disables screenshots.
	ScreenshotDir string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: fetcher.DefaultUserAgent,
		Timeout:   60 * time.Second,
		Headless:  true,
	}
}
