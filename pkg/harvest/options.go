// Package harvest drives the fetch, extract and store pipeline for a batch of
// recipe pages.
package harvest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/recipescrape/pkg/fetcher"
)

// ErrInvalidConfig is returned by New when the configuration fails validation.
var ErrInvalidConfig = errors.New("invalid harvest config")

// Config holds all harvester configuration.
type Config struct {
	Fetcher fetcher.Fetcher `validate:"-"`
	Store   Saver           `validate:"-"`

	UserAgent       string
	Timeout         time.Duration `validate:"gte=0"`
	WaitForSelector string
	WaitDuration    time.Duration `validate:"gte=0"`
	MaxPageSize     int           `validate:"gte=0"`

	// Delay is the minimum spacing between page requests.
	Delay time.Duration `validate:"gte=0"`
	// Limit caps the number of pages processed by HarvestMany; 0 is unlimited.
	Limit int `validate:"gte=0"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: fetcher.DefaultUserAgent,
		Timeout:   60 * time.Second,
		Delay:     time.Second,
	}
}

var validate = validator.New()

// Validate checks numeric bounds and reports every violation at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must be %s %s (got %v)", e.Field(), e.Tag(), e.Param(), e.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (c Config) fetchOptions() fetcher.Options {
	return fetcher.Options{
		UserAgent:       c.UserAgent,
		Timeout:         c.Timeout,
		WaitForSelector: c.WaitForSelector,
		WaitDuration:    c.WaitDuration,
		MaxBodySize:     c.MaxPageSize,
	}
}

// Option configures a Harvester.
type Option func(*Config)

// WithFetcher sets the page fetcher. Defaults to a static fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Config) {
		c.Fetcher = f
	}
}

// WithStore sets where assembled records are written. Without a store
// records are only returned.
func WithStore(s Saver) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithUserAgent sets the HTTP user agent.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithTimeout sets the per-page fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithWaitForSelector makes dynamic fetchers wait for a CSS selector.
func WithWaitForSelector(selector string) Option {
	return func(c *Config) {
		c.WaitForSelector = selector
	}
}

// WithWaitDuration adds a fixed pause after page load.
func WithWaitDuration(d time.Duration) Option {
	return func(c *Config) {
		c.WaitDuration = d
	}
}

// WithMaxPageSize caps the response body size in bytes.
func WithMaxPageSize(n int) Option {
	return func(c *Config) {
		c.MaxPageSize = n
	}
}

// WithDelay sets the minimum spacing between requests.
func WithDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Delay = d
	}
}

// WithLimit caps the number of pages processed.
func WithLimit(n int) Option {
	return func(c *Config) {
		c.Limit = n
	}
}
