package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/pkg/fetcher"
)

// DynamicFetcher renders pages in a headless browser. One browser process is
// shared; each Fetch opens its own tab.
type DynamicFetcher struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamicFetcher creates a dynamic fetcher. The browser is started lazily
// on the first Fetch.
func NewDynamicFetcher(cfg Config) (*DynamicFetcher, error) {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = FindChromePath()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)

	logger.Debug("dynamic fetcher created",
		"headless", cfg.Headless,
		"chrome", cfg.ChromePath,
		"timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancelAlloc,
	}, nil
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	return opts
}

// Fetch navigates to targetURL and returns the rendered document.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Content, error) {
	result := fetcher.Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}
	if _, err := url.Parse(targetURL); err != nil {
		return result, fmt.Errorf("invalid URL: %w", err)
	}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	// Caller cancellation also tears down the tab.
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var html, title string
	if err := chromedp.Run(timeoutCtx, buildActions(targetURL, opts, &html, &title)...); err != nil {
		f.saveScreenshot(browserCtx, targetURL)
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) || timeoutCtx.Err() != nil {
			logger.Warn("browser timeout, possible anti-bot protection", "url", targetURL)
			return result, fmt.Errorf("%w: %v", fetcher.ErrChallengeTimeout, err)
		}
		return result, fmt.Errorf("browser automation failed: %w", err)
	}

	result.HTML = html
	result.Title = title
	result.StatusCode = 200 // chromedp doesn't easily expose status codes

	if kind := detectChallengePage(title, html); kind != "" {
		logger.Warn("challenge page detected", "url", targetURL, "type", kind)
		if isCaptcha(kind) {
			return result, fmt.Errorf("%w: %s", fetcher.ErrCaptchaChallenge, kind)
		}
		return result, fmt.Errorf("%w: %s", fetcher.ErrAntiBot, kind)
	}

	logger.Debug("dynamic fetch complete", "url", targetURL, "title", title, "html_size", len(html))
	return result, nil
}

func buildActions(targetURL string, opts fetcher.Options, html, title *string) []chromedp.Action {
	var actions []chromedp.Action
	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}
	if len(opts.Cookies) > 0 {
		actions = append(actions, setCookies(targetURL, opts.Cookies))
	}
	actions = append(actions, chromedp.Navigate(targetURL))

	// WaitVisible polls forever on some pages; WaitReady does not.
	waitFor := opts.WaitForSelector
	if waitFor == "" {
		waitFor = "body"
	}
	actions = append(actions, chromedp.WaitReady(waitFor))

	if opts.WaitDuration > 0 {
		actions = append(actions, chromedp.Sleep(opts.WaitDuration))
	}
	return append(actions,
		chromedp.OuterHTML("html", html),
		chromedp.Title(title),
	)
}

func (f *DynamicFetcher) saveScreenshot(browserCtx context.Context, targetURL string) {
	if f.config.ScreenshotDir == "" {
		return
	}
	ctx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil || len(buf) == 0 {
		return
	}
	path := filepath.Join(f.config.ScreenshotDir, fmt.Sprintf("recipescrape-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		logger.Debug("screenshot not saved", "error", err)
		return
	}
	logger.Debug("debug screenshot saved", "url", targetURL, "path", path)
}

// Close shuts the browser down.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}

// setCookies returns a chromedp action that sets cookies before navigation.
func setCookies(targetURL string, cookies []fetcher.Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		u, err := url.Parse(targetURL)
		if err != nil {
			return fmt.Errorf("failed to parse URL for cookies: %w", err)
		}

		params := make([]*network.CookieParam, 0, len(cookies))
		for _, c := range cookies {
			domain := c.Domain
			if domain == "" {
				domain = u.Hostname()
			}
			params = append(params, &network.CookieParam{
				Name:   c.Name,
				Value:  c.Value,
				Domain: domain,
				Path:   "/",
				Secure: u.Scheme == "https",
			})
		}
		return network.SetCookies(params).Do(ctx)
	})
}

var _ fetcher.Fetcher = (*DynamicFetcher)(nil)
