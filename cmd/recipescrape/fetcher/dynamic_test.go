package fetcher

import (
	"errors"
	"testing"
	"time"

	"github.com/jmylchreest/recipescrape/pkg/fetcher"
)

func TestDetectChallengePage(t *testing.T) {
	tests := []struct {
		name  string
		title string
		html  string
		want  string
	}{
		{"recipe", "Keto Pancakes", `<h1 itemprop="name">Keto Pancakes</h1>`, ""},
		{"cloudflare title", "Just a moment...", "<html></html>", "cloudflare"},
		{"cloudflare markup", "", `<div id="cf-challenge-running"></div>`, "cloudflare"},
		{"turnstile", "", `<script src="https://challenges.cloudflare.com/turnstile/v0/api.js"></script>`, "cloudflare-turnstile"},
		{"hcaptcha", "", `<div class="h-captcha"></div>`, "hcaptcha"},
		{"recaptcha", "", `<div class="g-recaptcha"></div>`, "recaptcha"},
		{"access denied", "Access Denied", "", "anti-bot"},
		{"robot or human", "", "<p>Are you a Robot or Human?</p>", "anti-bot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectChallengePage(tt.title, tt.html); got != tt.want {
				t.Errorf("detectChallengePage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCaptcha(t *testing.T) {
	if !isCaptcha("recaptcha") || !isCaptcha("hcaptcha") {
		t.Error("captcha kinds not recognized")
	}
	if isCaptcha("cloudflare") || isCaptcha("anti-bot") {
		t.Error("non-interactive challenges reported as captcha")
	}
}

func TestFindBinary(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "chromium" {
			return "/usr/bin/chromium", nil
		}
		return "", errors.New("not found")
	}
	if got := findBinary([]string{"google-chrome", "chromium", "chrome"}, lookPath); got != "/usr/bin/chromium" {
		t.Errorf("findBinary() = %q", got)
	}
	if got := findBinary([]string{"missing"}, lookPath); got != "" {
		t.Errorf("findBinary() = %q, want empty", got)
	}
}

func TestNewDynamicFetcher_Defaults(t *testing.T) {
	f, err := NewDynamicFetcher(Config{ChromePath: "/opt/chrome"})
	if err != nil {
		t.Fatalf("NewDynamicFetcher() error = %v", err)
	}
	defer f.Close()

	if f.config.UserAgent != fetcher.DefaultUserAgent {
		t.Errorf("UserAgent = %q", f.config.UserAgent)
	}
	if f.config.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v", f.config.Timeout)
	}
	if f.config.ChromePath != "/opt/chrome" {
		t.Errorf("ChromePath overridden: %q", f.config.ChromePath)
	}
	if f.Type() != "dynamic" {
		t.Errorf("Type() = %q", f.Type())
	}
}

func TestAllocatorOptions_ExecPath(t *testing.T) {
	base := len(allocatorOptions(Config{}))
	if got := len(allocatorOptions(Config{ChromePath: "/opt/chrome"})); got != base+1 {
		t.Errorf("ExecPath option not added: %d vs %d", got, base)
	}
}

func TestBuildActions(t *testing.T) {
	var html, title string
	plain := buildActions("https://example.com/r", fetcher.Options{}, &html, &title)
	// navigate, wait, outer html, title
	if len(plain) != 4 {
		t.Fatalf("plain actions = %d, want 4", len(plain))
	}

	full := buildActions("https://example.com/r", fetcher.Options{
		Headers:      map[string]string{"Accept-Language": "en"},
		Cookies:      []fetcher.Cookie{{Name: "consent", Value: "1"}},
		WaitDuration: time.Second,
	}, &html, &title)
	// + network enable, headers, cookies, sleep
	if len(full) != 8 {
		t.Errorf("full actions = %d, want 8", len(full))
	}
}
