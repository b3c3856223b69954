package fetcher

import "strings"

// challengeMarkers maps an interstitial kind to substrings of its title or body.
var challengeMarkers = []struct {
	kind   string
	title  []string
	markup []string
}{
	{"cloudflare", []string{"just a moment", "attention required"}, []string{"cf-challenge", "cf_chl_opt"}},
	{"cloudflare-turnstile", nil, []string{"challenges.cloudflare.com/turnstile", "cf-turnstile"}},
	{"hcaptcha", nil, []string{"hcaptcha.com", "h-captcha"}},
	{"recaptcha", nil, []string{"google.com/recaptcha", "g-recaptcha"}},
	{"anti-bot", []string{"access denied", "blocked", "bot detection"}, []string{"robot or human"}},
}

// detectChallengePage names the interstitial served instead of the recipe,
// or returns "" for a regular page.
func detectChallengePage(title, html string) string {
	title = strings.ToLower(title)
	html = strings.ToLower(html)

	for _, m := range challengeMarkers {
		for _, s := range m.title {
			if strings.Contains(title, s) {
				return m.kind
			}
		}
		for _, s := range m.markup {
			if strings.Contains(html, s) {
				return m.kind
			}
		}
	}
	return ""
}

// isCaptcha reports whether kind requires a human to solve.
func isCaptcha(kind string) bool {
	return kind == "hcaptcha" || kind == "recaptcha" || kind == "cloudflare-turnstile"
}
