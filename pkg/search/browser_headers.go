package search

import (
	"math/rand"
	"net/http"
)

// secFetchModes for different request contexts
var secFetchModes = []string{
	"navigate",
	"no-cors",
	"cors",
}

// addBrowserHeaders adds common browser headers to a results page request.
// Accept-Language follows the requested interface language, the rest is randomized a little.
func addBrowserHeaders(req *http.Request, userAgent, language string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguage(language))
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	// dnt - 30% chance of being set
	if rand.Float32() < 0.3 { //nolint:gosec // non-cryptographic randomness is fine
		req.Header.Set("DNT", "1")
	}

	// modern browsers send Sec-Fetch-* headers
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", secFetchModes[rand.Intn(len(secFetchModes))]) //nolint:gosec // non-cryptographic randomness is fine
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
}

// acceptLanguage builds Accept-Language for a locale like pt-BR
func acceptLanguage(language string) string {
	if language == "" {
		return "en-US,en;q=0.9"
	}
	base := language
	for i, r := range language {
		if r == '-' || r == '_' {
			base = language[:i]
			break
		}
	}
	if base == language {
		return language + ",en;q=0.8"
	}
	return language + "," + base + ";q=0.9,en;q=0.8"
}
