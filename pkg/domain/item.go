package domain

import (
	"strings"
	"time"
)

// Candidate represents a single search result considered as the newest blog post
type Candidate struct {
	Title     string
	URL       string
	Snippet   string
	Published *time.Time // nil when the source has no reliable date
	Source    string     // name of the search source that produced the item
}

// CleanURL returns the URL without its query string
func (c *Candidate) CleanURL() string {
	if idx := strings.Index(c.URL, "?"); idx >= 0 {
		return c.URL[:idx]
	}
	return c.URL
}

// InSite reports whether the candidate URL belongs to the given site path.
// An empty filter accepts everything.
func (c *Candidate) InSite(filter string) bool {
	return filter == "" || strings.Contains(c.URL, filter)
}
