// Package search finds the newest indexed page of a site using web search engines.
// Sources never return errors, a failing source logs a warning and reports no result.
package search

import (
	"context"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/indexfeed/pkg/domain"
)

// Source returns the best candidate for a query or nil when it has none
type Source interface {
	Name() string
	Best(ctx context.Context, query string) *domain.Candidate
}

// Selector tries sources in priority order and keeps the first result that passes the site filter
type Selector struct {
	sources    []Source
	siteFilter string
}

// NewSelector makes a selector, sources are tried in the given order
func NewSelector(siteFilter string, sources ...Source) *Selector {
	return &Selector{sources: sources, siteFilter: siteFilter}
}

// Pick returns the single candidate to publish or nil.
// The first source with a result wins even if that result is later rejected by the site filter.
func (s *Selector) Pick(ctx context.Context, query string) *domain.Candidate {
	var item *domain.Candidate
	for _, src := range s.sources {
		if item = src.Best(ctx, query); item != nil {
			item.Source = src.Name()
			lgr.Printf("[DEBUG] %s found %q at %s", src.Name(), item.Title, item.URL)
			break
		}
		lgr.Printf("[DEBUG] %s has no result for %q", src.Name(), query)
	}

	if item == nil {
		return nil
	}

	if !item.InSite(s.siteFilter) {
		lgr.Printf("[INFO] dropped %s result outside of %s: %s", item.Source, s.siteFilter, item.URL)
		return nil
	}
	return item
}
