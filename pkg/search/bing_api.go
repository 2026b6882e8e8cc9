package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/indexfeed/pkg/domain"
)

// defaultTimeout bounds each search request when no timeout is configured
const defaultTimeout = 25 * time.Second

// isoDate matches ISO-8601 calendar dates with optional time and zone offset
var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)

// APIParams configures APIClient
type APIParams struct {
	Endpoint  string
	Key       string // empty key disables the client
	Market    string
	Count     int
	Freshness string
	Timeout   time.Duration
}

// APIClient queries the Bing Web Search API
type APIClient struct {
	params APIParams
	client *http.Client
}

// apiResponse is the part of the Bing v7 search response we use
type apiResponse struct {
	WebPages struct {
		Value []apiWebPage `json:"value"`
	} `json:"webPages"`
}

type apiWebPage struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	Snippet         string `json:"snippet"`
	DatePublished   string `json:"datePublished"`
	DateLastCrawled string `json:"dateLastCrawled"`
}

// NewAPIClient creates a new API search client
func NewAPIClient(params APIParams) *APIClient {
	if params.Timeout <= 0 {
		params.Timeout = defaultTimeout
	}
	return &APIClient{
		params: params,
		client: &http.Client{Timeout: params.Timeout},
	}
}

// Name returns source name
func (c *APIClient) Name() string { return "bing-api" }

// Best returns the most recent result for the query, nil if the key is not set,
// the request failed or nothing was found
func (c *APIClient) Best(ctx context.Context, query string) *domain.Candidate {
	if c.params.Key == "" {
		return nil
	}

	item, err := c.search(ctx, query)
	if err != nil {
		lgr.Printf("[WARN] bing api search failed: %v", err)
		return nil
	}
	return item
}

// search makes the API request and picks the best page of the response
func (c *APIClient) search(ctx context.Context, query string) (*domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.params.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("mkt", c.params.Market)
	params.Set("count", strconv.Itoa(c.params.Count))
	params.Set("responseFilter", "Webpages")
	params.Set("freshness", c.params.Freshness)
	params.Set("textDecorations", "false")
	params.Set("textFormat", "Raw")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.params.Endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.params.Key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return pickRecent(data.WebPages.Value), nil
}

// pickRecent selects the best page: the first one, replaced by any later page dated at or after
// the current best date. An undated page wins only when it comes first.
func pickRecent(pages []apiWebPage) *domain.Candidate {
	var best *domain.Candidate
	for _, page := range pages {
		published := parseDate(page.date())
		if best == nil || (published != nil && (best.Published == nil || !published.Before(*best.Published))) {
			best = &domain.Candidate{
				Title:     page.Name,
				URL:       page.URL,
				Snippet:   strings.TrimSpace(page.Snippet),
				Published: published,
			}
		}
	}
	return best
}

// date returns datePublished, or dateLastCrawled when the former is missing
func (p apiWebPage) date() string {
	if p.DatePublished != "" {
		return p.DatePublished
	}
	return p.DateLastCrawled
}

// parseDate parses an ISO-8601 date, dates without zone are taken as UTC. Returns nil if s is empty,
// not in ISO form or invalid.
func parseDate(s string) *time.Time {
	if !isoDate.MatchString(s) {
		if s != "" {
			lgr.Printf("[DEBUG] skip non-ISO date %q", s)
		}
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		lgr.Printf("[DEBUG] can't parse date %q: %v", s, err)
		return nil
	}
	return &t
}
