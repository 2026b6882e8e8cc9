package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"golang.org/x/net/html/charset"

	"github.com/umputun/indexfeed/pkg/domain"
)

// ScrapeParams configures ScrapeClient
type ScrapeParams struct {
	Endpoint  string
	UserAgent string
	Language  string // setlang parameter and Accept-Language
	Country   string // cc parameter
	Timeout   time.Duration
}

// ScrapeClient reads the first organic result from the public Bing results page
type ScrapeClient struct {
	params ScrapeParams
	client *http.Client
}

// NewScrapeClient creates a new results page client
func NewScrapeClient(params ScrapeParams) *ScrapeClient {
	if params.Timeout <= 0 {
		params.Timeout = defaultTimeout
	}
	return &ScrapeClient{
		params: params,
		client: &http.Client{Timeout: params.Timeout},
	}
}

// Name returns source name
func (c *ScrapeClient) Name() string { return "bing-html" }

// Best returns the first organic result for the query, nil if the page has none or can't be fetched.
// Results page has no reliable dates, so the candidate is never dated.
func (c *ScrapeClient) Best(ctx context.Context, query string) *domain.Candidate {
	item, err := c.search(ctx, query)
	if err != nil {
		lgr.Printf("[WARN] bing html scrape failed: %v", err)
		return nil
	}
	return item
}

// search fetches the results page and parses it
func (c *ScrapeClient) search(ctx context.Context, query string) (*domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.params.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("setlang", c.params.Language)
	params.Set("cc", c.params.Country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.params.Endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, c.params.UserAgent, c.params.Language)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return parseResults(body)
}

// parseResults extracts the first organic result from a results page.
// Returns nil without error when there is no usable result.
func parseResults(r io.Reader) (*domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	results := doc.Find("li.b_algo")
	if results.Length() == 0 {
		return nil, nil
	}

	first := results.First()
	link := first.Find("h2 a").First()
	title := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")
	if title == "" || href == "" {
		return nil, nil
	}

	return &domain.Candidate{
		Title:   title,
		URL:     href,
		Snippet: collapseSpace(first.Find(".b_caption p").First().Text()),
	}, nil
}
