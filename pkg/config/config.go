package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Feed   FeedConfig   `yaml:"feed" json:"feed" jsonschema:"description=Channel metadata and output file"`
	Search SearchConfig `yaml:"search" json:"search" jsonschema:"description=Search query and site filter"`
	API    APIConfig    `yaml:"api" json:"api" jsonschema:"description=Bing Web Search API settings"`
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape" jsonschema:"description=Bing HTML results page settings"`
}

// FeedConfig holds channel metadata for the generated feed
type FeedConfig struct {
	Title       string `yaml:"title" json:"title" jsonschema:"required,minLength=1,description=Channel title"`
	Link        string `yaml:"link" json:"link" jsonschema:"required,minLength=1,description=Channel link (blog home page)"`
	Description string `yaml:"description" json:"description" jsonschema:"description=Channel description"`
	Generator   string `yaml:"generator" json:"generator" jsonschema:"default=indexfeed,description=Value of the generator element"`
	SelfLink    string `yaml:"self_link" json:"self_link" jsonschema:"description=Public URL of the feed itself (atom:link rel=self)"`
	Output      string `yaml:"output" json:"output" jsonschema:"default=feed.xml,description=Output file path"`
}

// SearchConfig holds the query and the domain allow-list filter
type SearchConfig struct {
	Query      string        `yaml:"query" json:"query" jsonschema:"required,minLength=1,description=Search engine query"`
	SiteFilter string        `yaml:"site_filter" json:"site_filter" jsonschema:"description=Substring every accepted URL must contain"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=25s,description=Timeout for each search request"`
}

// APIConfig holds Bing Web Search API settings
type APIConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://api.bing.microsoft.com/v7.0/search,description=API endpoint"`
	Key       string `yaml:"key" json:"key" jsonschema:"description=API subscription key (can use environment variable)"`
	Market    string `yaml:"market" json:"market" jsonschema:"default=pt-BR,description=Market code"`
	Count     int    `yaml:"count" json:"count" jsonschema:"default=10,minimum=1,maximum=50,description=Number of results to request"`
	Freshness string `yaml:"freshness" json:"freshness" jsonschema:"default=Week,enum=Day,enum=Week,enum=Month,description=Freshness window"`
}

// ScrapeConfig holds settings for the public results page
type ScrapeConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://www.bing.com/search,description=Results page URL"`
	UserAgent string `yaml:"user_agent" json:"user_agent" jsonschema:"description=Browser user agent to send"`
	Language  string `yaml:"language" json:"language" jsonschema:"default=pt-BR,description=Interface language (setlang)"`
	Country   string `yaml:"country" json:"country" jsonschema:"default=br,description=Country code (cc)"`
}

const (
	defaultTitle       = "Hedgepoint HUB – Novos Relatórios (via índice)"
	defaultLink        = "https://www.hedgepointhub.com.br/blog/"
	defaultDescription = "Feed não-oficial gerado a partir de resultados indexados em buscadores."
	defaultQuery       = "site:hedgepointhub.com.br/blog"
	defaultSiteFilter  = "hedgepointhub.com.br/blog"
	defaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
)

// Default returns configuration for the Hedgepoint HUB blog
func Default() *Config {
	cfg := &Config{}
	cfg.Feed.Title = defaultTitle
	cfg.Feed.Link = defaultLink
	cfg.Feed.Description = defaultDescription
	cfg.Search.Query = defaultQuery
	cfg.Search.SiteFilter = defaultSiteFilter
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	setDefaults(cfg)

	// validate configuration
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return cfg, nil
}

// setDefaults fills fields left empty by the config file
func setDefaults(cfg *Config) {
	if cfg.Feed.Generator == "" {
		cfg.Feed.Generator = "indexfeed"
	}
	if cfg.Feed.Output == "" {
		cfg.Feed.Output = "feed.xml"
	}

	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 25 * time.Second
	}

	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = "https://api.bing.microsoft.com/v7.0/search"
	}
	cfg.API.Key = strings.TrimSpace(cfg.API.Key)
	if cfg.API.Market == "" {
		cfg.API.Market = "pt-BR"
	}
	if cfg.API.Count == 0 {
		cfg.API.Count = 10
	}
	if cfg.API.Freshness == "" {
		cfg.API.Freshness = "Week"
	}

	if cfg.Scrape.Endpoint == "" {
		cfg.Scrape.Endpoint = "https://www.bing.com/search"
	}
	if cfg.Scrape.UserAgent == "" {
		cfg.Scrape.UserAgent = defaultUserAgent
	}
	if cfg.Scrape.Language == "" {
		cfg.Scrape.Language = "pt-BR"
	}
	if cfg.Scrape.Country == "" {
		cfg.Scrape.Country = "br"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Feed.Title == "" {
		return fmt.Errorf("feed.title is required")
	}
	if cfg.Feed.Link == "" {
		return fmt.Errorf("feed.link is required")
	}
	if cfg.Search.Query == "" {
		return fmt.Errorf("search.query is required")
	}
	if cfg.Search.Timeout < time.Second {
		return fmt.Errorf("search timeout must be at least 1 second")
	}
	if cfg.API.Count < 1 || cfg.API.Count > 50 {
		return fmt.Errorf("api.count must be between 1 and 50")
	}
	return nil
}

// Validate checks configuration for correctness, used after CLI overrides are applied
func (c *Config) Validate() error {
	return validate(c)
}
