package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/indexfeed/pkg/config"
	"github.com/umputun/indexfeed/pkg/feed"
	"github.com/umputun/indexfeed/pkg/search"
)

// Opts with all CLI options, all of them optional
type Opts struct {
	Config string `short:"c" long:"config" env:"INDEXFEED_CONFIG" description:"config file, built-in defaults if not set"`
	Output string `short:"o" long:"output" env:"OUTPUT_FILE" description:"output file, overrides feed.output"`
	APIKey string `long:"api-key" env:"BING_API_KEY" description:"Bing Web Search API key, scrape results page if not set"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug, strings.TrimSpace(opts.APIKey))

	log.Printf("[DEBUG] indexfeed version %s", revision)

	if err := run(context.Background(), opts); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run searches for the newest page, renders the feed and writes it to the output file
func run(ctx context.Context, opts Opts) error {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if opts.Output != "" {
		cfg.Feed.Output = opts.Output
	}
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		cfg.API.Key = key
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.API.Key != "" {
		setupLog(opts.Debug, cfg.API.Key) // key may come from the config file
	}

	selector := search.NewSelector(cfg.Search.SiteFilter,
		search.NewAPIClient(search.APIParams{
			Endpoint:  cfg.API.Endpoint,
			Key:       cfg.API.Key,
			Market:    cfg.API.Market,
			Count:     cfg.API.Count,
			Freshness: cfg.API.Freshness,
			Timeout:   cfg.Search.Timeout,
		}),
		search.NewScrapeClient(search.ScrapeParams{
			Endpoint:  cfg.Scrape.Endpoint,
			UserAgent: cfg.Scrape.UserAgent,
			Language:  cfg.Scrape.Language,
			Country:   cfg.Scrape.Country,
			Timeout:   cfg.Search.Timeout,
		}),
	)

	item := selector.Pick(ctx, cfg.Search.Query)
	if item == nil {
		log.Printf("[INFO] no result for %q, writing empty feed", cfg.Search.Query)
	} else {
		log.Printf("[INFO] newest page from %s: %s", item.Source, item.CleanURL())
	}

	gen := feed.NewGenerator(feed.Channel{
		Title:       cfg.Feed.Title,
		Link:        cfg.Feed.Link,
		Description: cfg.Feed.Description,
		Generator:   cfg.Feed.Generator,
		SelfLink:    cfg.Feed.SelfLink,
	})
	doc, err := gen.Render(item)
	if err != nil {
		return fmt.Errorf("failed to render feed: %w", err)
	}
	if _, err := feed.Verify(doc); err != nil {
		return fmt.Errorf("rendered feed is invalid: %w", err)
	}

	if err := writeFile(cfg.Feed.Output, doc); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}
	fmt.Printf("[OK] Wrote %s\n", cfg.Feed.Output)
	return nil
}

// writeFile replaces the file at path with data, the old content stays intact if writing fails
func writeFile(path, data string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".indexfeed-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after successful rename

	if _, err := tmp.WriteString(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // feed is public
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func setupLog(dbg bool, secrets ...string) {
	// diagnostics go to stderr, stdout is kept for the result line
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	nonEmpty := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) > 0 {
		logOpts = append(logOpts, lgr.Secret(nonEmpty...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
