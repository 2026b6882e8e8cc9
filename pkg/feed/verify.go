package feed

import (
	"fmt"

	"github.com/mmcdole/gofeed"
)

// Verify parses a rendered document back and checks it is an RSS 2.0 feed with at most one item
func Verify(doc string) (*gofeed.Feed, error) {
	parsed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("parse rendered feed: %w", err)
	}

	if parsed.FeedType != "rss" || parsed.FeedVersion != "2.0" {
		return nil, fmt.Errorf("unexpected feed type %s %s", parsed.FeedType, parsed.FeedVersion)
	}
	if len(parsed.Items) > 1 {
		return nil, fmt.Errorf("expected at most one item, got %d", len(parsed.Items))
	}

	return parsed, nil
}
