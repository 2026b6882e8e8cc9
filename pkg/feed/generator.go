package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/indexfeed/pkg/domain"
)

// Channel holds channel-level metadata of the generated feed
type Channel struct {
	Title       string
	Link        string
	Description string
	Generator   string
	SelfLink    string // public URL of the feed, optional
}

// Generator creates single-item RSS feeds from search candidates
type Generator struct {
	channel Channel
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(channel Channel) *Generator {
	return &Generator{channel: channel, now: time.Now}
}

// Render creates an RSS 2.0 document with zero or one item.
// A nil item produces a valid feed without items.
func (g *Generator) Render(item *domain.Candidate) (string, error) {
	lastBuild := rfc1123(g.now())

	feed := &RSS{
		Version: "2.0",
		Channel: &RSSChannel{
			Title:         g.channel.Title,
			Link:          g.channel.Link,
			Description:   g.channel.Description,
			LastBuildDate: lastBuild,
			Generator:     g.channel.Generator,
			Items:         []*RSSItem{},
		},
	}

	if g.channel.SelfLink != "" {
		feed.Atom = "http://www.w3.org/2005/Atom"
		feed.Channel.AtomLink = &AtomLink{Href: g.channel.SelfLink, Rel: "self", Type: "application/rss+xml"}
	}

	if item != nil {
		feed.Channel.Items = append(feed.Channel.Items, g.convertToRSSItem(item, lastBuild))
	}

	// marshal to XML
	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	// add XML declaration
	return xml.Header + string(output) + "\n", nil
}

// convertToRSSItem converts a candidate to an RSS item, lastBuild is used when the candidate has no date
func (g *Generator) convertToRSSItem(item *domain.Candidate, lastBuild string) *RSSItem {
	title := strings.TrimSpace(item.Title)
	link := item.CleanURL()

	pubDate := lastBuild
	if item.Published != nil {
		pubDate = rfc1123(*item.Published)
	}

	// guid falls back to a composite when there is no link, it is not a permalink then
	guid := &RSSGUID{IsPermaLink: true, Value: link}
	if link == "" {
		guid = &RSSGUID{IsPermaLink: false, Value: title + pubDate}
	}

	return &RSSItem{
		Title:       title,
		Link:        link,
		GUID:        guid,
		PubDate:     pubDate,
		Description: strings.TrimSpace(item.Snippet),
	}
}

func rfc1123(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}
