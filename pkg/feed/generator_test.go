package feed

import (
	"encoding/xml"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/indexfeed/pkg/domain"
)

var testChannel = Channel{
	Title:       "Hedgepoint HUB – Novos Relatórios (via índice)",
	Link:        "https://www.hedgepointhub.com.br/blog/",
	Description: "Feed não-oficial gerado a partir de resultados indexados em buscadores.",
	Generator:   "indexfeed",
}

func newTestGenerator(channel Channel, now time.Time) *Generator {
	g := NewGenerator(channel)
	g.now = func() time.Time { return now }
	return g
}

func TestGenerator_Render(t *testing.T) {
	buildTime := time.Date(2024, 3, 4, 15, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	generator := newTestGenerator(testChannel, buildTime)

	t.Run("channel metadata without item", func(t *testing.T) {
		rss, err := generator.Render(nil)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(rss, `<?xml version="1.0" encoding="UTF-8"?>`))
		assert.Contains(t, rss, `<rss version="2.0">`)
		assert.Contains(t, rss, `<title>Hedgepoint HUB – Novos Relatórios (via índice)</title>`)
		assert.Contains(t, rss, `<link>https://www.hedgepointhub.com.br/blog/</link>`)
		assert.Contains(t, rss, `<description>Feed não-oficial gerado a partir de resultados indexados em buscadores.</description>`)
		assert.Contains(t, rss, `<lastBuildDate>Mon, 04 Mar 2024 18:30:00 +0000</lastBuildDate>`, "build time in UTC")
		assert.Contains(t, rss, `<generator>indexfeed</generator>`)
		assert.NotContains(t, rss, `<item>`)
		assert.NotContains(t, rss, `atom`)
	})

	t.Run("item with date and tracking query", func(t *testing.T) {
		published := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		item := &domain.Candidate{
			Title:     "  Relatório Semanal  ",
			URL:       "https://www.hedgepointhub.com.br/blog/post-x?utm=abc",
			Snippet:   " Resumo da semana ",
			Published: &published,
		}

		rss, err := generator.Render(item)
		require.NoError(t, err)

		assert.Equal(t, 1, strings.Count(rss, "<item>"))
		assert.Contains(t, rss, `<title>Relatório Semanal</title>`)
		assert.Contains(t, rss, `<link>https://www.hedgepointhub.com.br/blog/post-x</link>`)
		assert.Contains(t, rss, `<guid isPermaLink="true">https://www.hedgepointhub.com.br/blog/post-x</guid>`)
		assert.Contains(t, rss, `<pubDate>Fri, 01 Mar 2024 09:00:00 +0000</pubDate>`)
		assert.Contains(t, rss, `<description>Resumo da semana</description>`)
		assert.NotContains(t, rss, "utm=abc")
	})

	t.Run("item without date uses build time", func(t *testing.T) {
		item := &domain.Candidate{
			Title: "Relatório Semanal",
			URL:   "https://www.hedgepointhub.com.br/blog/relatorio-semanal",
		}

		rss, err := generator.Render(item)
		require.NoError(t, err)

		assert.Contains(t, rss, `<pubDate>Mon, 04 Mar 2024 18:30:00 +0000</pubDate>`)
		assert.Contains(t, rss, `<description></description>`)
	})

	t.Run("item without url gets composite guid", func(t *testing.T) {
		item := &domain.Candidate{Title: "Sem link"}

		rss, err := generator.Render(item)
		require.NoError(t, err)

		assert.Contains(t, rss, `<link></link>`)
		assert.Contains(t, rss, `<guid isPermaLink="false">Sem linkMon, 04 Mar 2024 18:30:00 +0000</guid>`)
	})

	t.Run("self link adds atom namespace", func(t *testing.T) {
		ch := testChannel
		ch.SelfLink = "https://example.github.io/feed.xml"
		gen := newTestGenerator(ch, buildTime)

		rss, err := gen.Render(nil)
		require.NoError(t, err)

		assert.Contains(t, rss, `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
		assert.Contains(t, rss, `<atom:link href="https://example.github.io/feed.xml" rel="self" type="application/rss+xml"></atom:link>`)

		_, err = Verify(rss)
		require.NoError(t, err)
	})

	t.Run("empty generator omitted", func(t *testing.T) {
		ch := testChannel
		ch.Generator = ""
		rss, err := newTestGenerator(ch, buildTime).Render(nil)
		require.NoError(t, err)
		assert.NotContains(t, rss, "<generator>")
	})
}

func TestGenerator_RenderEscaping(t *testing.T) {
	generator := newTestGenerator(testChannel, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	item := &domain.Candidate{
		Title:   "Relatório <Soja & Milho>",
		URL:     `https://www.hedgepointhub.com.br/blog/a&b"c'd`,
		Snippet: `Preços "altos" & 'baixos' <b>hoje</b>`,
	}

	rss, err := generator.Render(item)
	require.NoError(t, err)

	assert.Contains(t, rss, `<title>Relatório &lt;Soja &amp; Milho&gt;</title>`)
	assert.NotContains(t, rss, "<Soja")
	assert.NotContains(t, rss, "<b>")

	// the document must stay well-formed and round-trip the original text
	var parsed RSS
	require.NoError(t, xml.Unmarshal([]byte(rss), &parsed))
	require.Len(t, parsed.Channel.Items, 1)
	assert.Equal(t, "Relatório <Soja & Milho>", parsed.Channel.Items[0].Title)
	assert.Equal(t, `https://www.hedgepointhub.com.br/blog/a&b"c'd`, parsed.Channel.Items[0].Link)
	assert.Equal(t, `Preços "altos" & 'baixos' <b>hoje</b>`, parsed.Channel.Items[0].Description)
	assert.Equal(t, parsed.Channel.Items[0].Link, parsed.Channel.Items[0].GUID.Value)
	assert.True(t, parsed.Channel.Items[0].GUID.IsPermaLink)

	// no raw quote or apostrophe inside element bodies
	body := regexp.MustCompile(`(?s)<item>.*</item>`).FindString(rss)
	for _, el := range regexp.MustCompile(`>([^<]*)<`).FindAllStringSubmatch(body, -1) {
		assert.NotContains(t, el[1], `"`)
		assert.NotContains(t, el[1], `'`)
	}
}

func TestGenerator_RenderIdempotent(t *testing.T) {
	first, err := newTestGenerator(testChannel, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)).Render(nil)
	require.NoError(t, err)
	second, err := newTestGenerator(testChannel, time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)).Render(nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	lastBuild := regexp.MustCompile(`<lastBuildDate>[^<]*</lastBuildDate>`)
	assert.Equal(t, lastBuild.ReplaceAllString(first, ""), lastBuild.ReplaceAllString(second, ""))

	for _, doc := range []string{first, second} {
		parsed, err := Verify(doc)
		require.NoError(t, err)
		assert.Empty(t, parsed.Items)
	}
}

func TestGenerator_convertToRSSItem(t *testing.T) {
	generator := NewGenerator(testChannel)
	published := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 2*60*60))

	rssItem := generator.convertToRSSItem(&domain.Candidate{
		Title:     "Test Article",
		URL:       "https://example.com/article?ref=feed",
		Snippet:   "Article description",
		Published: &published,
	}, "ignored")

	assert.Equal(t, "Test Article", rssItem.Title)
	assert.Equal(t, "https://example.com/article", rssItem.Link)
	assert.Equal(t, &RSSGUID{IsPermaLink: true, Value: "https://example.com/article"}, rssItem.GUID)
	assert.Equal(t, "Mon, 01 Jan 2024 10:00:00 +0000", rssItem.PubDate)
	assert.Equal(t, "Article description", rssItem.Description)
}
