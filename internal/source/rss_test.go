package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Go Blog</title>
	<link>https://go.dev/blog</link>
	<description>Go news</description>
	<item>
		<title> Go 1.24 is released </title>
		<link>https://go.dev/blog/go1.24</link>
		<category>release</category>
		<pubDate>Tue, 11 Feb 2025 10:00:00 +0000</pubDate>
		<description><![CDATA[<p>Today the Go team is happy to release <b>Go 1.24</b>.</p>]]></description>
	</item>
	<item>
		<title>Range functions</title>
		<link>https://go.dev/blog/range-functions</link>
		<pubDate>Wed, 20 Aug 2024 08:00:00 +0000</pubDate>
	</item>
</channel>
</rss>`

func TestItems(t *testing.T) {
	t.Parallel()

	feed, err := rss.Parse([]byte(feedXML))
	require.NoError(t, err)

	items := Items(feed, "go.dev")
	require.Len(t, items, 2)

	assert.Equal(t, "Go 1.24 is released", items[0].Title)
	assert.Equal(t, "https://go.dev/blog/go1.24", items[0].Link)
	assert.Equal(t, []string{"release"}, items[0].Categories)
	assert.Equal(t, "go.dev", items[0].SourceName)
	assert.True(t, items[0].Date.Equal(time.Date(2025, 2, 11, 10, 0, 0, 0, time.UTC)))
	assert.Contains(t, items[0].Summary, "Go 1.24")
	assert.NotContains(t, items[0].Summary, "<")

	assert.Empty(t, items[1].Summary)
}

func TestRSSSourceFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	src := NewRSSSource("go.dev", server.URL)

	items, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "go.dev", src.Name())
}

func TestRSSSourceFetchHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRSSSource("x", "http://127.0.0.1:1/feed").Fetch(ctx)

	assert.Error(t, err)
}
