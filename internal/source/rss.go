package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/SlyMarbo/rss"
	"github.com/go-shiori/go-readability"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

// RSS лента, из которой берем свежие заголовки для тем
type RSSSource struct {
	// URL откуда мы забираем данные
	URL        string
	SourceName string
}

func NewRSSSource(name, url string) RSSSource {
	return RSSSource{
		URL:        url,
		SourceName: name,
	}
}

func (s RSSSource) Name() string {
	return s.SourceName
}

func (s RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	feed, err := s.loadFeed(ctx, s.URL)
	if err != nil {
		return nil, err
	}

	return Items(feed, s.SourceName), nil
}

// Items мапит ленту в наши модели. Html из summary чистим через readability
func Items(feed *rss.Feed, sourceName string) []model.Item {
	return lo.Map(feed.Items, func(item *rss.Item, _ int) model.Item {
		return model.Item{
			Title:      strings.TrimSpace(item.Title),
			Categories: item.Categories,
			Link:       item.Link,
			Date:       item.Date.UTC(),
			Summary:    plainText(item.Summary),
			SourceName: sourceName,
		}
	})
}

// Каналы буферизованы, чтобы горутина не зависла, если контекст закончился раньше
func (s RSSSource) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	var (
		feedCh = make(chan *rss.Feed, 1)
		errCh  = make(chan error, 1)
	)

	go func() {
		feed, err := rss.Fetch(url)
		if err != nil {
			errCh <- err
			return
		}

		feedCh <- feed
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case feed := <-feedCh:
		return feed, nil
	}
}

var (
	// Readability оставляет много пустых строк, схлопываем 3 и больше в одну
	redundantNewLines = regexp.MustCompile(`\n{3,}`)
	tags              = regexp.MustCompile(`<[^>]*>`)
)

func plainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil || strings.TrimSpace(doc.TextContent) == "" {
		// Короткий фрагмент readability может не осилить, тогда просто срезаем теги
		return strings.TrimSpace(tags.ReplaceAllString(html, ""))
	}

	return strings.TrimSpace(redundantNewLines.ReplaceAllString(doc.TextContent, "\n"))
}
