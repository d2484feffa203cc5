package publisher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/trendoai/internal/ai"
	"github.com/kovalyov-valentin/trendoai/internal/generator"
	"github.com/kovalyov-valentin/trendoai/internal/model"
	"github.com/kovalyov-valentin/trendoai/internal/notifier"
	"github.com/kovalyov-valentin/trendoai/internal/storage"
	"github.com/kovalyov-valentin/trendoai/internal/topics"
)

type fakeClient struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (c *fakeClient) Generate(context.Context, model.CredentialProfile, string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.reply, c.err
}

type fakeImages struct{ url string }

func (f fakeImages) Resolve(context.Context, string) string { return f.url }

type delivery struct {
	kind    string
	photo   string
	caption string
}

type fakeChannel struct {
	mu         sync.Mutex
	deliveries []delivery
	photoErr   error
	textErr    error
}

func (c *fakeChannel) SendText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, delivery{kind: "text", caption: text})
	return c.textErr
}

func (c *fakeChannel) SendPlain(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, delivery{kind: "plain", caption: text})
	return c.textErr
}

func (c *fakeChannel) SendPhoto(_ context.Context, photoURL, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, delivery{kind: "photo", photo: photoURL, caption: caption})
	return c.photoErr
}

type fixedTopic struct{ topic topics.Topic }

func (f fixedTopic) Pick() topics.Topic { return f.topic }

type env struct {
	gen      *generator.Generator
	client   *fakeClient
	channel  *fakeChannel
	articles *storage.ArticleStorage
	pub      *Publisher
}

func newEnv(t *testing.T, reply string, imageURL string) env {
	t.Helper()

	db, err := storage.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.Migrate(context.Background(), db))

	policy := ai.DefaultPolicy()
	policy.Sleep = func(context.Context, time.Duration) error { return nil }
	fallback := ai.NewFallback(ai.NewLadder("key1", "gemini-2.5-flash", "gemini-2.0-flash", "key2"), policy)

	client := &fakeClient{reply: reply}
	channel := &fakeChannel{}
	articles := storage.NewArticleStorage(db)

	gen := generator.New(client, fallback)
	pub := New(
		gen,
		fakeImages{url: imageURL},
		articles,
		channel,
		fixedTopic{topic: topics.Topic{Title: "Random topic"}},
		topics.Categories,
		"https://trendoai.uz/",
	)

	return env{gen: gen, client: client, channel: channel, articles: articles, pub: pub}
}

const goodReply = "```json\n" + `{"title":"Go 1.24: yangi imkoniyatlar!","keywords":"go, release","content":"` + "so'z so'z so'z" + `"}` + "\n```"

func TestPublishEndToEnd(t *testing.T) {
	t.Parallel()

	e := newEnv(t, goodReply, "https://images.example/1?w=1200")
	ctx := context.Background()

	ok := e.pub.Publish(ctx, "X", "Y")
	require.True(t, ok)
	assert.Equal(t, 1, e.client.calls)

	recent, err := e.articles.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	article := recent[0]
	assert.True(t, article.IsPublished)
	assert.Equal(t, "Y", article.Category)
	assert.Equal(t, "X", article.Topic)
	assert.GreaterOrEqual(t, article.ReadingTime, 1)
	assert.NotEmpty(t, article.Slug)
	assert.True(t, strings.HasSuffix(article.Slug, "-1"), article.Slug)
	assert.Equal(t, "https://images.example/1?w=1200", article.ImageURL)

	require.Len(t, e.channel.deliveries, 1)
	d := e.channel.deliveries[0]
	assert.Equal(t, "photo", d.kind)
	assert.Contains(t, d.caption, `*Go 1\.24: yangi imkoniyatlar\!*`)
	assert.Contains(t, d.caption, "(https://trendoai.uz/post/1)")
	assert.Contains(t, d.caption, `\#Y`)
}

func TestPublishPicksTopicAndCategory(t *testing.T) {
	t.Parallel()

	e := newEnv(t, goodReply, "")

	require.True(t, e.pub.Publish(context.Background(), "", ""))

	recent, err := e.articles.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Random topic", recent[0].Topic)
	assert.Contains(t, topics.Categories, recent[0].Category)

	// без картинки сразу текст
	require.Len(t, e.channel.deliveries, 1)
	assert.Equal(t, "text", e.channel.deliveries[0].kind)
}

func TestPublishDoesNotPersistIncompleteResult(t *testing.T) {
	t.Parallel()

	e := newEnv(t, `{"title":"A","keywords":"x"}`, "https://img")

	assert.False(t, e.pub.Publish(context.Background(), "X", "Y"))

	stats, err := e.articles.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, e.channel.deliveries)
}

type failingPublish struct {
	*storage.ArticleStorage
}

func (failingPublish) MarkPublished(context.Context, int64, string) error {
	return errors.New("disk full")
}

func TestPublishLeavesRowUnpublishedWhenSlugFails(t *testing.T) {
	t.Parallel()

	e := newEnv(t, goodReply, "https://img")
	pub := New(e.gen, fakeImages{url: "https://img"}, failingPublish{e.articles}, e.channel,
		fixedTopic{}, topics.Categories, "https://trendoai.uz")

	assert.False(t, pub.Publish(context.Background(), "X", "Y"))

	stats, err := e.articles.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Zero(t, stats.Published)
	assert.Empty(t, e.channel.deliveries)
}

func TestPublishWithoutTelegramStillPersists(t *testing.T) {
	t.Parallel()

	e := newEnv(t, goodReply, "https://img")
	pub := New(e.gen, fakeImages{url: "https://img"}, e.articles, notifier.New(nil, ""),
		fixedTopic{}, topics.Categories, "https://trendoai.uz")

	assert.True(t, pub.Publish(context.Background(), "X", "Y"))

	stats, err := e.articles.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Published)
}

func TestPublishGenerationFailure(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "", "https://img")
	e.client.err = errors.New("quota exceeded")

	assert.False(t, e.pub.Publish(context.Background(), "X", "Y"))
	assert.Empty(t, e.channel.deliveries)
}

func TestPublishFallsBackToTextAndIgnoresDeliveryFailure(t *testing.T) {
	t.Parallel()

	e := newEnv(t, goodReply, "https://img")
	e.channel.photoErr = errors.New("wrong file identifier")
	e.channel.textErr = errors.New("chat not found")

	assert.True(t, e.pub.Publish(context.Background(), "X", "Y"))

	require.Len(t, e.channel.deliveries, 2)
	assert.Equal(t, "photo", e.channel.deliveries[0].kind)
	assert.Equal(t, "text", e.channel.deliveries[1].kind)

	stats, err := e.articles.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Published)
}

func TestMarketingPost(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "*TrendoAI* - eng yaxshi blog!", "")

	require.NoError(t, e.pub.MarketingPost(context.Background()))

	require.Len(t, e.channel.deliveries, 1)
	assert.Equal(t, "plain", e.channel.deliveries[0].kind)
	assert.Equal(t, "*TrendoAI* - eng yaxshi blog!", e.channel.deliveries[0].caption)
}

func TestCaption(t *testing.T) {
	t.Parallel()

	got := Caption(model.Article{
		ID:          12,
		Title:       "AI_agentlar [2026]",
		Category:    "Sun'iy Intellekt",
		ReadingTime: 5,
	}, "https://trendoai.uz")

	assert.Equal(t, "📝 *Yangi Maqola\\!*\n\n"+
		"*AI\\_agentlar \\[2026\\]*\n\n"+
		"🏷 Kategoriya: \\#Sun'iy\\_Intellekt\n"+
		"⏱ O'qish vaqti: 5 daqiqa\n\n"+
		"🔗 [Maqolani o'qish](https://trendoai.uz/post/12)\n\n"+
		"\\#TrendoAI \\#Texnologiya", got)
}
