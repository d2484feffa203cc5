package publisher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/trendoai/internal/ai"
	"github.com/kovalyov-valentin/trendoai/internal/botkit/markup"
	"github.com/kovalyov-valentin/trendoai/internal/metrics"
	"github.com/kovalyov-valentin/trendoai/internal/model"
	"github.com/kovalyov-valentin/trendoai/internal/topics"
)

type Generator interface {
	Article(ctx context.Context, req model.GenerationRequest) (model.GenerationResult, error)
	Marketing(ctx context.Context) (string, error)
}

type ImageResolver interface {
	Resolve(ctx context.Context, topic string) string
}

type ArticleStorage interface {
	Create(ctx context.Context, article model.Article) (int64, error)
	MarkPublished(ctx context.Context, id int64, slug string) error
}

type Channel interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, photoURL, caption string) error
	SendPlain(ctx context.Context, text string) error
}

type TopicPicker interface {
	Pick() topics.Topic
}

// Publisher проводит один цикл: тема, генерация, картинка, сохранение, пост в канал
type Publisher struct {
	generator Generator
	images    ImageResolver
	articles  ArticleStorage
	channel   Channel
	topics    TopicPicker

	categories  []string
	siteURL     string
	constraints model.Constraints
}

func New(
	generator Generator,
	images ImageResolver,
	articles ArticleStorage,
	channel Channel,
	topicPicker TopicPicker,
	categories []string,
	siteURL string,
) *Publisher {
	return &Publisher{
		generator:   generator,
		images:      images,
		articles:    articles,
		channel:     channel,
		topics:      topicPicker,
		categories:  categories,
		siteURL:     strings.TrimRight(siteURL, "/"),
		constraints: model.DefaultConstraints,
	}
}

// Publish возвращает true, если статья сгенерирована и сохранена.
// Ошибка доставки в канал на результат не влияет
func (p *Publisher) Publish(ctx context.Context, topic, category string) bool {
	runID := uuid.NewString()

	var background string
	if topic == "" {
		picked := p.topics.Pick()
		topic, background = picked.Title, picked.Background
	}
	if topic == "" {
		log.Printf("[ERROR] run %s: topic pool is empty", runID)
		metrics.PublishCycles.WithLabelValues("no_topic").Inc()
		return false
	}

	if category == "" {
		category = lo.Sample(p.categories)
	}

	log.Printf("[INFO] run %s: generating post, topic %q, category %q", runID, topic, category)

	result, err := p.generator.Article(ctx, model.GenerationRequest{
		Topic:       topic,
		Category:    category,
		Background:  background,
		Constraints: p.constraints,
	})
	if err != nil {
		status := "failed"
		if errors.Is(err, ai.ErrExhausted) {
			status = "exhausted"
		}
		log.Printf("[ERROR] run %s: generation failed: %v", runID, err)
		metrics.PublishCycles.WithLabelValues(status).Inc()
		return false
	}

	if result.Title == "" || result.Keywords == "" || result.Content == "" {
		log.Printf("[ERROR] run %s: generation result is incomplete, skipping", runID)
		metrics.PublishCycles.WithLabelValues("failed").Inc()
		return false
	}

	article := model.Article{
		Title:       result.Title,
		Content:     result.Content,
		Topic:       topic,
		Category:    category,
		Keywords:    result.Keywords,
		ImageURL:    p.images.Resolve(ctx, topic),
		ReadingTime: model.ReadingTime(result.Content),
	}

	id, err := p.articles.Create(ctx, article)
	if err != nil {
		log.Printf("[ERROR] run %s: saving article: %v", runID, err)
		metrics.PublishCycles.WithLabelValues("storage_failed").Inc()
		return false
	}
	article.ID = id
	article.Slug = model.Slug(article.Title, id)

	// Опубликованной статья становится только вместе со слагом
	if err := p.articles.MarkPublished(ctx, id, article.Slug); err != nil {
		log.Printf("[ERROR] run %s: publishing article %d: %v", runID, id, err)
		metrics.PublishCycles.WithLabelValues("storage_failed").Inc()
		return false
	}
	article.IsPublished = true

	log.Printf("[INFO] run %s: article %d %q saved", runID, id, article.Title)
	metrics.PublishCycles.WithLabelValues("published").Inc()

	p.deliver(ctx, runID, article)

	return true
}

// Сначала пробуем фото с подписью, если не вышло, шлем текст
func (p *Publisher) deliver(ctx context.Context, runID string, article model.Article) {
	caption := Caption(article, p.siteURL)

	if article.ImageURL != "" {
		err := p.channel.SendPhoto(ctx, article.ImageURL, caption)
		if err == nil {
			return
		}
		log.Printf("[WARN] run %s: sending photo failed, falling back to text: %v", runID, err)
	}

	if err := p.channel.SendText(ctx, caption); err != nil {
		log.Printf("[ERROR] run %s: sending article %d to channel: %v", runID, article.ID, err)
	}
}

// MarketingPost генерирует рекламный пост и отправляет его в канал без разметки
func (p *Publisher) MarketingPost(ctx context.Context) error {
	text, err := p.generator.Marketing(ctx)
	if err != nil {
		return fmt.Errorf("generate marketing post: %w", err)
	}

	return p.channel.SendPlain(ctx, text)
}

// Caption собирает подпись в MarkdownV2. Все пользовательские куски экранируются
func Caption(article model.Article, siteURL string) string {
	const captionFormat = "📝 *Yangi Maqola\\!*\n\n" +
		"*%s*\n\n" +
		"🏷 Kategoriya: \\#%s\n" +
		"⏱ O'qish vaqti: %d daqiqa\n\n" +
		"🔗 [Maqolani o'qish](%s)\n\n" +
		"\\#TrendoAI \\#Texnologiya"

	return fmt.Sprintf(
		captionFormat,
		markup.EscapeForMarkdown(article.Title),
		markup.EscapeForMarkdown(strings.ReplaceAll(article.Category, " ", "_")),
		article.ReadingTime,
		markup.EscapeLinkURL(PostURL(siteURL, article.ID)),
	)
}

func PostURL(siteURL string, id int64) string {
	return fmt.Sprintf("%s/post/%d", strings.TrimRight(siteURL, "/"), id)
}
