package main

import (
	"context"
	"fmt"
	"log"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"

	"github.com/kovalyov-valentin/trendoai/internal/ai"
	"github.com/kovalyov-valentin/trendoai/internal/config"
	"github.com/kovalyov-valentin/trendoai/internal/generator"
	"github.com/kovalyov-valentin/trendoai/internal/image"
	"github.com/kovalyov-valentin/trendoai/internal/notifier"
	"github.com/kovalyov-valentin/trendoai/internal/publisher"
	"github.com/kovalyov-valentin/trendoai/internal/source"
	"github.com/kovalyov-valentin/trendoai/internal/storage"
	"github.com/kovalyov-valentin/trendoai/internal/topics"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// Зависимости, общие для всех команд
type app struct {
	cfg        config.Config
	db         *sqlx.DB
	ladder     *ai.Ladder
	generator  *generator.Generator
	images     *image.Resolver
	articles   *storage.ArticleStorage
	pool       *topics.Pool
	categories []string
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	client, ladder, err := newAI(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := ai.DefaultPolicy()
	policy.MaxRetries = cfg.RetryAttempts
	policy.BaseDelay = cfg.RetryDelay

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = topics.Categories
	}

	return &app{
		cfg:        cfg,
		db:         db,
		ladder:     ladder,
		generator:  generator.New(client, ai.NewFallback(ladder, policy)),
		images:     image.NewResolver(cfg.UnsplashAccessKey),
		articles:   storage.NewArticleStorage(db),
		pool:       newTopicPool(cfg),
		categories: categories,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// newPublisher собирается отдельно, потому что ему нужен бот для канала
func (a *app) newPublisher(botAPI *tgbotapi.BotAPI) *publisher.Publisher {
	return publisher.New(
		a.generator,
		a.images,
		a.articles,
		notifier.New(botAPI, a.cfg.TelegramChannel),
		a.pool,
		a.categories,
		a.cfg.SiteURL,
	)
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := storage.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

// newAI выбирает провайдера и строит лестницу из его ключей и моделей.
// Пустой ключ не мешает запуску: попытки с ним падают и лестница исчерпывается как обычно
func newAI(cfg config.Config) (ai.Client, *ai.Ladder, error) {
	switch cfg.AIProvider {
	case providerGemini:
		if cfg.GeminiAPIKey == "" {
			log.Printf("[ERROR] gemini api key is not set, generation will fail")
		}
		client := ai.NewGeminiClient(cfg.AITimeout, ai.WithGoogleSearch(cfg.AISearch))
		return client, ai.NewLadder(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBackupModel, cfg.GeminiAPIKey2), nil
	case providerOpenAI:
		if cfg.OpenAIKey == "" {
			log.Printf("[ERROR] openai key is not set, generation will fail")
		}
		client := ai.NewOpenAIClient(cfg.AITimeout, cfg.OpenAIBaseURL)
		return client, ai.NewLadder(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBackupModel, cfg.OpenAIKey2), nil
	default:
		return nil, nil, fmt.Errorf("unknown ai provider %q", cfg.AIProvider)
	}
}

func newTopicPool(cfg config.Config) *topics.Pool {
	sources := make([]topics.Source, 0, len(cfg.TopicFeeds))
	for _, feed := range cfg.TopicFeeds {
		sources = append(sources, source.NewRSSSource(feedName(feed), feed))
	}

	return topics.NewPool(topics.Static, sources, cfg.FeedRefreshInterval, cfg.FeedMaxAge, cfg.FilterKeywords)
}

// Имя источника для фона статьи: хост ленты
func feedName(feed string) string {
	u, err := url.Parse(feed)
	if err != nil || u.Host == "" {
		return feed
	}
	return u.Host
}

// newBotAPI возвращает nil, если бота нет. Статьи тогда сохраняются, а доставка в канал
// падает с notifier.ErrNoChannel
func newBotAPI(cfg config.Config) *tgbotapi.BotAPI {
	if cfg.TelegramBotToken == "" {
		log.Printf("[ERROR] telegram bot token is not set, channel delivery is disabled")
		return nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("[ERROR] failed to create bot, channel delivery is disabled: %v", err)
		return nil
	}

	return botAPI
}
