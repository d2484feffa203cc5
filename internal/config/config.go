package config

import (
	"log"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/joho/godotenv"
)

// Хранить в файле мы будем в формате hcl.
// Также указываем ключ для переменных окружения
type Config struct {
	TelegramBotToken string `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	// Числовой id канала или @username
	TelegramChannel string `hcl:"telegram_channel" env:"TELEGRAM_CHANNEL"`
	TelegramAdminID int64  `hcl:"telegram_admin_id" env:"TELEGRAM_ADMIN_ID"`

	DatabaseDSN string `hcl:"database_dsn" env:"DATABASE_DSN" default:"sqlite://trendoai.db"`
	SiteURL     string `hcl:"site_url" env:"SITE_URL" default:"https://trendoai.onrender.com"`
	HTTPAddr    string `hcl:"http_addr" env:"HTTP_ADDR" default:":8080"`
	CronSecret  string `hcl:"cron_secret" env:"CRON_SECRET"`

	// gemini или openai
	AIProvider string        `hcl:"ai_provider" env:"AI_PROVIDER" default:"gemini"`
	AITimeout  time.Duration `hcl:"ai_timeout" env:"AI_TIMEOUT" default:"90s"`
	// Google Search grounding для свежих данных
	AISearch bool `hcl:"ai_search" env:"AI_SEARCH" default:"true"`

	GeminiAPIKey      string `hcl:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiAPIKey2     string `hcl:"gemini_api_key2" env:"GEMINI_API_KEY2"`
	GeminiModel       string `hcl:"gemini_model" env:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiBackupModel string `hcl:"gemini_backup_model" env:"GEMINI_BACKUP_MODEL" default:"gemini-2.0-flash"`

	OpenAIKey         string `hcl:"openai_key" env:"OPENAI_KEY"`
	OpenAIKey2        string `hcl:"openai_key2" env:"OPENAI_KEY2"`
	OpenAIBaseURL     string `hcl:"openai_base_url" env:"OPENAI_BASE_URL"`
	OpenAIModel       string `hcl:"openai_model" env:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBackupModel string `hcl:"openai_backup_model" env:"OPENAI_BACKUP_MODEL"`

	// Повторы внутри одной ступени лестницы и базовая задержка
	RetryAttempts int           `hcl:"retry_attempts" env:"RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `hcl:"retry_delay" env:"RETRY_DELAY" default:"2s"`

	UnsplashAccessKey string `hcl:"unsplash_access_key" env:"UNSPLASH_ACCESS_KEY"`

	Timezone         string   `hcl:"timezone" env:"TIMEZONE" default:"Asia/Tashkent"`
	ScheduleFromHour int      `hcl:"schedule_from_hour" env:"SCHEDULE_FROM_HOUR" default:"6"`
	ScheduleToHour   int      `hcl:"schedule_to_hour" env:"SCHEDULE_TO_HOUR" default:"22"`
	Categories       []string `hcl:"categories" env:"CATEGORIES"`

	// RSS ленты, из которых берем свежие темы
	TopicFeeds          []string      `hcl:"topic_feeds" env:"TOPIC_FEEDS"`
	FeedRefreshInterval time.Duration `hcl:"feed_refresh_interval" env:"FEED_REFRESH_INTERVAL" default:"30m"`
	FeedMaxAge          time.Duration `hcl:"feed_max_age" env:"FEED_MAX_AGE" default:"48h"`
	FilterKeywords      []string      `hcl:"filter_keywords" env:"FILTER_KEYWORDS"`
}

// cfg - инстанс конфига, в который мы будем читать данные.
// Once гарантирует, что конфиг читается один раз, откуда бы его ни запросили
var (
	cfg  Config
	once sync.Once
)

// Метод get, который возвращает конфиг
func Get() Config {
	once.Do(func() {
		cfg = Load(".env", "./config.hcl", "./config.local.hcl")
	})

	return cfg
}

// Load читает .env, потом hcl файлы, потом переменные окружения с префиксом TRENDO_
func Load(envFile string, files ...string) Config {
	var c Config

	// .env может и не быть, это нормально
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("[INFO] no env file loaded: %v", err)
	}

	loader := aconfig.LoaderFor(&c, aconfig.Config{
		// Префикс для переменных окружения, чтобы они случайно не пересеклись с чужими
		EnvPrefix: "TRENDO",
		// Флаги разбирает cobra
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		log.Printf("[ERROR] failed to load config: %v", err)
	}

	return c
}
