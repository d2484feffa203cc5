package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// Скорость чтения, по которой считаем время чтения статьи
const WordsPerMinute = 250

// Статья блога, которую мы генерируем, сохраняем и отправляем в канал
type Article struct {
	ID    int64
	Title string
	// Уникальный идентификатор для url, появляется только после вставки
	Slug    string
	Content string
	// Тема, по которой генерировали статью
	Topic    string
	Category string
	// Ключевые слова через запятую
	Keywords string
	ImageURL string
	Views    int64
	// Время чтения в минутах
	ReadingTime int
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Время чтения: количество слов / 250, округление как у банкиров, минимум 1 минута
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.RoundToEven(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

var (
	slugDrop     = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Кириллица и узбекские буквы в латиницу, чтобы slug был читаемым в url
var translit = strings.NewReplacer(
	"а", "a", "б", "b", "в", "v", "г", "g", "д", "d", "е", "e", "ё", "yo",
	"ж", "j", "з", "z", "и", "i", "й", "y", "к", "k", "л", "l", "м", "m",
	"н", "n", "о", "o", "п", "p", "р", "r", "с", "s", "т", "t", "у", "u",
	"ф", "f", "х", "x", "ц", "ts", "ч", "ch", "ш", "sh", "щ", "sch",
	"ъ", "", "ы", "i", "ь", "", "э", "e", "ю", "yu", "я", "ya",
	"ў", "o", "қ", "q", "ғ", "g", "ҳ", "h",
	"ʻ", "", "ʼ", "", "’", "", "'", "",
)

// Slug строится из заголовка и id. Id в конце гарантирует уникальность без повторных попыток
func Slug(title string, id int64) string {
	slug := translit.Replace(strings.ToLower(title))
	slug = slugDrop.ReplaceAllString(slug, "")
	slug = strings.Trim(slugCollapse.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		slug = "post"
	}

	return fmt.Sprintf("%s-%d", slug, id)
}

// Ограничения на структуру статьи, которые попадают в промт
type Constraints struct {
	MinWords int
	MaxWords int
	// Количество основных разделов
	Sections int
	Tone     string
	Language string
}

// Стандартные ограничения для SEO статьи
var DefaultConstraints = Constraints{
	MinWords: 1000,
	MaxWords: 1500,
	Sections: 5,
	Tone:     "professional lekin tushunarli",
	Language: "O'zbek tilida (lotin alifbosi)",
}

// Запрос на генерацию. Создается на каждый вызов и нигде не хранится
type GenerationRequest struct {
	Topic    string
	Category string
	// Выжимка из новости, если тема пришла из ленты
	Background  string
	Constraints Constraints
}

// Элемент RSS ленты, из которого берем свежую тему
type Item struct {
	Title      string
	Categories []string
	Link       string
	Date       time.Time
	// Текст без html
	Summary    string
	SourceName string
}

// Результат генерации статьи, все три поля обязательны
type GenerationResult struct {
	Title    string
	Keywords string
	Content  string
}

// Контент для карточки портфолио
type PortfolioContent struct {
	Description     string `json:"description"`
	Technologies    string `json:"technologies"`
	Features        string `json:"features"`
	Details         string `json:"details"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
}

// Пара ключ + модель, по которой ходим в генеративное api
type CredentialProfile struct {
	APIKey string
	Model  string
}

// Ключ в логах не светим
func (p CredentialProfile) String() string {
	key := p.APIKey
	if len(key) > 4 {
		key = "..." + key[len(key)-4:]
	}
	return fmt.Sprintf("%s (key %s)", p.Model, key)
}
