// Package prompt собирает текстовые промты для генеративной модели.
// Все функции чистые: без ввода-вывода и без ошибок.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

// Ключи, которые модель обязана вернуть для статьи
var ArticleKeys = []string{"title", "keywords", "content"}

// Ключи для карточки портфолио
var PortfolioKeys = []string{"description", "technologies", "features", "details", "meta_description", "meta_keywords"}

// Человеческие названия категорий портфолио
var portfolioCategories = map[string]string{
	"bot":    "Telegram Bot",
	"web":    "Web Sayt",
	"ai":     "AI Yechim",
	"mobile": "Mobile Ilova",
}

// Промт для SEO статьи. Пустую тему вызывающий код не передает
func Article(req model.GenerationRequest) string {
	c := req.Constraints
	if c == (model.Constraints{}) {
		c = model.DefaultConstraints
	}

	var b strings.Builder

	b.WriteString("Siz TrendoAI uchun professional SEO-maqola yozuvchi ekspertisiz.\n\n")

	b.WriteString("=== 80/20 QOIDASI ===\n")
	b.WriteString("- 80% FOYDALI MA'LUMOT: O'quvchiga haqiqiy qiymat bering\n")
	b.WriteString("- 20% KOMPANIYA HAQIDA: Faqat oxirida yengil eslatma\n\n")

	b.WriteString("=== VAZIFA ===\n")
	fmt.Fprintf(&b, "%q mavzusida professional maqola yozing.\n", req.Topic)
	if req.Category != "" {
		fmt.Fprintf(&b, "Kategoriya: %s\n", req.Category)
	}
	b.WriteString("\n")

	if req.Background != "" {
		b.WriteString("=== KONTEKST ===\n")
		b.WriteString("Quyidagi yangilikdan foydalaning, lekin matnni ko'chirmang:\n")
		b.WriteString(req.Background)
		b.WriteString("\n\n")
	}

	b.WriteString("=== SEO TALABLARI ===\n")
	b.WriteString("- Asosiy kalit so'z ALBATTA sarlavhada bo'lsin\n")
	b.WriteString("- Birinchi 100 so'zda asosiy kalit so'z bo'lsin\n")
	b.WriteString("- Har bir H2/H3 sarlavhada kalit so'z varianti bo'lsin\n")
	fmt.Fprintf(&b, "- %d-%d so'z uzunlik\n\n", c.MinWords, c.MaxWords)

	b.WriteString("=== KONTENT TALABLARI ===\n")
	fmt.Fprintf(&b, "1. %s\n", c.Language)
	fmt.Fprintf(&b, "2. Ohang: %s\n", c.Tone)
	b.WriteString("3. Amaliy misollar va statistika (raqamlar bilan)\n")
	b.WriteString("4. FAQAT Markdown formatlash (## ### ** - 1.)\n")
	b.WriteString("5. HTML teglar YO'Q\n\n")

	b.WriteString("=== STRUKTURA ===\n")
	b.WriteString("- **Kirish**: Muammoni tushuntiring (150-200 so'z)\n")
	fmt.Fprintf(&b, "- **Asosiy qism**: %d ta bo'lim, har bir H2 da kalit so'z varianti\n", c.Sections)
	b.WriteString("- **Xulosa**: Qisqa takrorlash + TrendoAI eslatmasi\n\n")

	b.WriteString("JSON formatida javob bering:\n")
	b.WriteString("{\n")
	b.WriteString(`  "title": "Asosiy kalit so'z + raqam/savol sarlavha (50-65 belgi)",` + "\n")
	b.WriteString(`  "keywords": "asosiy_kalit, variant_kalit, texnologiya, muammo_yechim, mahalliy",` + "\n")
	fmt.Fprintf(&b, `  "content": "To'liq Markdown maqola (%d-%d so'z)"`+"\n", c.MinWords, c.MaxWords)
	b.WriteString("}\n\n")
	b.WriteString("Faqat JSON qaytaring!\n")

	return b.String()
}

// Промт для карточки портфолио
func Portfolio(title, category string) string {
	name, ok := portfolioCategories[category]
	if !ok {
		name = category
	}

	return fmt.Sprintf(`Siz TrendoAI uchun professional portfolio kontenti yozuvchisiz.

Vazifa: %q nomli %s loyihasi uchun professional marketing kontenti yarating.

MUHIM TALABLAR:
1. O'zbek tilida (lotin alifbosi) yozing
2. Professional va ishonchli ohangda
3. Mijozlarni jalb qiluvchi

JSON formatida javob bering:
{
  "description": "Loyiha haqida qisqa tavsif (2-3 jumla, 100-150 belgi)",
  "technologies": "Python, Flask, PostgreSQL (3-5 ta texnologiya, vergul bilan)",
  "features": "To'lov tizimi, Admin panel, Real-time xabarlar (5-7 ta feature, vergul bilan)",
  "details": "## Loyiha haqida\n\nBatafsil ma'lumot markdown formatida. 150-200 so'z.",
  "meta_description": "SEO uchun meta tavsif (150-160 belgi)",
  "meta_keywords": "telegram bot, python (5-7 kalit so'z, vergul bilan)"
}

Faqat JSON qaytaring!
`, title, name)
}

// Промт для короткого рекламного поста в канал. Ответ свободным текстом, без JSON
func Marketing() string {
	return `TrendoAI - O'zbekistondagi texnologiya va sun'iy intellekt haqidagi blog platformasi uchun Telegram kanaliga qisqa, jalb qiluvchi post yozing.

TrendoAI haqida:
- Trending texnologiya yangiliklari
- Sun'iy intellekt va AI haqida maqolalar
- Dasturlash bo'yicha qo'llanmalar
- Startap va IT biznes maslahatlar

Post talablari:
- 150-200 so'z
- Qiziqarli va professional
- Emoji'lar ishlating
- Harakatga chaqiruvchi tugallang
- Markdown belgilarisiz (*, _, #), oddiy matn

Faqat post matnini yozing.
`
}
