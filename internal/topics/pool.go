// Package topics отдает темы для генерации: статический список плюс свежие заголовки из RSS лент.
package topics

import (
	"context"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tomakado/containers/set"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

// Темы по правилу 80/20: в основном польза для читателя, немного про услуги
var Static = []string{
	// AI агенты
	"AI Agent nima: Sun'iy intellekt agentlari haqida to'liq qo'llanma 2026",
	"CrewAI bilan multi-agent tizim yaratish: Amaliy loyiha",
	"LangChain Agents: Aqlli AI yordamchi yaratish bosqichma-bosqich",
	"AutoGPT va AgentGPT: Avtonom AI tizimlar qanday ishlaydi",
	"AI Agent + Telegram Bot: Aqlli biznes assistenti yaratish",
	"RAG (Retrieval-Augmented Generation): Ma'lumotlar bazasi bilan AI",
	"AI Agent ish oqimlarini avtomatlashtirish: Real misollar",
	"Multi-agent arxitektura: Bir nechta AI birgalikda ishlashi",
	"AI Agent xavfsizligi: Risklar va himoya usullari",
	"Biznes uchun AI Agent: Xarajatlarni 70% kamaytirish",

	// Новые модели
	"GPT-5 vs Gemini 2.5 vs Claude 4: Qaysi biri yaxshi?",
	"Gemini 2.5 Flash: Tezkor va arzon AI yechim",
	"OpenAI o1 reasoning modeli: Mantiqiy fikrlash AI",
	"Anthropic Claude 4: Uzun kontekst va xavfsizlik",
	"Meta Llama 4: Ochiq kodli AI inqilobi",
	"Mistral AI: Yevropa AI giganti haqida",
	"AI modellarni tanlash: Biznes ehtiyojlariga mos AI",
	"Fine-tuning vs RAG: Qaysi usul sizga mos?",

	// Сайты
	"2026-yil Landing page trendlari: Konversiyani 2x oshirish",
	"Next.js 15 bilan professional sayt yaratish",
	"Veb-sayt tezligi optimizatsiyasi: Core Web Vitals 2026",
	"SEO 2026: Google AI Overview va yangi qoidalar",
	"E-commerce sayt: Uzum, Wildberries integratsiyasi",
	"Progressive Web App (PWA): Sayt-ilova yaratish",
	"Headless CMS: Strapi, Sanity bilan ishlash",
	"Veb-sayt xavfsizligi 2026: Zamonaviy himoya usullari",

	// Телеграм боты
	"Telegram Bot 2026: Yangi API imkoniyatlari",
	"Telegram Mini App 2.0: Web ilovalar evolyutsiyasi",
	"AI-powered Telegram bot: Gemini integratsiyasi",
	"Telegram botda to'lov: Click, Payme, Uzum Pay",
	"Telegram bot + CRM: Mijozlarni avtomatik boshqarish",
	"Telegram bot monetizatsiya: Premium funksiyalar sotish",
	"Telegram Stars: Botda pul ishlashning yangi usuli",
	"Voice message bot: Ovozli xabarlarni AI bilan qayta ishlash",

	// Чатботы
	"AI Chatbot 2026: Eng so'nggi texnologiyalar",
	"Gemini API bilan o'zbek tilida chatbot yaratish",
	"Chatbot + RAG: Kompaniya ma'lumotlari bilan AI",
	"Voice AI chatbot: Telefonda gaplashuvchi sun'iy intellekt",
	"WhatsApp AI chatbot integratsiyasi",
	"Chatbot analytics: Samaradorlikni o'lchash 2026",
	"24/7 mijoz xizmati: AI bilan xarajatlarni kamaytirish",
	"Chatbot UX: Foydalanuvchi tajribasini yaxshilash",

	// Автоматизация бизнеса
	"Biznes avtomatlashtirish 2026: AI bilan yangi imkoniyatlar",
	"n8n vs Zapier vs Make: Qaysi platformani tanlash",
	"CRM avtomatlashtirish: AmoCRM + AI yechimlar",
	"Email marketing 2026: AI bilan personalizatsiya",
	"HR avtomatlashtirish: Ishga qabul va onboarding",
	"Moliyaviy avtomatlashtirish: Invoice va hisobotlar",
	"Omborxona avtomatlashtirish: AI inventory management",
	"Sotuv jarayonini avtomatlashtirish: Lead nurturing",

	// Кейсы
	"Telegram bot bilan oylik 50 million so'm: Real kejs",
	"AI chatbot mijoz xizmatida: 90% avtomatizatsiya",
	"Landing page + AI bot = Konversiya 300% oshdi",
	"Biznes avtomatlashtirish: 40 soat/oyni tejash",
	"E-commerce AI: Sotuvni 200% oshirish strategiyasi",

	// Технические гайды
	"Python 3.13 yangiliklari: Dasturchilar uchun muhim o'zgarishlar",
	"FastAPI + LangChain: AI backend yaratish",
	"Docker bilan AI ilovalarni deploy qilish",
	"PostgreSQL + pgvector: AI uchun vektor baza",
	"Redis caching: AI ilovalar tezligini oshirish",

	// IT рынок Узбекистана
	"O'zbekistonda IT freelance: 2026 imkoniyatlar",
	"O'zbek tilidagi AI: Mahalliy yechimlar",
	"IT startaplar uchun AI: Imkoniyatlar va grantlar",
	"Raqamli O'zbekiston: Davlat xizmatlari avtomatlashtirish",
}

var Categories = []string{
	"Texnologiya",
	"Sun'iy Intellekt",
	"Dasturlash",
	"Biznes",
	"Startaplar",
	"Kiberxavfsizlik",
	"Mobile",
	"Web",
}

// Тема для генерации. Background заполнен, если тема пришла из ленты
type Topic struct {
	Title      string
	Background string
}

// Интерфейс источника
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

const (
	// Сколько свежих заголовков держим в пуле
	maxFresh = 30
	// Выжимку в промт кладем не целиком
	maxBackground = 1500
)

type Pool struct {
	static  []string
	sources []Source

	// Как часто перечитываем ленты
	refreshInterval time.Duration
	// Заголовки старше этого возраста не берем
	maxAge time.Duration
	// Фильтрация новостей по ключевым словам
	filterKeywords []string

	mu    sync.RWMutex
	fresh []model.Item
}

func NewPool(static []string, sources []Source, refreshInterval, maxAge time.Duration, filterKeywords []string) *Pool {
	keywords := lo.Map(filterKeywords, func(k string, _ int) string {
		return strings.ToLower(strings.TrimSpace(k))
	})

	return &Pool{
		static:          static,
		sources:         sources,
		refreshInterval: refreshInterval,
		maxAge:          maxAge,
		filterKeywords:  keywords,
	}
}

// Start перечитывает ленты по интервалу, пока не закончится контекст
func (p *Pool) Start(ctx context.Context) error {
	if len(p.sources) == 0 {
		return nil
	}

	ticker := time.NewTicker(p.refreshInterval)
	defer ticker.Stop()

	p.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh опрашивает все ленты параллельно. Упавшая лента не мешает остальным
func (p *Pool) Refresh(ctx context.Context) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		items []model.Item
	)

	for _, src := range p.sources {
		wg.Add(1)

		go func(source Source) {
			defer wg.Done()

			fetched, err := source.Fetch(ctx)
			if err != nil {
				log.Printf("[ERROR] fetching items from source %s: %v", source.Name(), err)
				return
			}

			mu.Lock()
			items = append(items, fetched...)
			mu.Unlock()
		}(src)
	}

	wg.Wait()

	p.store(items, time.Now())
}

func (p *Pool) store(items []model.Item, now time.Time) {
	items = lo.Filter(items, func(item model.Item, _ int) bool {
		if item.Title == "" || p.itemShouldBeSkipped(item) {
			return false
		}
		return item.Date.IsZero() || p.maxAge <= 0 || now.Sub(item.Date) <= p.maxAge
	})

	// Сначала сортируем, чтобы из дублей остался самый свежий
	slices.SortFunc(items, func(a, b model.Item) int {
		return b.Date.Compare(a.Date)
	})

	items = lo.UniqBy(items, func(item model.Item) string {
		return strings.ToLower(item.Title)
	})

	if len(items) > maxFresh {
		items = items[:maxFresh]
	}

	p.mu.Lock()
	p.fresh = items
	p.mu.Unlock()
}

// Новость пропускаем, если ключевое слово есть в ее категориях или заголовке
func (p *Pool) itemShouldBeSkipped(item model.Item) bool {
	categoriesSet := set.New(lo.Map(item.Categories, func(c string, _ int) string {
		return strings.ToLower(c)
	})...)

	title := strings.ToLower(item.Title)

	for _, keyword := range p.filterKeywords {
		if keyword == "" {
			continue
		}
		if categoriesSet.Contains(keyword) || strings.Contains(title, keyword) {
			return true
		}
	}

	return false
}

// Topics возвращает все доступные темы без повторов
func (p *Pool) Topics() []Topic {
	p.mu.RLock()
	fresh := p.fresh
	p.mu.RUnlock()

	all := lo.Map(p.static, func(title string, _ int) Topic {
		return Topic{Title: title}
	})

	all = append(all, lo.Map(fresh, func(item model.Item, _ int) Topic {
		return Topic{Title: item.Title, Background: background(item)}
	})...)

	return lo.UniqBy(all, func(t Topic) string {
		return strings.ToLower(t.Title)
	})
}

// Pick выбирает случайную тему. Пустая тема означает пустой пул
func (p *Pool) Pick() Topic {
	return lo.Sample(p.Topics())
}

func background(item model.Item) string {
	var b strings.Builder

	b.WriteString(item.Title)
	if item.SourceName != "" {
		b.WriteString(" (" + item.SourceName + ")")
	}
	if item.Summary != "" {
		summary := []rune(item.Summary)
		if len(summary) > maxBackground {
			summary = summary[:maxBackground]
		}
		b.WriteString("\n")
		b.WriteString(string(summary))
	}
	if item.Link != "" {
		b.WriteString("\nManba: " + item.Link)
	}

	return b.String()
}
