package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/trendoai/internal/metrics"
)

const (
	unsplashURL = "https://api.unsplash.com"
	defaultTerm = "technology"

	width   = 1200
	height  = 630
	perPage = 10
)

type keyword struct {
	word string
	term string
}

// Порядок важен: берем первое совпадение, а не лучшее
var topicKeywords = []keyword{
	{"sun'iy intellekt", "artificial intelligence"},
	{"ai", "artificial intelligence"},
	{"dasturlash", "programming code"},
	{"python", "python programming"},
	{"texnologiya", "technology"},
	{"telegram", "messaging app"},
	{"web", "web development"},
	{"mobile", "mobile app"},
	{"kiberxavfsizlik", "cybersecurity"},
	{"startap", "startup business"},
	{"biznes", "business"},
	{"robot", "robotics"},
	{"cloud", "cloud computing"},
	{"data", "data science"},
	{"blockchain", "blockchain"},
	{"iot", "internet of things"},
}

var categoryTerms = map[string]string{
	"Texnologiya":      "technology",
	"Sun'iy Intellekt": "artificial intelligence robot",
	"Dasturlash":       "programming code",
	"Biznes":           "business office",
	"Startaplar":       "startup team",
	"Kiberxavfsizlik":  "cybersecurity lock",
	"Mobile":           "mobile phone app",
	"Web":              "web design laptop",
}

var (
	errNoAccessKey = errors.New("unsplash access key is not set")
	errNoResults   = errors.New("unsplash returned no results")
)

// Resolver подбирает картинку к теме. Всегда возвращает непустой url
type Resolver struct {
	accessKey string
	baseURL   string
	client    *http.Client

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Resolver)

func WithBaseURL(u string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimRight(u, "/")
	}
}

func WithRand(rnd *rand.Rand) Option {
	return func(r *Resolver) {
		r.rnd = rnd
	}
}

func NewResolver(accessKey string, opts ...Option) *Resolver {
	r := &Resolver{
		accessKey: accessKey,
		baseURL:   unsplashURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		rnd:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SearchTerm переводит тему в поисковый запрос для стока
func SearchTerm(topic string) string {
	lower := strings.ToLower(topic)

	kw, ok := lo.Find(topicKeywords, func(k keyword) bool {
		return strings.Contains(lower, k.word)
	})
	if !ok {
		return defaultTerm
	}

	return kw.term
}

func (r *Resolver) Resolve(ctx context.Context, topic string) string {
	return r.search(ctx, SearchTerm(topic))
}

func (r *Resolver) ResolveCategory(ctx context.Context, category string) string {
	term, ok := categoryTerms[category]
	if !ok {
		term = defaultTerm
	}

	return r.search(ctx, term)
}

func (r *Resolver) search(ctx context.Context, term string) string {
	imageURL, err := r.unsplash(ctx, term)
	if err != nil {
		log.Printf("[WARN] image lookup for %q fell back to placeholder: %v", term, err)
		metrics.ImageLookups.WithLabelValues("placeholder").Inc()
		return r.placeholder()
	}

	metrics.ImageLookups.WithLabelValues("unsplash").Inc()

	return imageURL
}

type photo struct {
	URLs struct {
		Raw string `json:"raw"`
	} `json:"urls"`
}

type searchResponse struct {
	Results []photo `json:"results"`
}

func (r *Resolver) unsplash(ctx context.Context, term string) (string, error) {
	if r.accessKey == "" {
		return "", errNoAccessKey
	}

	query := url.Values{}
	query.Set("query", term)
	query.Set("per_page", fmt.Sprint(perPage))
	query.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search/photos?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+r.accessKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	raws := lo.FilterMap(data.Results, func(item photo, _ int) (string, bool) {
		return item.URLs.Raw, item.URLs.Raw != ""
	})
	if len(raws) == 0 {
		return "", errNoResults
	}

	raw := raws[r.intN(len(raws))]

	return fmt.Sprintf("%s&w=%d&h=%d&fit=crop&q=80", raw, width, height), nil
}

func (r *Resolver) placeholder() string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", r.intN(1000)+1, width, height)
}

func (r *Resolver) intN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rnd.IntN(n)
}
