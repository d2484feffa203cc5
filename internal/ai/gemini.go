package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

// Клиент генеративного api: один сетевой вызов, ошибки не классифицирует
type Client interface {
	Generate(ctx context.Context, profile model.CredentialProfile, prompt string) (string, error)
}

var ErrEmptyResponse = errors.New("model returned empty response")

// Клиент Gemini. На каждый ключ свой genai.Client, создаем лениво
type GeminiClient struct {
	// Таймаут одного вызова
	timeout time.Duration
	// Google Search grounding, чтобы модель подтягивала свежие данные
	search  bool
	baseURL string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

type GeminiOption func(*GeminiClient)

func WithGoogleSearch(enabled bool) GeminiOption {
	return func(c *GeminiClient) {
		c.search = enabled
	}
}

// Для тестов и прокси
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) {
		c.baseURL = url
	}
}

func NewGeminiClient(timeout time.Duration, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		timeout: timeout,
		clients: make(map[string]*genai.Client),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *GeminiClient) Generate(ctx context.Context, profile model.CredentialProfile, prompt string) (string, error) {
	client, err := c.client(ctx, profile.APIKey)
	if err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var cfg *genai.GenerateContentConfig
	if c.search {
		cfg = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}

	resp, err := client.Models.GenerateContent(ctx, profile.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

func (c *GeminiClient) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[apiKey]; ok {
		return client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c.clients[apiKey] = client

	return client, nil
}
