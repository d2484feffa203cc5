package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

// Клиент для OpenAI-совместимых api. Модель и ключ приходят из профиля лестницы
type OpenAIClient struct {
	timeout time.Duration
	baseURL string

	mu      sync.Mutex
	clients map[string]*openai.Client
}

func NewOpenAIClient(timeout time.Duration, baseURL string) *OpenAIClient {
	return &OpenAIClient{
		timeout: timeout,
		baseURL: baseURL,
		clients: make(map[string]*openai.Client),
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, profile model.CredentialProfile, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request := openai.ChatCompletionRequest{
		Model: profile.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
		TopP:        1,
	}

	resp, err := c.client(profile.APIKey).CreateChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}

	// openai может вернуть несколько вариантов, берем первый
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

func (c *OpenAIClient) client(apiKey string) *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[apiKey]; ok {
		return client
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}

	client := openai.NewClientWithConfig(cfg)
	c.clients[apiKey] = client

	return client
}
