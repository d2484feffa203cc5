// Package generator склеивает промт, вызов модели и разбор ответа в одну
// повторяемую попытку под контроллером лестницы.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kovalyov-valentin/trendoai/internal/ai"
	"github.com/kovalyov-valentin/trendoai/internal/model"
	"github.com/kovalyov-valentin/trendoai/internal/parser"
	"github.com/kovalyov-valentin/trendoai/internal/prompt"
)

var (
	// Модель вернула текст без JSON объекта
	ErrAbsent = errors.New("no json object in model response")
	// Объект есть, но без обязательных полей
	ErrMalformed = errors.New("model response misses required fields")
)

type Generator struct {
	client   ai.Client
	fallback *ai.Fallback
}

func New(client ai.Client, fallback *ai.Fallback) *Generator {
	return &Generator{
		client:   client,
		fallback: fallback,
	}
}

func (g *Generator) Article(ctx context.Context, req model.GenerationRequest) (model.GenerationResult, error) {
	fields, err := g.structured(ctx, prompt.Article(req), prompt.ArticleKeys)
	if err != nil {
		return model.GenerationResult{}, err
	}

	return model.GenerationResult{
		Title:    strings.TrimSpace(fields["title"]),
		Keywords: strings.TrimSpace(fields["keywords"]),
		Content:  strings.TrimSpace(fields["content"]),
	}, nil
}

func (g *Generator) Portfolio(ctx context.Context, title, category string) (model.PortfolioContent, error) {
	fields, err := g.structured(ctx, prompt.Portfolio(title, category), prompt.PortfolioKeys)
	if err != nil {
		return model.PortfolioContent{}, err
	}

	return model.PortfolioContent{
		Description:     fields["description"],
		Technologies:    fields["technologies"],
		Features:        fields["features"],
		Details:         fields["details"],
		MetaDescription: fields["meta_description"],
		MetaKeywords:    fields["meta_keywords"],
	}, nil
}

// Свободный текст для поста в канал
func (g *Generator) Marketing(ctx context.Context) (string, error) {
	return g.Text(ctx, prompt.Marketing())
}

func (g *Generator) Text(ctx context.Context, text string) (string, error) {
	var out string

	err := g.fallback.Do(ctx, func(ctx context.Context, profile model.CredentialProfile) error {
		raw, err := g.client.Generate(ctx, profile, text)
		if err != nil {
			return err
		}
		out = raw
		return nil
	})
	if err != nil {
		return "", err
	}

	return out, nil
}

// Кривой ответ считаем такой же временной ошибкой, как сбой сети: повторяем в той же ступени
func (g *Generator) structured(ctx context.Context, text string, required []string) (map[string]string, error) {
	var fields map[string]string

	err := g.fallback.Do(ctx, func(ctx context.Context, profile model.CredentialProfile) error {
		raw, err := g.client.Generate(ctx, profile, text)
		if err != nil {
			return err
		}

		outcome := parser.Parse(raw, required...)
		switch outcome.Kind {
		case parser.Absent:
			return ErrAbsent
		case parser.Malformed:
			return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(outcome.Missing, ", "))
		}

		fields = outcome.Fields
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fields, nil
}
