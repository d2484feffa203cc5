package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Политика повторов внутри одной ступени лестницы
type Policy struct {
	// Сколько повторов после первой попытки
	MaxRetries int
	// Базовая задержка, n-й повтор ждет BaseDelay * 2^(n-1)
	BaseDelay time.Duration
	// Можно подменить функцию задержки
	Backoff func(retry int) time.Duration
	// false прерывает всю лестницу без лишних попыток
	Retryable func(err error) bool
	// Тесты подменяют сон, чтобы не ждать секундами
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
	}
}

// Потолок одной паузы
const maxDelay = 5 * time.Minute

// delays отдает задержки для одной ступени: каждая ступень начинает с BaseDelay заново
func (p Policy) delays() func(retry int) time.Duration {
	if p.Backoff != nil {
		return p.Backoff
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = maxDelay

	return func(int) time.Duration {
		return bo.NextBackOff()
	}
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return IsRetryable(err)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ошибка, которую повторять бессмысленно
var ErrPermanent = errors.New("permanent generation error")

// По умолчанию повторяем все, кроме явно постоянных ошибок и некорректного запроса
func IsRetryable(err error) bool {
	if errors.Is(err, ErrPermanent) || errors.Is(err, context.Canceled) {
		return false
	}
	return !IsInvalidRequest(err)
}

// 400 от api означает, что запрос кривой и другой ключ или модель не помогут.
// Исключение: Gemini отвечает 400 и на невалидный ключ, тогда есть смысл идти на второй ключ
func IsInvalidRequest(err error) bool {
	var (
		gErr    genai.APIError
		gErrPtr *genai.APIError
		oErr    *openai.APIError
	)

	switch {
	case errors.As(err, &gErr):
		return geminiInvalidRequest(gErr)
	case errors.As(err, &gErrPtr) && gErrPtr != nil:
		return geminiInvalidRequest(*gErrPtr)
	case errors.As(err, &oErr):
		return oErr.HTTPStatusCode == 400
	}

	return false
}

func geminiInvalidRequest(e genai.APIError) bool {
	if e.Code != 400 {
		return false
	}
	return !strings.Contains(strings.ToLower(e.Message), "api key")
}
