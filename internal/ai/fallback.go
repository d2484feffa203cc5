package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kovalyov-valentin/trendoai/internal/metrics"
	"github.com/kovalyov-valentin/trendoai/internal/model"
)

// Все ступени лестницы исчерпаны. Это мягкая ошибка: цикл просто пропускается
var ErrExhausted = errors.New("all credential tiers exhausted")

// Одна попытка генерации с конкретным профилем. Результат вызывающий код забирает через замыкание
type Attempt func(ctx context.Context, profile model.CredentialProfile) error

// Контроллер повторов: крутит попытки в текущей ступени, потом поднимается по лестнице
type Fallback struct {
	ladder *Ladder
	policy Policy
}

func NewFallback(ladder *Ladder, policy Policy) *Fallback {
	return &Fallback{
		ladder: ladder,
		policy: policy,
	}
}

func (f *Fallback) Ladder() *Ladder {
	return f.ladder
}

// Do начинает с той ступени, на которой лестницу оставил предыдущий цикл
func (f *Fallback) Do(ctx context.Context, attempt Attempt) error {
	pos, step := f.ladder.Current()

	for {
		err := f.runStep(ctx, step, attempt)
		if err == nil {
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !f.policy.retryable(err) {
			log.Printf("[ERROR] generation aborted on %s, error is not retryable: %v", step.Tier, err)
			return fmt.Errorf("generation aborted: %w", err)
		}

		next, nextStep, ok := f.ladder.Escalate(pos)
		if !ok {
			log.Printf("[ERROR] all generation attempts failed, last error: %v", err)
			return fmt.Errorf("%w: %w", ErrExhausted, err)
		}

		log.Printf("[WARN] switching from %s to %s (%s)", step.Tier, nextStep.Tier, nextStep.Profile)
		pos, step = next, nextStep
	}
}

func (f *Fallback) runStep(ctx context.Context, step Step, attempt Attempt) error {
	var (
		err   error
		delay = f.policy.delays()
	)

	for retry := 0; retry <= f.policy.MaxRetries; retry++ {
		if retry > 0 {
			wait := delay(retry)
			log.Printf("[INFO] waiting %s before retry %d/%d on %s", wait, retry, f.policy.MaxRetries, step.Tier)
			if sleepErr := f.policy.sleep(ctx, wait); sleepErr != nil {
				return sleepErr
			}
		}

		err = attempt(ctx, step.Profile)
		if err == nil {
			metrics.GenerationAttempts.WithLabelValues(step.Tier.String(), "success").Inc()
			return nil
		}

		metrics.GenerationAttempts.WithLabelValues(step.Tier.String(), "failure").Inc()
		log.Printf("[WARN] generation attempt %d/%d on %s failed: %v", retry+1, f.policy.MaxRetries+1, step.Tier, err)

		if ctx.Err() != nil || !f.policy.retryable(err) {
			return err
		}
	}

	return err
}
