package ai

import (
	"sync"

	"github.com/kovalyov-valentin/trendoai/internal/metrics"
	"github.com/kovalyov-valentin/trendoai/internal/model"
)

type Tier int

const (
	PrimaryActive Tier = iota
	EscalatedModel
	EscalatedCredential
)

func (t Tier) String() string {
	switch t {
	case PrimaryActive:
		return "PRIMARY_ACTIVE"
	case EscalatedModel:
		return "ESCALATED_MODEL"
	case EscalatedCredential:
		return "ESCALATED_CREDENTIAL"
	default:
		return "UNKNOWN"
	}
}

// Ступень лестницы: уровень и профиль, с которым на нем ходим в api
type Step struct {
	Tier    Tier
	Profile model.CredentialProfile
}

// Лестница профилей. Позиция только растет, назад ее возвращает только Reset.
// Один экземпляр разделяют все циклы генерации в процессе
type Ladder struct {
	mu    sync.Mutex
	steps []Step
	pos   int
}

// Порядок: основной ключ + основная модель, основной ключ + запасная модель,
// второй ключ + основная модель. Ступени, которые ничего не меняют, пропускаем
func NewLadder(primaryKey, primaryModel, backupModel, secondKey string) *Ladder {
	steps := []Step{{
		Tier:    PrimaryActive,
		Profile: model.CredentialProfile{APIKey: primaryKey, Model: primaryModel},
	}}

	if backupModel != "" && backupModel != primaryModel {
		steps = append(steps, Step{
			Tier:    EscalatedModel,
			Profile: model.CredentialProfile{APIKey: primaryKey, Model: backupModel},
		})
	}

	if secondKey != "" && secondKey != primaryKey {
		steps = append(steps, Step{
			Tier:    EscalatedCredential,
			Profile: model.CredentialProfile{APIKey: secondKey, Model: primaryModel},
		})
	}

	return &Ladder{steps: steps}
}

func (l *Ladder) Current() (int, Step) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.pos, l.steps[l.pos]
}

// Escalate переводит лестницу с позиции from на следующую ступень.
// Если другой цикл уже ушел дальше, возвращаем его позицию и не двигаем второй раз.
// false означает, что ступеней больше нет
func (l *Ladder) Escalate(from int) (int, Step, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pos > from {
		return l.pos, l.steps[l.pos], true
	}

	if l.pos+1 >= len(l.steps) {
		return l.pos, l.steps[l.pos], false
	}

	l.pos++
	metrics.LadderPosition.Set(float64(l.pos))
	metrics.Escalations.WithLabelValues(l.steps[l.pos].Tier.String()).Inc()

	return l.pos, l.steps[l.pos], true
}

// Ручной возврат на основной профиль (команда /resetladder)
func (l *Ladder) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pos = 0
	metrics.LadderPosition.Set(0)
}

func (l *Ladder) Steps() []Step {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Step(nil), l.steps...)
}
