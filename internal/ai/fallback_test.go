package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func testPolicy(rec *sleepRecorder) Policy {
	p := DefaultPolicy()
	p.Sleep = rec.Sleep
	return p
}

func fullLadder() *Ladder {
	return NewLadder("key1", "gemini-2.5-flash", "gemini-2.0-flash", "key2")
}

var errTransient = errors.New("quota exceeded")

func TestFallbackRetriesWithinTier(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{}
	ladder := fullLadder()
	fb := NewFallback(ladder, testPolicy(rec))

	var (
		calls    int
		profiles []model.CredentialProfile
	)
	err := fb.Do(context.Background(), func(_ context.Context, p model.CredentialProfile) error {
		calls++
		profiles = append(profiles, p)
		if calls <= 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, rec.delays)
	for _, p := range profiles {
		assert.Equal(t, model.CredentialProfile{APIKey: "key1", Model: "gemini-2.5-flash"}, p)
	}

	pos, step := ladder.Current()
	assert.Equal(t, 0, pos)
	assert.Equal(t, PrimaryActive, step.Tier)
}

func TestFallbackExhaustsAllTiersAndKeepsPosition(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{}
	ladder := fullLadder()
	fb := NewFallback(ladder, testPolicy(rec))

	seen := map[model.CredentialProfile]int{}
	err := fb.Do(context.Background(), func(_ context.Context, p model.CredentialProfile) error {
		seen[p]++
		return errTransient
	})

	require.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errTransient)

	assert.Equal(t, map[model.CredentialProfile]int{
		{APIKey: "key1", Model: "gemini-2.5-flash"}: 4,
		{APIKey: "key1", Model: "gemini-2.0-flash"}: 4,
		{APIKey: "key2", Model: "gemini-2.5-flash"}: 4,
	}, seen)
	tier := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	assert.Equal(t, append(append(append([]time.Duration{}, tier...), tier...), tier...), rec.delays)

	pos, step := ladder.Current()
	assert.Equal(t, 2, pos)
	assert.Equal(t, EscalatedCredential, step.Tier)

	// Следующий цикл стартует с последней ступени, а не с основной
	var first model.CredentialProfile
	err = fb.Do(context.Background(), func(_ context.Context, p model.CredentialProfile) error {
		first = p
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.CredentialProfile{APIKey: "key2", Model: "gemini-2.5-flash"}, first)
}

func TestFallbackEscalatesToBackupModel(t *testing.T) {
	t.Parallel()

	ladder := fullLadder()
	fb := NewFallback(ladder, testPolicy(&sleepRecorder{}))

	var got model.CredentialProfile
	err := fb.Do(context.Background(), func(_ context.Context, p model.CredentialProfile) error {
		if p.Model == "gemini-2.5-flash" {
			return errTransient
		}
		got = p
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, model.CredentialProfile{APIKey: "key1", Model: "gemini-2.0-flash"}, got)

	_, step := ladder.Current()
	assert.Equal(t, EscalatedModel, step.Tier)
}

func TestFallbackStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{}
	ladder := fullLadder()
	fb := NewFallback(ladder, testPolicy(rec))

	calls := 0
	err := fb.Do(context.Background(), func(context.Context, model.CredentialProfile) error {
		calls++
		return ErrPermanent
	})

	require.ErrorIs(t, err, ErrPermanent)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)

	pos, _ := ladder.Current()
	assert.Equal(t, 0, pos)
}

func TestFallbackCustomRetryablePredicate(t *testing.T) {
	t.Parallel()

	p := testPolicy(&sleepRecorder{})
	p.MaxRetries = 1
	p.Retryable = func(err error) bool { return !errors.Is(err, errTransient) }
	fb := NewFallback(NewLadder("k", "m", "", ""), p)

	calls := 0
	err := fb.Do(context.Background(), func(context.Context, model.CredentialProfile) error {
		calls++
		return errTransient
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFallbackHonorsContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := DefaultPolicy()
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	fb := NewFallback(fullLadder(), p)

	err := fb.Do(ctx, func(context.Context, model.CredentialProfile) error {
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicyBackoffOverride(t *testing.T) {
	t.Parallel()

	p := Policy{BaseDelay: time.Second}
	delay := p.delays()
	assert.Equal(t, time.Second, delay(1))
	assert.Equal(t, 2*time.Second, delay(2))
	assert.Equal(t, 4*time.Second, delay(3))

	// новая ступень начинает с базовой задержки
	assert.Equal(t, time.Second, p.delays()(1))

	p.Backoff = func(int) time.Duration { return time.Millisecond }
	assert.Equal(t, time.Millisecond, p.delays()(3))
}
