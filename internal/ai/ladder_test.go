package ai

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLadderSkipsUselessTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		ladder *Ladder
		tiers  []Tier
	}{
		{name: "full", ladder: NewLadder("k1", "a", "b", "k2"), tiers: []Tier{PrimaryActive, EscalatedModel, EscalatedCredential}},
		{name: "no backup model", ladder: NewLadder("k1", "a", "", "k2"), tiers: []Tier{PrimaryActive, EscalatedCredential}},
		{name: "same backup model", ladder: NewLadder("k1", "a", "a", ""), tiers: []Tier{PrimaryActive}},
		{name: "same second key", ladder: NewLadder("k1", "a", "b", "k1"), tiers: []Tier{PrimaryActive, EscalatedModel}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got []Tier
			for _, s := range tc.ladder.Steps() {
				got = append(got, s.Tier)
			}
			assert.Equal(t, tc.tiers, got)
		})
	}
}

func TestLadderEscalateIsMonotonic(t *testing.T) {
	t.Parallel()

	l := NewLadder("k1", "a", "b", "k2")

	pos, step, ok := l.Escalate(0)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, "b", step.Profile.Model)

	pos, step, ok = l.Escalate(1)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.Equal(t, "k2", step.Profile.APIKey)
	assert.Equal(t, "a", step.Profile.Model)

	pos, _, ok = l.Escalate(2)
	assert.False(t, ok)
	assert.Equal(t, 2, pos)

	l.Reset()
	pos, step = l.Current()
	assert.Equal(t, 0, pos)
	assert.Equal(t, PrimaryActive, step.Tier)
}

func TestLadderConcurrentEscalationAdvancesOnce(t *testing.T) {
	t.Parallel()

	l := NewLadder("k1", "a", "b", "k2")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Escalate(0)
		}()
	}
	wg.Wait()

	pos, step := l.Current()
	assert.Equal(t, 1, pos)
	assert.Equal(t, EscalatedModel, step.Tier)
}

func TestTierString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PRIMARY_ACTIVE", PrimaryActive.String())
	assert.Equal(t, "ESCALATED_MODEL", EscalatedModel.String())
	assert.Equal(t, "ESCALATED_CREDENTIAL", EscalatedCredential.String())
	assert.Equal(t, "UNKNOWN", Tier(9).String())
}
