package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tashkent(t *testing.T) *Hourly {
	t.Helper()

	h, err := NewHourly(6, 22, "Asia/Tashkent")
	require.NoError(t, err)

	return h
}

func TestHourlyNext(t *testing.T) {
	t.Parallel()

	h := tashkent(t)
	loc := h.Location

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"inside window", time.Date(2026, 3, 10, 9, 15, 0, 0, loc), time.Date(2026, 3, 10, 10, 0, 0, 0, loc)},
		{"exactly on slot", time.Date(2026, 3, 10, 10, 0, 0, 0, loc), time.Date(2026, 3, 10, 11, 0, 0, 0, loc)},
		{"last slot of the day", time.Date(2026, 3, 10, 21, 30, 0, 0, loc), time.Date(2026, 3, 10, 22, 0, 0, 0, loc)},
		{"after window", time.Date(2026, 3, 10, 22, 0, 1, 0, loc), time.Date(2026, 3, 11, 6, 0, 0, 0, loc)},
		{"before window", time.Date(2026, 3, 10, 3, 0, 0, 0, loc), time.Date(2026, 3, 10, 6, 0, 0, 0, loc)},
		{"month end", time.Date(2026, 3, 31, 23, 0, 0, 0, loc), time.Date(2026, 4, 1, 6, 0, 0, 0, loc)},
		// 01:00 UTC это 06:00 в Ташкенте
		{"utc input", time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC), time.Date(2026, 3, 10, 6, 0, 0, 0, loc)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, tc.want.Equal(h.Next(tc.now)), "got %s", h.Next(tc.now))
		})
	}
}

func TestHourlyUpcomingCountsSeventeenSlotsPerDay(t *testing.T) {
	t.Parallel()

	h := tashkent(t)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, h.Location)

	slots := h.Upcoming(start, 17)

	require.Len(t, slots, 17)
	assert.Equal(t, 6, slots[0].Hour())
	assert.Equal(t, 22, slots[16].Hour())
	assert.Equal(t, 10, slots[16].Day())

	assert.Equal(t, 11, h.Upcoming(start, 18)[17].Day())
}

func TestNewHourlyValidates(t *testing.T) {
	t.Parallel()

	_, err := NewHourly(22, 6, "Asia/Tashkent")
	assert.Error(t, err)

	_, err = NewHourly(6, 22, "Mars/Olympus")
	assert.Error(t, err)
}

func TestHourlyStartStopsOnCancel(t *testing.T) {
	t.Parallel()

	h := tashkent(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := h.Start(ctx, func(context.Context) { t.Error("job must not run") })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHourlyStartSurvivesPanickingJob(t *testing.T) {
	t.Parallel()

	h := tashkent(t)
	// слот в прошлом, таймер срабатывает сразу
	h.now = func() time.Time { return time.Date(2020, 1, 1, 6, 30, 0, 0, h.Location) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	err := h.Start(ctx, func(context.Context) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
