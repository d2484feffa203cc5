package scheduler

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"
	// Зона может отсутствовать в образе, берем встроенную базу
	_ "time/tzdata"
)

// Hourly срабатывает в начале каждого часа с FromHour по ToHour включительно
type Hourly struct {
	FromHour int
	ToHour   int
	Location *time.Location

	now func() time.Time
}

func NewHourly(fromHour, toHour int, timezone string) (*Hourly, error) {
	if fromHour < 0 || toHour > 23 || fromHour > toHour {
		return nil, fmt.Errorf("invalid schedule window %d..%d", fromHour, toHour)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &Hourly{
		FromHour: fromHour,
		ToHour:   toHour,
		Location: loc,
		now:      time.Now,
	}, nil
}

// Next возвращает ближайший слот строго после t
func (h *Hourly) Next(t time.Time) time.Time {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}

	local := t.In(loc)
	slot := time.Date(local.Year(), local.Month(), local.Day(), local.Hour()+1, 0, 0, 0, loc)

	// Не больше суток перебора
	for i := 0; i < 25; i++ {
		if hour := slot.Hour(); hour >= h.FromHour && hour <= h.ToHour {
			return slot
		}
		slot = time.Date(slot.Year(), slot.Month(), slot.Day(), slot.Hour()+1, 0, 0, 0, loc)
	}

	return slot
}

// Upcoming отдает n следующих слотов, нужен для статуса
func (h *Hourly) Upcoming(t time.Time, n int) []time.Time {
	slots := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = h.Next(t)
		slots = append(slots, t)
	}

	return slots
}

// Start спит до следующего слота и запускает job. Упавший job цикл не останавливает
func (h *Hourly) Start(ctx context.Context, job func(ctx context.Context)) error {
	now := h.now
	if now == nil {
		now = time.Now
	}

	for {
		next := h.Next(now())
		log.Printf("[INFO] next publish slot at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			runJob(ctx, job)
		}
	}
}

// Паника в цикле публикации не должна останавливать расписание
func runJob(ctx context.Context, job func(ctx context.Context)) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ERROR] panic recovered in scheduled job: %v\n%s", p, string(debug.Stack()))
		}
	}()

	job(ctx)
}
