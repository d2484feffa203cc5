package publisher

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const publishKey = "publish"

type Publishing interface {
	Publish(ctx context.Context, topic, category string) bool
}

// Состояние последнего цикла для /api/cron/status
type Status struct {
	Running      bool      `json:"running"`
	LastStarted  time.Time `json:"last_started"`
	LastFinished time.Time `json:"last_finished"`
	LastOK       bool      `json:"last_ok"`
}

// Runner не дает запустить два цикла одновременно: кто пришел во время цикла, ждет его результат
type Runner struct {
	// Контекст жизни процесса, в нем крутятся фоновые запуски
	ctx       context.Context
	publisher Publishing

	group   singleflight.Group
	running atomic.Bool

	mu   sync.Mutex
	last Status
}

func NewRunner(ctx context.Context, publisher Publishing) *Runner {
	return &Runner{
		ctx:       ctx,
		publisher: publisher,
	}
}

// Run блокируется до конца цикла. Если цикл уже идет, присоединяется к нему
func (r *Runner) Run(ctx context.Context, topic, category string) bool {
	v, _, shared := r.group.Do(publishKey, func() (any, error) {
		r.running.Store(true)
		defer r.running.Store(false)

		r.mu.Lock()
		r.last.LastStarted = time.Now()
		r.mu.Unlock()

		ok := r.publish(ctx, topic, category)

		r.mu.Lock()
		r.last.LastFinished = time.Now()
		r.last.LastOK = ok
		r.mu.Unlock()

		return ok, nil
	})

	if shared {
		log.Printf("[INFO] publish cycle result shared between concurrent triggers")
	}

	return v.(bool)
}

// Паника цикла не выходит за пределы singleflight
func (r *Runner) publish(ctx context.Context, topic, category string) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ERROR] panic recovered in publish cycle: %v\n%s", p, string(debug.Stack()))
			ok = false
		}
	}()

	return r.publisher.Publish(ctx, topic, category)
}

// Trigger запускает цикл в фоне и сразу возвращается.
// false означает, что цикл уже идет и новый не запущен
func (r *Runner) Trigger(topic, category string) bool {
	if !r.running.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		defer r.running.Store(false)
		r.Run(r.ctx, topic, category)
	}()

	return true
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := r.last
	status.Running = r.running.Load()

	return status
}
