package realtime

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single invocation of fn after
// a quiet period. Used by change-feed consumers whose callback is "refetch
// everything": ten deltas in quick succession should cost one refetch.
type Debouncer struct {
	d  time.Duration
	fn func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(d time.Duration, fn func()) *Debouncer {
	return &Debouncer{d: d, fn: fn}
}

// Trigger schedules fn after the quiet period, resetting any pending run.
func (b *Debouncer) Trigger() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.d, b.fn)
}

// Stop cancels any pending run. Further triggers are ignored. Idempotent.
func (b *Debouncer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
