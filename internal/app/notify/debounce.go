package notify

import (
	"sync"
	"time"
)

// DefaultDebounce is the search input debounce of the site.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer runs the last submitted function once no new one arrived for
// the wait period.
type Debouncer struct {
	wait      time.Duration
	afterFunc AfterFunc

	mu      sync.Mutex
	timer   Timer
	seq     uint64
	stopped bool
}

// NewDebouncer creates a Debouncer. A nil afterFunc uses time.AfterFunc.
func NewDebouncer(wait time.Duration, afterFunc AfterFunc) *Debouncer {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Debouncer{wait: wait, afterFunc: afterFunc}
}

// Trigger schedules f, cancelling any function still waiting. A zero wait
// runs f synchronously.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if d.wait <= 0 {
		d.mu.Unlock()
		f()
		return
	}

	seq := d.seq
	d.timer = d.afterFunc(d.wait, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run.
		current := seq == d.seq && !d.stopped
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			f()
		}
	})
	d.mu.Unlock()
}

// Stop cancels the waiting function and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
