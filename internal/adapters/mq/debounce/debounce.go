// Package debounce coalesces bursts of calls into one deferred call.
package debounce

import (
	"sync"
	"time"

	"github.com/okian/admitcalc/pkg/metrics"
)

const defaultDelay = 300 * time.Millisecond

// Debouncer runs the most recently triggered function once no new trigger
// has arrived for the configured delay.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fn    func()
	// gen identifies the current schedule so a stale timer never runs.
	gen uint64
}

// New creates a debouncer with configuration options.
func New(opts ...Option) *Debouncer {
	d := &Debouncer{delay: defaultDelay}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules fn, cancelling and replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopLocked() {
		metrics.RecordDebounceCoalesced()
	}
	d.gen++
	gen := d.gen
	d.fn = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending call, if any, and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

// must be called with d.mu held.
func (d *Debouncer) stopLocked() bool {
	pending := d.fn != nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.fn = nil
	d.gen++
	return pending
}
