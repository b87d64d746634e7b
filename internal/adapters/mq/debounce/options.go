package debounce

import "time"

// Option applies a configuration option to the Debouncer.
type Option func(*Debouncer)

// WithDelay sets the quiet period before the pending call runs.
func WithDelay(delay time.Duration) Option {
	return func(d *Debouncer) {
		if delay > 0 {
			d.delay = delay
		}
	}
}
