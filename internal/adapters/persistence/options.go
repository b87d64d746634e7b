package persistence

import (
	"time"

	"github.com/okian/admitcalc/pkg/logger"
)

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithLogger sets a custom logger for the adapter.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock sets the time source used to stamp migrated score sets.
func WithClock(clock func() time.Time) Option {
	return func(a *Adapter) {
		if clock != nil {
			a.clock = clock
		}
	}
}
