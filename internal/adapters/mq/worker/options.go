package worker

import (
	"time"

	"github.com/okian/admitcalc/pkg/logger"
)

// Option applies a configuration option to the Flusher.
type Option func(*Flusher)

// WithName sets the flusher name used for logging.
func WithName(name string) Option {
	return func(f *Flusher) {
		if name != "" {
			f.name = name
		}
	}
}

// WithLogger sets a custom logger for the flusher.
func WithLogger(l logger.Logger) Option {
	return func(f *Flusher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithWriteTimeout bounds each sink write.
func WithWriteTimeout(d time.Duration) Option {
	return func(f *Flusher) {
		if d > 0 {
			f.timeout = d
		}
	}
}
