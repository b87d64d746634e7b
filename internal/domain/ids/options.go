package ids

import (
	"fmt"
	"sync/atomic"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithFactory replaces the id factory. Mostly useful for deterministic tests.
func WithFactory(factory func(prefix string) string) Option {
	return func(r *Registry) {
		if factory != nil {
			r.factory = factory
		}
	}
}

// Sequential returns a factory producing "<prefix>_1", "<prefix>_2", ...
func Sequential() func(prefix string) string {
	var n atomic.Int64
	return func(prefix string) string {
		return fmt.Sprintf("%s_%d", prefix, n.Add(1))
	}
}
