package scoreset

import (
	"time"

	"github.com/okian/admitcalc/internal/domain/ids"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps and collision ids.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithGenerator sets the id generator. It should be shared with anything else
// that issues ids in the same namespace.
func WithGenerator(gen ids.Generator) Option {
	return func(s *Store) {
		if gen != nil {
			s.gen = gen
		}
	}
}
