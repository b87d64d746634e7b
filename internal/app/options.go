package service

import (
	"time"

	"github.com/okian/admitcalc/internal/adapters/repository"
	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/scoring"
	"github.com/okian/admitcalc/internal/domain/subject"
	"github.com/okian/admitcalc/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the default subject catalog.
func WithCatalog(c *subject.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithStoreDriver makes Start open a store of the given driver. The service
// owns that store and closes it on Stop.
func WithStoreDriver(driver repository.Driver, opts ...repository.Option) Option {
	return func(s *Service) {
		s.driver = driver
		s.storeOpts = opts
		s.store = nil
		s.ownsStore = true
	}
}

// WithStore uses an already open store. The caller keeps ownership.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.ownsStore = false
		}
	}
}

// WithQueueSize sets the capacity of the write queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDebounceDelay sets the quiet period before score edits are written.
func WithDebounceDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounceDelay = d
		}
	}
}

// WithCategories replaces the result breakdown categories.
func WithCategories(categories []scoring.Category) Option {
	return func(s *Service) {
		s.categories = categories
	}
}

// WithClock sets the time source for score-set timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator sets the generator that issues node and score-set ids.
func WithIDGenerator(gen ids.Generator) Option {
	return func(s *Service) {
		if gen != nil {
			s.gen = gen
		}
	}
}
