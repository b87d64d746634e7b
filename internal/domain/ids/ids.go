// Package ids issues process-unique identifiers and remembers every id it has
// issued or been told about, so a fresh id never repeats a known one.
package ids

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Common id prefixes.
const (
	PrefixInstitution = "inst"
	PrefixProgram     = "prog"
	PrefixTrack       = "track"
	PrefixScoreSet    = "set"
)

// maxAttempts bounds the retry loop when a factory keeps returning known ids.
const maxAttempts = 64

// Generator issues fresh ids and tracks taken ones.
type Generator interface {
	// New returns an id with the given prefix that was never issued or recorded before.
	New(prefix string) string

	// SeenAndRecord atomically checks whether id is taken and records it if not.
	// Returns true if id was already taken.
	SeenAndRecord(id string) bool

	// Size returns the number of recorded ids.
	Size() int64
}

// Registry is the in-memory Generator. Ids are time-ordered UUIDv7 values
// behind a readable prefix, e.g. "track_01923c7e-...".
type Registry struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	size    atomic.Int64
	factory func(prefix string) string
}

// NewRegistry creates a registry with configuration options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		seen:    make(map[string]struct{}),
		factory: uuidFactory,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func uuidFactory(prefix string) string {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	if prefix == "" {
		return u.String()
	}
	return prefix + "_" + u.String()
}

// New implements Generator.
func (r *Registry) New(prefix string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < maxAttempts; i++ {
		id := r.factory(prefix)
		if _, taken := r.seen[id]; taken || id == "" {
			continue
		}
		r.record(id)
		return id
	}
	// The configured factory is exhausted; a random uuid cannot collide in practice.
	id := prefix + "_" + uuid.NewString()
	r.record(id)
	return id
}

// SeenAndRecord implements Generator.
func (r *Registry) SeenAndRecord(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.seen[id]; taken {
		return true
	}
	r.record(id)
	return false
}

// Size implements Generator.
func (r *Registry) Size() int64 { return r.size.Load() }

// must be called with r.mu held.
func (r *Registry) record(id string) {
	r.seen[id] = struct{}{}
	r.size.Add(1)
}
