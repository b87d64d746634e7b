// Package scoreset manages named raw-score sets with one active set.
//
// Store is a value: operations return a new Store. A Store is never empty
// and its active id always resolves.
package scoreset

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
)

// DefaultName returns the name given to the n-th set when none is supplied.
func DefaultName(n int) string { return fmt.Sprintf("Score set %d", n) }

// Store is the ordered list of score sets plus the active pointer.
type Store struct {
	catalog  *subject.Catalog
	gen      ids.Generator
	clock    func() time.Time
	sets     []model.ScoreSet
	activeID string
}

// New builds a store from loaded data, restoring its invariants.
func New(catalog *subject.Catalog, sets []model.ScoreSet, activeID string, opts ...Option) Store {
	s := Store{
		catalog: catalog,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.gen == nil {
		s.gen = ids.NewRegistry()
	}
	s.sets, s.activeID = s.normalize(sets, activeID)
	return s
}

// normalize restores the invariants of loaded data: an empty list gains one
// default set, blank or duplicate ids are replaced, and a dangling active id
// falls back to the first set.
func (s Store) normalize(sets []model.ScoreSet, activeID string) ([]model.ScoreSet, string) {
	out := make([]model.ScoreSet, 0, len(sets)+1)
	seen := make(map[string]struct{}, len(sets))
	for _, set := range sets {
		set = set.Clone()
		if _, dup := seen[set.ID]; dup || set.ID == "" {
			set.ID = s.gen.New(ids.PrefixScoreSet)
		} else {
			s.gen.SeenAndRecord(set.ID)
		}
		seen[set.ID] = struct{}{}
		out = append(out, set)
	}
	if len(out) == 0 {
		out = append(out, s.newSet(DefaultName(1)))
	}
	if _, ok := seen[activeID]; !ok {
		activeID = out[0].ID
	}
	return out, activeID
}

func (s Store) newSet(name string) model.ScoreSet {
	now := s.clock().UnixMilli()
	return model.ScoreSet{
		ID:        s.gen.New(ids.PrefixScoreSet),
		Name:      name,
		Scores:    map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s Store) clone() Store {
	out := s
	out.sets = make([]model.ScoreSet, len(s.sets))
	for i, set := range s.sets {
		out.sets[i] = set.Clone()
	}
	return out
}

func (s Store) index(id string) int {
	for i, set := range s.sets {
		if set.ID == id {
			return i
		}
	}
	return -1
}

// Sets returns copies of all sets in order.
func (s Store) Sets() []model.ScoreSet { return s.clone().sets }

// Len returns the number of sets.
func (s Store) Len() int { return len(s.sets) }

// ActiveID returns the id of the active set.
func (s Store) ActiveID() string { return s.activeID }

// Active returns a copy of the active set.
func (s Store) Active() model.ScoreSet {
	return s.sets[s.index(s.activeID)].Clone()
}

// Find returns a copy of the set with id.
func (s Store) Find(id string) (model.ScoreSet, bool) {
	i := s.index(id)
	if i < 0 {
		return model.ScoreSet{}, false
	}
	return s.sets[i].Clone(), true
}

// AddSet appends an empty set. A blank name becomes "Score set N". The
// active set is unchanged.
func (s Store) AddSet(name string) (Store, string) {
	if strings.TrimSpace(name) == "" {
		name = DefaultName(len(s.sets) + 1)
	}
	out := s.clone()
	set := s.newSet(strings.TrimSpace(name))
	out.sets = append(out.sets, set)
	return out, set.ID
}

// SwitchActive makes id the active set.
func (s Store) SwitchActive(id string) (Store, error) {
	if s.index(id) < 0 {
		return s, fmt.Errorf("%w: score set %q", model.ErrNotFound, id)
	}
	out := s.clone()
	out.activeID = id
	return out, nil
}

// UpdateActiveScores replaces the raw scores of the active set.
func (s Store) UpdateActiveScores(scores map[string]string) Store {
	out := s.clone()
	set := &out.sets[out.index(out.activeID)]
	set.Scores = make(map[string]string, len(scores))
	for k, v := range scores {
		set.Scores[k] = v
	}
	set.UpdatedAt = s.clock().UnixMilli()
	return out
}

// SetActiveScore updates one raw score of the active set.
func (s Store) SetActiveScore(key, raw string) (Store, error) {
	if s.catalog != nil && !s.catalog.Has(key) {
		return s, fmt.Errorf("%w: subject %q", model.ErrNotFound, key)
	}
	out := s.clone()
	set := &out.sets[out.index(out.activeID)]
	set.Scores[key] = raw
	set.UpdatedAt = s.clock().UnixMilli()
	return out, nil
}

// ClearActiveScores empties the active set.
func (s Store) ClearActiveScores() Store {
	return s.UpdateActiveScores(nil)
}

// RenameSet stores the trimmed name; a blank name is rejected.
func (s Store) RenameSet(id, name string) (Store, error) {
	i := s.index(id)
	if i < 0 {
		return s, fmt.Errorf("%w: score set %q", model.ErrNotFound, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s, fmt.Errorf("%w: score set name is blank", model.ErrInvalidName)
	}
	out := s.clone()
	out.sets[i].Name = name
	out.sets[i].UpdatedAt = s.clock().UnixMilli()
	return out, nil
}

// DeleteSet removes a set. The last remaining set cannot be deleted; removing
// the active set activates the first remaining one.
func (s Store) DeleteSet(id string) (Store, error) {
	i := s.index(id)
	if i < 0 {
		return s, fmt.Errorf("%w: score set %q", model.ErrNotFound, id)
	}
	if len(s.sets) == 1 {
		return s, model.ErrLastSetProtected
	}
	out := s.clone()
	out.sets = append(out.sets[:i], out.sets[i+1:]...)
	if out.activeID == id {
		out.activeID = out.sets[0].ID
	}
	return out, nil
}
