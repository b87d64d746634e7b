// Package subject holds the static catalog of scored subjects.
package subject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/admitcalc/internal/domain/model"
)

// ErrInvalidCatalog reports a catalog with blank/duplicate keys or a non-positive max.
var ErrInvalidCatalog = errors.New("invalid subject catalog")

// Catalog is an immutable, ordered list of subjects.
type Catalog struct {
	subjects []model.Subject
	index    map[string]int
}

// New validates subjects and builds a catalog preserving their order.
func New(subjects []model.Subject) (*Catalog, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: no subjects", ErrInvalidCatalog)
	}
	c := &Catalog{
		subjects: make([]model.Subject, 0, len(subjects)),
		index:    make(map[string]int, len(subjects)),
	}
	for _, s := range subjects {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: blank key", ErrInvalidCatalog)
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidCatalog, key)
		}
		if !(s.Max > 0) {
			return nil, fmt.Errorf("%w: subject %q max must be positive", ErrInvalidCatalog, key)
		}
		s.Key = key
		c.index[key] = len(c.subjects)
		c.subjects = append(c.subjects, s)
	}
	return c, nil
}

// Default returns the national common-test catalog the calculator ships with.
func Default() *Catalog {
	c, err := New(DefaultSubjects())
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultSubjects lists the built-in subjects in display order.
func DefaultSubjects() []model.Subject {
	return []model.Subject{
		{Key: "social1", Label: "Social Studies 1", Max: 100},
		{Key: "social2", Label: "Social Studies 2", Max: 100},
		{Key: "japanese", Label: "Japanese", Max: 200},
		{Key: "engR", Label: "English Reading", Max: 100},
		{Key: "engL", Label: "English Listening", Max: 100},
		{Key: "sci1", Label: "Science 1", Max: 100},
		{Key: "sci2", Label: "Science 2", Max: 100},
		{Key: "math1", Label: "Mathematics 1", Max: 100},
		{Key: "math2", Label: "Mathematics 2", Max: 100},
		{Key: "info", Label: "Informatics", Max: 100},
	}
}

// All returns a copy of the subjects in catalog order.
func (c *Catalog) All() []model.Subject {
	out := make([]model.Subject, len(c.subjects))
	copy(out, c.subjects)
	return out
}

// Keys returns the subject keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.subjects))
	for i, s := range c.subjects {
		keys[i] = s.Key
	}
	return keys
}

// Has reports whether key is part of the catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Get returns the subject for key.
func (c *Catalog) Get(key string) (model.Subject, bool) {
	i, ok := c.index[key]
	if !ok {
		return model.Subject{}, false
	}
	return c.subjects[i], true
}

// Len returns the number of subjects.
func (c *Catalog) Len() int { return len(c.subjects) }

// ZeroWeights returns a weight table with every subject set to zero.
func (c *Catalog) ZeroWeights() model.WeightTable {
	w := make(model.WeightTable, len(c.subjects))
	for _, s := range c.subjects {
		w[s.Key] = model.Weight(0)
	}
	return w
}
