// Package model contains the value types shared by the scoring hierarchy,
// the selection controller and the score-set store.
package model

import "strings"

// UntitledName is shown in place of a blank name.
const UntitledName = "Untitled"

// Subject is one entry of the static subject catalog.
type Subject struct {
	Key   string  `json:"key" yaml:"key" koanf:"key"`
	Label string  `json:"label" yaml:"label" koanf:"label"`
	Max   float64 `json:"max" yaml:"max" koanf:"max"`
}

// WeightTable maps a subject key to its weight. A nil value means the weight
// is unset and is treated as zero by the aggregator.
type WeightTable map[string]*float64

// Weight returns a pointer to v for building weight tables.
func Weight(v float64) *float64 { return &v }

// Clone returns a deep copy of the table.
func (w WeightTable) Clone() WeightTable {
	if w == nil {
		return nil
	}
	out := make(WeightTable, len(w))
	for k, v := range w {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = Weight(*v)
	}
	return out
}

// Value returns the weight for key, treating unset and absent weights as zero.
func (w WeightTable) Value(key string) float64 {
	if v, ok := w[key]; ok && v != nil {
		return *v
	}
	return 0
}

// Track is a leaf scoring target carrying the weight table.
type Track struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Weights WeightTable `json:"weights" yaml:"weights"`
}

// Clone returns a deep copy of the track.
func (t Track) Clone() Track {
	t.Weights = t.Weights.Clone()
	return t
}

// Program groups tracks under an institution.
type Program struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Tracks []Track `json:"tracks" yaml:"tracks"`
}

// Clone returns a deep copy of the program.
func (p Program) Clone() Program {
	tracks := make([]Track, len(p.Tracks))
	for i, t := range p.Tracks {
		tracks[i] = t.Clone()
	}
	p.Tracks = tracks
	return p
}

// Selectable reports whether the program can be scored, i.e. has a track.
func (p Program) Selectable() bool { return len(p.Tracks) > 0 }

// Institution is a top-level scoring target. Builtin marks the seeded
// institutions that the UI must not offer for deletion.
type Institution struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Builtin  bool      `json:"builtin,omitempty" yaml:"builtin,omitempty"`
	Programs []Program `json:"programs" yaml:"programs"`
}

// Clone returns a deep copy of the institution.
func (in Institution) Clone() Institution {
	programs := make([]Program, len(in.Programs))
	for i, p := range in.Programs {
		programs[i] = p.Clone()
	}
	in.Programs = programs
	return in
}

// CloneInstitutions deep-copies a slice of institutions.
func CloneInstitutions(in []Institution) []Institution {
	out := make([]Institution, len(in))
	for i, inst := range in {
		out[i] = inst.Clone()
	}
	return out
}

// ScoreSet is one named collection of raw score inputs. Scores stay strings
// so in-progress input such as "7." survives a round trip.
type ScoreSet struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	Scores    map[string]string `json:"scores" yaml:"scores"`
	CreatedAt int64             `json:"createdAt" yaml:"createdAt"`
	UpdatedAt int64             `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy of the set.
func (s ScoreSet) Clone() ScoreSet {
	scores := make(map[string]string, len(s.Scores))
	for k, v := range s.Scores {
		scores[k] = v
	}
	s.Scores = scores
	return s
}

// DisplayName returns name, or fallback (UntitledName when empty) if name is blank.
func DisplayName(name, fallback string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if fallback == "" {
		return UntitledName
	}
	return fallback
}
