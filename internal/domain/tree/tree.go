// Package tree implements the institution → program → track scoring hierarchy.
//
// Tree is a value: every mutating operation returns a new Tree and leaves the
// receiver untouched, so callers can compare before/after states freely.
package tree

import (
	"fmt"

	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
)

// Default names for freshly created nodes.
const (
	NewInstitutionName = "New institution"
	NewProgramName     = "New program"
	NewTrackName       = "New track"
)

// Tree is an ordered list of institutions. All ids are unique across levels.
type Tree struct {
	catalog      *subject.Catalog
	gen          ids.Generator
	institutions []model.Institution
}

// New builds a tree from existing institutions and records their ids with gen
// so that fresh ids never collide with them. An id already used by an earlier
// node, at any level, is replaced by a fresh one.
func New(catalog *subject.Catalog, gen ids.Generator, institutions []model.Institution) Tree {
	t := Tree{
		catalog:      catalog,
		gen:          gen,
		institutions: model.CloneInstitutions(institutions),
	}
	claim := t.claimer(map[string]struct{}{})
	for i := range t.institutions {
		claim.institution(&t.institutions[i])
	}
	return t
}

// Catalog returns the subject catalog the tree validates weights against.
func (t Tree) Catalog() *subject.Catalog { return t.catalog }

// Institutions returns a deep copy of the institutions in insertion order.
func (t Tree) Institutions() []model.Institution {
	return model.CloneInstitutions(t.institutions)
}

// Len returns the number of institutions.
func (t Tree) Len() int { return len(t.institutions) }

// clone returns a deep copy sharing the catalog and id generator.
func (t Tree) clone() Tree {
	return Tree{
		catalog:      t.catalog,
		gen:          t.gen,
		institutions: model.CloneInstitutions(t.institutions),
	}
}

func (t Tree) newTrack() model.Track {
	return model.Track{
		ID:      t.gen.New(ids.PrefixTrack),
		Name:    NewTrackName,
		Weights: t.catalog.ZeroWeights(),
	}
}

func (t Tree) newProgram() model.Program {
	return model.Program{
		ID:     t.gen.New(ids.PrefixProgram),
		Name:   NewProgramName,
		Tracks: []model.Track{t.newTrack()},
	}
}

// AddInstitution appends a default institution holding one default program
// with one default track.
func (t Tree) AddInstitution() (Tree, string) {
	out := t.clone()
	inst := model.Institution{
		ID:       t.gen.New(ids.PrefixInstitution),
		Name:     NewInstitutionName,
		Programs: []model.Program{t.newProgram()},
	}
	out.institutions = append(out.institutions, inst)
	return out, inst.ID
}

// AddProgram appends a default program with one default track.
func (t Tree) AddProgram(institutionID string) (Tree, string, error) {
	i := t.indexInstitution(institutionID)
	if i < 0 {
		return t, "", fmt.Errorf("%w: institution %q", model.ErrNotFound, institutionID)
	}
	out := t.clone()
	p := t.newProgram()
	out.institutions[i].Programs = append(out.institutions[i].Programs, p)
	return out, p.ID, nil
}

// AddTrack appends a zero-weight track to a program of the institution.
func (t Tree) AddTrack(institutionID, programID string) (Tree, string, error) {
	i, j, err := t.indexProgram(institutionID, programID)
	if err != nil {
		return t, "", err
	}
	out := t.clone()
	tr := t.newTrack()
	out.institutions[i].Programs[j].Tracks = append(out.institutions[i].Programs[j].Tracks, tr)
	return out, tr.ID, nil
}

// RenameInstitution stores name verbatim; empty names are allowed.
func (t Tree) RenameInstitution(id, name string) (Tree, error) {
	i := t.indexInstitution(id)
	if i < 0 {
		return t, fmt.Errorf("%w: institution %q", model.ErrNotFound, id)
	}
	out := t.clone()
	out.institutions[i].Name = name
	return out, nil
}

// RenameProgram stores name verbatim; empty names are allowed.
func (t Tree) RenameProgram(id, name string) (Tree, error) {
	i, j, ok := t.locateProgram(id)
	if !ok {
		return t, fmt.Errorf("%w: program %q", model.ErrNotFound, id)
	}
	out := t.clone()
	out.institutions[i].Programs[j].Name = name
	return out, nil
}

// RenameTrack stores name verbatim; empty names are allowed.
func (t Tree) RenameTrack(id, name string) (Tree, error) {
	i, j, k, ok := t.locateTrack(id)
	if !ok {
		return t, fmt.Errorf("%w: track %q", model.ErrNotFound, id)
	}
	out := t.clone()
	out.institutions[i].Programs[j].Tracks[k].Name = name
	return out, nil
}

// UpdateTrackWeight sets one weight from raw user input. Blank or
// unparseable input stores nil; only unknown ids return an error.
func (t Tree) UpdateTrackWeight(trackID, subjectKey, raw string) (Tree, error) {
	i, j, k, ok := t.locateTrack(trackID)
	if !ok {
		return t, fmt.Errorf("%w: track %q", model.ErrNotFound, trackID)
	}
	if !t.catalog.Has(subjectKey) {
		return t, fmt.Errorf("%w: subject %q", model.ErrNotFound, subjectKey)
	}
	out := t.clone()
	tr := &out.institutions[i].Programs[j].Tracks[k]
	if tr.Weights == nil {
		tr.Weights = model.WeightTable{}
	}
	tr.Weights[subjectKey] = model.ParseWeight(raw)
	return out, nil
}

// DeleteInstitution removes the institution and everything below it.
// It returns the ids of the removed tracks.
func (t Tree) DeleteInstitution(id string) (Tree, []string, error) {
	i := t.indexInstitution(id)
	if i < 0 {
		return t, nil, fmt.Errorf("%w: institution %q", model.ErrNotFound, id)
	}
	var removed []string
	for _, p := range t.institutions[i].Programs {
		removed = append(removed, trackIDs(p)...)
	}
	out := t.clone()
	out.institutions = append(out.institutions[:i], out.institutions[i+1:]...)
	return out, removed, nil
}

// DeleteProgram removes a program of the institution and its tracks.
func (t Tree) DeleteProgram(institutionID, programID string) (Tree, []string, error) {
	i, j, err := t.indexProgram(institutionID, programID)
	if err != nil {
		return t, nil, err
	}
	removed := trackIDs(t.institutions[i].Programs[j])
	out := t.clone()
	progs := out.institutions[i].Programs
	out.institutions[i].Programs = append(progs[:j], progs[j+1:]...)
	return out, removed, nil
}

// DeleteTrack removes a single track; the full parent chain must match.
func (t Tree) DeleteTrack(institutionID, programID, trackID string) (Tree, []string, error) {
	i, j, err := t.indexProgram(institutionID, programID)
	if err != nil {
		return t, nil, err
	}
	k := indexTrack(t.institutions[i].Programs[j], trackID)
	if k < 0 {
		return t, nil, fmt.Errorf("%w: track %q in program %q", model.ErrNotFound, trackID, programID)
	}
	out := t.clone()
	tracks := out.institutions[i].Programs[j].Tracks
	out.institutions[i].Programs[j].Tracks = append(tracks[:k], tracks[k+1:]...)
	return out, []string{trackID}, nil
}

// WeightSum returns the sum of the track's set weights rounded to two places.
func (t Tree) WeightSum(trackID string) (float64, error) {
	i, j, k, ok := t.locateTrack(trackID)
	if !ok {
		return 0, fmt.Errorf("%w: track %q", model.ErrNotFound, trackID)
	}
	w := t.institutions[i].Programs[j].Tracks[k].Weights
	var sum float64
	for _, key := range t.catalog.Keys() {
		sum += w.Value(key)
	}
	return model.Round2(sum), nil
}

func trackIDs(p model.Program) []string {
	out := make([]string, 0, len(p.Tracks))
	for _, tr := range p.Tracks {
		out = append(out, tr.ID)
	}
	return out
}
