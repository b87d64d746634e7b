package tree

import (
	"fmt"

	"github.com/okian/admitcalc/internal/domain/model"
)

// FindInstitution returns a copy of the institution with id.
func (t Tree) FindInstitution(id string) (model.Institution, bool) {
	i := t.indexInstitution(id)
	if i < 0 {
		return model.Institution{}, false
	}
	return t.institutions[i].Clone(), true
}

// FindProgram returns a copy of the program with id and its institution id.
func (t Tree) FindProgram(id string) (string, model.Program, bool) {
	i, j, ok := t.locateProgram(id)
	if !ok {
		return "", model.Program{}, false
	}
	return t.institutions[i].ID, t.institutions[i].Programs[j].Clone(), true
}

// FindTrack returns a copy of the track and the full path leading to it.
func (t Tree) FindTrack(id string) (model.Selection, model.Track, bool) {
	i, j, k, ok := t.locateTrack(id)
	if !ok {
		return model.Selection{}, model.Track{}, false
	}
	inst := t.institutions[i]
	path := model.Selection{
		InstitutionID: inst.ID,
		ProgramID:     inst.Programs[j].ID,
		TrackID:       id,
	}
	return path, inst.Programs[j].Tracks[k].Clone(), true
}

// FirstTrackIn returns the path to the first track of the first program of
// the institution that has one.
func (t Tree) FirstTrackIn(institutionID string) (model.Selection, bool) {
	i := t.indexInstitution(institutionID)
	if i < 0 {
		return model.Selection{}, false
	}
	return firstTrack(t.institutions[i])
}

// FirstTrack returns the path to the first track anywhere in the tree.
func (t Tree) FirstTrack() (model.Selection, bool) {
	for _, inst := range t.institutions {
		if sel, ok := firstTrack(inst); ok {
			return sel, true
		}
	}
	return model.Selection{}, false
}

func firstTrack(inst model.Institution) (model.Selection, bool) {
	for _, p := range inst.Programs {
		if p.Selectable() {
			return model.Selection{
				InstitutionID: inst.ID,
				ProgramID:     p.ID,
				TrackID:       p.Tracks[0].ID,
			}, true
		}
	}
	return model.Selection{}, false
}

func (t Tree) indexInstitution(id string) int {
	if id == "" {
		return -1
	}
	for i, inst := range t.institutions {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

// indexProgram resolves a program that must be a child of the institution.
func (t Tree) indexProgram(institutionID, programID string) (int, int, error) {
	i := t.indexInstitution(institutionID)
	if i < 0 {
		return -1, -1, fmt.Errorf("%w: institution %q", model.ErrNotFound, institutionID)
	}
	for j, p := range t.institutions[i].Programs {
		if p.ID == programID {
			return i, j, nil
		}
	}
	return -1, -1, fmt.Errorf("%w: program %q in institution %q", model.ErrNotFound, programID, institutionID)
}

func (t Tree) locateProgram(id string) (int, int, bool) {
	if id == "" {
		return -1, -1, false
	}
	for i, inst := range t.institutions {
		for j, p := range inst.Programs {
			if p.ID == id {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

func (t Tree) locateTrack(id string) (int, int, int, bool) {
	if id == "" {
		return -1, -1, -1, false
	}
	for i, inst := range t.institutions {
		for j, p := range inst.Programs {
			if k := indexTrack(p, id); k >= 0 {
				return i, j, k, true
			}
		}
	}
	return -1, -1, -1, false
}

func indexTrack(p model.Program, id string) int {
	for k, tr := range p.Tracks {
		if tr.ID == id {
			return k
		}
	}
	return -1
}
