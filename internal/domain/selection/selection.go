// Package selection tracks the current institution/program/track and keeps
// it consistent with the scoring tree.
package selection

import (
	"fmt"

	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/tree"
)

// Controller holds the stored selection. It is not safe for concurrent use;
// the owning service serializes access.
type Controller struct {
	stored model.Selection
}

// New creates a controller storing sel as-is. Call Restore to validate it.
func New(sel model.Selection) *Controller {
	return &Controller{stored: sel}
}

// Stored returns the raw stored selection, valid or not.
func (c *Controller) Stored() model.Selection { return c.stored }

// SelectInstitution selects the institution, its first program with a track
// and that track. An unknown id leaves the selection unchanged.
func (c *Controller) SelectInstitution(t tree.Tree, institutionID string) (model.Selection, error) {
	if _, ok := t.FindInstitution(institutionID); !ok {
		return c.stored, fmt.Errorf("%w: institution %q", model.ErrNotFound, institutionID)
	}
	sel, ok := t.FirstTrackIn(institutionID)
	if !ok {
		sel = model.Selection{InstitutionID: institutionID}
	}
	c.stored = sel
	return sel, nil
}

// SelectProgram selects the program and its first track. A program that is
// not a child of the institution, or has no tracks, falls back to the
// institution defaults.
func (c *Controller) SelectProgram(t tree.Tree, institutionID, programID string) (model.Selection, error) {
	instID, p, ok := t.FindProgram(programID)
	if !ok || instID != institutionID || !p.Selectable() {
		return c.SelectInstitution(t, institutionID)
	}
	c.stored = model.Selection{
		InstitutionID: institutionID,
		ProgramID:     programID,
		TrackID:       p.Tracks[0].ID,
	}
	return c.stored, nil
}

// SelectTrack stores the triple without validation; it is checked on read.
func (c *Controller) SelectTrack(institutionID, programID, trackID string) model.Selection {
	c.stored = model.Selection{
		InstitutionID: institutionID,
		ProgramID:     programID,
		TrackID:       trackID,
	}
	return c.stored
}

// Current returns the stored selection when it is valid for t, otherwise the
// repaired one. The stored value is not modified.
func (c *Controller) Current(t tree.Tree) model.Selection {
	if Valid(t, c.stored) {
		return c.stored
	}
	return resolve(t, c.stored)
}

// Repair replaces an invalid stored selection with the nearest valid one and
// reports whether it changed.
func (c *Controller) Repair(t tree.Tree) (model.Selection, bool) {
	if Valid(t, c.stored) {
		return c.stored, false
	}
	c.stored = resolve(t, c.stored)
	return c.stored, true
}

// Restore adopts a persisted selection and repairs it against t.
func (c *Controller) Restore(t tree.Tree, persisted model.Selection) (model.Selection, bool) {
	c.stored = persisted
	return c.Repair(t)
}

// Valid reports whether every non-empty id of sel exists in t and the ids form
// a parent chain filled from the institution down.
func Valid(t tree.Tree, sel model.Selection) bool {
	switch {
	case sel.IsZero():
		return true
	case sel.InstitutionID == "":
		return false
	case sel.ProgramID == "" && sel.TrackID != "":
		return false
	}
	if _, ok := t.FindInstitution(sel.InstitutionID); !ok {
		return false
	}
	if sel.ProgramID == "" {
		return true
	}
	instID, _, ok := t.FindProgram(sel.ProgramID)
	if !ok || instID != sel.InstitutionID {
		return false
	}
	if sel.TrackID == "" {
		return true
	}
	path, _, ok := t.FindTrack(sel.TrackID)
	return ok && path == sel
}

// resolve walks the fallback chain: the same track under its real parents,
// the first track of the previous program, the first track of the previous
// institution, the first track anywhere, and finally nothing.
func resolve(t tree.Tree, prev model.Selection) model.Selection {
	if path, _, ok := t.FindTrack(prev.TrackID); ok {
		return path
	}
	if instID, p, ok := t.FindProgram(prev.ProgramID); ok && p.Selectable() {
		return model.Selection{InstitutionID: instID, ProgramID: p.ID, TrackID: p.Tracks[0].ID}
	}
	if sel, ok := t.FirstTrackIn(prev.InstitutionID); ok {
		return sel
	}
	if sel, ok := t.FirstTrack(); ok {
		return sel
	}
	return model.Selection{}
}
