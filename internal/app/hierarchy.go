package service

import (
	"context"
	"fmt"

	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/pkg/logger"
)

// Institutions returns the whole scoring tree.
func (s *Service) Institutions(_ context.Context) []model.Institution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Institutions()
}

// Institution returns one institution.
func (s *Service) Institution(_ context.Context, id string) (model.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.tree.FindInstitution(id)
	if !ok {
		return model.Institution{}, fmt.Errorf("%w: institution %q", model.ErrNotFound, id)
	}
	return inst, nil
}

// WeightSum returns the sum of the set weights of a track.
func (s *Service) WeightSum(_ context.Context, trackID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.WeightSum(trackID)
}

// AddInstitution appends a new institution and selects it.
func (s *Service) AddInstitution(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, id := s.tree.AddInstitution()
	s.commitTree(ctx, "add_institution", t)
	if _, err := s.selection.SelectInstitution(s.tree, id); err == nil {
		s.saveSelection(ctx)
	}
	return id
}

// AddProgram appends a new program to an institution and selects it.
func (s *Service) AddProgram(ctx context.Context, institutionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, id, err := s.tree.AddProgram(institutionID)
	if err != nil {
		return "", err
	}
	s.commitTree(ctx, "add_program", t)
	if _, err := s.selection.SelectProgram(s.tree, institutionID, id); err == nil {
		s.saveSelection(ctx)
	}
	return id, nil
}

// AddTrack appends a new track to a program and selects it.
func (s *Service) AddTrack(ctx context.Context, institutionID, programID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, id, err := s.tree.AddTrack(institutionID, programID)
	if err != nil {
		return "", err
	}
	s.commitTree(ctx, "add_track", t)
	s.selection.SelectTrack(institutionID, programID, id)
	s.saveSelection(ctx)
	return id, nil
}

// RenameInstitution renames an institution.
func (s *Service) RenameInstitution(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tree.RenameInstitution(id, name)
	if err != nil {
		return err
	}
	s.commitTree(ctx, "rename_institution", t)
	return nil
}

// RenameProgram renames a program.
func (s *Service) RenameProgram(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tree.RenameProgram(id, name)
	if err != nil {
		return err
	}
	s.commitTree(ctx, "rename_program", t)
	return nil
}

// RenameTrack renames a track.
func (s *Service) RenameTrack(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tree.RenameTrack(id, name)
	if err != nil {
		return err
	}
	s.commitTree(ctx, "rename_track", t)
	return nil
}

// UpdateTrackWeight sets one weight from raw user input. Blank or
// non-numeric input unsets the weight.
func (s *Service) UpdateTrackWeight(ctx context.Context, trackID, subjectKey, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tree.UpdateTrackWeight(trackID, subjectKey, raw)
	if err != nil {
		return err
	}
	s.commitTree(ctx, "update_weight", t)
	return nil
}

// DeleteInstitution removes an institution with everything below it and
// returns the removed track ids.
func (s *Service) DeleteInstitution(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, removed, err := s.tree.DeleteInstitution(id)
	if err != nil {
		return nil, err
	}
	s.commitTree(ctx, "delete_institution", t)
	return removed, nil
}

// DeleteProgram removes a program and its tracks.
func (s *Service) DeleteProgram(ctx context.Context, institutionID, programID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, removed, err := s.tree.DeleteProgram(institutionID, programID)
	if err != nil {
		return nil, err
	}
	s.commitTree(ctx, "delete_program", t)
	return removed, nil
}

// DeleteTrack removes one track.
func (s *Service) DeleteTrack(ctx context.Context, institutionID, programID, trackID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, removed, err := s.tree.DeleteTrack(institutionID, programID, trackID)
	if err != nil {
		return nil, err
	}
	s.commitTree(ctx, "delete_track", t)
	return removed, nil
}

// ExportInstitutions returns the user-created institutions.
func (s *Service) ExportInstitutions(_ context.Context) []model.Institution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Export()
}

// ImportInstitutions appends institutions, renaming colliding ids, and
// returns the ids they were stored under.
func (s *Service) ImportInstitutions(ctx context.Context, institutions []model.Institution) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, added := s.tree.Import(institutions)
	s.commitTree(ctx, "import", t)
	s.logger.Info(ctx, "institutions imported", logger.Int("count", len(added)))
	return added
}

// Selection returns the current selection, repaired against the tree.
func (s *Service) Selection(_ context.Context) model.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Current(s.tree)
}

// SelectInstitution selects an institution with its first selectable program and track.
func (s *Service) SelectInstitution(ctx context.Context, institutionID string) (model.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.selection.SelectInstitution(s.tree, institutionID)
	if err != nil {
		return sel, err
	}
	s.saveSelection(ctx)
	return sel, nil
}

// SelectProgram selects a program and its first track.
func (s *Service) SelectProgram(ctx context.Context, institutionID, programID string) (model.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.selection.SelectProgram(s.tree, institutionID, programID)
	if err != nil {
		return sel, err
	}
	s.saveSelection(ctx)
	return sel, nil
}

// SelectTrack stores the triple as given and returns the selection as it
// reads back, which is repaired if the triple is inconsistent.
func (s *Service) SelectTrack(ctx context.Context, institutionID, programID, trackID string) model.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.SelectTrack(institutionID, programID, trackID)
	s.saveSelection(ctx)
	return s.selection.Current(s.tree)
}
