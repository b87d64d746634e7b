package service

import (
	"context"
	"fmt"

	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/types"
	"github.com/okian/admitcalc/pkg/logger"
	"github.com/okian/admitcalc/pkg/metrics"
)

// ScoreSets returns every score set and the active id.
func (s *Service) ScoreSets(_ context.Context) types.ScoreSets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.ScoreSets{ActiveID: s.sets.ActiveID(), Sets: s.sets.Sets()}
}

// AddScoreSet appends an empty score set and activates it.
func (s *Service) AddScoreSet(ctx context.Context, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, id := s.sets.AddSet(name)
	// The id was just issued, so switching cannot fail.
	s.sets, _ = sets.SwitchActive(id)
	s.saveSets(ctx)
	s.saveActiveSet(ctx)
	return id
}

// SwitchScoreSet activates a score set.
func (s *Service) SwitchScoreSet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.sets.SwitchActive(id)
	if err != nil {
		return err
	}
	s.sets = sets
	s.saveActiveSet(ctx)
	return nil
}

// RenameScoreSet renames a score set; blank names are rejected.
func (s *Service) RenameScoreSet(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.sets.RenameSet(id, name)
	if err != nil {
		return err
	}
	s.sets = sets
	s.saveSets(ctx)
	return nil
}

// DeleteScoreSet removes a score set. The last one cannot be removed.
func (s *Service) DeleteScoreSet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.sets.ActiveID() == id
	sets, err := s.sets.DeleteSet(id)
	if err != nil {
		return err
	}
	s.sets = sets
	s.saveSets(ctx)
	if wasActive {
		s.saveActiveSet(ctx)
	}
	return nil
}

// UpdateScores replaces the raw scores of the active set. The write is debounced.
func (s *Service) UpdateScores(_ context.Context, scores map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets = s.sets.UpdateActiveScores(scores)
	s.scheduleSets()
}

// SetScore updates one raw score of the active set. The write is debounced.
func (s *Service) SetScore(_ context.Context, subjectKey, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.sets.SetActiveScore(subjectKey, raw)
	if err != nil {
		return err
	}
	s.sets = sets
	s.scheduleSets()
	return nil
}

// ClearScores empties the active set and writes it immediately.
func (s *Service) ClearScores(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets = s.sets.ClearActiveScores()
	s.saveSets(ctx)
}

// ExportScoreSets returns every score set.
func (s *Service) ExportScoreSets(_ context.Context) []model.ScoreSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets.Export()
}

// ImportScoreSets appends score sets, renaming colliding ids, and returns the
// ids they were stored under.
func (s *Service) ImportScoreSets(ctx context.Context, sets []model.ScoreSet) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, added := s.sets.ImportSets(sets)
	s.sets = store
	s.saveSets(ctx)
	s.logger.Info(ctx, "score sets imported", logger.Int("count", len(added)))
	return added
}

// Excluded returns the excluded subject keys in catalog order.
func (s *Service) Excluded(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.excludedKeys()
}

// SetExcluded replaces the excluded subjects. Every key must be in the catalog.
func (s *Service) SetExcluded(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	excluded := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if !s.catalog.Has(k) {
			return fmt.Errorf("%w: subject %q", model.ErrNotFound, k)
		}
		excluded[k] = struct{}{}
	}
	s.excluded = excluded
	s.saveExcluded(ctx)
	return nil
}

// Result scores the active set against the current selection. With no track
// selected the total is zero and there is no breakdown.
func (s *Service) Result(_ context.Context) types.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sel := s.selection.Current(s.tree)
	active := s.sets.Active()
	res := types.Result{
		Selection:    sel,
		State:        sel.State().String(),
		ScoreSetID:   active.ID,
		ScoreSetName: model.DisplayName(active.Name, ""),
		Excluded:     s.excludedKeys(),
	}
	if inst, ok := s.tree.FindInstitution(sel.InstitutionID); ok {
		res.InstitutionName = model.DisplayName(inst.Name, "")
	}
	if _, p, ok := s.tree.FindProgram(sel.ProgramID); ok {
		res.ProgramName = model.DisplayName(p.Name, "")
	}
	_, track, ok := s.tree.FindTrack(sel.TrackID)
	if !ok {
		return res
	}
	res.TrackName = model.DisplayName(track.Name, "")

	breakdown := s.aggregator.Breakdown(active.Scores, track.Weights, s.excluded)
	metrics.RecordScoreComputation()
	res.Total = breakdown.WeightedTotal
	res.Breakdown = &breakdown
	return res
}
