package service

import (
	"context"
	"sort"

	"github.com/okian/admitcalc/internal/domain/tree"
	"github.com/okian/admitcalc/pkg/logger"
	"github.com/okian/admitcalc/pkg/metrics"
)

// The helpers below must be called with s.mu held. Before Start they only
// update memory.

// commitTree installs t, repairs the selection and persists both.
func (s *Service) commitTree(ctx context.Context, op string, t tree.Tree) {
	s.tree = t
	metrics.RecordTreeMutation(op)
	metrics.UpdateInstitutionCount(t.Len())
	if s.started {
		s.persister.SaveHierarchy(ctx, t.Institutions())
	}

	if sel, changed := s.selection.Repair(t); changed {
		metrics.RecordSelectionRepair()
		s.logger.Debug(ctx, "selection repaired",
			logger.String("op", op),
			logger.String("institution", sel.InstitutionID),
			logger.String("program", sel.ProgramID),
			logger.String("track", sel.TrackID),
		)
		s.saveSelection(ctx)
	}
}

func (s *Service) saveSelection(ctx context.Context) {
	if s.started {
		s.persister.SaveSelection(ctx, s.selection.Stored())
	}
}

// saveSets writes the score sets now, superseding a pending debounced write.
func (s *Service) saveSets(ctx context.Context) {
	metrics.UpdateScoreSetCount(s.sets.Len())
	if !s.started {
		return
	}
	s.debouncer.Cancel()
	s.setsDirty = false
	s.persister.SaveScoreSets(ctx, s.sets.Sets())
}

func (s *Service) saveActiveSet(ctx context.Context) {
	if s.started {
		s.persister.SaveActiveSetID(ctx, s.sets.ActiveID())
	}
}

// scheduleSets writes the score sets once edits pause. The write reads the
// state current at that moment.
func (s *Service) scheduleSets() {
	if !s.started {
		return
	}
	s.setsDirty = true
	s.debouncer.Trigger(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.started && s.setsDirty {
			s.setsDirty = false
			s.persister.SaveScoreSets(context.Background(), s.sets.Sets())
		}
	})
}

// flushPendingSets replaces a pending debounced write with an immediate one.
func (s *Service) flushPendingSets(ctx context.Context) {
	s.debouncer.Cancel()
	if s.setsDirty {
		s.setsDirty = false
		s.persister.SaveScoreSets(ctx, s.sets.Sets())
	}
}

func (s *Service) saveExcluded(ctx context.Context) {
	if s.started {
		s.persister.SaveExcluded(ctx, s.excludedKeys())
	}
}

// excludedKeys returns the excluded subjects in catalog order.
func (s *Service) excludedKeys() []string {
	keys := make([]string, 0, len(s.excluded))
	for k := range s.excluded {
		keys = append(keys, k)
	}
	order := make(map[string]int, s.catalog.Len())
	for i, k := range s.catalog.Keys() {
		order[k] = i
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}
