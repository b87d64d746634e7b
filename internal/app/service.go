// Package service owns the calculator state: the scoring tree, the
// selection, the score sets and the excluded subjects. It hydrates them from
// the key-value store on Start, serves every operation from memory and
// persists changes in the background.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/admitcalc/internal/adapters/mq/debounce"
	"github.com/okian/admitcalc/internal/adapters/mq/queue"
	"github.com/okian/admitcalc/internal/adapters/mq/worker"
	"github.com/okian/admitcalc/internal/adapters/persistence"
	"github.com/okian/admitcalc/internal/adapters/repository"
	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/scoreset"
	"github.com/okian/admitcalc/internal/domain/scoring"
	"github.com/okian/admitcalc/internal/domain/selection"
	"github.com/okian/admitcalc/internal/domain/subject"
	"github.com/okian/admitcalc/internal/domain/tree"
	"github.com/okian/admitcalc/pkg/logger"
	"github.com/okian/admitcalc/pkg/metrics"
)

const (
	defaultQueueSize     = 1024
	defaultDebounceDelay = 300 * time.Millisecond
	shutdownTimeout      = 5 * time.Second
)

// Service is the process-wide state container. Every operation holds the
// mutex, so callers observe a single-threaded model.
type Service struct {
	mu sync.RWMutex

	// Domain state
	catalog    *subject.Catalog
	gen        ids.Generator
	tree       tree.Tree
	selection  *selection.Controller
	sets       scoreset.Store
	excluded   map[string]struct{}
	aggregator *scoring.Aggregator

	// Persistence
	store       repository.Store
	ownsStore   bool
	driver      repository.Driver
	storeOpts   []repository.Option
	writeQueue  *queue.InMemoryQueue
	flusher     *worker.Flusher
	persister   *persistence.Adapter
	debouncer   *debounce.Debouncer
	setsDirty   bool
	stopFlusher context.CancelFunc

	// Configuration
	queueSize     int
	debounceDelay time.Duration
	categories    []scoring.Category
	clock         func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service holding the builtin institutions and one empty
// score set. Nothing is persisted until Start.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:       subject.Default(),
		driver:        repository.DriverMemory,
		queueSize:     defaultQueueSize,
		debounceDelay: defaultDebounceDelay,
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		s.gen = ids.NewRegistry()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	var aggOpts []scoring.Option
	if s.categories != nil {
		aggOpts = append(aggOpts, scoring.WithCategories(s.categories))
	}
	s.aggregator = scoring.NewAggregator(s.catalog, aggOpts...)
	s.debouncer = debounce.New(debounce.WithDelay(s.debounceDelay))

	s.tree = tree.Seed(s.catalog, s.gen)
	s.sets = s.newSetStore(nil, "")
	s.selection = selection.New(model.Selection{})
	s.selectFirstTrack()
	s.excluded = map[string]struct{}{}
	return s
}

func (s *Service) newSetStore(sets []model.ScoreSet, activeID string) scoreset.Store {
	return scoreset.New(s.catalog, sets, activeID,
		scoreset.WithGenerator(s.gen),
		scoreset.WithClock(s.clock),
	)
}

func (s *Service) selectFirstTrack() {
	if sel, ok := s.tree.FirstTrack(); ok {
		s.selection.SelectTrack(sel.InstitutionID, sel.ProgramID, sel.TrackID)
	}
}

// Start opens the store, hydrates the state and starts the background writer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting calculator service...")

	if s.store == nil || s.ownsStore {
		store, err := repository.Open(ctx, s.driver, s.storeOpts...)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.writeQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.persister = persistence.New(s.store, s.writeQueue, s.catalog,
		persistence.WithClock(s.clock),
		persistence.WithLogger(s.logger.Named("persistence")),
	)
	s.hydrate(ctx)

	s.flusher = worker.NewFlusher(s.writeQueue, s.store, worker.WithLogger(s.logger.Named("flusher")))
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stopFlusher = cancel
	go s.flusher.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "calculator service started",
		logger.String("driver", string(s.driver)),
		logger.Int("institutions", s.tree.Len()),
		logger.Int("scoreSets", s.sets.Len()),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("debounce", s.debouncer.Delay()),
	)
	return nil
}

// hydrate replaces the in-memory state with the stored one. Records that
// were missing, migrated or unreadable are written back in the current shape.
func (s *Service) hydrate(ctx context.Context) {
	snap := s.persister.Load(ctx)

	s.tree = tree.New(s.catalog, s.gen, snap.Institutions)
	if snap.Statuses[persistence.RecordHierarchy] == persistence.StatusCurrent &&
		!sameIDs(snap.Institutions, s.tree.Institutions()) {
		snap.Statuses[persistence.RecordHierarchy] = persistence.StatusMigrated
	}
	s.sets = s.newSetStore(snap.ScoreSets, snap.ActiveSetID)
	s.excluded = make(map[string]struct{}, len(snap.Excluded))
	for _, k := range snap.Excluded {
		s.excluded[k] = struct{}{}
	}

	s.selection = selection.New(model.Selection{})
	switch {
	case snap.Statuses[persistence.RecordSelection] == persistence.StatusCurrent:
		if _, changed := s.selection.Restore(s.tree, snap.Selection); changed {
			metrics.RecordSelectionRepair()
		}
	case snap.Selection.InstitutionID != "":
		// Legacy records only name the institution.
		if _, err := s.selection.SelectInstitution(s.tree, snap.Selection.InstitutionID); err != nil {
			s.selectFirstTrack()
		}
	default:
		s.selectFirstTrack()
	}
	metrics.UpdateInstitutionCount(s.tree.Len())
	metrics.UpdateScoreSetCount(s.sets.Len())

	for record, status := range snap.Statuses {
		if status == persistence.StatusCurrent {
			continue
		}
		s.logger.Info(ctx, "writing back record",
			logger.String("record", string(record)),
			logger.String("status", status.String()),
		)
		s.writeBack(ctx, record)
	}
}

// sameIDs reports whether two institution lists carry the same ids in the
// same positions.
func sameIDs(a, b []model.Institution) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || len(a[i].Programs) != len(b[i].Programs) {
			return false
		}
		for j, p := range a[i].Programs {
			q := b[i].Programs[j]
			if p.ID != q.ID || len(p.Tracks) != len(q.Tracks) {
				return false
			}
			for k, tr := range p.Tracks {
				if tr.ID != q.Tracks[k].ID {
					return false
				}
			}
		}
	}
	return true
}

func (s *Service) writeBack(ctx context.Context, record persistence.Record) {
	switch record {
	case persistence.RecordHierarchy:
		s.persister.SaveHierarchy(ctx, s.tree.Institutions())
	case persistence.RecordScoreSets:
		s.persister.SaveScoreSets(ctx, s.sets.Sets())
	case persistence.RecordActiveSet:
		s.persister.SaveActiveSetID(ctx, s.sets.ActiveID())
	case persistence.RecordSelection:
		s.persister.SaveSelection(ctx, s.selection.Stored())
	case persistence.RecordExcluded:
		s.persister.SaveExcluded(ctx, s.excludedKeys())
	}
}

// Stop flushes the pending score write, drains the write queue and closes the
// store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping calculator service...")

	s.flushPendingSets(ctx)

	if err := s.flusher.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "write queue not drained", logger.Error(err))
	}
	s.stopFlusher()

	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "error closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "calculator service stopped")
}

// Flush writes the pending score update now and waits until every queued
// write has reached the store.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	started, flusher := s.started, s.flusher
	if started {
		s.flushPendingSets(ctx)
	}
	s.mu.Unlock()

	if !started {
		return ErrNotStarted
	}
	return flusher.Flush(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	sel := s.selection.Current(s.tree)
	stats := map[string]interface{}{
		"started":         s.started,
		"driver":          string(s.driver),
		"subjects":        s.catalog.Len(),
		"institutions":    s.tree.Len(),
		"scoreSets":       s.sets.Len(),
		"excluded":        len(s.excluded),
		"selectionState":  sel.State().String(),
		"ids":             s.gen.Size(),
		"debouncePending": s.debouncer.Pending(),
		"queueSize":       s.queueSize,
	}
	if s.started {
		stats["queueLength"] = s.writeQueue.Len(ctx)
	}

	metrics.UpdateInstitutionCount(s.tree.Len())
	metrics.UpdateScoreSetCount(s.sets.Len())
	return stats
}

// Subjects returns the subject catalog in display order.
func (s *Service) Subjects(_ context.Context) []model.Subject {
	return s.catalog.All()
}
