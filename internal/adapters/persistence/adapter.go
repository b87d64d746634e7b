package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/admitcalc/internal/adapters/mq/queue"
	"github.com/okian/admitcalc/internal/adapters/repository"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
	"github.com/okian/admitcalc/internal/domain/tree"
	"github.com/okian/admitcalc/pkg/logger"
	"github.com/okian/admitcalc/pkg/metrics"
)

// Reader reads stored records.
type Reader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Writer accepts record writes without blocking.
type Writer interface {
	Enqueue(ctx context.Context, w queue.Write) bool
}

// Adapter loads records synchronously and saves them fire-and-forget through
// the write queue.
type Adapter struct {
	reader  Reader
	writer  Writer
	catalog *subject.Catalog
	clock   func() time.Time
	logger  logger.Logger
}

// New creates an adapter with configuration options.
func New(reader Reader, writer Writer, catalog *subject.Catalog, opts ...Option) *Adapter {
	a := &Adapter{
		reader:  reader,
		writer:  writer,
		catalog: catalog,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("persistence")
	}
	return a
}

// Snapshot is everything hydrated at startup.
type Snapshot struct {
	Institutions []model.Institution
	ScoreSets    []model.ScoreSet
	ActiveSetID  string
	Selection    model.Selection
	Excluded     []string
	Statuses     map[Record]Status
}

// Migrated reports whether any record was loaded from an older shape.
func (s Snapshot) Migrated() bool {
	for _, st := range s.Statuses {
		if st == StatusMigrated {
			return true
		}
	}
	return false
}

// Load reads every record, falling back to defaults record by record.
func (a *Adapter) Load(ctx context.Context) Snapshot {
	var snap Snapshot
	snap.Statuses = make(map[Record]Status, 5)
	snap.Institutions, snap.Statuses[RecordHierarchy] = a.LoadHierarchy(ctx)
	snap.ScoreSets, snap.Statuses[RecordScoreSets] = a.LoadScoreSets(ctx)
	snap.ActiveSetID, snap.Statuses[RecordActiveSet] = a.LoadActiveSetID(ctx)
	snap.Selection, snap.Statuses[RecordSelection] = a.LoadSelection(ctx)
	snap.Excluded, snap.Statuses[RecordExcluded] = a.LoadExcluded(ctx)
	return snap
}

// LoadHierarchy returns the stored institutions, or the builtins when nothing
// usable is stored. Legacy records held only user-created institutions, so
// the builtins are prepended to them.
func (a *Adapter) LoadHierarchy(ctx context.Context) ([]model.Institution, Status) {
	raw, key, err := a.first(ctx, KeyHierarchy, LegacyKeyHierarchy)
	if err != nil {
		return tree.Builtins(a.catalog), a.malformed(ctx, RecordHierarchy, err)
	}
	if key == "" {
		return tree.Builtins(a.catalog), StatusMissing
	}

	data, err := decodeJSON(raw)
	if err != nil {
		return tree.Builtins(a.catalog), a.malformed(ctx, RecordHierarchy, err)
	}
	data, applied, err := hierarchyChain().run(data)
	if err != nil {
		return tree.Builtins(a.catalog), a.malformed(ctx, RecordHierarchy, err)
	}
	entries := data.([]any)
	institutions, skipped := decodeInstitutions(entries)
	if len(entries) > 0 && skipped == len(entries) {
		err := fmt.Errorf("%w: no readable institution in %d entries", ErrUnknownShape, skipped)
		return tree.Builtins(a.catalog), a.malformed(ctx, RecordHierarchy, err)
	}
	a.skipped(ctx, RecordHierarchy, skipped)
	for i := range institutions {
		a.fillWeights(&institutions[i])
	}

	legacy := key == LegacyKeyHierarchy
	if legacy {
		custom := institutions[:0]
		for _, inst := range institutions {
			if !tree.IsBuiltinID(inst.ID) {
				inst.Builtin = false
				custom = append(custom, inst)
			}
		}
		institutions = append(tree.Builtins(a.catalog), custom...)
		if len(applied) == 0 {
			applied = []string{"v1"}
		}
	}
	return institutions, a.status(ctx, RecordHierarchy, applied)
}

// LoadScoreSets returns the stored score sets. Missing or malformed data
// yields nil; the score-set store supplies its default set.
func (a *Adapter) LoadScoreSets(ctx context.Context) ([]model.ScoreSet, Status) {
	raw, key, err := a.first(ctx, KeyScoreSets, LegacyKeyScores)
	if err != nil {
		return nil, a.malformed(ctx, RecordScoreSets, err)
	}
	if key == "" {
		return nil, StatusMissing
	}

	data, err := decodeJSON(raw)
	if err != nil {
		return nil, a.malformed(ctx, RecordScoreSets, err)
	}
	data, applied, err := scoreSetChain(a.clock).run(data)
	if err != nil {
		return nil, a.malformed(ctx, RecordScoreSets, err)
	}
	sets, skipped := decodeScoreSets(data.([]any))
	a.skipped(ctx, RecordScoreSets, skipped)
	return sets, a.status(ctx, RecordScoreSets, applied)
}

// LoadActiveSetID returns the stored active set id.
func (a *Adapter) LoadActiveSetID(ctx context.Context) (string, Status) {
	raw, key, err := a.first(ctx, KeyActiveSet)
	if err != nil {
		return "", a.malformed(ctx, RecordActiveSet, err)
	}
	if key == "" {
		return "", StatusMissing
	}
	return decodeText(raw), StatusCurrent
}

// LoadSelection returns the stored selection. The legacy record only held an
// institution id; the selection controller fills in the rest on restore.
func (a *Adapter) LoadSelection(ctx context.Context) (model.Selection, Status) {
	var (
		sel   model.Selection
		found bool
	)
	for _, f := range []struct {
		key string
		dst *string
	}{
		{KeySelectedInstitution, &sel.InstitutionID},
		{KeySelectedProgram, &sel.ProgramID},
		{KeySelectedTrack, &sel.TrackID},
	} {
		raw, key, err := a.first(ctx, f.key)
		if err != nil {
			return model.Selection{}, a.malformed(ctx, RecordSelection, err)
		}
		if key != "" {
			*f.dst = decodeText(raw)
			found = true
		}
	}
	if found {
		return sel, StatusCurrent
	}

	raw, key, err := a.first(ctx, LegacyKeySelected)
	if err != nil {
		return model.Selection{}, a.malformed(ctx, RecordSelection, err)
	}
	if key == "" {
		return model.Selection{}, StatusMissing
	}
	sel = model.Selection{InstitutionID: decodeText(raw)}
	return sel, a.status(ctx, RecordSelection, []string{"v1"})
}

// LoadExcluded returns the stored excluded subject keys, dropping keys that
// are not in the catalog.
func (a *Adapter) LoadExcluded(ctx context.Context) ([]string, Status) {
	raw, key, err := a.first(ctx, KeyExcluded, LegacyKeyExcluded)
	if err != nil {
		return nil, a.malformed(ctx, RecordExcluded, err)
	}
	switch key {
	case "":
		return nil, StatusMissing
	case LegacyKeyExcluded:
		v := decodeText(raw)
		switch {
		case v == legacyNoExclusion:
			return nil, a.status(ctx, RecordExcluded, []string{"v1"})
		case a.catalog.Has(v):
			return []string{v}, a.status(ctx, RecordExcluded, []string{"v1"})
		default:
			return nil, a.malformed(ctx, RecordExcluded, fmt.Errorf("%w: unknown subject %q", ErrUnknownShape, v))
		}
	}

	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, a.malformed(ctx, RecordExcluded, fmt.Errorf("%w: %w", model.ErrMalformedPersistedState, err))
	}
	out := keys[:0]
	for _, k := range keys {
		if a.catalog.Has(k) {
			out = append(out, k)
		}
	}
	a.skipped(ctx, RecordExcluded, len(keys)-len(out))
	return out, StatusCurrent
}

// SaveHierarchy writes the whole institution list, builtins included.
func (a *Adapter) SaveHierarchy(ctx context.Context, institutions []model.Institution) {
	value, err := EncodeInstitutions(institutions)
	if err != nil {
		a.encodeFailed(ctx, RecordHierarchy, err)
		return
	}
	a.submit(ctx, RecordHierarchy, KeyHierarchy, value)
}

// SaveScoreSets writes every score set.
func (a *Adapter) SaveScoreSets(ctx context.Context, sets []model.ScoreSet) {
	value, err := EncodeScoreSets(sets)
	if err != nil {
		a.encodeFailed(ctx, RecordScoreSets, err)
		return
	}
	a.submit(ctx, RecordScoreSets, KeyScoreSets, value)
}

// SaveActiveSetID writes the active set id as plain text.
func (a *Adapter) SaveActiveSetID(ctx context.Context, id string) {
	a.submit(ctx, RecordActiveSet, KeyActiveSet, []byte(id))
}

// SaveSelection writes the three selection ids as plain text.
func (a *Adapter) SaveSelection(ctx context.Context, sel model.Selection) {
	a.submit(ctx, RecordSelection, KeySelectedInstitution, []byte(sel.InstitutionID))
	a.submit(ctx, RecordSelection, KeySelectedProgram, []byte(sel.ProgramID))
	a.submit(ctx, RecordSelection, KeySelectedTrack, []byte(sel.TrackID))
}

// SaveExcluded writes the excluded subject keys.
func (a *Adapter) SaveExcluded(ctx context.Context, keys []string) {
	if keys == nil {
		keys = []string{}
	}
	value, err := json.Marshal(keys)
	if err != nil {
		a.encodeFailed(ctx, RecordExcluded, err)
		return
	}
	a.submit(ctx, RecordExcluded, KeyExcluded, value)
}

// first returns the value of the first present key and that key. An empty
// key with a nil error means none is stored.
func (a *Adapter) first(ctx context.Context, keys ...string) ([]byte, string, error) {
	for _, key := range keys {
		raw, err := a.reader.Get(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", key, err)
		}
		return raw, key, nil
	}
	return nil, "", nil
}

func (a *Adapter) submit(ctx context.Context, record Record, key string, value []byte) {
	ok := a.writer.Enqueue(ctx, queue.Write{Key: key, Record: string(record), Value: value})
	if ok {
		return
	}
	metrics.RecordPersistenceDropped(string(record))
	a.logger.Warn(ctx, "record write dropped",
		logger.String("record", string(record)),
		logger.String("key", key),
	)
}

func (a *Adapter) malformed(ctx context.Context, record Record, err error) Status {
	metrics.RecordMalformedState(string(record))
	a.logger.Warn(ctx, "persisted state unreadable, using default",
		logger.String("record", string(record)),
		logger.Error(err),
	)
	return StatusMalformed
}

func (a *Adapter) status(ctx context.Context, record Record, applied []string) Status {
	if len(applied) == 0 {
		return StatusCurrent
	}
	for _, from := range applied {
		metrics.RecordMigration(string(record), from)
	}
	a.logger.Info(ctx, "migrated persisted record",
		logger.String("record", string(record)),
		logger.String("from", strings.Join(applied, ",")),
	)
	return StatusMigrated
}

func (a *Adapter) skipped(ctx context.Context, record Record, n int) {
	if n == 0 {
		return
	}
	a.logger.Warn(ctx, "skipped unreadable entries",
		logger.String("record", string(record)),
		logger.Int("count", n),
	)
}

func (a *Adapter) encodeFailed(ctx context.Context, record Record, err error) {
	metrics.RecordPersistenceFailure(string(record))
	a.logger.Error(ctx, "record encode failed",
		logger.String("record", string(record)),
		logger.Error(err),
	)
}

func (a *Adapter) fillWeights(inst *model.Institution) {
	for i := range inst.Programs {
		for j := range inst.Programs[i].Tracks {
			if inst.Programs[i].Tracks[j].Weights == nil {
				inst.Programs[i].Tracks[j].Weights = a.catalog.ZeroWeights()
			}
		}
	}
}

// decodeText reads a plain-text record, also accepting a JSON string.
func decodeText(raw []byte) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
