package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/admitcalc/internal/adapters/mq/queue"
	"github.com/okian/admitcalc/internal/adapters/persistence"
	"github.com/okian/admitcalc/internal/adapters/repository"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
	"github.com/okian/admitcalc/internal/domain/tree"
	logging "github.com/okian/admitcalc/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// directWriter applies writes to the store synchronously.
type directWriter struct {
	store  *repository.MemoryStore
	reject bool
	writes []queue.Write
}

func (w *directWriter) Enqueue(ctx context.Context, wr queue.Write) bool {
	if w.reject {
		return false
	}
	w.writes = append(w.writes, wr)
	return w.store.Put(ctx, wr.Key, wr.Value) == nil
}

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newAdapter() (*persistence.Adapter, *repository.MemoryStore, *directWriter) {
	store := repository.NewMemoryStore()
	w := &directWriter{store: store}
	a := persistence.New(store, w, subject.Default(),
		persistence.WithLogger(logging.Discard()),
		persistence.WithClock(func() time.Time { return fixedNow }),
	)
	return a, store, w
}

func TestAdapter_RoundTrip(t *testing.T) {
	Convey("Given an adapter over an empty store", t, func() {
		ctx := context.Background()
		a, _, _ := newAdapter()

		Convey("When nothing is stored", func() {
			snap := a.Load(ctx)

			Convey("Then every record falls back to its default", func() {
				So(snap.Statuses[persistence.RecordHierarchy], ShouldEqual, persistence.StatusMissing)
				So(snap.Institutions, ShouldResemble, tree.Builtins(subject.Default()))
				So(snap.ScoreSets, ShouldBeNil)
				So(snap.Selection.IsZero(), ShouldBeTrue)
				So(snap.Excluded, ShouldBeEmpty)
				So(snap.Migrated(), ShouldBeFalse)
			})
		})

		Convey("When the state is saved and loaded back", func() {
			institutions := append(tree.Builtins(subject.Default()), model.Institution{
				ID:   "inst_1",
				Name: "Custom",
				Programs: []model.Program{{
					ID:   "prog_1",
					Name: "Engineering",
					Tracks: []model.Track{{
						ID:      "track_1",
						Name:    "Mechanical",
						Weights: model.WeightTable{"math1": model.Weight(50), "engR": nil},
					}},
				}},
			})
			sets := []model.ScoreSet{
				{ID: "set_a", Name: "Mock 1", Scores: map[string]string{"math1": "7."}, CreatedAt: 1, UpdatedAt: 2},
				{ID: "set_b", Name: "Mock 2", Scores: map[string]string{}, CreatedAt: 3, UpdatedAt: 4},
			}
			sel := model.Selection{InstitutionID: "inst_1", ProgramID: "prog_1", TrackID: "track_1"}

			a.SaveHierarchy(ctx, institutions)
			a.SaveScoreSets(ctx, sets)
			a.SaveActiveSetID(ctx, "set_b")
			a.SaveSelection(ctx, sel)
			a.SaveExcluded(ctx, []string{"sci2"})
			snap := a.Load(ctx)

			Convey("Then every record decodes to what was saved", func() {
				So(snap.Institutions, ShouldResemble, institutions)
				So(snap.ScoreSets, ShouldResemble, sets)
				So(snap.ActiveSetID, ShouldEqual, "set_b")
				So(snap.Selection, ShouldResemble, sel)
				So(snap.Excluded, ShouldResemble, []string{"sci2"})
				for _, st := range snap.Statuses {
					So(st, ShouldEqual, persistence.StatusCurrent)
				}
			})
		})
	})
}

func TestAdapter_Migrations(t *testing.T) {
	Convey("Given an adapter", t, func() {
		ctx := context.Background()
		a, store, _ := newAdapter()
		put := func(key, value string) { So(store.Put(ctx, key, []byte(value)), ShouldBeNil) }

		Convey("When only a v1 hierarchy is stored", func() {
			put(persistence.LegacyKeyHierarchy, `[{"id":"custom_1","name":"Kyoto","weights":{"math1":50,"engR":50}}]`)
			institutions, status := a.LoadHierarchy(ctx)

			Convey("Then it is wrapped one-to-one and appended to the builtins", func() {
				So(status, ShouldEqual, persistence.StatusMigrated)
				So(institutions, ShouldHaveLength, 3)
				So(institutions[0].ID, ShouldEqual, tree.UniformID)
				So(institutions[1].ID, ShouldEqual, tree.ExampleID)

				inst := institutions[2]
				So(inst.Name, ShouldEqual, "Kyoto")
				So(inst.Builtin, ShouldBeFalse)
				So(inst.Programs, ShouldHaveLength, 1)
				So(inst.Programs[0].Name, ShouldEqual, tree.DefaultProgramName)
				So(inst.Programs[0].Tracks, ShouldHaveLength, 1)
				tr := inst.Programs[0].Tracks[0]
				So(tr.Name, ShouldEqual, tree.DefaultTrackName)
				So(tr.Weights.Value("math1"), ShouldEqual, 50)
				So(tr.Weights.Value("engR"), ShouldEqual, 50)
			})
		})

		Convey("When a hierarchy uses the faculties/departments naming", func() {
			put(persistence.KeyHierarchy, `[{"id":"u1","name":"U","faculties":[{"id":"f1","name":"F","departments":[{"id":"d1","name":"D","weights":{"math1":null}}]}]}]`)
			institutions, status := a.LoadHierarchy(ctx)

			Convey("Then the levels are renamed", func() {
				So(status, ShouldEqual, persistence.StatusMigrated)
				So(institutions, ShouldHaveLength, 1)
				So(institutions[0].Programs[0].ID, ShouldEqual, "f1")
				So(institutions[0].Programs[0].Tracks[0].ID, ShouldEqual, "d1")
				w, ok := institutions[0].Programs[0].Tracks[0].Weights["math1"]
				So(ok, ShouldBeTrue)
				So(w, ShouldBeNil)
			})
		})

		Convey("When a v1 score record is stored", func() {
			put(persistence.LegacyKeyScores, `{"math1":80,"engR":"70.5","bogus":true}`)
			sets, status := a.LoadScoreSets(ctx)

			Convey("Then it becomes one set named after the first default", func() {
				So(status, ShouldEqual, persistence.StatusMigrated)
				So(sets, ShouldHaveLength, 1)
				So(sets[0].Name, ShouldEqual, "Score set 1")
				So(sets[0].Scores, ShouldResemble, map[string]string{"math1": "80", "engR": "70.5"})
				So(sets[0].CreatedAt, ShouldEqual, fixedNow.UnixMilli())
			})
		})

		Convey("When only the legacy selection is stored", func() {
			put(persistence.LegacyKeySelected, "osaka")
			sel, status := a.LoadSelection(ctx)

			Convey("Then only the institution is restored", func() {
				So(status, ShouldEqual, persistence.StatusMigrated)
				So(sel, ShouldResemble, model.Selection{InstitutionID: "osaka"})
			})
		})

		Convey("When the legacy exclusion toggle is stored", func() {
			Convey("As a subject key", func() {
				put(persistence.LegacyKeyExcluded, "sci2")
				keys, status := a.LoadExcluded(ctx)
				So(status, ShouldEqual, persistence.StatusMigrated)
				So(keys, ShouldResemble, []string{"sci2"})
			})

			Convey("As none", func() {
				put(persistence.LegacyKeyExcluded, "none")
				keys, status := a.LoadExcluded(ctx)
				So(status, ShouldEqual, persistence.StatusMigrated)
				So(keys, ShouldBeEmpty)
			})

			Convey("As an unknown value", func() {
				put(persistence.LegacyKeyExcluded, "history")
				keys, status := a.LoadExcluded(ctx)
				So(status, ShouldEqual, persistence.StatusMalformed)
				So(keys, ShouldBeEmpty)
			})
		})
	})
}

func TestAdapter_MalformedFallback(t *testing.T) {
	Convey("Given records that cannot be read", t, func() {
		ctx := context.Background()
		a, store, _ := newAdapter()
		So(store.Put(ctx, persistence.KeyHierarchy, []byte(`{not json`)), ShouldBeNil)
		So(store.Put(ctx, persistence.KeyScoreSets, []byte(`"a string"`)), ShouldBeNil)
		So(store.Put(ctx, persistence.KeyExcluded, []byte(`{"x":1}`)), ShouldBeNil)

		Convey("When loading", func() {
			snap := a.Load(ctx)

			Convey("Then defaults are used and nothing is surfaced", func() {
				So(snap.Statuses[persistence.RecordHierarchy], ShouldEqual, persistence.StatusMalformed)
				So(snap.Institutions, ShouldResemble, tree.Builtins(subject.Default()))
				So(snap.Statuses[persistence.RecordScoreSets], ShouldEqual, persistence.StatusMalformed)
				So(snap.ScoreSets, ShouldBeNil)
				So(snap.Statuses[persistence.RecordExcluded], ShouldEqual, persistence.StatusMalformed)
			})
		})

		Convey("When some entries are broken", func() {
			So(store.Put(ctx, persistence.KeyHierarchy, []byte(`[{"id":"a","name":"A","programs":[]},{"id":7}]`)), ShouldBeNil)
			institutions, status := a.LoadHierarchy(ctx)

			Convey("Then the readable ones are kept", func() {
				So(status, ShouldEqual, persistence.StatusCurrent)
				So(institutions, ShouldHaveLength, 1)
				So(institutions[0].ID, ShouldEqual, "a")
			})
		})

		Convey("When every entry is broken", func() {
			So(store.Put(ctx, persistence.KeyHierarchy, []byte(`[1,"x",{"foo":1}]`)), ShouldBeNil)
			institutions, status := a.LoadHierarchy(ctx)

			Convey("Then the builtins are used", func() {
				So(status, ShouldEqual, persistence.StatusMalformed)
				So(institutions, ShouldResemble, tree.Builtins(subject.Default()))
			})
		})

		Convey("When the stored hierarchy is an empty array", func() {
			So(store.Put(ctx, persistence.KeyHierarchy, []byte(`[]`)), ShouldBeNil)
			institutions, status := a.LoadHierarchy(ctx)

			Convey("Then the tree stays empty", func() {
				So(status, ShouldEqual, persistence.StatusCurrent)
				So(institutions, ShouldBeEmpty)
			})
		})
	})
}

func TestAdapter_DroppedWrite(t *testing.T) {
	Convey("Given a writer whose queue is full", t, func() {
		ctx := context.Background()
		a, store, w := newAdapter()
		w.reject = true

		Convey("When saving", func() {
			a.SaveActiveSetID(ctx, "set_1")

			Convey("Then the write is dropped without error", func() {
				_, err := store.Get(ctx, persistence.KeyActiveSet)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestDecodeImports(t *testing.T) {
	Convey("Given institution import payloads", t, func() {
		Convey("When the payload mixes valid and invalid entries", func() {
			payload := `[
				{"id":"a","name":"A","programs":[{"id":"p","name":"P","tracks":[{"id":"t","name":"T","weights":{"math1":20,"engR":null}}]}]},
				{"id":"b","name":"B","faculties":[]},
				{"id":"c","name":"C"},
				{"id":"d","name":"D","programs":[{"id":"p2","name":"P","tracks":[{"id":"t2","name":"T","weights":{"math1":"lots"}}]}]},
				"junk"
			]`
			institutions, discarded, err := persistence.DecodeInstitutions([]byte(payload))

			Convey("Then only well-formed entries are kept", func() {
				So(err, ShouldBeNil)
				So(discarded, ShouldEqual, 2)
				So(institutions, ShouldHaveLength, 3)
				So(institutions[0].Programs[0].Tracks[0].Weights.Value("math1"), ShouldEqual, 20)
				So(institutions[1].ID, ShouldEqual, "b")
				So(institutions[1].Programs, ShouldBeEmpty)
			})

			Convey("And unreadable weights are left unset instead of dropping the entry", func() {
				So(institutions[2].ID, ShouldEqual, "d")
				w := institutions[2].Programs[0].Tracks[0].Weights
				So(w, ShouldContainKey, "math1")
				So(w["math1"], ShouldBeNil)
			})
		})

		Convey("When weights are written as text", func() {
			payload := `[{"id":"e","name":"E","programs":[{"id":"p","name":"P","tracks":[{"id":"t","name":"T","weights":{"math1":"10","engR":true}}]}]}]`
			institutions, discarded, err := persistence.DecodeInstitutions([]byte(payload))

			Convey("Then numeric text is parsed and other values are unset", func() {
				So(err, ShouldBeNil)
				So(discarded, ShouldEqual, 0)
				w := institutions[0].Programs[0].Tracks[0].Weights
				So(w.Value("math1"), ShouldEqual, 10)
				So(w["engR"], ShouldBeNil)
			})
		})

		Convey("When the payload is not an array", func() {
			_, _, err := persistence.DecodeInstitutions([]byte(`{"id":"a"}`))
			So(errors.Is(err, persistence.ErrInvalidPayload), ShouldBeTrue)
		})

		Convey("When the payload is not JSON", func() {
			_, _, err := persistence.DecodeInstitutions([]byte(`nope`))
			So(errors.Is(err, persistence.ErrInvalidPayload), ShouldBeTrue)
		})
	})

	Convey("Given score-set import payloads", t, func() {
		payload := `[{"id":"s1","name":"One","scores":{"math1":"90"}},{"id":"s2","name":"Two"},{"name":"Three","scores":{}}]`
		sets, discarded, err := persistence.DecodeScoreSets([]byte(payload))

		So(err, ShouldBeNil)
		So(discarded, ShouldEqual, 2)
		So(sets, ShouldHaveLength, 1)
		So(sets[0].Scores["math1"], ShouldEqual, "90")
	})
}
