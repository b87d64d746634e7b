package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	service "github.com/okian/admitcalc/internal/app"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/tree"
	"github.com/okian/admitcalc/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init(logger.WithWriter(io.Discard))
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then it holds the builtins and one empty score set", func() {
			institutions := svc.Institutions(ctx)
			So(institutions, ShouldHaveLength, 2)
			So(institutions[0].ID, ShouldEqual, tree.UniformID)
			So(institutions[0].Builtin, ShouldBeTrue)

			sets := svc.ScoreSets(ctx)
			So(sets.Sets, ShouldHaveLength, 1)
			So(sets.Sets[0].Name, ShouldEqual, "Score set 1")
			So(sets.ActiveID, ShouldEqual, sets.Sets[0].ID)
		})

		Convey("And the first track is selected", func() {
			So(svc.Selection(ctx), ShouldResemble, model.Selection{
				InstitutionID: tree.UniformID,
				ProgramID:     tree.UniformID + "_p1",
				TrackID:       tree.UniformID + "_t1",
			})
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithQueueSize(16),
			service.WithDebounceDelay(10*time.Millisecond),
			service.WithClock(func() time.Time { return time.UnixMilli(42) }),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			So(svc.ScoreSets(context.Background()).Sets[0].CreatedAt, ShouldEqual, 42)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When flushing before start", func() {
			err := svc.Flush(ctx)

			Convey("Then it reports that the service is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
				So(svc.Flush(ctx), ShouldBeNil)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopping a started service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And stopping again is a no-op", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Hierarchy(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When adding an institution", func() {
			id := svc.AddInstitution(ctx)

			Convey("Then it is selected down to its default track", func() {
				sel := svc.Selection(ctx)
				So(sel.InstitutionID, ShouldEqual, id)
				So(sel.State(), ShouldEqual, model.SelectionFull)

				inst, err := svc.Institution(ctx, id)
				So(err, ShouldBeNil)
				So(inst.Name, ShouldEqual, tree.NewInstitutionName)
				So(inst.Programs[0].Tracks[0].ID, ShouldEqual, sel.TrackID)
			})
		})

		Convey("When adding a program and a track", func() {
			instID := svc.AddInstitution(ctx)
			progID, err := svc.AddProgram(ctx, instID)
			So(err, ShouldBeNil)
			trackID, err := svc.AddTrack(ctx, instID, progID)
			So(err, ShouldBeNil)

			Convey("Then the new track is selected", func() {
				So(svc.Selection(ctx), ShouldResemble, model.Selection{
					InstitutionID: instID,
					ProgramID:     progID,
					TrackID:       trackID,
				})
			})
		})

		Convey("When the selected institution is deleted", func() {
			id := svc.AddInstitution(ctx)
			removed, err := svc.DeleteInstitution(ctx, id)
			So(err, ShouldBeNil)

			Convey("Then its tracks are reported and the selection moves to the first track", func() {
				So(removed, ShouldHaveLength, 1)
				So(svc.Selection(ctx).TrackID, ShouldEqual, tree.UniformID+"_t1")
			})
		})

		Convey("When operating on unknown ids", func() {
			_, err := svc.AddProgram(ctx, "nope")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.RenameTrack(ctx, "nope", "x"), model.ErrNotFound), ShouldBeTrue)
			_, err = svc.SelectInstitution(ctx, "nope")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			_, err = svc.Institution(ctx, "nope")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("When updating a weight", func() {
			So(svc.UpdateTrackWeight(ctx, tree.ExampleID+"_t1", "math1", "12.5"), ShouldBeNil)
			sum, err := svc.WeightSum(ctx, tree.ExampleID+"_t1")

			Convey("Then the weight sum includes it", func() {
				So(err, ShouldBeNil)
				So(sum, ShouldEqual, 112.5)
			})
		})

		Convey("When exporting", func() {
			svc.AddInstitution(ctx)

			Convey("Then only user-created institutions are included", func() {
				exported := svc.ExportInstitutions(ctx)
				So(exported, ShouldHaveLength, 1)
				So(exported[0].Builtin, ShouldBeFalse)
			})
		})
	})
}

func TestService_Result(t *testing.T) {
	Convey("Given the example institution selected", t, func() {
		svc := service.New()
		ctx := context.Background()
		_, err := svc.SelectInstitution(ctx, tree.ExampleID)
		So(err, ShouldBeNil)
		So(svc.SetScore(ctx, "japanese", "100"), ShouldBeNil)
		So(svc.SetScore(ctx, "engR", "80"), ShouldBeNil)

		Convey("When computing the result", func() {
			res := svc.Result(ctx)

			Convey("Then the weighted total is returned with a breakdown", func() {
				So(res.State, ShouldEqual, "full")
				So(res.InstitutionName, ShouldEqual, "Example institution")
				So(res.Total, ShouldEqual, 50)
				So(res.Breakdown, ShouldNotBeNil)
				So(res.Breakdown.WeightedTotal, ShouldEqual, 50)
			})
		})

		Convey("When a subject is excluded", func() {
			So(svc.SetExcluded(ctx, []string{"engR"}), ShouldBeNil)

			Convey("Then it no longer contributes", func() {
				So(svc.Result(ctx).Total, ShouldEqual, 20)
				So(svc.Excluded(ctx), ShouldResemble, []string{"engR"})
			})
		})

		Convey("When excluding an unknown subject", func() {
			err := svc.SetExcluded(ctx, []string{"history"})

			Convey("Then it is rejected and nothing changes", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
				So(svc.Excluded(ctx), ShouldBeEmpty)
			})
		})

		Convey("When scoring an unknown subject", func() {
			So(errors.Is(svc.SetScore(ctx, "history", "1"), model.ErrNotFound), ShouldBeTrue)
		})

		Convey("When every institution is deleted", func() {
			_, err := svc.DeleteInstitution(ctx, tree.UniformID)
			So(err, ShouldBeNil)
			_, err = svc.DeleteInstitution(ctx, tree.ExampleID)
			So(err, ShouldBeNil)

			Convey("Then the result is empty", func() {
				res := svc.Result(ctx)
				So(res.State, ShouldEqual, "empty")
				So(res.Total, ShouldEqual, 0)
				So(res.Breakdown, ShouldBeNil)
			})
		})
	})
}

func TestService_ScoreSets(t *testing.T) {
	Convey("Given a service with one score set", t, func() {
		svc := service.New()
		ctx := context.Background()
		first := svc.ScoreSets(ctx).ActiveID

		Convey("When adding a set", func() {
			id := svc.AddScoreSet(ctx, "")

			Convey("Then it is named by position and becomes active", func() {
				sets := svc.ScoreSets(ctx)
				So(sets.ActiveID, ShouldEqual, id)
				So(sets.Sets[1].Name, ShouldEqual, "Score set 2")
			})

			Convey("And deleting it activates the first set", func() {
				So(svc.DeleteScoreSet(ctx, id), ShouldBeNil)
				So(svc.ScoreSets(ctx).ActiveID, ShouldEqual, first)
			})
		})

		Convey("When deleting the only set", func() {
			err := svc.DeleteScoreSet(ctx, first)

			Convey("Then it is protected", func() {
				So(errors.Is(err, model.ErrLastSetProtected), ShouldBeTrue)
			})
		})

		Convey("When renaming to a blank name", func() {
			err := svc.RenameScoreSet(ctx, first, "   ")

			Convey("Then the name is rejected", func() {
				So(errors.Is(err, model.ErrInvalidName), ShouldBeTrue)
			})
		})

		Convey("When switching to an unknown set", func() {
			So(errors.Is(svc.SwitchScoreSet(ctx, "nope"), model.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the active scores are replaced and cleared", func() {
			svc.UpdateScores(ctx, map[string]string{"math1": "7."})
			So(svc.ScoreSets(ctx).Sets[0].Scores["math1"], ShouldEqual, "7.")
			svc.ClearScores(ctx)

			Convey("Then the set is empty", func() {
				So(svc.ScoreSets(ctx).Sets[0].Scores, ShouldBeEmpty)
			})
		})

		Convey("When importing a set whose id collides", func() {
			added := svc.ImportScoreSets(ctx, []model.ScoreSet{{ID: first, Name: "Copy", Scores: map[string]string{}}})

			Convey("Then it is stored under a fresh id", func() {
				So(added, ShouldHaveLength, 1)
				So(added[0], ShouldNotEqual, first)
				So(svc.ScoreSets(ctx).Sets, ShouldHaveLength, 2)
			})
		})
	})
}
