package selection_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/selection"
	"github.com/okian/admitcalc/internal/domain/subject"
	"github.com/okian/admitcalc/internal/domain/tree"
	. "github.com/smartystreets/goconvey/convey"
)

func seeded() tree.Tree {
	return tree.Seed(subject.Default(), ids.NewRegistry(ids.WithFactory(ids.Sequential())))
}

func TestController_Select(t *testing.T) {
	Convey("Given the seeded tree and an empty selection", t, func() {
		tr := seeded()
		c := selection.New(model.Selection{})

		Convey("When selecting an institution", func() {
			sel, err := c.SelectInstitution(tr, tree.ExampleID)
			So(err, ShouldBeNil)

			Convey("Then its first program and track are selected", func() {
				So(sel, ShouldResemble, model.Selection{InstitutionID: "osaka", ProgramID: "osaka_p1", TrackID: "osaka_t1"})
				So(sel.State(), ShouldEqual, model.SelectionFull)
			})
		})

		Convey("When selecting an unknown institution", func() {
			c.SelectInstitution(tr, tree.UniformID)
			_, err := c.SelectInstitution(tr, "missing")

			Convey("Then it fails and keeps the previous selection", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
				So(c.Stored().InstitutionID, ShouldEqual, tree.UniformID)
			})
		})

		Convey("When selecting a program of another institution", func() {
			sel, err := c.SelectProgram(tr, tree.UniformID, "osaka_p1")
			So(err, ShouldBeNil)

			Convey("Then it resets to the institution defaults", func() {
				So(sel.ProgramID, ShouldEqual, "default_p1")
				So(sel.TrackID, ShouldEqual, "default_t1")
			})
		})

		Convey("When the institution has only an empty program", func() {
			next, instID := tr.AddInstitution()
			inst, _ := next.FindInstitution(instID)
			p := inst.Programs[0]
			next, _, _ = next.DeleteTrack(instID, p.ID, p.Tracks[0].ID)

			sel, err := c.SelectInstitution(next, instID)
			So(err, ShouldBeNil)

			Convey("Then the selection is partial", func() {
				So(sel, ShouldResemble, model.Selection{InstitutionID: instID})
				So(sel.State(), ShouldEqual, model.SelectionPartial)
				So(selection.Valid(next, sel), ShouldBeTrue)
			})

			Convey("And selecting the empty program falls back the same way", func() {
				sel, err := c.SelectProgram(next, instID, p.ID)
				So(err, ShouldBeNil)
				So(sel, ShouldResemble, model.Selection{InstitutionID: instID})
			})
		})

		Convey("When storing an inconsistent track triple", func() {
			c.SelectTrack(tree.UniformID, "default_p1", "osaka_t1")

			Convey("Then reading re-derives the parents of the track", func() {
				So(c.Current(tr), ShouldResemble, model.Selection{InstitutionID: "osaka", ProgramID: "osaka_p1", TrackID: "osaka_t1"})
				So(c.Stored().InstitutionID, ShouldEqual, tree.UniformID)
			})
		})
	})
}

func TestController_RepairAfterDelete(t *testing.T) {
	Convey("Given an institution with two programs and the second program's track selected", t, func() {
		tr, instID := seeded().AddInstitution()
		tr, progID, _ := tr.AddProgram(instID)
		inst, _ := tr.FindInstitution(instID)
		firstProg := inst.Programs[0]
		c := selection.New(model.Selection{})
		_, err := c.SelectProgram(tr, instID, progID)
		So(err, ShouldBeNil)

		Convey("When the selected track's parent program is deleted", func() {
			next, _, _ := tr.DeleteProgram(instID, progID)
			sel, changed := c.Repair(next)

			Convey("Then the first track of the first remaining program is selected", func() {
				So(changed, ShouldBeTrue)
				So(sel, ShouldResemble, model.Selection{
					InstitutionID: instID,
					ProgramID:     firstProg.ID,
					TrackID:       firstProg.Tracks[0].ID,
				})
			})
		})

		Convey("When the whole institution is deleted", func() {
			next, _, _ := tr.DeleteInstitution(instID)
			sel, _ := c.Repair(next)

			Convey("Then the first track anywhere is selected", func() {
				So(sel.TrackID, ShouldEqual, "default_t1")
			})
		})

		Convey("When the selected track is deleted but its program survives", func() {
			next, newTrack, _ := tr.AddTrack(instID, progID)
			old := c.Stored().TrackID
			next, _, _ = next.DeleteTrack(instID, progID, old)
			sel, _ := c.Repair(next)

			Convey("Then the first remaining track of that program is selected", func() {
				So(sel.TrackID, ShouldEqual, newTrack)
			})
		})

		Convey("When everything is deleted", func() {
			next := tr
			for _, in := range tr.Institutions() {
				next, _, _ = next.DeleteInstitution(in.ID)
			}
			sel, _ := c.Repair(next)

			Convey("Then the selection is empty", func() {
				So(sel.State(), ShouldEqual, model.SelectionEmpty)
			})
		})

		Convey("When nothing relevant changed", func() {
			_, changed := c.Repair(tr)
			So(changed, ShouldBeFalse)
		})
	})
}

func TestController_Restore(t *testing.T) {
	Convey("Given a persisted selection pointing at a vanished track", t, func() {
		tr := seeded()
		c := selection.New(model.Selection{})
		sel, changed := c.Restore(tr, model.Selection{InstitutionID: "osaka", ProgramID: "osaka_p1", TrackID: "gone"})

		Convey("Then it repairs to the first track of the persisted program", func() {
			So(changed, ShouldBeTrue)
			So(sel.TrackID, ShouldEqual, "osaka_t1")
		})
	})
}

func TestController_RandomMutations(t *testing.T) {
	Convey("Given a random sequence of tree mutations", t, func() {
		rng := rand.New(rand.NewPCG(7, 11))
		tr := seeded()
		c := selection.New(model.Selection{})
		c.SelectInstitution(tr, tree.UniformID)

		for step := 0; step < 500; step++ {
			insts := tr.Institutions()
			switch op := rng.IntN(6); {
			case op == 0 || len(insts) == 0:
				var id string
				tr, id = tr.AddInstitution()
				c.SelectInstitution(tr, id)
			case op == 1:
				inst := insts[rng.IntN(len(insts))]
				tr, _, _ = tr.AddProgram(inst.ID)
			case op == 2:
				inst := insts[rng.IntN(len(insts))]
				if len(inst.Programs) > 0 {
					p := inst.Programs[rng.IntN(len(inst.Programs))]
					tr, _, _ = tr.AddTrack(inst.ID, p.ID)
				}
			case op == 3:
				inst := insts[rng.IntN(len(insts))]
				tr, _, _ = tr.DeleteInstitution(inst.ID)
			case op == 4:
				inst := insts[rng.IntN(len(insts))]
				if len(inst.Programs) > 0 {
					p := inst.Programs[rng.IntN(len(inst.Programs))]
					tr, _, _ = tr.DeleteProgram(inst.ID, p.ID)
				}
			default:
				inst := insts[rng.IntN(len(insts))]
				for _, p := range inst.Programs {
					if len(p.Tracks) > 0 {
						tr, _, _ = tr.DeleteTrack(inst.ID, p.ID, p.Tracks[0].ID)
						break
					}
				}
			}

			sel, _ := c.Repair(tr)
			So(selection.Valid(tr, sel), ShouldBeTrue)
			So(c.Current(tr), ShouldResemble, sel)
		}
	})
}
