package model_test

import (
	"testing"

	model "github.com/okian/admitcalc/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestWeightTable(t *testing.T) {
	convey.Convey("Given a weight table with set, zero and unset weights", t, func() {
		w := model.WeightTable{
			"math1": model.Weight(50),
			"engR":  model.Weight(0),
			"info":  nil,
		}

		convey.Convey("Then Value treats unset and absent keys as zero", func() {
			convey.So(w.Value("math1"), convey.ShouldEqual, 50)
			convey.So(w.Value("engR"), convey.ShouldEqual, 0)
			convey.So(w.Value("info"), convey.ShouldEqual, 0)
			convey.So(w.Value("missing"), convey.ShouldEqual, 0)
		})

		convey.Convey("When cloning the table", func() {
			c := w.Clone()
			*c["math1"] = 99

			convey.Convey("Then the original is not affected", func() {
				convey.So(*w["math1"], convey.ShouldEqual, 50)
				convey.So(c["info"], convey.ShouldBeNil)
				_, ok := c["info"]
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}

func TestInstitutionClone(t *testing.T) {
	convey.Convey("Given an institution with a nested track", t, func() {
		inst := model.Institution{
			ID:   "i1",
			Name: "Inst",
			Programs: []model.Program{{
				ID:     "p1",
				Tracks: []model.Track{{ID: "t1", Weights: model.WeightTable{"a": model.Weight(1)}}},
			}},
		}

		convey.Convey("When the clone is modified", func() {
			c := inst.Clone()
			c.Programs[0].Tracks[0].Name = "changed"
			*c.Programs[0].Tracks[0].Weights["a"] = 7

			convey.Convey("Then the original keeps its values", func() {
				convey.So(inst.Programs[0].Tracks[0].Name, convey.ShouldEqual, "")
				convey.So(inst.Programs[0].Tracks[0].Weights.Value("a"), convey.ShouldEqual, 1)
				convey.So(inst.Programs[0].Selectable(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSelectionState(t *testing.T) {
	convey.Convey("Given selections of varying depth", t, func() {
		convey.So(model.Selection{}.State(), convey.ShouldEqual, model.SelectionEmpty)
		convey.So(model.Selection{}.IsZero(), convey.ShouldBeTrue)
		convey.So(model.Selection{InstitutionID: "i"}.State(), convey.ShouldEqual, model.SelectionPartial)
		convey.So(model.Selection{InstitutionID: "i", ProgramID: "p", TrackID: "t"}.State(), convey.ShouldEqual, model.SelectionFull)
		convey.So(model.SelectionFull.String(), convey.ShouldEqual, "full")
	})
}

func TestDisplayName(t *testing.T) {
	convey.Convey("Given blank and non-blank names", t, func() {
		convey.So(model.DisplayName("  ", ""), convey.ShouldEqual, model.UntitledName)
		convey.So(model.DisplayName("", "New track"), convey.ShouldEqual, "New track")
		convey.So(model.DisplayName("Engineering", ""), convey.ShouldEqual, "Engineering")
	})
}

func TestScoreSetClone(t *testing.T) {
	convey.Convey("Given a score set", t, func() {
		s := model.ScoreSet{ID: "s", Scores: map[string]string{"a": "80"}}
		c := s.Clone()
		c.Scores["a"] = "10"
		convey.So(s.Scores["a"], convey.ShouldEqual, "80")
	})
}
