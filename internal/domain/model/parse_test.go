package model_test

import (
	"testing"

	model "github.com/okian/admitcalc/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseNumber(t *testing.T) {
	convey.Convey("Given user-typed numeric input", t, func() {
		convey.Convey("Then well-formed numbers parse after trimming", func() {
			v, ok := model.ParseNumber(" 80 ")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 80)

			v, ok = model.ParseNumber("37.5")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 37.5)
		})

		convey.Convey("Then partial, empty and non-finite input is rejected", func() {
			for _, in := range []string{"", "   ", "12abc", "abc", "NaN", "Inf", "-Infinity"} {
				_, ok := model.ParseNumber(in)
				convey.So(ok, convey.ShouldBeFalse)
			}
		})

		convey.Convey("Then ParseScore falls back to zero", func() {
			convey.So(model.ParseScore("7."), convey.ShouldEqual, 7)
			convey.So(model.ParseScore("x"), convey.ShouldEqual, 0)
		})

		convey.Convey("Then ParseWeight collapses blank and garbage to nil", func() {
			convey.So(model.ParseWeight(""), convey.ShouldBeNil)
			convey.So(model.ParseWeight("oops"), convey.ShouldBeNil)
			convey.So(*model.ParseWeight("0"), convey.ShouldEqual, 0)
		})
	})
}

func TestRound2(t *testing.T) {
	convey.Convey("Given values needing rounding", t, func() {
		convey.So(model.Round2(40), convey.ShouldEqual, 40)
		convey.So(model.Round2(2.345678), convey.ShouldEqual, 2.35)
		convey.So(model.Round2(-2.5), convey.ShouldEqual, -2.5)
		convey.So(model.Round2(0.125), convey.ShouldEqual, 0.13)
	})
}
