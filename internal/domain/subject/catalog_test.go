package subject_test

import (
	"errors"
	"testing"

	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := subject.Default()

		Convey("Then it lists ten subjects in display order", func() {
			So(c.Len(), ShouldEqual, 10)
			So(c.Keys()[0], ShouldEqual, "social1")
			So(c.Keys()[9], ShouldEqual, "info")
		})

		Convey("And japanese has a maximum of 200", func() {
			s, ok := c.Get("japanese")
			So(ok, ShouldBeTrue)
			So(s.Max, ShouldEqual, 200)
		})

		Convey("And ZeroWeights covers every subject with 0", func() {
			w := c.ZeroWeights()
			So(len(w), ShouldEqual, c.Len())
			for _, k := range c.Keys() {
				So(w[k], ShouldNotBeNil)
				So(*w[k], ShouldEqual, 0)
			}
		})

		Convey("And All returns a copy", func() {
			all := c.All()
			all[0].Label = "changed"
			s, _ := c.Get("social1")
			So(s.Label, ShouldNotEqual, "changed")
		})
	})
}

func TestNewCatalogValidation(t *testing.T) {
	Convey("Given invalid subject lists", t, func() {
		cases := map[string][]model.Subject{
			"empty":        nil,
			"blank key":    {{Key: " ", Max: 1}},
			"duplicate":    {{Key: "a", Max: 1}, {Key: "a", Max: 2}},
			"zero max":     {{Key: "a", Max: 0}},
			"negative max": {{Key: "a", Max: -5}},
		}
		for name, subjects := range cases {
			_, err := subject.New(subjects)
			So(errors.Is(err, subject.ErrInvalidCatalog), ShouldBeTrue)
			_ = name
		}
	})

	Convey("Given a valid custom list", t, func() {
		c, err := subject.New([]model.Subject{{Key: " a ", Label: "A", Max: 100}})
		So(err, ShouldBeNil)
		So(c.Has("a"), ShouldBeTrue)
		So(c.Has("b"), ShouldBeFalse)
	})
}
