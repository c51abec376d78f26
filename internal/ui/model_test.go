package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given an overlay", t, func() {
		m := New(3)

		Convey("A notice shows until its clear message arrives", func() {
			So(m.Notify("Muted"), ShouldNotBeNil)
			So(m.Text(), ShouldEqual, "Muted")
			So(m.View("row"), ShouldContainSubstring, "Muted")

			m.Update(ClearNoticeMsg{ID: 3, Seq: 1})
			So(m.Text(), ShouldBeEmpty)
			So(m.View("row"), ShouldEqual, "row")
		})

		Convey("A stale clear does not hide a newer notice", func() {
			m.Notify("35 %")
			m.Notify("40 %")
			m.Update(ClearNoticeMsg{ID: 3, Seq: 1})
			So(m.Text(), ShouldEqual, "40 %")
		})

		Convey("Other panes' clears are ignored", func() {
			m.Notify("Muted")
			m.Update(ClearNoticeMsg{ID: 4, Seq: 1})
			So(m.Text(), ShouldEqual, "Muted")
		})
	})
}
