package settings

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streampane/streampane/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestFile(t *testing.T) {
	Convey("Given a settings file", t, func() {
		path := filepath.Join("/tmp", "streampane-test", t.Name(), "settings.json")
		_ = filesystem.API().RemoveAll(filepath.Dir(path))
		store := NewFile(path)

		Convey("Unset keys fall back to the default", func() {
			So(Int(store, KeyLastVolume, 35), ShouldEqual, 35)
			So(Bool(store, KeyLastMute, false), ShouldBeFalse)
		})

		Convey("Values survive reopening", func() {
			So(store.Set(KeyLastVolume, 120), ShouldBeNil)
			So(store.Set(KeyLastMute, true), ShouldBeNil)
			So(store.Set(KeyLastQuality("somechannel"), "720p"), ShouldBeNil)

			reopened := NewFile(path)
			// numbers come back from JSON as float64
			So(Int(reopened, KeyLastVolume, 35), ShouldEqual, 120)
			So(Bool(reopened, KeyLastMute, false), ShouldBeTrue)
			So(String(reopened, KeyLastQuality("somechannel"), ""), ShouldEqual, "720p")
			So(String(reopened, KeyLastQuality("other"), ""), ShouldBeEmpty)
		})
	})
}

func TestMemory(t *testing.T) {
	Convey("Memory store", t, func() {
		store := NewMemory()
		So(store.Get("missing", 7), ShouldEqual, 7)
		So(store.Set("x", "y"), ShouldBeNil)
		So(String(store, "x", ""), ShouldEqual, "y")

		Convey("Typed readers reject garbage", func() {
			So(store.Set(KeyLastVolume, "loud"), ShouldBeNil)
			So(Int(store, KeyLastVolume, 35), ShouldEqual, 35)
		})
	})
}
