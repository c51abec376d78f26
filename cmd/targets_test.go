package cmd

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streampane/streampane/settings"
)

func TestParseTarget(t *testing.T) {
	Convey("parseTarget", t, func() {
		Convey("Reads a bare channel", func() {
			got, err := parseTarget("SomeChannel")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, target{channel: "somechannel"})
		})

		Convey("Splits off a quality", func() {
			got, err := parseTarget("alpha@720p60")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, target{channel: "alpha", quality: "720p60"})
		})

		Convey("Accepts a protocol URI", func() {
			got, err := parseTarget("streampane://alpha/")
			So(err, ShouldBeNil)
			So(got.channel, ShouldEqual, "alpha")
		})

		Convey("Rejects malformed channels", func() {
			for _, bad := range []string{"", "a b", "../etc", "@720p", "x/y"} {
				_, err := parseTarget(bad)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestParseTargets(t *testing.T) {
	Convey("Given remembered qualities", t, func() {
		store := settings.NewMemory()
		So(store.Set(settings.KeyLastQuality("alpha"), "480p"), ShouldBeNil)

		Convey("An explicit quality wins", func() {
			got, err := parseTargets([]string{"alpha@1080p"}, "720p", store)
			So(err, ShouldBeNil)
			So(got[0].quality, ShouldEqual, "1080p")
		})

		Convey("The flag quality comes next", func() {
			got, _ := parseTargets([]string{"alpha"}, "720p", store)
			So(got[0].quality, ShouldEqual, "720p")
		})

		Convey("The remembered quality is used last", func() {
			got, _ := parseTargets([]string{"alpha", "beta"}, "", store)
			So(got[0].quality, ShouldEqual, "480p")
			So(got[1].quality, ShouldBeEmpty)
		})

		Convey("The channel count is bounded", func() {
			args := make([]string, maxTargets+1)
			for i := range args {
				args[i] = fmt.Sprintf("c%d", i)
			}
			_, err := parseTargets(args, "", store)
			So(err, ShouldNotBeNil)

			_, err = parseTargets(nil, "", store)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseValue(t *testing.T) {
	Convey("parseValue", t, func() {
		Convey("Converts to the default's type", func() {
			v, err := parseValue("player.default_volume", []string{"80"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 80)

			v, err = parseValue("logs.write", []string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)
		})

		Convey("Rejects out of range values", func() {
			_, err := parseValue("player.default_volume", []string{"201"})
			So(err, ShouldNotBeNil)

			_, err = parseValue("icons.variant", []string{"fancy"})
			So(err, ShouldNotBeNil)
		})

		Convey("Suggests the closest key", func() {
			_, err := parseValue("daemon.prot", []string{"1"})
			So(err, ShouldNotBeNil)
			So(closestKey("daemon.prot"), ShouldEqual, "daemon.port")
		})
	})
}
