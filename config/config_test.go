package config

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/streampane/streampane/filesystem"
	"github.com/streampane/streampane/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetInt(key.DaemonPort), ShouldEqual, 8181)
			So(viper.GetInt(key.PlayerRetryBase), ShouldEqual, 1000)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("player.retry_base"), ShouldEqual, "player_retry_base")
		})

		Convey("Env names carry the application prefix", func() {
			f := Default[key.DaemonHost]
			So(f.Env(), ShouldEqual, "STREAMPANE_DAEMON_HOST")
		})
	})
}

func TestPollInterval(t *testing.T) {
	Convey("PollInterval", t, func() {
		_ = Setup()

		Convey("Defaults to 250ms", func() {
			So(PollInterval(), ShouldEqual, 250*time.Millisecond)
		})

		Convey("Falls back when configured too low", func() {
			viper.Set(key.PlayerPollInterval, 1)
			defer viper.Set(key.PlayerPollInterval, 250)
			So(PollInterval(), ShouldEqual, 250*time.Millisecond)
		})
	})
}

func TestFieldCheck(t *testing.T) {
	Convey("Field validation", t, func() {
		volume := Default[key.PlayerDefaultVolume]
		icons := Default[key.IconsVariant]
		level := Default[key.LogsLevel]
		host := Default[key.DaemonHost]

		Convey("Accepts values in range", func() {
			So(volume.Check(0), ShouldBeNil)
			So(volume.Check(200), ShouldBeNil)
			So(icons.Check("nerd"), ShouldBeNil)
			So(level.Check("debug"), ShouldBeNil)
		})

		Convey("Rejects values out of range and names the key", func() {
			err := volume.Check(201)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.PlayerDefaultVolume)
			So(icons.Check("fancy"), ShouldNotBeNil)
			So(level.Check("loud"), ShouldNotBeNil)
		})

		Convey("Fields without a validator accept anything", func() {
			So(host.Check("example.org"), ShouldBeNil)
		})
	})
}
