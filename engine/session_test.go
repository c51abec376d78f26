package engine_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streampane/streampane/bridge"
	"github.com/streampane/streampane/engine"
	"github.com/streampane/streampane/engine/enginetest"
)

func TestSession(t *testing.T) {
	Convey("Given a session over a fake backend", t, func() {
		fake := enginetest.New()
		events := bridge.New[engine.Event]()
		logs := bridge.New[engine.LogEntry]()
		session := engine.NewSession(fake, events, logs)

		Convey("Events and logs land in their bridges", func() {
			fake.Emit(engine.Opening{}, engine.Playing{})
			fake.Log(engine.LogWarning, "slow")

			So(events.PollAll(), ShouldResemble, []engine.Event{engine.Opening{}, engine.Playing{}})
			So(logs.PollAll(), ShouldResemble, []engine.LogEntry{{Level: engine.LogWarning, Text: "slow"}})
		})

		Convey("Volume and position are clamped", func() {
			So(session.SetVolume(250), ShouldBeNil)
			So(fake.Volume, ShouldEqual, 200)
			So(session.SetVolume(-3), ShouldBeNil)
			So(fake.Volume, ShouldEqual, 0)
			So(session.SetPosition(1.5), ShouldBeNil)
			So(fake.Pos, ShouldEqual, 1.0)
		})

		Convey("Video adjustments are clamped to the equalizer range", func() {
			So(session.SetVideoAdjust(engine.Brightness, 140), ShouldBeNil)
			So(session.SetVideoAdjust(engine.Gamma, -120), ShouldBeNil)
			So(session.SetVideoAdjust(engine.Hue, 15), ShouldBeNil)
			So(fake.Video, ShouldResemble, map[engine.VideoProperty]int{
				engine.Brightness: 100,
				engine.Gamma:      -100,
				engine.Hue:        15,
			})

			So(session.SetVideoAdjust("sharpness", 5), ShouldNotBeNil)
			So(fake.History(), ShouldNotContain, "video sharpness 5")
		})

		Convey("Rebinding replaces the previous callback", func() {
			other := bridge.New[engine.Event]()
			So(session.Rebind(other, logs), ShouldBeNil)

			fake.Emit(engine.Stopped{})
			So(events.Len(), ShouldEqual, 0)
			So(other.PollAll(), ShouldResemble, []engine.Event{engine.Stopped{}})
		})

		Convey("Close releases the backend once", func() {
			So(session.Close(), ShouldBeNil)
			So(session.Close(), ShouldBeNil)
			So(fake.Closes, ShouldEqual, 1)
			So(session.Released(), ShouldBeTrue)
			So(fake.Bound(), ShouldBeFalse)

			Convey("and every later operation reports ErrReleased", func() {
				fake.Reset()
				So(session.SetSource("http://localhost/x"), ShouldEqual, engine.ErrReleased)
				So(session.Play(), ShouldEqual, engine.ErrReleased)
				So(session.Stop(), ShouldEqual, engine.ErrReleased)
				So(session.SetVolume(10), ShouldEqual, engine.ErrReleased)
				So(session.SetAudioDevice("auto"), ShouldEqual, engine.ErrReleased)
				So(session.SetVideoAdjust(engine.Contrast, 10), ShouldEqual, engine.ErrReleased)
				_, err := session.AudioDevices()
				So(err, ShouldEqual, engine.ErrReleased)
				So(fake.History(), ShouldBeEmpty)
			})
		})
	})
}

type counter struct {
	terminal, other int
}

func (c *counter) Opening(engine.Opening)                   { c.other++ }
func (c *counter) Playing(engine.Playing)                   { c.other++ }
func (c *counter) TimeChanged(engine.TimeChanged)           { c.other++ }
func (c *counter) Buffering(engine.Buffering)               { c.other++ }
func (c *counter) Stopped(engine.Stopped)                   { c.terminal++ }
func (c *counter) EndReached(engine.EndReached)             { c.terminal++ }
func (c *counter) EncounteredError(engine.EncounteredError) { c.terminal++ }
func (c *counter) Unknown(engine.Unknown)                   { c.other++ }

func TestVisit(t *testing.T) {
	Convey("Visit dispatches every variant", t, func() {
		c := &counter{}
		for _, ev := range []engine.Event{
			engine.Opening{}, engine.Playing{}, engine.TimeChanged{}, engine.Buffering{Percent: 40},
			engine.Stopped{}, engine.EndReached{}, engine.EncounteredError{}, engine.Unknown{Name: "x"},
		} {
			engine.Visit(ev, c)
			So(engine.IsTerminal(ev), ShouldEqual, ev == engine.Stopped{} || ev == engine.EndReached{} || ev == engine.EncounteredError{})
		}
		So(c.terminal, ShouldEqual, 3)
		So(c.other, ShouldEqual, 5)
	})
}
