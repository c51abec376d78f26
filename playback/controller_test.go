package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streampane/streampane/bridge"
	"github.com/streampane/streampane/daemon"
	"github.com/streampane/streampane/engine"
	"github.com/streampane/streampane/engine/enginetest"
	"github.com/streampane/streampane/host"
	"github.com/streampane/streampane/settings"
)

type harness struct {
	sched     *host.Manual
	fake      *enginetest.Fake
	events    *bridge.Queue[engine.Event]
	session   *engine.Session
	daemon    *fakeDaemon
	store     *settings.Memory
	snapshots []Snapshot
	ctrl      *Controller
	// spawn runs the controller's daemon calls; inline unless a test defers them.
	spawn func(func())
}

func newHarness(store *settings.Memory) *harness {
	h := &harness{
		sched:  host.NewManual(),
		fake:   enginetest.New(),
		events: bridge.New[engine.Event](),
		daemon: newFakeDaemon(),
		store:  store,
		spawn:  inline,
	}
	h.session = engine.NewSession(h.fake, h.events, bridge.New[engine.LogEntry]())
	h.ctrl = NewController(Options{
		Scheduler:     h.sched,
		Player:        h.session,
		Daemon:        h.daemon,
		Settings:      store,
		Observer:      func(s Snapshot) { h.snapshots = append(h.snapshots, s) },
		Clock:         func() time.Time { return time.UnixMilli(1_004_000) },
		Spawn:         func(fn func()) { h.spawn(fn) },
		RetryBase:     time.Second,
		DefaultVolume: 35,
	})
	return h
}

// drain delivers what the engine emitted, the way the pane's poll does.
func (h *harness) drain() {
	for _, ev := range h.events.PollAll() {
		h.ctrl.Dispatch(ev)
	}
	h.sched.Flush()
}

func (h *harness) states() []State {
	out := make([]State, 0, len(h.snapshots))
	for _, s := range h.snapshots {
		out = append(out, s.State)
	}
	return out
}

func TestControllerScript(t *testing.T) {
	Convey("Given a controller playing a channel", t, func() {
		h := newHarness(settings.NewMemory())
		h.daemon.indexes["chan"] = index("1080p60", "720p", "audio_only")
		h.daemon.meta = daemon.SegmentMetadata{TranscodeRecv: 1_000_000}

		So(h.ctrl.Play("chan", ""), ShouldBeNil)
		h.sched.Flush()

		Convey("The source is set and started", func() {
			history := h.fake.History()
			So(history[len(history)-2], ShouldStartWith, "media http://daemon/play?channel=chan&quality=&meta_key=")
			So(history[len(history)-1], ShouldEqual, "play")
			So(h.ctrl.Qualities(), ShouldResemble, []string{"1080p60", "720p", "audio_only"})
		})

		Convey("The event script walks the states and schedules a retry", func() {
			h.snapshots = nil
			h.fake.Emit(
				engine.Opening{},
				engine.Buffering{Percent: 50},
				engine.Buffering{Percent: 100},
				engine.Playing{},
				engine.EndReached{},
			)
			h.drain()

			So(h.states(), ShouldResemble, []State{Opening, Buffering, Playing, Playing, RetryScheduled})
			buffering := make([]bool, 0, len(h.snapshots))
			for _, s := range h.snapshots {
				buffering = append(buffering, s.Buffering)
			}
			So(buffering, ShouldResemble, []bool{true, true, false, false, false})
			So(h.sched.Pending(), ShouldResemble, []time.Duration{time.Second})
			So(len(h.daemon.metaCalls), ShouldEqual, 1)

			Convey("and the retry replays the same channel", func() {
				before := h.ctrl.Snapshot().Attempt
				h.sched.Advance(time.Second)
				So(h.ctrl.State(), ShouldEqual, Opening)
				So(h.ctrl.Snapshot().Attempt, ShouldEqual, before+1)
				So(h.ctrl.Channel(), ShouldEqual, "chan")
			})
		})

		Convey("Time changes publish the delay once metadata arrived", func() {
			h.fake.Emit(engine.Playing{}, engine.TimeChanged{Position: 2 * time.Second})
			h.drain()
			// metadata completes on the flush after the first TimeChanged
			So(h.ctrl.Delay().IsAbsent(), ShouldBeTrue)

			h.fake.Emit(engine.TimeChanged{Position: 2 * time.Second})
			h.drain()
			So(h.ctrl.Delay().MustGet(), ShouldEqual, 3*time.Second)

			h.fake.Emit(engine.TimeChanged{Position: 2 * time.Minute})
			h.drain()
			So(h.ctrl.Delay().MustGet(), ShouldEqual, 3*time.Second)
		})

		Convey("Unknown events change nothing", func() {
			h.snapshots = nil
			h.fake.Emit(engine.Unknown{Name: "seek"})
			h.drain()
			So(h.snapshots, ShouldBeEmpty)
		})
	})
}

func TestControllerRetry(t *testing.T) {
	Convey("Given a channel whose stream keeps ending", t, func() {
		h := newHarness(settings.NewMemory())
		h.daemon.indexErr = errors.New("daemon down")

		So(h.ctrl.Play("chan", "720p"), ShouldBeNil)
		h.sched.Flush()

		Convey("Replays back off exponentially", func() {
			for k := 1; k <= 5; k++ {
				h.fake.Emit(engine.EndReached{})
				h.drain()
				want := time.Duration(1000<<(k-1)) * time.Millisecond
				So(h.sched.Pending(), ShouldResemble, []time.Duration{want})
				So(h.ctrl.Snapshot().RetryIn, ShouldEqual, want)
				h.sched.Advance(want)
				So(h.ctrl.State(), ShouldEqual, Opening)
				So(h.ctrl.Quality(), ShouldEqual, "720p")
			}
		})

		Convey("Terminal events while a replay is pending do not stack", func() {
			h.fake.Emit(engine.Stopped{}, engine.EncounteredError{}, engine.EndReached{})
			h.drain()
			So(h.sched.Pending(), ShouldResemble, []time.Duration{time.Second})
			So(h.ctrl.RetryInterval(), ShouldEqual, 2*time.Second)
		})

		Convey("A successful quality response resets the backoff", func() {
			for i := 0; i < 2; i++ {
				h.fake.Emit(engine.EndReached{})
				h.drain()
				h.sched.Advance(h.sched.Pending()[0])
			}
			So(h.ctrl.RetryInterval(), ShouldEqual, 4*time.Second)

			h.daemon.indexErr = nil
			h.daemon.indexes["chan"] = index("720p")
			h.fake.Emit(engine.EndReached{})
			h.drain()
			h.sched.Advance(4 * time.Second)

			So(h.ctrl.RetryInterval(), ShouldEqual, time.Second)
			So(h.ctrl.Qualities(), ShouldResemble, []string{"720p"})
		})

		Convey("A user Play cancels the pending replay", func() {
			h.fake.Emit(engine.EndReached{})
			h.drain()
			So(h.sched.Pending(), ShouldHaveLength, 1)

			So(h.ctrl.Play("other", ""), ShouldBeNil)
			So(h.sched.Pending(), ShouldBeEmpty)
			So(h.ctrl.RetryInterval(), ShouldEqual, time.Second)
			So(h.ctrl.Snapshot().RetryIn, ShouldEqual, time.Duration(0))
		})

		Convey("Stop goes idle and ignores the engine afterwards", func() {
			h.fake.Emit(engine.EndReached{})
			h.drain()
			So(h.ctrl.Stop(), ShouldBeNil)
			So(h.sched.Pending(), ShouldBeEmpty)
			So(h.ctrl.State(), ShouldEqual, Idle)

			h.fake.Emit(engine.Stopped{}, engine.Playing{})
			h.drain()
			So(h.ctrl.State(), ShouldEqual, Idle)
			So(h.sched.Pending(), ShouldBeEmpty)
		})
	})
}

func TestControllerSupersession(t *testing.T) {
	Convey("A late stream index for a previous attempt is ignored", t, func() {
		h := newHarness(settings.NewMemory())
		h.daemon.indexes["A"] = index("a-high", "a-low")
		h.daemon.indexes["B"] = index("b-source")

		So(h.ctrl.Play("A", ""), ShouldBeNil)
		So(h.ctrl.Play("B", ""), ShouldBeNil)

		// A's request was cancelled at the transport when B started.
		So(h.daemon.indexCtxs[0].Err(), ShouldEqual, context.Canceled)

		h.sched.Flush()
		So(h.ctrl.Qualities(), ShouldResemble, []string{"b-source"})
		So(h.ctrl.Channel(), ShouldEqual, "B")
	})

	Convey("A stream index for a previous attempt that completes last is ignored", t, func() {
		h := newHarness(settings.NewMemory())
		h.daemon.indexes["A"] = index("a-high", "a-low")
		h.daemon.indexes["B"] = index("b-source")

		var deferred []func()
		h.spawn = func(fn func()) { deferred = append(deferred, fn) }

		So(h.ctrl.Play("A", ""), ShouldBeNil)
		So(h.ctrl.Play("B", ""), ShouldBeNil)
		So(deferred, ShouldHaveLength, 2)

		deferred[1]()
		h.sched.Flush()
		So(h.ctrl.Qualities(), ShouldResemble, []string{"b-source"})

		deferred[0]()
		h.sched.Flush()
		So(h.ctrl.Qualities(), ShouldResemble, []string{"b-source"})
		So(h.ctrl.Channel(), ShouldEqual, "B")
		So(h.daemon.indexCalls, ShouldResemble, []string{"B", "A"})
	})

	Convey("Quality failures keep the previous list", t, func() {
		h := newHarness(settings.NewMemory())
		h.daemon.indexes["A"] = index("a-high")
		So(h.ctrl.Play("A", ""), ShouldBeNil)
		h.sched.Flush()

		h.daemon.indexErr = errors.New("timeout")
		So(h.ctrl.Reload(), ShouldBeNil)
		h.sched.Flush()
		So(h.ctrl.Qualities(), ShouldResemble, []string{"a-high"})
	})
}

func TestControllerControls(t *testing.T) {
	Convey("Given a controller with remembered settings", t, func() {
		store := settings.NewMemory()
		h := newHarness(store)

		Convey("The default volume is applied on construction", func() {
			So(h.ctrl.Volume(), ShouldEqual, 35)
			So(h.fake.Volume, ShouldEqual, 35)
		})

		Convey("Volume is clamped and persisted", func() {
			h.ctrl.SetVolume(250)
			So(h.ctrl.Volume(), ShouldEqual, 200)
			So(settings.Int(store, settings.KeyLastVolume, 0), ShouldEqual, 200)

			h.ctrl.AdjustVolume(-205)
			So(h.ctrl.Volume(), ShouldEqual, 0)
		})

		Convey("Mute silences the engine but keeps the volume", func() {
			h.ctrl.SetVolume(80)
			h.ctrl.SetMuted(true)
			So(h.fake.Volume, ShouldEqual, 0)
			So(h.ctrl.Volume(), ShouldEqual, 80)

			Convey("and is restored by the next controller", func() {
				next := newHarness(store)
				So(next.ctrl.Muted(), ShouldBeTrue)
				So(next.ctrl.Volume(), ShouldEqual, 80)
				So(next.fake.Volume, ShouldEqual, 0)

				next.ctrl.SetMuted(false)
				So(next.fake.Volume, ShouldEqual, 80)
			})
		})

		Convey("The last quality per channel is remembered", func() {
			So(h.ctrl.Play("chan", "480p"), ShouldBeNil)
			So(settings.String(store, settings.KeyLastQuality("chan"), ""), ShouldEqual, "480p")
		})

		Convey("Play needs a channel", func() {
			So(h.ctrl.Play("", "720p"), ShouldEqual, ErrNoChannel)
			So(h.ctrl.SetQuality("720p"), ShouldEqual, ErrNoChannel)
		})

		Convey("Fast forward stops and replays with a new attempt", func() {
			So(h.ctrl.FastForward(), ShouldBeNil)
			So(h.ctrl.State(), ShouldEqual, Idle)

			So(h.ctrl.Play("chan", "720p"), ShouldBeNil)
			first := h.ctrl.Snapshot().Attempt
			h.fake.Reset()

			So(h.ctrl.FastForward(), ShouldBeNil)
			history := h.fake.History()
			So(history[0], ShouldEqual, "stop")
			So(history[1], ShouldStartWith, "media http://daemon/play?channel=chan&quality=720p")
			So(history[2], ShouldEqual, "play")
			So(h.ctrl.Snapshot().Attempt, ShouldEqual, first+1)
			So(h.ctrl.State(), ShouldEqual, Opening)
		})

		Convey("Changing quality replays the current channel", func() {
			So(h.ctrl.Play("chan", "720p"), ShouldBeNil)
			So(h.ctrl.SetQuality("160p"), ShouldBeNil)
			So(h.ctrl.Quality(), ShouldEqual, "160p")
			So(h.ctrl.Channel(), ShouldEqual, "chan")
		})

		Convey("Audio devices pass through", func() {
			devices, err := h.ctrl.AudioDevices()
			So(err, ShouldBeNil)
			So(devices, ShouldHaveLength, 2)
			So(h.ctrl.SetAudioDevice("pulse/speakers"), ShouldBeNil)
			So(h.fake.Device, ShouldEqual, "pulse/speakers")
		})

		Convey("Video adjustments are clamped, applied and remembered", func() {
			So(h.ctrl.SetVideoAdjust(engine.Brightness, 130), ShouldBeNil)
			So(h.ctrl.VideoAdjust(engine.Brightness), ShouldEqual, 100)
			So(h.fake.Video[engine.Brightness], ShouldEqual, 100)

			So(h.ctrl.AdjustVideo(engine.Hue, -10), ShouldBeNil)
			So(h.fake.Video[engine.Hue], ShouldEqual, -10)
			So(h.ctrl.SetVideoAdjust("sharpness", 1), ShouldNotBeNil)

			Convey("and restored by the next controller", func() {
				next := newHarness(store)
				So(next.ctrl.VideoAdjust(engine.Brightness), ShouldEqual, 100)
				So(next.fake.Video, ShouldResemble, map[engine.VideoProperty]int{
					engine.Brightness: 100,
					engine.Hue:        -10,
				})
			})

			Convey("and reset to neutral", func() {
				h.ctrl.ResetVideo()
				So(h.fake.Video[engine.Brightness], ShouldEqual, 0)
				So(h.fake.Video[engine.Hue], ShouldEqual, 0)
				So(settings.Int(store, settings.KeyLastVideo("brightness"), 7), ShouldEqual, 0)
			})
		})

		Convey("A released session surfaces as a Play error", func() {
			So(h.session.Close(), ShouldBeNil)
			err := h.ctrl.Play("chan", "")
			So(errors.Is(err, engine.ErrReleased), ShouldBeTrue)
		})
	})
}

func TestControllerVideoDefaults(t *testing.T) {
	Convey("Configured video defaults apply unless a value was remembered", t, func() {
		store := settings.NewMemory()
		So(store.Set(settings.KeyLastVideo("gamma"), 12), ShouldBeNil)
		fake := enginetest.New()

		ctrl := NewController(Options{
			Scheduler:    host.NewManual(),
			Player:       engine.NewSession(fake, bridge.New[engine.Event](), bridge.New[engine.LogEntry]()),
			Daemon:       newFakeDaemon(),
			Settings:     store,
			DefaultVideo: map[engine.VideoProperty]int{engine.Contrast: 20, engine.Gamma: -50},
		})

		So(ctrl.VideoAdjust(engine.Contrast), ShouldEqual, 20)
		So(ctrl.VideoAdjust(engine.Gamma), ShouldEqual, 12)
		So(ctrl.VideoAdjust(engine.Hue), ShouldEqual, 0)
		So(fake.Video, ShouldResemble, map[engine.VideoProperty]int{engine.Contrast: 20, engine.Gamma: 12})
	})
}

func TestStateString(t *testing.T) {
	Convey("States print their names", t, func() {
		So(RetryScheduled.String(), ShouldEqual, "retry-scheduled")
		So(State(42).String(), ShouldEqual, "state(42)")
	})
}
