package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/engine"
	"github.com/streampane/streampane/internal/ui"
	"github.com/streampane/streampane/key"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/pane"
	"github.com/streampane/streampane/playback"
	"github.com/streampane/streampane/util"
)

// statefulBubble is the dashboard: one row per pane, actions on the selected one.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	host    Host
	manager *pane.Manager

	rows     []playback.Snapshot
	selected int
	devices  map[int]int // last audio device index picked per pane
	video    int         // index into engine.VideoProperties the video keys act on
	notices  []*ui.Model
	fullHelp bool

	spinnerC spinner.Model
	helpC    help.Model

	width, height int
	lastError     error
}

func newBubble(options *Options) *statefulBubble {
	bubble := &statefulBubble{
		keymap:  newStatefulKeymap(),
		host:    options.Host,
		manager: options.Manager,
		devices: make(map[int]int),
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(color.Loading)

	bubble.setState(dashboardState)
	bubble.refresh()
	return bubble
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	b.width = width - x
	b.height = height - y
	b.helpC.Width = b.width
}

// refresh pulls the latest snapshots and keeps one overlay per pane.
func (b *statefulBubble) refresh() {
	b.rows = b.manager.Snapshots()
	for len(b.notices) < len(b.rows) {
		b.notices = append(b.notices, ui.New(len(b.notices)))
	}
	if len(b.rows) > 0 {
		b.selected = lo.Clamp(b.selected, 0, len(b.rows)-1)
	}
}

// withSelected runs fn against the selected pane's controller on the host goroutine.
func (b *statefulBubble) withSelected(fn func(c *playback.Controller)) bool {
	p, ok := b.manager.Pane(b.selected)
	if !ok {
		return false
	}
	b.host.Call(func() { fn(p.Controller) })
	b.refresh()
	return true
}

func (b *statefulBubble) volumeStep(fine bool) int {
	if fine {
		return 1
	}
	return max(1, viper.GetInt(key.PlayerVolumeStep))
}

func (b *statefulBubble) adjustVolume(delta int) string {
	var volume int
	var muted bool
	b.withSelected(func(c *playback.Controller) {
		c.AdjustVolume(delta)
		volume, muted = c.Volume(), c.Muted()
	})
	if muted {
		return fmt.Sprintf("%d %% (muted)", volume)
	}
	return fmt.Sprintf("%d %%", volume)
}

func (b *statefulBubble) toggleMute() string {
	var muted bool
	b.withSelected(func(c *playback.Controller) {
		c.SetMuted(!c.Muted())
		muted = c.Muted()
	})
	return lo.Ternary(muted, "Muted", "Unmuted")
}

func (b *statefulBubble) fastForward() string {
	var err error
	b.withSelected(func(c *playback.Controller) { err = c.FastForward() })
	return b.outcome("Fast forward...", err)
}

func (b *statefulBubble) reload() string {
	var err error
	b.withSelected(func(c *playback.Controller) { err = c.Reload() })
	return b.outcome("Reloading...", err)
}

func (b *statefulBubble) cycleQuality() string {
	var (
		next string
		err  error
	)
	b.withSelected(func(c *playback.Controller) {
		var ok bool
		next, ok = nextQuality(c.Qualities(), c.Quality())
		if ok {
			err = c.SetQuality(next)
		}
	})
	if next == "" {
		return "No qualities yet"
	}
	return b.outcome(next, err)
}

func (b *statefulBubble) cycleDevice() string {
	var (
		text string
		err  error
	)
	index := b.selected
	b.withSelected(func(c *playback.Controller) {
		devices, derr := c.AudioDevices()
		if derr != nil || len(devices) == 0 {
			err = derr
			text = "No audio devices"
			return
		}
		i := (b.devices[index] + 1) % len(devices)
		if err = c.SetAudioDevice(devices[i].ID); err == nil {
			b.devices[index] = i
		}
		text = lo.Ternary(devices[i].Description != "", devices[i].Description, devices[i].ID)
	})
	return b.outcome(text, err)
}

func (b *statefulBubble) videoStep() int {
	return max(1, viper.GetInt(key.PlayerVideoStep))
}

func (b *statefulBubble) videoControl() engine.VideoProperty {
	return engine.VideoProperties[b.video%len(engine.VideoProperties)]
}

func (b *statefulBubble) videoLabel() string {
	property := b.videoControl()
	var value int
	b.withSelected(func(c *playback.Controller) { value = c.VideoAdjust(property) })
	return fmt.Sprintf("%s %+d", util.Capitalize(string(property)), value)
}

func (b *statefulBubble) nextVideoControl() string {
	b.video = (b.video + 1) % len(engine.VideoProperties)
	return b.videoLabel()
}

func (b *statefulBubble) adjustVideo(delta int) string {
	var err error
	property := b.videoControl()
	b.withSelected(func(c *playback.Controller) { err = c.AdjustVideo(property, delta) })
	if err != nil {
		return b.outcome("", err)
	}
	return b.videoLabel()
}

func (b *statefulBubble) resetVideo() string {
	b.withSelected(func(c *playback.Controller) { c.ResetVideo() })
	return "Video reset"
}

func (b *statefulBubble) outcome(text string, err error) string {
	if err != nil {
		log.Warnf("pane %d: %v", b.selected+1, err)
		return "Failed: " + err.Error()
	}
	return text
}

// nextQuality picks the quality after current, wrapping around. An unknown current picks the first.
func nextQuality(qualities []string, current string) (string, bool) {
	if len(qualities) == 0 {
		return "", false
	}
	_, i, found := lo.FindIndexOf(qualities, func(q string) bool { return q == current })
	if !found {
		return qualities[0], true
	}
	return qualities[(i+1)%len(qualities)], true
}
