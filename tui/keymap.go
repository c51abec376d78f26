package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/style"
)

// statefulKeymap defines the keyboard interactions available in each dashboard state.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	up, down, selectPane,
	volumeUp, volumeDown, volumeUpFine, volumeDownFine,
	mute, fastForward, reload,
	cycleQuality, cycleDevice,
	nextVideo, videoUp, videoDown, videoReset,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "previous pane"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "next pane"),
		),
		selectPane: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "select pane"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("right", "l", "+"),
			key.WithHelp("→", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←", "volume down"),
		),
		volumeUpFine: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("shift+→", "volume +1"),
		),
		volumeDownFine: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("shift+←", "volume -1"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		fastForward: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp(style.Fg(color.Accent)("f"), style.Fg(color.Accent)("fast forward")),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		cycleQuality: key.NewBinding(
			key.WithKeys("c", "tab"),
			key.WithHelp("c", "next quality"),
		),
		cycleDevice: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "next audio device"),
		),
		nextVideo: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "next video control"),
		),
		videoUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "video control up"),
		),
		videoDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "video control down"),
		),
		videoReset: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "reset video"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case dashboardState:
		return h(k.up, k.down, k.volumeUp, k.volumeDown, k.mute, k.fastForward, k.showHelp, k.quit),
			h(k.up, k.down, k.selectPane, k.volumeUp, k.volumeDown, k.volumeUpFine, k.volumeDownFine,
				k.mute, k.fastForward, k.reload, k.cycleQuality, k.cycleDevice,
				k.nextVideo, k.videoUp, k.videoDown, k.videoReset, k.showHelp, k.quit)
	case errorState:
		return h(k.quit), h(k.quit, k.forceQuit)
	default:
		return h(), h()
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
