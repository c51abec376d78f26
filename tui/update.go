package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/internal/ui"
)

type refreshMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(constant.PollInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// Init starts the refresh ticker and the buffering spinner.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(tick(), b.spinnerC.Tick)
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case refreshMsg:
		b.refresh()
		return b, tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case ui.ClearNoticeMsg:
		if msg.ID >= 0 && msg.ID < len(b.notices) {
			b.notices[msg.ID].Update(msg)
		}
		return b, nil
	case error:
		b.raiseError(msg)
		return b, nil
	case tea.KeyMsg:
		return b, b.handleKey(msg)
	}

	return b, nil
}

func (b *statefulBubble) notify(text string) tea.Cmd {
	if b.selected < 0 || b.selected >= len(b.notices) {
		return nil
	}
	return b.notices[b.selected].Notify(text)
}

func (b *statefulBubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, b.keymap.forceQuit) {
		return tea.Quit
	}

	if b.state == errorState {
		if key.Matches(msg, b.keymap.quit) {
			return tea.Quit
		}
		return nil
	}

	switch {
	case key.Matches(msg, b.keymap.quit):
		return tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.fullHelp = !b.fullHelp
		b.helpC.ShowAll = b.fullHelp
	case key.Matches(msg, b.keymap.up):
		if b.selected > 0 {
			b.selected--
		}
	case key.Matches(msg, b.keymap.down):
		if b.selected < len(b.rows)-1 {
			b.selected++
		}
	case key.Matches(msg, b.keymap.selectPane):
		if i := int(msg.String()[0] - '1'); i < len(b.rows) {
			b.selected = i
		}
	case key.Matches(msg, b.keymap.volumeUpFine):
		return b.notify(b.adjustVolume(b.volumeStep(true)))
	case key.Matches(msg, b.keymap.volumeDownFine):
		return b.notify(b.adjustVolume(-b.volumeStep(true)))
	case key.Matches(msg, b.keymap.volumeUp):
		return b.notify(b.adjustVolume(b.volumeStep(false)))
	case key.Matches(msg, b.keymap.volumeDown):
		return b.notify(b.adjustVolume(-b.volumeStep(false)))
	case key.Matches(msg, b.keymap.mute):
		return b.notify(b.toggleMute())
	case key.Matches(msg, b.keymap.fastForward):
		return b.notify(b.fastForward())
	case key.Matches(msg, b.keymap.reload):
		return b.notify(b.reload())
	case key.Matches(msg, b.keymap.cycleQuality):
		return b.notify(b.cycleQuality())
	case key.Matches(msg, b.keymap.cycleDevice):
		return b.notify(b.cycleDevice())
	case key.Matches(msg, b.keymap.nextVideo):
		return b.notify(b.nextVideoControl())
	case key.Matches(msg, b.keymap.videoUp):
		return b.notify(b.adjustVideo(b.videoStep()))
	case key.Matches(msg, b.keymap.videoDown):
		return b.notify(b.adjustVideo(-b.videoStep()))
	case key.Matches(msg, b.keymap.videoReset):
		return b.notify(b.resetVideo())
	}

	return nil
}
