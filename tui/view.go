package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/icon"
	"github.com/streampane/streampane/playback"
	"github.com/streampane/streampane/style"
)

var (
	paddingStyle  = lipgloss.NewStyle().Padding(1, 2)
	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(color.Accent).
			Padding(0, 0, 0, 1)
	rowStyle = lipgloss.NewStyle().Padding(0, 0, 0, 2)
)

func (b *statefulBubble) View() string {
	switch b.state {
	case errorState:
		return b.viewError()
	default:
		return b.viewDashboard()
	}
}

func (b *statefulBubble) viewDashboard() string {
	lines := []string{
		style.Title(fmt.Sprintf("%s %s", constant.Streampane, constant.Version)),
		"",
	}

	if len(b.rows) == 0 {
		lines = append(lines, style.Faint("No panes"))
	}

	for i, snap := range b.rows {
		row := renderRow(i, snap, b.spinnerC.View(), b.width)
		if i < len(b.notices) {
			row = b.notices[i].View(row)
		}
		if i == b.selected {
			lines = append(lines, selectedStyle.Render(row))
		} else {
			lines = append(lines, rowStyle.Render(row))
		}
		if qualities := renderQualities(snap, b.width); qualities != "" {
			lines = append(lines, rowStyle.Render("  "+qualities))
		}
	}

	return b.renderLines(true, lines)
}

// renderRow is one pane's status line.
func renderRow(index int, snap playback.Snapshot, spinner string, width int) string {
	parts := []string{
		style.Faint(fmt.Sprintf("%d", index+1)),
		stateIcon(snap),
		style.Bold(snap.Channel),
		style.Fg(color.Purple)(qualityLabel(snap.Quality)),
		style.Fg(stateColor(snap.State))(stateLabel(snap)),
	}

	if snap.Buffering {
		parts = append(parts, spinner)
	}

	parts = append(parts, delayLabel(snap), volumeLabel(snap))

	return fit(strings.Join(parts, " "), width)
}

func renderQualities(snap playback.Snapshot, width int) string {
	if len(snap.Qualities) == 0 {
		return ""
	}

	names := make([]string, 0, len(snap.Qualities))
	for _, q := range snap.Qualities {
		if q == snap.Quality {
			names = append(names, style.Fg(color.Accent)(q))
		} else {
			names = append(names, style.Faint(q))
		}
	}
	return fit(strings.Join(names, style.Faint(" · ")), width-4)
}

// fit truncates s to width cells. Before the first resize the width is unknown and s is kept.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	return style.Truncate(width)(s)
}

func qualityLabel(quality string) string {
	if quality == "" {
		return "default"
	}
	return quality
}

func stateLabel(snap playback.Snapshot) string {
	if snap.State == playback.RetryScheduled && snap.RetryIn > 0 {
		return fmt.Sprintf("retry in %s", snap.RetryIn)
	}
	return snap.State.String()
}

func stateIcon(snap playback.Snapshot) string {
	switch snap.State {
	case playback.Playing:
		return icon.Get(icon.Live)
	case playback.Opening, playback.Buffering:
		return icon.Get(icon.Buffering)
	case playback.RetryScheduled:
		return icon.Get(icon.Retry)
	default:
		return " "
	}
}

func stateColor(s playback.State) lipgloss.Color {
	switch s {
	case playback.Playing:
		return color.Live
	case playback.Opening, playback.Buffering:
		return color.Loading
	case playback.RetryScheduled:
		return color.Failing
	default:
		return color.Idle
	}
}

func delayLabel(snap playback.Snapshot) string {
	delay, ok := snap.Delay.Get()
	if !ok {
		return style.Faint("delay -")
	}
	return fmt.Sprintf("delay %.1fs", delay.Round(100*time.Millisecond).Seconds())
}

func volumeLabel(snap playback.Snapshot) string {
	if snap.Muted {
		return icon.Get(icon.Muted) + " muted"
	}
	return fmt.Sprintf("%s %d %%", icon.Get(icon.Volume), snap.Volume)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(color.Failing).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %v", b.lastError))
	return b.renderLines(
		true,
		[]string{
			style.Title("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			wrap.String(errorBody, b.width),
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
