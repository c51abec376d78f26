// Package ui holds the transient overlay notices shown over a pane ("35 %", "Muted").
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/style"
)

// Model is one pane's overlay. A newer notice replaces the current one and restarts its timer.
type Model struct {
	id   int
	text string
	seq  int
}

// New creates the overlay of pane id.
func New(id int) *Model {
	return &Model{id: id}
}

// ClearNoticeMsg hides a notice once it has been visible long enough.
type ClearNoticeMsg struct {
	ID  int
	Seq int
}

// Notify shows text and returns the command that clears it after constant.NoticeDuration.
func (m *Model) Notify(text string) tea.Cmd {
	m.text = text
	m.seq++
	id, seq := m.id, m.seq
	return tea.Tick(constant.NoticeDuration, func(time.Time) tea.Msg {
		return ClearNoticeMsg{ID: id, Seq: seq}
	})
}

// Update clears the notice when msg belongs to the one currently shown.
func (m *Model) Update(msg tea.Msg) {
	if clear, ok := msg.(ClearNoticeMsg); ok && clear.ID == m.id && clear.Seq == m.seq {
		m.text = ""
	}
}

// Text is the visible notice, "" when none.
func (m *Model) Text() string {
	return m.text
}

// View appends the notice to line.
func (m *Model) View(line string) string {
	if m.text == "" {
		return line
	}
	return line + "  " + style.Italic(style.Faint(m.text))
}
