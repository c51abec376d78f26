// Package tui is the terminal dashboard over every open pane.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/streampane/streampane/pane"
)

// Host runs a function on the host goroutine and waits for it. *host.Loop implements it.
type Host interface {
	Call(fn func())
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Manager *pane.Manager
	Host    Host
	// Context stops the dashboard when done. Nil runs until the user quits.
	Context context.Context
}

// Run shows the dashboard until the user quits or the context is done.
func Run(options *Options) error {
	programOptions := []tea.ProgramOption{tea.WithAltScreen()}
	if options.Context != nil {
		programOptions = append(programOptions, tea.WithContext(options.Context))
	}

	_, err := tea.NewProgram(newBubble(options), programOptions...).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
