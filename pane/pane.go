// Package pane assembles playback sessions: one media engine, its two bridges and a
// controller per watched channel, all driven from the host loop.
package pane

import (
	"github.com/streampane/streampane/bridge"
	"github.com/streampane/streampane/engine"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/playback"
)

// Pane is one playback session.
type Pane struct {
	Index      int
	Session    *engine.Session
	Controller *playback.Controller

	events *bridge.Queue[engine.Event]
	logs   *bridge.Queue[engine.LogEntry]
}

// Drain dispatches everything the engine reported since the last call.
// Must run on the host goroutine.
func (p *Pane) Drain() {
	channel := p.Controller.Channel()
	for _, entry := range p.logs.PollAll() {
		log.Engine(channel, entry.Level.Logrus(), entry.Text)
	}

	for _, ev := range p.events.PollAll() {
		p.Controller.Dispatch(ev)
	}
}

// Close releases the engine. Safe to call more than once.
func (p *Pane) Close() error {
	return p.Session.Close()
}
