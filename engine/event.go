// Package engine wraps the native media engine a pane renders through.
//
// The engine reports what happens on its own goroutines; this package turns those reports
// into a closed set of Event values and LogEntry records and hands them to whatever
// single callback the owning Session registered.
package engine

import (
	"fmt"
	"time"
)

// Event is a playback notification. The set of implementations is closed: only this
// package can add one, and every consumer dispatches through Visit with an EventVisitor,
// so a new variant fails to compile everywhere it is not handled.
type Event interface {
	accept(v EventVisitor)
	fmt.Stringer
}

// EventVisitor handles every Event variant.
type EventVisitor interface {
	Opening(Opening)
	Playing(Playing)
	TimeChanged(TimeChanged)
	Buffering(Buffering)
	Stopped(Stopped)
	EndReached(EndReached)
	EncounteredError(EncounteredError)
	Unknown(Unknown)
}

// Visit dispatches e to the matching method of v.
func Visit(e Event, v EventVisitor) {
	e.accept(v)
}

// Opening: the engine started opening a new media source.
type Opening struct{}

// Playing: frames are being rendered.
type Playing struct{}

// TimeChanged: the playback clock moved.
type TimeChanged struct {
	Position time.Duration
}

// Buffering: the engine's cache fill level changed. 100 means fully buffered.
type Buffering struct {
	Percent float64
}

// Stopped: playback was stopped.
type Stopped struct{}

// EndReached: the media source ended.
type EndReached struct{}

// EncounteredError: the engine gave up on the media source.
type EncounteredError struct{}

// Unknown: an engine notification with no playback meaning.
type Unknown struct {
	Name string
}

func (e Opening) accept(v EventVisitor)          { v.Opening(e) }
func (e Playing) accept(v EventVisitor)          { v.Playing(e) }
func (e TimeChanged) accept(v EventVisitor)      { v.TimeChanged(e) }
func (e Buffering) accept(v EventVisitor)        { v.Buffering(e) }
func (e Stopped) accept(v EventVisitor)          { v.Stopped(e) }
func (e EndReached) accept(v EventVisitor)       { v.EndReached(e) }
func (e EncounteredError) accept(v EventVisitor) { v.EncounteredError(e) }
func (e Unknown) accept(v EventVisitor)          { v.Unknown(e) }

func (Opening) String() string          { return "opening" }
func (Playing) String() string          { return "playing" }
func (e TimeChanged) String() string    { return fmt.Sprintf("time-changed(%s)", e.Position) }
func (e Buffering) String() string      { return fmt.Sprintf("buffering(%.0f%%)", e.Percent) }
func (Stopped) String() string          { return "stopped" }
func (EndReached) String() string       { return "end-reached" }
func (EncounteredError) String() string { return "encountered-error" }
func (e Unknown) String() string        { return fmt.Sprintf("unknown(%s)", e.Name) }

// IsTerminal reports whether e ends playback of the current source.
func IsTerminal(e Event) bool {
	switch e.(type) {
	case Stopped, EndReached, EncounteredError:
		return true
	default:
		return false
	}
}
