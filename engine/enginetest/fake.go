// Package enginetest provides an in-memory engine.Backend for tests.
package enginetest

import (
	"fmt"
	"sync"

	"github.com/streampane/streampane/engine"
)

// Fake records every call and lets tests emit events as the engine would.
type Fake struct {
	mu sync.Mutex

	Calls   []string
	Media   string
	Volume  int
	Pos     float64
	Device  string
	Video   map[engine.VideoProperty]int
	Devices []engine.AudioDevice
	Closes  int

	// Err, when set, is returned by every command.
	Err error

	onEvent func(engine.Event)
	onLog   func(engine.LogEntry)
}

var _ engine.Backend = (*Fake)(nil)

// New returns a Fake with two audio devices.
func New() *Fake {
	return &Fake{
		Devices: []engine.AudioDevice{
			{ID: "auto", Description: "Autoselect device"},
			{ID: "pulse/speakers", Description: "Speakers"},
		},
	}
}

func (f *Fake) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
	return f.Err
}

func (f *Fake) SetMedia(url string) error {
	if err := f.record("media %s", url); err != nil {
		return err
	}
	f.mu.Lock()
	f.Media = url
	f.mu.Unlock()
	return nil
}

func (f *Fake) Play() error { return f.record("play") }

func (f *Fake) Stop() error { return f.record("stop") }

func (f *Fake) SetVolume(volume int) error {
	if err := f.record("volume %d", volume); err != nil {
		return err
	}
	f.mu.Lock()
	f.Volume = volume
	f.mu.Unlock()
	return nil
}

func (f *Fake) SetPosition(fraction float64) error {
	if err := f.record("position %.2f", fraction); err != nil {
		return err
	}
	f.mu.Lock()
	f.Pos = fraction
	f.mu.Unlock()
	return nil
}

func (f *Fake) SetVideoAdjust(property engine.VideoProperty, value int) error {
	if err := f.record("video %s %d", property, value); err != nil {
		return err
	}
	f.mu.Lock()
	if f.Video == nil {
		f.Video = make(map[engine.VideoProperty]int)
	}
	f.Video[property] = value
	f.mu.Unlock()
	return nil
}

func (f *Fake) AudioDevices() ([]engine.AudioDevice, error) {
	if err := f.record("devices"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.AudioDevice(nil), f.Devices...), nil
}

func (f *Fake) SetAudioDevice(id string) error {
	if err := f.record("device %s", id); err != nil {
		return err
	}
	f.mu.Lock()
	f.Device = id
	f.mu.Unlock()
	return nil
}

func (f *Fake) SetEventCallback(cb func(engine.Event)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onEvent = cb
}

func (f *Fake) SetLogCallback(cb func(engine.LogEntry)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onLog = cb
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closes++
	f.Calls = append(f.Calls, "close")
	return nil
}

// Emit delivers events through the registered callback, as the engine's reader would.
func (f *Fake) Emit(events ...engine.Event) {
	f.mu.Lock()
	cb := f.onEvent
	f.mu.Unlock()
	if cb == nil {
		return
	}
	for _, ev := range events {
		cb(ev)
	}
}

// Log delivers a log entry through the registered callback.
func (f *Fake) Log(level engine.LogLevel, text string) {
	f.mu.Lock()
	cb := f.onLog
	f.mu.Unlock()
	if cb != nil {
		cb(engine.LogEntry{Level: level, Text: text})
	}
}

// Bound reports whether an event callback is registered.
func (f *Fake) Bound() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onEvent != nil
}

// History returns a copy of the recorded calls.
func (f *Fake) History() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// Reset forgets the recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}
