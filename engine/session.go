package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/streampane/streampane/constant"
)

// ErrReleased is returned by every Session operation after Close.
var ErrReleased = errors.New("engine session released")

// Sink receives values from engine goroutines. bridge.Queue satisfies it.
type Sink[T any] interface {
	Push(T)
}

// Session owns one pane's Backend for the pane's whole lifetime.
//
// Only the media source changes between replays. The backend is closed exactly once,
// and after that every method reports ErrReleased without touching it.
type Session struct {
	mu       sync.Mutex
	backend  Backend
	released bool
	closeErr error
	once     sync.Once
}

// NewSession takes ownership of backend and routes its callbacks into the two sinks.
func NewSession(backend Backend, events Sink[Event], logs Sink[LogEntry]) *Session {
	s := &Session{backend: backend}
	backend.SetEventCallback(events.Push)
	backend.SetLogCallback(logs.Push)
	return s
}

func (s *Session) use(fn func(b Backend) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}
	return fn(s.backend)
}

// SetSource points the engine at a new media URL without starting it.
func (s *Session) SetSource(url string) error {
	return s.use(func(b Backend) error {
		if err := b.SetMedia(url); err != nil {
			return fmt.Errorf("set media: %w", err)
		}
		return nil
	})
}

// Play starts (or resumes) the current source.
func (s *Session) Play() error {
	return s.use(func(b Backend) error { return b.Play() })
}

// Stop stops the current source; the handle stays alive.
func (s *Session) Stop() error {
	return s.use(func(b Backend) error { return b.Stop() })
}

// SetVolume clamps volume to 0..200 before applying it.
func (s *Session) SetVolume(volume int) error {
	volume = lo.Clamp(volume, constant.VolumeMin, constant.VolumeMax)
	return s.use(func(b Backend) error { return b.SetVolume(volume) })
}

// SetPosition clamps fraction to 0..1 before seeking.
func (s *Session) SetPosition(fraction float64) error {
	fraction = lo.Clamp(fraction, 0, 1)
	return s.use(func(b Backend) error { return b.SetPosition(fraction) })
}

// SetVideoAdjust clamps value to the equalizer range before applying it.
func (s *Session) SetVideoAdjust(property VideoProperty, value int) error {
	if !lo.Contains(VideoProperties, property) {
		return fmt.Errorf("unknown video property %q", property)
	}
	value = lo.Clamp(value, VideoAdjustMin, VideoAdjustMax)
	return s.use(func(b Backend) error { return b.SetVideoAdjust(property, value) })
}

// AudioDevices lists the outputs the engine can render to.
func (s *Session) AudioDevices() (devices []AudioDevice, err error) {
	err = s.use(func(b Backend) error {
		devices, err = b.AudioDevices()
		return err
	})
	return devices, err
}

// SetAudioDevice switches the output device.
func (s *Session) SetAudioDevice(id string) error {
	return s.use(func(b Backend) error { return b.SetAudioDevice(id) })
}

// Rebind replaces the registered callbacks. Only the latest pair receives notifications.
func (s *Session) Rebind(events Sink[Event], logs Sink[LogEntry]) error {
	return s.use(func(b Backend) error {
		b.SetEventCallback(events.Push)
		b.SetLogCallback(logs.Push)
		return nil
	})
}

// Close detaches the callbacks and releases the backend. Later calls return the first result.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.backend.SetEventCallback(nil)
		s.backend.SetLogCallback(nil)
		s.closeErr = s.backend.Close()
		s.released = true
		s.backend = nil
	})
	return s.closeErr
}

// Released reports whether Close has run.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
