package pane

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/streampane/streampane/bridge"
	"github.com/streampane/streampane/engine"
	"github.com/streampane/streampane/host"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/playback"
	"github.com/streampane/streampane/settings"
)

// MaxPanes bounds how many channels are watched at once.
const MaxPanes = 9

// ErrTooManyPanes is returned by Open past MaxPanes.
var ErrTooManyPanes = fmt.Errorf("at most %d panes", MaxPanes)

// BackendFactory creates and starts the media engine of a new pane.
type BackendFactory func(index int) (engine.Backend, error)

// Options configure every pane a Manager opens.
type Options struct {
	Scheduler  host.Scheduler
	Daemon     playback.Daemon
	Settings   settings.Store
	Recorder   playback.Recorder
	NewBackend BackendFactory
	// Spawn runs daemon requests off the host goroutine; nil starts a goroutine per request.
	Spawn func(func())

	RetryBase     time.Duration
	RetryMax      time.Duration
	DefaultVolume int
	DefaultVideo  map[engine.VideoProperty]int
}

// Manager owns every pane. Open, Drain and Close run on the host goroutine;
// Snapshots may be read from anywhere.
type Manager struct {
	opts  Options
	panes []*Pane

	mu        sync.RWMutex
	snapshots []playback.Snapshot
	listeners []func(index int, snap playback.Snapshot)

	closeOnce sync.Once
	closeErr  error
}

// NewManager creates a manager without panes.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Subscribe registers fn to receive every pane's snapshots on the host goroutine.
func (m *Manager) Subscribe(fn func(index int, snap playback.Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) publish(index int, snap playback.Snapshot) {
	m.mu.Lock()
	m.snapshots[index] = snap
	listeners := append([]func(int, playback.Snapshot){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(index, snap)
	}
}

// Open builds a pane and starts playing channel on it.
// A failure to create the engine is returned; a failure to start playback is left to the retry loop.
func (m *Manager) Open(channel, quality string) (*Pane, error) {
	if len(m.panes) >= MaxPanes {
		return nil, ErrTooManyPanes
	}

	index := len(m.panes)
	backend, err := m.opts.NewBackend(index)
	if err != nil {
		return nil, fmt.Errorf("pane %d engine: %w", index, err)
	}

	p := &Pane{
		Index:  index,
		events: bridge.New[engine.Event](),
		logs:   bridge.New[engine.LogEntry](),
	}
	p.Session = engine.NewSession(backend, p.events, p.logs)

	m.mu.Lock()
	m.snapshots = append(m.snapshots, playback.Snapshot{Channel: channel, Quality: quality})
	m.mu.Unlock()

	p.Controller = playback.NewController(playback.Options{
		Scheduler:     m.opts.Scheduler,
		Player:        p.Session,
		Daemon:        m.opts.Daemon,
		Settings:      m.opts.Settings,
		Recorder:      m.opts.Recorder,
		Observer:      func(s playback.Snapshot) { m.publish(index, s) },
		RetryBase:     m.opts.RetryBase,
		RetryMax:      m.opts.RetryMax,
		DefaultVolume: m.opts.DefaultVolume,
		DefaultVideo:  m.opts.DefaultVideo,
		Spawn:         m.opts.Spawn,
	})
	m.panes = append(m.panes, p)

	if err := p.Controller.Play(channel, quality); err != nil {
		log.WithPane(channel, logrus.ErrorLevel, "initial play failed: %v", err)
	}

	return p, nil
}

// Panes returns the open panes in creation order.
func (m *Manager) Panes() []*Pane {
	return m.panes
}

// Pane returns the pane at index, if any.
func (m *Manager) Pane(index int) (*Pane, bool) {
	if index < 0 || index >= len(m.panes) {
		return nil, false
	}
	return m.panes[index], true
}

// Snapshots returns the latest snapshot of every pane.
func (m *Manager) Snapshots() []playback.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]playback.Snapshot(nil), m.snapshots...)
}

// Drain delivers pending engine output to every pane.
func (m *Manager) Drain() {
	for _, p := range m.panes {
		p.Drain()
	}
}

// Start drains every pane on the loop each interval until ctx is done.
func (m *Manager) Start(ctx context.Context, loop *host.Loop, interval time.Duration) {
	loop.Every(ctx, interval, m.Drain)
}

// Close releases every engine exactly once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = errors.Join(lo.Map(m.panes, func(p *Pane, _ int) error {
			return p.Close()
		})...)
	})
	return m.closeErr
}
