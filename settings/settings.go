// Package settings remembers per-user playback state between runs: the last volume,
// whether panes were muted, the video equalizer, and the last quality picked for each channel.
package settings

import (
	"sync"

	"github.com/metafates/gache"
	"github.com/spf13/cast"
	"github.com/streampane/streampane/filesystem"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/where"
)

const (
	KeyLastVolume = "ui.last_volume"
	KeyLastMute   = "ui.last_mute"
)

// KeyLastQuality is the key holding the quality last played on channel.
func KeyLastQuality(channel string) string {
	return "streams.last_quality." + channel
}

// KeyLastVideo is the key holding the last value of a video equalizer property.
func KeyLastVideo(property string) string {
	return "ui.last_video." + property
}

// Store is a flat key/value settings store.
type Store interface {
	// Get returns the stored value, or def when key is unset.
	Get(key string, def any) any
	Set(key string, value any) error
}

// Int reads key as an int, falling back to def when unset or not numeric.
func Int(s Store, key string, def int) int {
	v, err := cast.ToIntE(s.Get(key, def))
	if err != nil {
		return def
	}
	return v
}

// Bool reads key as a bool, falling back to def.
func Bool(s Store, key string, def bool) bool {
	v, err := cast.ToBoolE(s.Get(key, def))
	if err != nil {
		return def
	}
	return v
}

// String reads key as a string, falling back to def.
func String(s Store, key string, def string) string {
	v, err := cast.ToStringE(s.Get(key, def))
	if err != nil {
		return def
	}
	return v
}

// File persists settings as JSON through the active filesystem backend.
type File struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]any]
	values map[string]any
}

// NewFile opens the settings file at path. It is read lazily on first access.
func NewFile(path string) *File {
	return &File{
		cacher: gache.New[map[string]any](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Default opens the settings file in the configuration directory.
func Default() *File {
	return NewFile(where.Settings())
}

func (f *File) load() map[string]any {
	if f.values != nil {
		return f.values
	}

	cached, expired, err := f.cacher.Get()
	if err != nil {
		log.Warnf("settings unreadable, starting fresh: %v", err)
	}
	if err != nil || expired || cached == nil {
		cached = make(map[string]any)
	}

	f.values = cached
	return f.values
}

// Get returns the stored value for key or def.
func (f *File) Get(key string, def any) any {
	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.load()[key]; ok {
		return v
	}
	return def
}

// Set stores value and writes the whole file.
func (f *File) Set(key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	values[key] = value
	return f.cacher.Set(values)
}

// Memory is a Store that forgets everything on exit.
type Memory struct {
	mu     sync.Mutex
	values map[string]any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]any)}
}

func (m *Memory) Get(key string, def any) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

func (m *Memory) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}
