package engine

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"github.com/streampane/streampane/log"
)

const (
	network           = "unix"
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPVOptions configures one mpv process.
type MPVOptions struct {
	// Path to the mpv executable.
	Path string
	// Args are appended after the IPC flags. Media is always loaded over IPC.
	Args []string
	// WindowID embeds the video into a host window when non-empty.
	WindowID string
	// SocketDir holds the IPC socket. Defaults to os.TempDir().
	SocketDir string
}

// MPV implements Backend on top of an idle mpv process and its JSON-IPC socket.
// Commands are written by one goroutine per player, so no method waits on mpv.
type MPV struct {
	opts       MPVOptions
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	listener   *eventListener

	queue     chan request
	closing   chan struct{}
	closeOnce sync.Once
	exchange  func(socketPath string, command []interface{}) (interface{}, error)

	cbMu    sync.Mutex
	onEvent func(Event)
	onLog   func(LogEntry)

	stateMu sync.Mutex
	media   string // set by SetMedia, loaded by the next Play
	pending bool
	devices []AudioDevice
	// inflight counts queued loadfile and stop commands mpv has not answered yet.
	inflight int
	// current is the playlist entry of the last loadfile, 0 when mpv did not say.
	current int64
	// stopped is set by Stop until the next loadfile completes.
	stopped bool
}

// NewMPV prepares an mpv backend and its command writer. Nothing is spawned until Start.
func NewMPV(opts MPVOptions) *MPV {
	if opts.Path == "" {
		opts.Path = "mpv"
	}
	if opts.SocketDir == "" {
		opts.SocketDir = os.TempDir()
	}

	m := &MPV{
		opts:     opts,
		exited:   make(chan struct{}),
		queue:    make(chan request, queueSize),
		closing:  make(chan struct{}),
		exchange: doSendCommand,
	}
	go m.writeLoop()
	return m
}

func (m *MPV) args() []string {
	args := []string{
		"--no-terminal",
		"--idle=yes",
		"--force-window=yes",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--volume-max=200",
	}
	if m.opts.WindowID != "" {
		args = append(args, fmt.Sprintf("--wid=%s", m.opts.WindowID))
	}
	return append(args, m.opts.Args...)
}

// Start spawns mpv, waits for its socket and attaches the event listener.
func (m *MPV) Start() error {
	if m.cmd != nil {
		return fmt.Errorf("mpv already started")
	}

	name := "streampane-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + ".sock"
	m.socketPath = filepath.Join(m.opts.SocketDir, name)

	m.cmd = exec.Command(m.opts.Path, m.args()...)

	// Detach from parent process group to prevent cascading shell panics.
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		m.stopWriter()
		return fmt.Errorf("start mpv: %w", err)
	}

	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		m.kill("socket never became ready")
		m.stopWriter()
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newEventListener(m.socketPath, m.handleLine)
	if err := m.listener.start(); err != nil {
		m.kill("event listener failed")
		m.stopWriter()
		return err
	}

	log.Infof("mpv started (pid %d, socket %s)", m.cmd.Process.Pid, m.socketPath)
	return nil
}

func (m *MPV) kill(reason string) {
	if m.cmd == nil || m.cmd.Process == nil {
		return
	}
	select {
	case <-m.exited:
	default:
		log.Warnf("killing mpv: %s", reason)
		_ = killProcess(m.cmd)
	}
}

// Exited is closed when the mpv process is gone.
func (m *MPV) Exited() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial(network, m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// handleLine routes one line from the listener connection to the registered callbacks.
func (m *MPV) handleLine(line []byte) {
	ev, entry := parseLine(line)

	if entry != nil {
		m.emitLog(*entry)
		return
	}

	if u, ok := ev.(Unknown); ok && u.Name == "audio-device-list" {
		m.storeDevices(line)
		return
	}

	var id int64
	switch ev.(type) {
	case Opening, EndReached, Stopped, EncounteredError:
		id = playlistEntry(line)
	}

	if ev == nil || !m.track(ev, id) {
		return
	}
	m.emitEvent(ev)
}

func (m *MPV) emitEvent(ev Event) {
	m.cbMu.Lock()
	cb := m.onEvent
	m.cbMu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

func (m *MPV) emitLog(entry LogEntry) {
	m.cbMu.Lock()
	cb := m.onLog
	m.cbMu.Unlock()
	if cb != nil {
		cb(entry)
	}
}

// report surfaces a failed command through the log callback.
func (m *MPV) report(err error) {
	log.Warnf("mpv: %v", err)
	m.emitLog(LogEntry{Level: LogError, Text: err.Error()})
}

// track reports whether ev should be delivered. A terminal event is dropped while
// a loadfile or stop is still queued, after our own Stop, and when it belongs to
// an entry other than the one last loaded.
func (m *MPV) track(ev Event, entry int64) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	switch ev.(type) {
	case Opening:
		if m.current == 0 && m.inflight == 0 {
			m.current = entry
		}
	case EndReached, Stopped, EncounteredError:
		if m.inflight > 0 || m.stopped {
			return false
		}
		if m.current != 0 && entry != 0 && entry != m.current {
			return false
		}
	}
	return true
}

// loaded records the answer to a loadfile. A failed load surfaces as
// EncounteredError unless a newer command already superseded it.
func (m *MPV) loaded(data interface{}, err error) {
	m.stateMu.Lock()
	m.inflight--
	superseded := m.inflight > 0
	if err == nil {
		m.current = cast.ToInt64(cast.ToStringMap(data)["playlist_entry_id"])
		m.stopped = false
	}
	m.stateMu.Unlock()

	if err != nil {
		m.report(err)
		if !superseded {
			m.emitEvent(EncounteredError{})
		}
	}
}

// SetMedia remembers the source; it is opened by the next Play.
func (m *MPV) SetMedia(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.stateMu.Lock()
	m.media = safeURL
	m.pending = true
	m.stateMu.Unlock()
	return nil
}

// Play queues the pending source, replacing whatever is loaded, and unpauses.
func (m *MPV) Play() error {
	m.stateMu.Lock()
	media, pending := m.media, m.pending
	if media == "" {
		m.stateMu.Unlock()
		return fmt.Errorf("no media set")
	}
	if pending {
		m.pending = false
		m.inflight++
	}
	m.stateMu.Unlock()

	if pending {
		if err := m.enqueue(m.loaded, "loadfile", media, "replace"); err != nil {
			m.stateMu.Lock()
			m.pending = true
			m.inflight--
			m.stateMu.Unlock()
			return err
		}
	}

	return m.Set("pause", false)
}

// Stop closes the current file and leaves mpv idle. The source is kept for the next Play.
func (m *MPV) Stop() error {
	m.stateMu.Lock()
	m.pending = m.media != ""
	m.stopped = true
	m.inflight++
	m.stateMu.Unlock()

	done := func(_ interface{}, err error) {
		m.stateMu.Lock()
		m.inflight--
		m.stateMu.Unlock()
		if err != nil {
			m.report(err)
		}
	}
	if err := m.enqueue(done, "stop"); err != nil {
		done(nil, nil)
		return err
	}
	return nil
}

// SetVolume sets mpv's volume; above 100 amplifies up to --volume-max.
func (m *MPV) SetVolume(volume int) error {
	return m.Set("volume", volume)
}

// SetPosition seeks to a fraction of the media.
func (m *MPV) SetPosition(fraction float64) error {
	return m.Set("percent-pos", fraction*100)
}

// SetVideoAdjust sets one of mpv's video equalizer properties.
func (m *MPV) SetVideoAdjust(property VideoProperty, value int) error {
	return m.Set(string(property), value)
}

// AudioDevices returns the last audio-device-list mpv pushed to the listener.
func (m *MPV) AudioDevices() ([]AudioDevice, error) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return append([]AudioDevice(nil), m.devices...), nil
}

func (m *MPV) storeDevices(line []byte) {
	var raw struct {
		Data interface{} `json:"data"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return
	}

	devices, err := parseAudioDevices(raw.Data)
	if err != nil {
		log.Warnf("mpv: %v", err)
		return
	}

	m.stateMu.Lock()
	m.devices = devices
	m.stateMu.Unlock()
}

func parseAudioDevices(data interface{}) ([]AudioDevice, error) {
	list, err := cast.ToSliceE(data)
	if err != nil {
		return nil, fmt.Errorf("audio-device-list: %w", err)
	}

	devices := make([]AudioDevice, 0, len(list))
	for _, item := range list {
		fields := cast.ToStringMap(item)
		devices = append(devices, AudioDevice{
			ID:          cast.ToString(fields["name"]),
			Description: cast.ToString(fields["description"]),
		})
	}
	return devices, nil
}

// SetAudioDevice switches the output; "auto" restores mpv's choice.
func (m *MPV) SetAudioDevice(id string) error {
	return m.Set("audio-device", id)
}

// SetEventCallback replaces the event callback; nil clears it.
func (m *MPV) SetEventCallback(cb func(Event)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.onEvent = cb
}

// SetLogCallback replaces the log callback; nil clears it.
func (m *MPV) SetLogCallback(cb func(LogEntry)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.onLog = cb
}

// Set a property
func (m *MPV) Set(property string, value interface{}) error {
	return m.enqueue(nil, "set_property", property, value)
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.stop()
	}

	if m.cmd == nil {
		m.stopWriter()
		return nil
	}

	// Try graceful quit via IPC once queued commands are out
	quit := make(chan struct{})
	if err := m.enqueue(func(interface{}, error) { close(quit) }, "quit"); err != nil {
		close(quit)
	}

	deadline := time.NewTimer(quitTimeout)
	defer deadline.Stop()

	select {
	case <-quit:
		select {
		case <-m.exited:
		case <-deadline.C:
			_ = killProcess(m.cmd)
		}
	case <-m.exited:
	case <-deadline.C:
		_ = killProcess(m.cmd)
	}
	m.stopWriter()

	_ = os.Remove(m.socketPath)
	return nil
}

func (m *MPV) stopWriter() {
	m.closeOnce.Do(func() { close(m.closing) })
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
