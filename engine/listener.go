package engine

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/streampane/streampane/log"
)

// observedProperties are subscribed on the listener's own connection:
// mpv only delivers property-change events to the client that asked for them.
var observedProperties = []string{
	"time-pos",
	"cache-buffering-state",
	"paused-for-cache",
	"audio-device-list",
}

// eventListener owns the persistent mpv connection events and log messages arrive on.
type eventListener struct {
	socketPath string
	conn       net.Conn
	handle     func(line []byte)
	stopCh     chan struct{}
	stopped    chan struct{}
	once       sync.Once
}

func newEventListener(socketPath string, handle func(line []byte)) *eventListener {
	return &eventListener{
		socketPath: socketPath,
		handle:     handle,
		stopCh:     make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// start subscribes to the observed properties and log messages, then reads in the background.
func (el *eventListener) start() error {
	conn, err := net.Dial(network, el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observedProperties {
		if err := writeCommand(conn, requestIDs.Add(1), []interface{}{"observe_property", i + 1, name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	if err := writeCommand(conn, requestIDs.Add(1), []interface{}{"request_log_messages", "info"}); err != nil {
		conn.Close()
		return fmt.Errorf("request log messages: %w", err)
	}

	el.conn = conn
	go el.readLoop()

	log.Infof("mpv event listener started on %s (observing: %s)", el.socketPath, strings.Join(observedProperties, ", "))
	return nil
}

func (el *eventListener) stop() {
	el.once.Do(func() {
		close(el.stopCh)
		if el.conn != nil {
			el.conn.Close()
			<-el.stopped
		}
	})
}

func (el *eventListener) readLoop() {
	defer close(el.stopped)

	reader := bufio.NewReader(el.conn)
	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		line, err := reader.ReadBytes('\n')
		if len(line) > 0 && line[len(line)-1] == '\n' {
			el.handle(line)
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// a partial line stays buffered in reader
				continue
			}
			select {
			case <-el.stopCh:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}
	}
}

// rawEvent is one line mpv pushes on an observing connection.
type rawEvent struct {
	Event  string          `json:"event"`
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data"`
	Reason string          `json:"reason"`
	Level  string          `json:"level"`
	Prefix string          `json:"prefix"`
	Text   string          `json:"text"`

	PlaylistEntryID int64 `json:"playlist_entry_id"`
}

// parseLine turns one mpv line into either a playback event or a log entry.
// Command replies and unparseable lines yield neither.
func parseLine(line []byte) (ev Event, entry *LogEntry) {
	var raw rawEvent
	if err := json.Unmarshal(line, &raw); err != nil || raw.Event == "" {
		return nil, nil
	}

	switch raw.Event {
	case "log-message":
		return nil, &LogEntry{
			Level: logLevel(raw.Level),
			Text:  strings.TrimRight(fmt.Sprintf("[%s] %s", raw.Prefix, raw.Text), "\n"),
		}
	case "start-file":
		return Opening{}, nil
	case "playback-restart", "file-loaded":
		return Playing{}, nil
	case "end-file":
		switch raw.Reason {
		case "eof":
			return EndReached{}, nil
		case "error":
			return EncounteredError{}, nil
		default:
			return Stopped{}, nil
		}
	case "property-change":
		return propertyEvent(raw.Name, raw.Data), nil
	default:
		return Unknown{Name: raw.Event}, nil
	}
}

// playlistEntry reads the playlist_entry_id start-file and end-file carry, 0 if absent.
func playlistEntry(line []byte) int64 {
	var raw rawEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return 0
	}
	return raw.PlaylistEntryID
}

func propertyEvent(name string, data json.RawMessage) Event {
	switch name {
	case "time-pos":
		var seconds *float64
		if err := json.Unmarshal(data, &seconds); err != nil || seconds == nil {
			return Unknown{Name: name}
		}
		return TimeChanged{Position: time.Duration(*seconds * float64(time.Second))}
	case "cache-buffering-state":
		var percent *float64
		if err := json.Unmarshal(data, &percent); err != nil || percent == nil {
			return Unknown{Name: name}
		}
		return Buffering{Percent: *percent}
	case "paused-for-cache":
		var paused bool
		if err := json.Unmarshal(data, &paused); err != nil {
			return Unknown{Name: name}
		}
		if paused {
			return Buffering{Percent: 0}
		}
		return Buffering{Percent: 100}
	default:
		return Unknown{Name: name}
	}
}

func logLevel(level string) LogLevel {
	switch level {
	case "fatal", "error":
		return LogError
	case "warn":
		return LogWarning
	case "info", "status":
		return LogNotice
	case "v", "debug", "trace":
		return LogDebug
	default:
		return LogUnknown
	}
}
