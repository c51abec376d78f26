// Package playback drives one pane: it turns user commands and engine events into
// engine calls, automatic replays, the quality list and the end-to-end delay readout.
//
// Everything in this package runs on the host goroutine. Work that has to wait
// (daemon requests, retry timers) is handed to the host.Scheduler and comes back
// through it.
package playback

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attempt is one try at playing a channel at a quality.
// A new attempt starts on every Play, replay and fast-forward.
type Attempt struct {
	// ID grows by one per attempt of the same controller.
	ID      uint64
	Channel string
	Quality string
	// MetaKey ties the stream the engine plays to the metadata the daemon reports for it.
	MetaKey   string
	StartedAt time.Time
}

// NewMetaKey returns a random 32-character lowercase hex key.
func NewMetaKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
