package playback

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// State is where a controller is in its playback cycle. There is no terminal state:
// a stream that ends is replayed until the user plays something else or stops.
type State int

const (
	Idle State = iota
	Opening
	Playing
	Buffering
	RetryScheduled
)

var stateNames = [...]string{
	Idle:           "idle",
	Opening:        "opening",
	Playing:        "playing",
	Buffering:      "buffering",
	RetryScheduled: "retry-scheduled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is everything a UI shows about one pane.
type Snapshot struct {
	Channel   string                   `json:"channel"`
	Quality   string                   `json:"quality"`
	State     State                    `json:"state"`
	Attempt   uint64                   `json:"attempt"`
	Buffering bool                     `json:"buffering"`
	Delay     mo.Option[time.Duration] `json:"delay"`
	Volume    int                      `json:"volume"`
	Muted     bool                     `json:"muted"`
	Qualities []string                 `json:"qualities"`
	// RetryIn is the delay of the pending replay, zero when none is scheduled.
	RetryIn time.Duration `json:"retry_in"`
}

// Observer is notified on the host goroutine after every observable change.
type Observer func(Snapshot)
