package constant

import "time"

// Playback timing defaults shared by the engine bridge and the controller.
const (
	// PollInterval is how often the host drains the engine bridges.
	PollInterval = 250 * time.Millisecond

	// RetryBase is the first automatic replay delay after a terminal event.
	RetryBase = time.Second

	// MaxDelay bounds an accepted end-to-end delay sample.
	MaxDelay = 60 * time.Second

	// DelayDisplayOffset compensates for the extra delay shown by the reference site.
	DelayDisplayOffset = time.Second

	// NoticeDuration is how long an overlay notice ("Muted", "35 %") stays visible.
	NoticeDuration = 2500 * time.Millisecond
)

// Volume bounds accepted by the engine. Values above VolumeNormal amplify.
const (
	VolumeMin    = 0
	VolumeNormal = 100
	VolumeMax    = 200
)
