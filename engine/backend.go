package engine

// AudioDevice is an audio output the engine can render to.
type AudioDevice struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// VideoProperty is one video equalizer control.
type VideoProperty string

const (
	Brightness VideoProperty = "brightness"
	Contrast   VideoProperty = "contrast"
	Saturation VideoProperty = "saturation"
	Hue        VideoProperty = "hue"
	Gamma      VideoProperty = "gamma"
)

// VideoProperties lists the equalizer controls in display order.
var VideoProperties = []VideoProperty{Brightness, Contrast, Saturation, Hue, Gamma}

// Equalizer values run from VideoAdjustMin to VideoAdjustMax; 0 leaves the picture untouched.
const (
	VideoAdjustMin = -100
	VideoAdjustMax = 100
)

// Backend is the native media engine surface one pane consumes.
//
// Callbacks are invoked on goroutines owned by the backend, never synchronized with
// the caller. Each callback slot holds one function; setting it again replaces the
// previous one, and nil clears it. A terminal event caused by the caller's own Stop,
// or by a new source replacing the open one, is not reported.
type Backend interface {
	SetMedia(url string) error
	Play() error
	Stop() error
	// SetVolume takes 0..200; values above 100 amplify.
	SetVolume(volume int) error
	// SetPosition seeks to a fraction of the media, 0.0..1.0.
	SetPosition(fraction float64) error
	// SetVideoAdjust takes VideoAdjustMin..VideoAdjustMax.
	SetVideoAdjust(property VideoProperty, value int) error
	AudioDevices() ([]AudioDevice, error)
	SetAudioDevice(id string) error

	SetEventCallback(cb func(Event))
	SetLogCallback(cb func(LogEntry))

	// Close releases the native resources. Implementations may assume it is called once.
	Close() error
}
