package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/engine"
	"github.com/streampane/streampane/host"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/settings"
)

// ErrNoChannel is returned by Play when the channel is empty.
var ErrNoChannel = errors.New("no channel given")

// Player is the engine surface a controller drives. *engine.Session implements it.
type Player interface {
	SetSource(url string) error
	Play() error
	Stop() error
	SetVolume(volume int) error
	SetVideoAdjust(property engine.VideoProperty, value int) error
	AudioDevices() ([]engine.AudioDevice, error)
	SetAudioDevice(id string) error
}

// Daemon is what a controller needs from the streaming daemon. *daemon.Client implements it.
type Daemon interface {
	StreamIndexer
	MetadataSource
	PlaybackURL(channel, quality, metaKey string) string
}

// Options wires a controller to its collaborators. Zero values pick sensible defaults,
// except Scheduler, Player and Daemon which are required.
type Options struct {
	Scheduler host.Scheduler
	Player    Player
	Daemon    Daemon
	Settings  settings.Store
	Recorder  Recorder
	Observer  Observer

	// Clock is read for delay samples. Defaults to time.Now.
	Clock func() time.Time
	// Spawn runs a blocking daemon call off the host goroutine. Defaults to a new goroutine.
	Spawn func(func())

	RetryBase     time.Duration
	RetryMax      time.Duration
	DefaultVolume int
	// DefaultVideo holds equalizer values used when none were remembered.
	DefaultVideo map[engine.VideoProperty]int
}

// Controller is the playback state machine of one pane.
// All methods must be called on the host goroutine.
type Controller struct {
	sched    host.Scheduler
	player   Player
	daemon   Daemon
	settings settings.Store
	recorder Recorder
	observer Observer
	clock    func() time.Time

	retry   *RetryPolicy
	quality *QualityNegotiator
	delay   *DelayEstimator

	state     State
	attempt   mo.Option[Attempt]
	nextID    uint64
	channel   string
	qualityID string
	buffering bool
	retryIn   time.Duration
	volume    int
	muted     bool
	video     map[engine.VideoProperty]int
}

// NewController creates an Idle controller and applies the remembered volume to the player.
func NewController(opts Options) *Controller {
	if opts.Settings == nil {
		opts.Settings = settings.NewMemory()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Observer == nil {
		opts.Observer = func(Snapshot) {}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Spawn == nil {
		opts.Spawn = func(fn func()) { go fn() }
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = constant.RetryBase
	}

	c := &Controller{
		sched:    opts.Scheduler,
		player:   opts.Player,
		daemon:   opts.Daemon,
		settings: opts.Settings,
		recorder: opts.Recorder,
		observer: opts.Observer,
		clock:    opts.Clock,
		retry:    NewRetryPolicy(opts.Scheduler, opts.RetryBase, opts.RetryMax),
		quality:  newQualityNegotiator(opts.Scheduler, opts.Spawn, opts.Daemon),
		delay:    newDelayEstimator(opts.Scheduler, opts.Spawn, opts.Daemon, opts.Clock),
		state:    Idle,
	}

	c.quality.onSuccess = c.qualitiesReceived
	c.quality.onFailure = c.qualitiesFailed
	c.delay.onFailure = c.metadataFailed

	c.volume = lo.Clamp(settings.Int(c.settings, settings.KeyLastVolume, opts.DefaultVolume), constant.VolumeMin, constant.VolumeMax)
	c.muted = settings.Bool(c.settings, settings.KeyLastMute, false)
	c.applyVolume()

	c.video = make(map[engine.VideoProperty]int, len(engine.VideoProperties))
	for _, p := range engine.VideoProperties {
		v := settings.Int(c.settings, settings.KeyLastVideo(string(p)), opts.DefaultVideo[p])
		c.video[p] = lo.Clamp(v, engine.VideoAdjustMin, engine.VideoAdjustMax)
		if c.video[p] != 0 {
			c.applyVideo(p)
		}
	}

	return c
}

func (c *Controller) logf(level logrus.Level, format string, args ...any) {
	log.WithPane(c.channel, level, format, args...)
}

func (c *Controller) notify() {
	c.observer(c.Snapshot())
}

// Play starts the channel at quality, superseding whatever was playing or scheduled.
// An empty quality lets the daemon pick.
func (c *Controller) Play(channel, quality string) error {
	if channel == "" {
		return ErrNoChannel
	}

	c.retry.Cancel()
	c.retry.Reset()
	c.retryIn = 0

	if quality != "" {
		if err := c.settings.Set(settings.KeyLastQuality(channel), quality); err != nil {
			c.logf(logrus.WarnLevel, "remember quality: %v", err)
		}
	}

	return c.start(channel, quality)
}

// start begins a new attempt. The retry interval is left to the caller.
func (c *Controller) start(channel, quality string) error {
	if channel != c.channel {
		c.quality.Clear()
	}

	c.nextID++
	a := Attempt{
		ID:        c.nextID,
		Channel:   channel,
		Quality:   quality,
		MetaKey:   NewMetaKey(),
		StartedAt: c.clock(),
	}
	c.attempt = mo.Some(a)
	c.channel = channel
	c.qualityID = quality
	c.state = Opening
	c.buffering = false

	c.logf(logrus.InfoLevel, "attempt %d: playing %q at %q", a.ID, channel, lo.Ternary(quality == "", "default", quality))

	err := c.player.SetSource(c.daemon.PlaybackURL(channel, quality, a.MetaKey))
	if err == nil {
		err = c.player.Play()
	}

	c.quality.Request(a)
	c.delay.Reset(a)
	c.notify()

	if err != nil {
		c.logf(logrus.ErrorLevel, "attempt %d: %v", a.ID, err)
		return fmt.Errorf("play %s: %w", channel, err)
	}
	return nil
}

// replay is the retry timer's callback: the same channel and quality, with the grown interval kept.
func (c *Controller) replay() {
	c.retryIn = 0

	a, ok := c.attempt.Get()
	if !ok {
		return
	}
	_ = c.start(a.Channel, a.Quality)
}

// Stop stops playback and drops any scheduled replay. The controller goes Idle.
func (c *Controller) Stop() error {
	c.retry.Cancel()
	c.retryIn = 0
	c.quality.Cancel()
	c.delay.Clear()
	c.attempt = mo.None[Attempt]()
	c.state = Idle
	c.buffering = false
	c.notify()

	return c.player.Stop()
}

// FastForward jumps to the live edge by stopping and replaying the current channel.
// It does nothing when idle.
func (c *Controller) FastForward() error {
	a, ok := c.attempt.Get()
	if !ok {
		return nil
	}

	if err := c.player.Stop(); err != nil {
		c.logf(logrus.WarnLevel, "fast forward stop: %v", err)
	}
	return c.Play(a.Channel, a.Quality)
}

// Reload replays the current channel as if the user asked for it again.
func (c *Controller) Reload() error {
	if c.channel == "" {
		return nil
	}
	return c.Play(c.channel, c.qualityID)
}

// SetQuality replays the current channel at another quality.
func (c *Controller) SetQuality(quality string) error {
	if c.channel == "" {
		return ErrNoChannel
	}
	return c.Play(c.channel, quality)
}

// Volume is the remembered volume, 0..200, independent of mute.
func (c *Controller) Volume() int {
	return c.volume
}

// SetVolume clamps and applies volume and remembers it.
func (c *Controller) SetVolume(volume int) {
	c.volume = lo.Clamp(volume, constant.VolumeMin, constant.VolumeMax)
	c.applyVolume()
	if err := c.settings.Set(settings.KeyLastVolume, c.volume); err != nil {
		c.logf(logrus.WarnLevel, "remember volume: %v", err)
	}
	c.notify()
}

// AdjustVolume moves the volume by delta.
func (c *Controller) AdjustVolume(delta int) {
	c.SetVolume(c.volume + delta)
}

// Muted reports whether the pane is muted.
func (c *Controller) Muted() bool {
	return c.muted
}

// SetMuted silences the engine without forgetting the volume.
func (c *Controller) SetMuted(muted bool) {
	c.muted = muted
	c.applyVolume()
	if err := c.settings.Set(settings.KeyLastMute, muted); err != nil {
		c.logf(logrus.WarnLevel, "remember mute: %v", err)
	}
	c.notify()
}

func (c *Controller) applyVolume() {
	if err := c.player.SetVolume(lo.Ternary(c.muted, 0, c.volume)); err != nil {
		c.logf(logrus.WarnLevel, "set volume: %v", err)
	}
}

// VideoAdjust is the current value of an equalizer property, 0 when untouched.
func (c *Controller) VideoAdjust(property engine.VideoProperty) int {
	return c.video[property]
}

// SetVideoAdjust clamps and applies an equalizer property and remembers it.
func (c *Controller) SetVideoAdjust(property engine.VideoProperty, value int) error {
	if !lo.Contains(engine.VideoProperties, property) {
		return fmt.Errorf("unknown video property %q", property)
	}

	c.video[property] = lo.Clamp(value, engine.VideoAdjustMin, engine.VideoAdjustMax)
	c.applyVideo(property)
	if err := c.settings.Set(settings.KeyLastVideo(string(property)), c.video[property]); err != nil {
		c.logf(logrus.WarnLevel, "remember %s: %v", property, err)
	}
	return nil
}

// AdjustVideo moves an equalizer property by delta.
func (c *Controller) AdjustVideo(property engine.VideoProperty, delta int) error {
	return c.SetVideoAdjust(property, c.video[property]+delta)
}

// ResetVideo puts every equalizer property back to 0.
func (c *Controller) ResetVideo() {
	for _, p := range engine.VideoProperties {
		if c.video[p] != 0 {
			_ = c.SetVideoAdjust(p, 0)
		}
	}
}

func (c *Controller) applyVideo(property engine.VideoProperty) {
	if err := c.player.SetVideoAdjust(property, c.video[property]); err != nil {
		c.logf(logrus.WarnLevel, "set %s: %v", property, err)
	}
}

// AudioDevices lists the engine's outputs.
func (c *Controller) AudioDevices() ([]engine.AudioDevice, error) {
	return c.player.AudioDevices()
}

// SetAudioDevice switches the engine's output.
func (c *Controller) SetAudioDevice(id string) error {
	return c.player.SetAudioDevice(id)
}

// State is the current playback state.
func (c *Controller) State() State {
	return c.state
}

// Buffering reports whether the buffering indicator is on.
func (c *Controller) Buffering() bool {
	return c.buffering
}

// Delay is the latest valid end-to-end delay of the current attempt.
func (c *Controller) Delay() mo.Option[time.Duration] {
	return c.delay.Delay()
}

// Qualities lists the current channel's qualities in the daemon's order.
func (c *Controller) Qualities() []string {
	return c.quality.Qualities()
}

// Channel is the channel last played.
func (c *Controller) Channel() string {
	return c.channel
}

// Quality is the quality last requested, "" for the daemon's default.
func (c *Controller) Quality() string {
	return c.qualityID
}

// RetryInterval is the delay the next automatic replay would use.
func (c *Controller) RetryInterval() time.Duration {
	return c.retry.Interval()
}

// Snapshot captures the observable state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Channel:   c.channel,
		Quality:   c.qualityID,
		State:     c.state,
		Attempt:   c.attempt.OrEmpty().ID,
		Buffering: c.buffering,
		Delay:     c.delay.Delay(),
		Volume:    c.volume,
		Muted:     c.muted,
		Qualities: append([]string(nil), c.quality.Qualities()...),
		RetryIn:   c.retryIn,
	}
}

// Dispatch applies one engine event.
func (c *Controller) Dispatch(ev engine.Event) {
	if c.attempt.IsAbsent() {
		c.logf(logrus.TraceLevel, "idle, ignoring %s", ev)
		return
	}
	engine.Visit(ev, eventHandler{c})
}

func (c *Controller) setBuffering(buffering bool) {
	if c.buffering != buffering {
		c.recorder.BufferingChanged(c.channel, buffering)
	}
	c.buffering = buffering
}

func (c *Controller) terminated(ev engine.Event) {
	c.state = RetryScheduled
	c.setBuffering(false)

	after, armed := c.retry.Schedule(c.replay)
	if armed {
		c.retryIn = after
		c.recorder.RetryScheduled(c.channel, after)
		c.logf(logrus.InfoLevel, "%s, replaying in %s", ev, after)
	}
	c.notify()
}

func (c *Controller) qualitiesReceived(names []string) {
	c.retry.Reset()
	c.logf(logrus.DebugLevel, "qualities: %v", names)
	c.notify()
}

func (c *Controller) qualitiesFailed(err error) {
	c.recorder.QualityFailed(c.channel)
	c.logf(logrus.WarnLevel, "stream index: %v", err)
}

func (c *Controller) metadataFailed(err error) {
	c.recorder.MetadataFailed(c.channel)
	c.logf(logrus.DebugLevel, "segment metadata: %v", err)
}

// eventHandler keeps the visitor methods off the Controller's own API.
type eventHandler struct {
	c *Controller
}

func (h eventHandler) Opening(engine.Opening) {
	h.c.state = Opening
	h.c.setBuffering(true)
	h.c.notify()
}

func (h eventHandler) Playing(engine.Playing) {
	h.c.state = Playing
	h.c.setBuffering(false)
	h.c.delay.Playing()
	h.c.notify()
}

func (h eventHandler) TimeChanged(ev engine.TimeChanged) {
	delay, ok := h.c.delay.Observe(ev.Position)
	if !ok {
		return
	}
	h.c.recorder.DelayObserved(h.c.channel, delay)
	h.c.notify()
}

func (h eventHandler) Buffering(ev engine.Buffering) {
	full := ev.Percent == 100
	h.c.state = lo.Ternary(full, Playing, Buffering)
	h.c.setBuffering(!full)
	h.c.notify()
}

func (h eventHandler) Stopped(ev engine.Stopped) {
	h.c.terminated(ev)
}

func (h eventHandler) EndReached(ev engine.EndReached) {
	h.c.terminated(ev)
}

func (h eventHandler) EncounteredError(ev engine.EncounteredError) {
	h.c.logf(logrus.WarnLevel, "engine reported an error")
	h.c.terminated(ev)
}

func (h eventHandler) Unknown(ev engine.Unknown) {
	h.c.logf(logrus.TraceLevel, "ignoring %s", ev)
}
