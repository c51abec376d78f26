package playback

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/daemon"
	"github.com/streampane/streampane/host"
)

// MetadataSource reports segment timing for a playback key.
type MetadataSource interface {
	Metadata(ctx context.Context, channel, quality, metaKey string) (daemon.SegmentMetadata, error)
}

// Delay computes how far behind the broadcast the engine is rendering:
// the wall clock minus the moment the transcoder received the playing segment,
// shifted by a fixed display offset. ok is false outside [0, constant.MaxDelay].
func Delay(meta daemon.SegmentMetadata, position time.Duration, now time.Time) (delay time.Duration, ok bool) {
	ms := now.UnixMilli() - (int64(meta.TranscodeRecv) + position.Milliseconds()) + constant.DelayDisplayOffset.Milliseconds()
	delay = time.Duration(ms) * time.Millisecond
	if delay < 0 || delay > constant.MaxDelay {
		return 0, false
	}
	return delay, true
}

// DelayEstimator fetches metadata once per attempt and turns playback positions into delay samples.
type DelayEstimator struct {
	source  MetadataSource
	clock   func() time.Time
	req     request[daemon.SegmentMetadata]
	attempt mo.Option[Attempt]
	asked   bool
	meta    mo.Option[daemon.SegmentMetadata]
	delay   mo.Option[time.Duration]

	onFailure func(err error)
}

func newDelayEstimator(sched host.Scheduler, spawn func(func()), source MetadataSource, clock func() time.Time) *DelayEstimator {
	return &DelayEstimator{
		source:    source,
		clock:     clock,
		req:       request[daemon.SegmentMetadata]{sched: sched, spawn: spawn},
		onFailure: func(error) {},
	}
}

// Reset forgets everything about the previous attempt and follows a.
func (d *DelayEstimator) Reset(a Attempt) {
	d.req.stop()
	d.attempt = mo.Some(a)
	d.asked = false
	d.meta = mo.None[daemon.SegmentMetadata]()
	d.delay = mo.None[time.Duration]()
}

// Clear stops following any attempt.
func (d *DelayEstimator) Clear() {
	d.req.stop()
	d.attempt = mo.None[Attempt]()
	d.asked = false
	d.meta = mo.None[daemon.SegmentMetadata]()
	d.delay = mo.None[time.Duration]()
}

// Playing requests the attempt's metadata the first time it is called per attempt.
func (d *DelayEstimator) Playing() {
	a, ok := d.attempt.Get()
	if !ok || d.asked {
		return
	}
	d.asked = true

	d.req.start(a.ID,
		func(ctx context.Context) (daemon.SegmentMetadata, error) {
			return d.source.Metadata(ctx, a.Channel, a.Quality, a.MetaKey)
		},
		func(meta daemon.SegmentMetadata, err error) {
			if err != nil {
				d.onFailure(err)
				return
			}
			d.meta = mo.Some(meta)
		},
	)
}

// Observe feeds a playback position. It returns the new delay when a valid one could be computed.
func (d *DelayEstimator) Observe(position time.Duration) (time.Duration, bool) {
	meta, ok := d.meta.Get()
	if !ok {
		return 0, false
	}

	delay, ok := Delay(meta, position, d.clock())
	if !ok {
		return 0, false
	}

	d.delay = mo.Some(delay)
	return delay, true
}

// Delay is the last published sample.
func (d *DelayEstimator) Delay() mo.Option[time.Duration] {
	return d.delay
}

// HasMetadata reports whether the attempt's metadata arrived.
func (d *DelayEstimator) HasMetadata() bool {
	return d.meta.IsPresent()
}
