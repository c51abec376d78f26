package playback

import (
	"time"

	"github.com/streampane/streampane/host"
)

// RetryPolicy schedules automatic replays with exponential backoff.
//
// It is Idle or Scheduled. Schedule arms one timer for the current interval and
// doubles the interval for next time; while armed, further Schedule calls do nothing.
// The interval only shrinks back to the base through Reset.
type RetryPolicy struct {
	sched    host.Scheduler
	base     time.Duration
	max      time.Duration
	interval time.Duration
	timer    host.Timer
}

// NewRetryPolicy starts Idle at base. A positive max caps the interval; zero leaves it unbounded.
func NewRetryPolicy(sched host.Scheduler, base, max time.Duration) *RetryPolicy {
	return &RetryPolicy{
		sched:    sched,
		base:     base,
		max:      max,
		interval: base,
	}
}

// Scheduled reports whether a replay is pending.
func (r *RetryPolicy) Scheduled() bool {
	return r.timer != nil
}

// Interval is the delay the next Schedule will use.
func (r *RetryPolicy) Interval() time.Duration {
	return r.interval
}

// Schedule arms fire after the current interval, unless a replay is already pending.
// It returns the delay used and whether a timer was armed.
func (r *RetryPolicy) Schedule(fire func()) (time.Duration, bool) {
	if r.timer != nil {
		return 0, false
	}

	after := r.interval
	r.timer = r.sched.AfterFunc(after, func() {
		r.timer = nil
		fire()
	})

	r.interval *= 2
	if r.max > 0 && r.interval > r.max {
		r.interval = r.max
	}
	return after, true
}

// Cancel drops a pending replay. The interval is left alone.
func (r *RetryPolicy) Cancel() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Reset brings the interval back to the base.
func (r *RetryPolicy) Reset() {
	r.interval = r.base
}
