package host

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by hand: posted functions run on Flush and timers fire on Advance.
// Controllers under test run on it deterministically without real goroutines or clocks.
type Manual struct {
	now    time.Duration
	posted []func()
	timers []*manualTimer
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Post(fn func()) {
	m.posted = append(m.posted, fn)
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: m.now + d, delay: d, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Flush runs posted functions, including ones posted while flushing.
func (m *Manual) Flush() {
	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		fn()
	}
}

// Advance moves the clock forward, firing due timers in deadline order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		due := m.due(target)
		if due == nil {
			break
		}
		m.now = due.at
		due.done = true
		due.fn()
		m.Flush()
	}
	m.now = target
}

// Pending returns the delays of timers that have neither fired nor been stopped, in creation order.
func (m *Manual) Pending() []time.Duration {
	var out []time.Duration
	for _, t := range m.timers {
		if !t.done {
			out = append(out, t.delay)
		}
	}
	return out
}

func (m *Manual) due(target time.Duration) *manualTimer {
	var candidates []*manualTimer
	for _, t := range m.timers {
		if !t.done && t.at <= target {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].at < candidates[j].at })
	return candidates[0]
}

type manualTimer struct {
	at    time.Duration
	delay time.Duration
	fn    func()
	done  bool
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}
