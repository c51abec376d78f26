package playback

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streampane/streampane/host"
)

func TestRetryPolicy(t *testing.T) {
	Convey("Given a retry policy", t, func() {
		sched := host.NewManual()
		policy := NewRetryPolicy(sched, time.Second, 0)
		fired := 0
		fire := func() { fired++ }

		Convey("Intervals double on every schedule", func() {
			for k := 1; k <= 5; k++ {
				after, armed := policy.Schedule(fire)
				So(armed, ShouldBeTrue)
				So(after, ShouldEqual, time.Duration(1<<(k-1))*time.Second)
				sched.Advance(after)
				So(fired, ShouldEqual, k)
				So(policy.Scheduled(), ShouldBeFalse)
			}
		})

		Convey("Only one replay is pending at a time", func() {
			_, armed := policy.Schedule(fire)
			So(armed, ShouldBeTrue)
			_, armed = policy.Schedule(fire)
			So(armed, ShouldBeFalse)
			So(sched.Pending(), ShouldResemble, []time.Duration{time.Second})
			So(policy.Interval(), ShouldEqual, 2*time.Second)
		})

		Convey("Cancel drops the timer but keeps the interval", func() {
			policy.Schedule(fire)
			policy.Cancel()
			sched.Advance(time.Minute)
			So(fired, ShouldEqual, 0)
			So(policy.Interval(), ShouldEqual, 2*time.Second)

			Convey("and Reset brings it back to the base", func() {
				policy.Reset()
				So(policy.Interval(), ShouldEqual, time.Second)
			})
		})

		Convey("A cap bounds growth", func() {
			capped := NewRetryPolicy(sched, time.Second, 3*time.Second)
			var seen []time.Duration
			for i := 0; i < 4; i++ {
				after, _ := capped.Schedule(fire)
				seen = append(seen, after)
				sched.Advance(after)
			}
			So(seen, ShouldResemble, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second})
		})
	})
}
