package host

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoop(t *testing.T) {
	Convey("Given a running loop", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		l := NewLoop()
		go l.Run(ctx)
		defer func() {
			cancel()
			<-l.Done()
		}()

		Convey("Posted functions run in order", func() {
			var got []int
			for i := 0; i < 10; i++ {
				i := i
				l.Post(func() { got = append(got, i) })
			}
			l.Call(func() {})
			So(got, ShouldResemble, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
		})

		Convey("AfterFunc fires once on the loop", func() {
			fired := make(chan struct{}, 2)
			l.AfterFunc(10*time.Millisecond, func() { fired <- struct{}{} })

			select {
			case <-fired:
			case <-time.After(time.Second):
				So("timer never fired", ShouldBeEmpty)
			}
		})

		Convey("A stopped timer never fires", func() {
			var fired atomic.Bool
			timer := l.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })
			So(timer.Stop(), ShouldBeTrue)
			So(timer.Stop(), ShouldBeFalse)

			time.Sleep(50 * time.Millisecond)
			l.Call(func() {})
			So(fired.Load(), ShouldBeFalse)
		})

		Convey("Every ticks until its context ends", func() {
			var ticks atomic.Int32
			tickCtx, stop := context.WithCancel(ctx)
			l.Every(tickCtx, 5*time.Millisecond, func() { ticks.Add(1) })

			time.Sleep(60 * time.Millisecond)
			stop()
			l.Call(func() {})
			So(ticks.Load(), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Posting to a stopped loop does not block", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		l := NewLoop()
		go l.Run(ctx)
		cancel()
		<-l.Done()

		for i := 0; i < 1000; i++ {
			l.Post(func() {})
		}
		So(true, ShouldBeTrue)
	})
}

func TestManual(t *testing.T) {
	Convey("Manual scheduler", t, func() {
		m := NewManual()

		Convey("Runs timers in deadline order when advanced", func() {
			var order []string
			m.AfterFunc(2*time.Second, func() { order = append(order, "b") })
			m.AfterFunc(time.Second, func() { order = append(order, "a") })

			m.Advance(500 * time.Millisecond)
			So(order, ShouldBeEmpty)
			So(m.Pending(), ShouldResemble, []time.Duration{2 * time.Second, time.Second})

			m.Advance(2 * time.Second)
			So(order, ShouldResemble, []string{"a", "b"})
			So(m.Pending(), ShouldBeEmpty)
		})

		Convey("Stopped timers are skipped", func() {
			fired := false
			timer := m.AfterFunc(time.Second, func() { fired = true })
			So(timer.Stop(), ShouldBeTrue)
			m.Advance(time.Minute)
			So(fired, ShouldBeFalse)
		})

		Convey("Flush runs nested posts", func() {
			var got []int
			m.Post(func() {
				got = append(got, 1)
				m.Post(func() { got = append(got, 2) })
			})
			m.Flush()
			So(got, ShouldResemble, []int{1, 2})
		})
	})
}
