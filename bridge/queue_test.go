package bridge

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQueue(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		q := New[int]()

		Convey("PollAll returns nothing", func() {
			So(q.PollAll(), ShouldBeEmpty)
			So(q.Len(), ShouldEqual, 0)
		})

		Convey("When values are pushed in order", func() {
			for i := 1; i <= 5; i++ {
				q.Push(i)
			}

			Convey("PollAll returns them in FIFO order and empties the queue", func() {
				So(q.PollAll(), ShouldResemble, []int{1, 2, 3, 4, 5})
				So(q.PollAll(), ShouldBeEmpty)
			})

			Convey("Values pushed between polls come out in the next poll", func() {
				So(q.PollAll(), ShouldHaveLength, 5)
				q.Push(6)
				q.Push(7)
				So(q.PollAll(), ShouldResemble, []int{6, 7})
			})

			Convey("Drain dispatches every value once", func() {
				var seen []int
				n := q.Drain(func(v int) { seen = append(seen, v) })
				So(n, ShouldEqual, 5)
				So(seen, ShouldResemble, []int{1, 2, 3, 4, 5})
				So(q.Drain(func(int) {}), ShouldEqual, 0)
			})
		})
	})
}

func TestQueueAcrossGoroutines(t *testing.T) {
	Convey("Pushes serialized across several goroutines are neither lost, duplicated nor reordered", t, func() {
		const total = 2000
		q := New[int]()

		// A token passed between producers serializes their pushes in a known order
		// while each push still happens on a different goroutine.
		turns := make([]chan struct{}, 4)
		for i := range turns {
			turns[i] = make(chan struct{}, 1)
		}

		var collected []int
		var wg sync.WaitGroup
		done := make(chan struct{})

		go func() {
			defer close(done)
			for len(collected) < total {
				collected = append(collected, q.PollAll()...)
			}
		}()

		for p := range turns {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := p; i < total; i += len(turns) {
					<-turns[p]
					q.Push(i)
					turns[(p+1)%len(turns)] <- struct{}{}
				}
			}(p)
		}
		turns[0] <- struct{}{}
		wg.Wait()
		<-done

		So(collected, ShouldHaveLength, total)
		for i, v := range collected {
			if v != i {
				So(v, ShouldEqual, i)
				break
			}
		}
	})
}
