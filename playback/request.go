package playback

import (
	"context"

	"github.com/streampane/streampane/host"
)

// request runs at most one daemon call at a time for the attempt that issued it.
// Starting another one cancels the first at the transport, and a completion that arrives
// for anything but the current attempt is dropped.
type request[T any] struct {
	sched  host.Scheduler
	spawn  func(func())
	id     uint64 // attempt the outstanding call belongs to, 0 when none
	cancel context.CancelFunc
}

func (r *request[T]) start(id uint64, call func(ctx context.Context) (T, error), done func(T, error)) {
	r.stop()

	ctx, cancel := context.WithCancel(context.Background())
	r.id = id
	r.cancel = cancel

	r.spawn(func() {
		v, err := call(ctx)
		r.sched.Post(func() {
			defer cancel()
			if r.id != id {
				return
			}
			r.id = 0
			r.cancel = nil
			done(v, err)
		})
	})
}

func (r *request[T]) stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.id = 0
	r.cancel = nil
}

func (r *request[T]) pending() bool {
	return r.id != 0
}
