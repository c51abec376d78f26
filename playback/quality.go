package playback

import (
	"context"

	"github.com/streampane/streampane/daemon"
	"github.com/streampane/streampane/host"
)

// StreamIndexer lists a channel's variants.
type StreamIndexer interface {
	StreamIndex(ctx context.Context, channel string) (daemon.StreamIndex, error)
}

// QualityNegotiator fetches the quality list for the current attempt.
// Failures leave the previous list in place and are never retried here.
type QualityNegotiator struct {
	source    StreamIndexer
	req       request[daemon.StreamIndex]
	qualities []string

	onSuccess func(names []string)
	onFailure func(err error)
}

func newQualityNegotiator(sched host.Scheduler, spawn func(func()), source StreamIndexer) *QualityNegotiator {
	return &QualityNegotiator{
		source:    source,
		req:       request[daemon.StreamIndex]{sched: sched, spawn: spawn},
		onSuccess: func([]string) {},
		onFailure: func(error) {},
	}
}

// Request asks for the attempt's stream index, superseding any outstanding request.
func (q *QualityNegotiator) Request(a Attempt) {
	q.req.start(a.ID,
		func(ctx context.Context) (daemon.StreamIndex, error) {
			return q.source.StreamIndex(ctx, a.Channel)
		},
		func(index daemon.StreamIndex, err error) {
			if err != nil {
				q.onFailure(err)
				return
			}
			q.qualities = index.Names()
			q.onSuccess(q.qualities)
		},
	)
}

// Cancel abandons the outstanding request, if any.
func (q *QualityNegotiator) Cancel() {
	q.req.stop()
}

// Pending reports whether a request is outstanding.
func (q *QualityNegotiator) Pending() bool {
	return q.req.pending()
}

// Qualities is the last list received, in the daemon's order.
func (q *QualityNegotiator) Qualities() []string {
	return q.qualities
}

// Clear forgets the list, for when the channel changes.
func (q *QualityNegotiator) Clear() {
	q.qualities = nil
}
