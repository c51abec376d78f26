package playback

import (
	"context"
	"sync"

	"github.com/streampane/streampane/daemon"
)

type metaCall struct {
	channel, quality, key string
}

type fakeDaemon struct {
	mu sync.Mutex

	indexes  map[string]daemon.StreamIndex
	indexErr error
	meta     daemon.SegmentMetadata
	metaErr  error

	indexCalls []string
	indexCtxs  []context.Context
	metaCalls  []metaCall
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{indexes: map[string]daemon.StreamIndex{}}
}

func index(names ...string) daemon.StreamIndex {
	var idx daemon.StreamIndex
	for _, n := range names {
		idx.Variants = append(idx.Variants, daemon.Variant{Name: n})
	}
	return idx
}

func (d *fakeDaemon) StreamIndex(ctx context.Context, channel string) (daemon.StreamIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.indexCalls = append(d.indexCalls, channel)
	d.indexCtxs = append(d.indexCtxs, ctx)
	if d.indexErr != nil {
		return daemon.StreamIndex{}, d.indexErr
	}
	return d.indexes[channel], nil
}

func (d *fakeDaemon) Metadata(_ context.Context, channel, quality, key string) (daemon.SegmentMetadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metaCalls = append(d.metaCalls, metaCall{channel, quality, key})
	if d.metaErr != nil {
		return daemon.SegmentMetadata{}, d.metaErr
	}
	return d.meta, nil
}

func (d *fakeDaemon) PlaybackURL(channel, quality, metaKey string) string {
	return "http://daemon/play?channel=" + channel + "&quality=" + quality + "&meta_key=" + metaKey
}

// inline runs daemon calls on the caller's goroutine; completions still go through the scheduler.
func inline(fn func()) { fn() }
