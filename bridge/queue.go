// Package bridge moves values produced on arbitrary goroutines (media engine callbacks)
// to the single host goroutine that owns playback state.
package bridge

import "sync"

// Queue is an unbounded, mutex-guarded FIFO.
//
// Push may be called from any goroutine and only holds the lock long enough to append.
// PollAll is meant for the host goroutine; it hands over everything queued so far.
// Nothing is ever dropped: the media engine has no way to be told to slow down.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends v.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// PollAll returns every value pushed since the previous call, oldest first.
// It returns nil when nothing is pending and never blocks on producers beyond the swap.
func (q *Queue[T]) PollAll() []T {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// Len reports the number of pending values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain polls the queue and hands each value to fn in order.
// It returns the number of values dispatched.
func (q *Queue[T]) Drain(fn func(T)) int {
	items := q.PollAll()
	for _, v := range items {
		fn(v)
	}
	return len(items)
}
