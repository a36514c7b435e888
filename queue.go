package sonora

import "sync"

// pendingQueue is a thread-safe drop-box: producers on arbitrary goroutines
// Add to it, and the audio thread Drains it once per block. Drain is an
// atomic "swap with empty" — the caller gets everything appended so far and
// the queue is immediately empty again, even if a producer is blocked
// trying to Add the instant the swap happens (it simply lands in the next
// drain instead).
//
// Unlike a channel-backed work queue serializing onto a worker goroutine,
// there is no worker here — the audio thread itself is the single consumer,
// so a mutex around a slice is enough and avoids forcing every enqueue
// through a channel send.
type pendingQueue[T any] struct {
	mu    sync.Mutex
	items []T
}

// Add appends items to the queue. Safe from any goroutine.
func (q *pendingQueue[T]) Add(items ...T) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
}

// Drain returns everything queued so far and empties the queue.
func (q *pendingQueue[T]) Drain() []T {
	q.mu.Lock()
	drained := q.items
	q.items = nil
	q.mu.Unlock()
	return drained
}

// Len reports how many items are currently waiting, without draining them.
func (q *pendingQueue[T]) Len() int {
	q.mu.Lock()
	n := len(q.items)
	q.mu.Unlock()
	return n
}

// Clear empties the queue and discards its contents.
func (q *pendingQueue[T]) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
