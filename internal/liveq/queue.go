package liveq

import "sync"

// updateQueue is a thread-safe FIFO of pending pushes for one subscription.
//
// The queue is unbounded so a live query worker never waits on a slow
// subscriber. The signal channel (buffered, size 1) coalesces wake-ups and is
// closed by Close to release a blocked Dequeue.
type updateQueue struct {
	mu      sync.Mutex
	updates []Update
	closed  bool
	signal  chan struct{}
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{
		updates: make([]Update, 0, 4),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds u to the back of the queue.
// Returns false if the queue is closed.
func (q *updateQueue) Enqueue(u Update) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.updates = append(q.updates, u)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front update without blocking.
func (q *updateQueue) TryDequeue() (Update, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.updates) == 0 {
		return Update{}, false
	}

	u := q.updates[0]
	// Clear the slot so the backing array does not pin the result value.
	q.updates[0] = Update{}
	if len(q.updates) == 1 {
		q.updates = q.updates[:0]
	} else {
		q.updates = q.updates[1:]
	}
	return u, true
}

// Dequeue blocks until an update is available or the queue is closed.
// Returns false once the queue is closed, even if updates remain.
func (q *updateQueue) Dequeue() (Update, bool) {
	for {
		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return Update{}, false
		}

		if u, ok := q.TryDequeue(); ok {
			return u, true
		}

		<-q.signal
	}
}

// Len returns the number of queued updates.
func (q *updateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.updates)
}

// Close discards queued updates and wakes any blocked Dequeue.
func (q *updateQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.updates = nil
	close(q.signal)
}
