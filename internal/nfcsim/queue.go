package nfcsim

import "sync"

// queue is a FIFO of pending callback deliveries for one session.
//
// Enqueue may be called from any goroutine; only the session worker
// dequeues. The signal channel has a buffer of one so repeated enqueues
// coalesce into a single wakeup.
type queue struct {
	mu     sync.Mutex
	items  []func()
	closed bool
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{
		items:  make([]func(), 0, 8),
		signal: make(chan struct{}, 1),
	}
}

// enqueue adds a delivery. It returns false once the queue is closed.
func (q *queue) enqueue(f func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, f)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *queue) tryDequeue() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	f := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return f, true
}

// wait returns a channel that signals when deliveries may be available.
func (q *queue) wait() <-chan struct{} {
	return q.signal
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close rejects further deliveries. Pending ones are left for the caller
// to drain.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
