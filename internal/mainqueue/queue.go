// Package mainqueue provides the single serialized execution context that
// permission updates and state recomputation run on.
package mainqueue

import (
	"sync"
)

// Queue runs posted functions one at a time, in order, on a single goroutine.
// Functions may post further work; Post never blocks.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

// New creates a queue and starts its worker goroutine.
func New() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

// Post schedules fn to run on the queue. It reports false if the queue is
// closed and fn was dropped.
func (q *Queue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, fn)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	q.mu.Unlock()
	return true
}

// Sync runs fn on the queue and waits for it to finish. Everything posted
// before Sync has run by the time it returns. Must not be called from a
// function already running on the queue.
func (q *Queue) Sync(fn func()) bool {
	ran := make(chan struct{})
	ok := q.Post(func() {
		defer close(ran)
		if fn != nil {
			fn()
		}
	})
	if !ok {
		return false
	}
	<-ran
	return true
}

// Flush waits until all work posted so far has run.
func (q *Queue) Flush() {
	q.Sync(nil)
}

// Close stops accepting work. Already queued functions still run. Close
// waits for the worker to exit and is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.wake)
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
