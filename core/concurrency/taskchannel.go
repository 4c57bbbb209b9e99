// File: core/concurrency/taskchannel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// taskChannel is the multi-producer single-consumer transport between
// submitters and the affine worker. Pushes never block: envelopes land in an
// unbounded FIFO and a coalesced wake token tells the worker to look. The
// shutdown signal is a separate channel so the worker observes it whether or
// not the queue is empty.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-affine/api"
)

type taskChannel[E any] struct {
	mu     sync.Mutex
	q      *queue.Queue
	closed bool

	wake     chan struct{} // capacity 1, coalesces bursts of pushes
	stop     chan struct{} // closed once by shutdown
	stopOnce sync.Once
}

func newTaskChannel[E any]() *taskChannel[E] {
	return &taskChannel[E]{
		q:    queue.New(),
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
}

// push appends e. Fails with ErrExecutorClosed once shutdown was signaled.
func (c *taskChannel[E]) push(e E) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return api.ErrExecutorClosed
	}
	c.q.Add(e)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// pop removes the oldest envelope without blocking.
func (c *taskChannel[E]) pop() (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.q.Length() == 0 {
		var zero E
		return zero, false
	}
	return c.q.Remove().(E), true
}

// drain empties the queue. Only meaningful after shutdown, when no push can
// succeed any more.
func (c *taskChannel[E]) drain() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]E, 0, c.q.Length())
	for c.q.Length() > 0 {
		out = append(out, c.q.Remove().(E))
	}
	return out
}

func (c *taskChannel[E]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Length()
}

func (c *taskChannel[E]) ready() <-chan struct{} { return c.wake }

func (c *taskChannel[E]) stopping() <-chan struct{} { return c.stop }

// shutdown rejects further pushes and closes the stop channel. It reports
// true only for the call that actually sent the signal.
func (c *taskChannel[E]) shutdown() bool {
	first := false
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.stop)
		first = true
	})
	return first
}
