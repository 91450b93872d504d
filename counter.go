package routines

import (
	"context"
	"sync"
)

// Counter tracks outstanding routines and lets callers wait until all of them
// have finished. It is a closable-latch variant of sync.WaitGroup: the wait
// signal is satisfied whenever the count is zero and re-armed when the count
// transitions from zero to positive, so waiters registered after a new batch
// starts wait for that batch rather than the previous, already finished one.
//
// A Counter must not be copied after first use. Reusing one Counter across
// unrelated batches requires caller discipline: a waiter that arrives between
// two batches observes zero and returns immediately.
type Counter struct {
	mu    sync.Mutex
	count int
	done  chan struct{} // closed while count == 0; replaced on 0->positive
}

// NewCounter returns an empty Counter whose wait signal is already satisfied.
func NewCounter() *Counter {
	done := make(chan struct{})
	close(done)
	return &Counter{done: done}
}

// Add adjusts the count by delta, which may be negative. If the adjustment
// would drive the count below zero, Add returns ErrCounterNegative and clamps
// the count to zero so subsequent calls observe a coherent state.
func (c *Counter) Add(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.count
	next := prev + delta
	if next < 0 {
		c.count = 0
		if prev > 0 {
			close(c.done)
		}
		return ErrCounterNegative
	}

	c.count = next
	switch {
	case prev == 0 && next > 0:
		c.done = make(chan struct{})
	case prev > 0 && next == 0:
		close(c.done)
	}
	return nil
}

// Done decrements the count by one.
func (c *Counter) Done() error { return c.Add(-1) }

// Count returns the current count. The value may be stale by the time the
// caller inspects it.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Wait blocks until the count reaches zero or ctx is cancelled. If the count
// is already zero, Wait returns immediately. The signal reference is read
// under the same mutex Add uses, so a concurrent re-arm cannot produce a lost
// wakeup.
func (c *Counter) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
