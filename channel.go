package routines

import (
	"context"
	"io"
	"sync"
)

type channelState int

const (
	channelOpen channelState = iota
	channelCompleted
	channelFaulted
)

// Channel is a typed, closable FIFO queue connecting any number of producers
// and consumers. Items are delivered in the order they were accepted into the
// queue. A channel is either unbounded or holds at most a fixed number of
// pending items; bounded sends block cooperatively until a consumer drains an
// item or the channel reaches a terminal state.
//
// A channel is completed at most once, either normally via Complete or with a
// recorded fault via Fail; both are idempotent and the first terminal state
// wins. Items buffered before completion remain receivable. After a faulted
// channel drains, every Receive returns the recorded fault verbatim; after a
// normally completed channel drains, Receive returns io.EOF.
//
// All methods are safe for concurrent use.
type Channel[T any] struct {
	mu       sync.Mutex
	buf      []T
	capacity int // 0 = unbounded
	state    channelState
	fault    error

	// Broadcast signals: closed to wake all current waiters, then replaced.
	// Waiters grab the current reference under mu and re-check state after
	// the wakeup.
	readable chan struct{}
	writable chan struct{}
}

// NewChannel creates an unbounded channel.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{
		readable: make(chan struct{}),
		writable: make(chan struct{}),
	}
}

// NewBounded creates a channel that buffers at most capacity pending items.
// Capacity must be positive.
func NewBounded[T any](capacity int) (*Channel[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	c := NewChannel[T]()
	c.capacity = capacity
	return c, nil
}

// FromSlice returns an unbounded channel pre-filled with items and already
// completed. Useful for tests and for feeding consumers from static data.
func FromSlice[T any](items []T) *Channel[T] {
	c := NewChannel[T]()
	c.buf = append(c.buf, items...)
	c.state = channelCompleted
	return c
}

// Send appends v to the queue, blocking while a bounded channel is at
// capacity. It returns ErrChannelClosed if the channel is terminal, and
// ctx.Err() if ctx is cancelled before the item is accepted; a cancelled send
// never leaves a partial effect in the queue.
func (c *Channel[T]) Send(ctx context.Context, v T) error {
	for {
		c.mu.Lock()
		if c.state != channelOpen {
			c.mu.Unlock()
			return ErrChannelClosed
		}
		if c.capacity == 0 || len(c.buf) < c.capacity {
			c.buf = append(c.buf, v)
			c.wakeReaders()
			c.mu.Unlock()
			return nil
		}
		writable := c.writable
		c.mu.Unlock()

		select {
		case <-writable:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Receive removes and returns the oldest pending item. When the queue is
// empty it blocks until an item arrives or the channel becomes terminal.
// After a terminal channel drains, Receive returns io.EOF for a normal
// completion or the recorded fault for a failed one.
func (c *Channel[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	for {
		c.mu.Lock()
		if len(c.buf) > 0 {
			v := c.buf[0]
			c.buf = c.buf[1:]
			c.wakeWriters()
			c.mu.Unlock()
			return v, nil
		}
		if c.state != channelOpen {
			state, fault := c.state, c.fault
			c.mu.Unlock()
			if state == channelFaulted {
				return zero, fault
			}
			return zero, io.EOF
		}
		readable := c.readable
		c.mu.Unlock()

		select {
		case <-readable:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Drain receives until the channel is exhausted and returns everything
// collected. A normal completion yields a nil error; a fault is returned
// alongside the items received before it surfaced.
func (c *Channel[T]) Drain(ctx context.Context) ([]T, error) {
	var items []T
	for {
		v, err := c.Receive(ctx)
		if err != nil {
			if err == io.EOF {
				return items, nil
			}
			return items, err
		}
		items = append(items, v)
	}
}

// Complete marks the channel as normally finished. Pending items remain
// receivable. Calling Complete on an already terminal channel is a no-op.
func (c *Channel[T]) Complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != channelOpen {
		return
	}
	c.state = channelCompleted
	c.wakeReaders()
	c.wakeWriters()
}

// Fail marks the channel as finished with err. Pending items remain
// receivable; once they drain, every Receive returns err exactly as recorded.
// Calling Fail on an already terminal channel is a no-op and does not
// overwrite a previously recorded fault. A nil err completes normally.
func (c *Channel[T]) Fail(err error) {
	if err == nil {
		c.Complete()
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != channelOpen {
		return
	}
	c.state = channelFaulted
	c.fault = err
	c.wakeReaders()
	c.wakeWriters()
}

// Err returns the recorded fault, or nil if the channel has not faulted.
func (c *Channel[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fault
}

// Len returns the number of pending items.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Capacity returns the configured capacity, zero meaning unbounded.
func (c *Channel[T]) Capacity() int { return c.capacity }

// wakeReaders and wakeWriters must be called with mu held.
func (c *Channel[T]) wakeReaders() {
	close(c.readable)
	c.readable = make(chan struct{})
}

func (c *Channel[T]) wakeWriters() {
	close(c.writable)
	c.writable = make(chan struct{})
}
