package routines

import (
	"context"
	"sync"
)

// Limiter bounds how many routines may run a guarded section concurrently.
// A permit must be acquired before the section and released after it on every
// exit path. Implementations must be safe for concurrent use.
type Limiter interface {
	// Acquire blocks until a permit is available or ctx is cancelled.
	// A cancelled acquisition holds no permit.
	Acquire(ctx context.Context) error

	// TryAcquire acquires a permit without blocking, reporting whether it succeeded.
	TryAcquire() bool

	// Release returns a previously acquired permit.
	Release()
}

// limiter is the channel-backed Limiter used for pooled max-concurrency
// permits. Closing it unblocks pending Acquire calls with ErrLimiterClosed;
// the shared limiter cache closes evicted limiters.
type limiter struct {
	permits chan struct{}
	closed  chan struct{}
	once    sync.Once
}

// NewLimiter creates a Limiter allowing at most n concurrent permit holders.
// It returns ErrInvalidLimit if n is not positive.
func NewLimiter(n int) (Limiter, error) {
	return newLimiter(n)
}

func newLimiter(n int) (*limiter, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	return &limiter{
		permits: make(chan struct{}, n),
		closed:  make(chan struct{}),
	}, nil
}

func (l *limiter) Acquire(ctx context.Context) error {
	select {
	case <-l.closed:
		return ErrLimiterClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case l.permits <- struct{}{}:
		return nil
	case <-l.closed:
		return ErrLimiterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limiter) TryAcquire() bool {
	select {
	case <-l.closed:
		return false
	default:
	}

	select {
	case l.permits <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release panics if called without a matching Acquire.
func (l *limiter) Release() {
	select {
	case <-l.permits:
	default:
		panic(Namespace + ": Limiter.Release called without matching Acquire")
	}
}

// close marks the limiter unusable and unblocks pending Acquire calls.
// Permits already held remain valid; Release on them still succeeds.
func (l *limiter) close() {
	l.once.Do(func() { close(l.closed) })
}
