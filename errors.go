package routines

import "errors"

const Namespace = "routines"

var (
	// ErrCounterNegative is returned when a Counter is decremented below zero.
	// The counter is clamped back to zero; the error reaches the misbehaving caller.
	ErrCounterNegative = errors.New(Namespace + ": counter decremented below zero")

	// ErrInvalidLimit is returned when a non-positive max-concurrency value is configured.
	ErrInvalidLimit = errors.New(Namespace + ": max concurrency must be positive")

	// ErrChannelClosed is returned on writes to a completed or faulted channel.
	ErrChannelClosed = errors.New(Namespace + ": channel is closed")

	// ErrLimiterClosed is returned by Acquire on a closed limiter.
	ErrLimiterClosed = errors.New(Namespace + ": limiter is closed")

	// ErrRoutinePanicked wraps the recovered panic value of a routine function.
	ErrRoutinePanicked = errors.New(Namespace + ": routine panicked")

	// ErrInvalidCapacity is returned when a bounded channel is created with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New(Namespace + ": channel capacity must be positive")
)
