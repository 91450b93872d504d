package routines

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Go launches fn on a new goroutine and returns immediately. The returned
// error is non-nil only for invalid options; errors from fn itself never
// reach the caller — they are captured and routed to the configured Handler
// (or the process default).
//
// Guarantees per launch:
//   - A Counter supplied via WithCounter is incremented before the routine is
//     scheduled and decremented exactly once when it exits, on every path.
//   - A permit resolved from WithLimiter or WithMaxConcurrency is held before
//     fn starts and released on every exit path.
//   - A panic inside fn is recovered and delivered as an error wrapping
//     ErrRoutinePanicked.
//   - Exactly one Failure is delivered to exactly one handler invocation per
//     failed routine.
func Go(ctx context.Context, fn func(context.Context) error, opts ...Option) error {
	cfg, err := applyOptions(opts)
	if err != nil {
		return err
	}
	launch(ctx, &cfg, fn, nil)
	return nil
}

// GoChannel launches fn as a producer for ch. On failure the channel is
// faulted with the routine's error in addition to handler routing; both side
// effects happen. GoChannel never completes ch on success: multiple producers
// may share one channel, so normal completion stays with the caller
// (typically after a Counter wait). Use Produce for the single-producer
// convenience that completes on exit.
func GoChannel[T any](ctx context.Context, ch *Channel[T], fn func(context.Context, *Channel[T]) error, opts ...Option) error {
	cfg, err := applyOptions(opts)
	if err != nil {
		return err
	}
	launch(ctx, &cfg, func(c context.Context) error { return fn(c, ch) }, ch.Fail)
	return nil
}

// Produce creates an unbounded channel, launches fn as its only producer, and
// returns the channel for consumption. The channel is completed when fn
// returns nil and faulted with fn's error otherwise, so consumers draining it
// always observe a terminal state once the producer exits.
func Produce[T any](ctx context.Context, fn func(context.Context, *Channel[T]) error, opts ...Option) (*Channel[T], error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	ch := NewChannel[T]()
	launch(ctx, &cfg, func(c context.Context) error {
		err := fn(c, ch)
		if err == nil {
			ch.Complete()
		}
		return err
	}, ch.Fail)
	return ch, nil
}

// launch is the single scheduling path shared by Go, GoChannel, Produce, and
// RunAll. fail, when non-nil, receives the routine's error before handler
// routing (used to fault an associated channel).
func launch(ctx context.Context, cfg *config, fn func(context.Context) error, fail func(error)) {
	// Register intent before scheduling so a Wait started right after Go
	// returns cannot observe zero between scheduling and execution.
	if cfg.counter != nil {
		_ = cfg.counter.Add(1)
	}
	id := newRoutineID()

	go func() {
		defer func() {
			if cfg.counter != nil {
				_ = cfg.counter.Done()
			}
		}()

		ins := cfg.instruments()
		ins.launched.Add(1)
		ins.active.Add(1)
		start := time.Now()
		defer func() {
			ins.active.Add(-1)
			ins.duration.Record(time.Since(start).Seconds())
		}()

		if lim := cfg.resolveLimiter(); lim != nil {
			if err := lim.Acquire(ctx); err != nil {
				// No permit held, fn never ran. The launch call already
				// returned, so the cancellation still goes through the
				// failure path.
				deliver(ctx, err, id, cfg, fail, ins)
				return
			}
			defer lim.Release()
		}

		if err := runProtected(ctx, fn); err != nil {
			deliver(ctx, err, id, cfg, fail, ins)
		}
	}()
}

// deliver applies both failure side effects: channel fault (when associated)
// and handler routing. They are independent consequences of the same error.
func deliver(ctx context.Context, err error, id string, cfg *config, fail func(error), ins instruments) {
	ins.failures.Add(1)
	if fail != nil {
		fail(err)
	}
	route(ctx, err, id, cfg)
}

// runProtected invokes fn, converting a panic into an error wrapping
// ErrRoutinePanicked.
func runProtected(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRoutinePanicked, r)
		}
	}()
	return fn(ctx)
}

// newRoutineID returns a short random identifier for failure correlation.
func newRoutineID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}
