// Package routines provides a lightweight way to launch background units of
// work with automatic failure capture, optional grouped completion tracking,
// optional concurrency throttling, and optional result streaming through a
// typed channel. It schedules everything on the Go runtime; no worker pool or
// scheduler of its own is created.
//
// Launching
//   - Go(ctx, fn, opts...): fire-and-forget launch. Returns immediately;
//     errors and panics from fn are routed to a Handler, never to the caller.
//   - GoChannel(ctx, ch, fn, opts...): launch a producer for an existing
//     Channel; a failure faults the channel in addition to handler routing.
//   - Produce(ctx, fn, opts...): create a channel with a single producer that
//     completes it on success and faults it on failure.
//   - RunAll / ForEach: batch helpers that wait for completion and aggregate
//     errors with errors.Join.
//
// Coordination
//   - Counter: a wait-until-zero completion counter with a re-arming latch.
//   - Channel: a typed, closable FIFO queue with completion and fault states
//     and cooperative backpressure when bounded.
//   - Limiter: a counting-semaphore permit source. WithMaxConcurrency(n)
//     resolves a limiter shared process-wide by every launch using the same
//     n, through a fixed-capacity LRU pool.
//
// Failure handling
// A routine failure is delivered exactly once to exactly one Handler: the
// per-launch WithHandler override if present, otherwise the process-wide
// default. The default is a no-op in release builds and logs through zap
// under the `debug` build tag; applications opt into observability with
// SetDefaultHandler. A handler that panics is silently discarded so failure
// handling can never crash the launch machinery. Without a configured
// handler, failures of routines not attached to a channel are lost by
// design: the library favors never crashing the process from background work
// over never losing an error.
package routines
