package routines

import (
	"context"
	"sync/atomic"
	"time"
)

// Failure describes one captured routine failure. It is constructed once per
// failure and handed to exactly one handler invocation; the library does not
// retain it afterwards.
type Failure struct {
	// Err is the error returned by the routine function, or the wrapped
	// panic value when the routine panicked.
	Err error

	// RoutineID is a short identifier generated at launch, unique enough to
	// correlate log lines of one routine.
	RoutineID string

	// Name is the operation name supplied via WithName, if any.
	Name string

	// Time is the wall-clock moment the failure was captured.
	Time time.Time

	// Metadata is the metadata supplied via WithMetadata, snapshotted at
	// launch. Never nil.
	Metadata map[string]string
}

// Handler receives routine failures. Handlers run on the failed routine's
// goroutine; a panicking handler is swallowed so failure handling can never
// take the launch machinery down with it.
type Handler func(ctx context.Context, f Failure)

// DiscardHandler drops failures without side effects.
var DiscardHandler Handler = func(context.Context, Failure) {}

// defaultHandler is process-wide mutable state: initialized at startup (a
// zap logger under the debug build tag, a no-op otherwise) and replaceable
// via SetDefaultHandler. Reads are atomic; the last handler stored before a
// given failure wins.
var defaultHandler atomic.Value

func init() {
	defaultHandler.Store(buildDefaultHandler())
}

// SetDefaultHandler replaces the process-wide default failure handler used by
// launches without a per-call WithHandler. A nil h restores DiscardHandler.
func SetDefaultHandler(h Handler) {
	if h == nil {
		h = DiscardHandler
	}
	defaultHandler.Store(h)
}

// route delivers err to the per-launch handler, or the process default when
// none is configured. Handler panics are discarded unconditionally.
func route(ctx context.Context, err error, routineID string, cfg *config) {
	h := cfg.handler
	if h == nil {
		h = defaultHandler.Load().(Handler)
	}

	meta := cfg.metadata
	if meta == nil {
		meta = map[string]string{}
	}
	f := Failure{
		Err:       err,
		RoutineID: routineID,
		Name:      cfg.name,
		Time:      time.Now(),
		Metadata:  meta,
	}

	defer func() {
		_ = recover() // handler failures are invisible
	}()
	h(ctx, f)
}
