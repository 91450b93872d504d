package routines

import (
	"context"
	"errors"
	"sync"
)

// RunAll launches every fn through the standard launch path, waits for all of
// them to finish, and returns the aggregated error (errors.Join) or nil when
// all succeed. Options like WithMaxConcurrency, WithName, and WithMetadata
// are honored for each launch.
//
// RunAll tracks completion with its own internal Counter; a WithCounter
// option is replaced. Failures are still routed to the configured handler (or
// the process default) in addition to being collected into the return value.
// If ctx is cancelled while waiting, RunAll returns ctx.Err(); already
// launched routines keep running to completion in the background.
func RunAll(ctx context.Context, fns []func(context.Context) error, opts ...Option) error {
	if len(fns) == 0 {
		return nil
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return err
	}

	counter := NewCounter()
	cfg.counter = counter

	var mu sync.Mutex
	errs := make([]error, 0, len(fns))
	next := cfg.handler
	cfg.handler = func(hctx context.Context, f Failure) {
		mu.Lock()
		errs = append(errs, f.Err)
		mu.Unlock()
		if next != nil {
			next(hctx, f)
		}
	}

	for _, fn := range fns {
		launch(ctx, &cfg, fn, nil)
	}

	if err := counter.Wait(ctx); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}
