package routines

import "context"

// ForEach applies fn to each item concurrently and delegates execution to
// RunAll, returning the aggregated error (errors.Join) or nil when all
// succeed. Options like WithMaxConcurrency and WithHandler are honored.
func ForEach[T any](ctx context.Context, items []T, fn func(context.Context, T) error, opts ...Option) error {
	if len(items) == 0 {
		return nil
	}
	fns := make([]func(context.Context) error, 0, len(items))
	for i := range items {
		item := items[i] // capture
		fns = append(fns, func(c context.Context) error { return fn(c, item) })
	}
	return RunAll(ctx, fns, opts...)
}
