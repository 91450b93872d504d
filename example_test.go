package routines_test

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ygrebnov/routines"
	"github.com/ygrebnov/routines/metrics"
)

// ExampleGo launches a routine and waits for it through a Counter.
func ExampleGo() {
	ctx := context.Background()
	c := routines.NewCounter()

	_ = routines.Go(ctx, func(context.Context) error {
		fmt.Println("working")
		return nil
	}, routines.WithCounter(c))

	_ = c.Wait(ctx)
	fmt.Println("done")

	// Output:
	// working
	// done
}

// ExampleProduce streams values from a single producer; the channel is
// completed automatically when the producer returns.
func ExampleProduce() {
	ctx := context.Background()

	ch, _ := routines.Produce(ctx, func(ctx context.Context, out *routines.Channel[int]) error {
		for i := 1; i <= 3; i++ {
			if err := out.Send(ctx, i); err != nil {
				return err
			}
		}
		return nil
	})

	items, _ := ch.Drain(ctx)
	fmt.Println(items)

	// Output:
	// [1 2 3]
}

// ExampleForEach fans work out over a slice with a shared concurrency cap.
func ExampleForEach() {
	ctx := context.Background()
	var sum atomic.Int64

	_ = routines.ForEach(ctx, []int{1, 2, 3, 4, 5}, func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	}, routines.WithMaxConcurrency(2))

	fmt.Println(sum.Load())

	// Output:
	// 15
}

// ExampleWithHandler routes a routine failure to a per-launch handler instead
// of the process default.
func ExampleWithHandler() {
	ctx := context.Background()
	c := routines.NewCounter()

	_ = routines.Go(ctx, func(context.Context) error {
		return fmt.Errorf("upstream unavailable")
	},
		routines.WithCounter(c),
		routines.WithName("sync-accounts"),
		routines.WithHandler(func(_ context.Context, f routines.Failure) {
			fmt.Printf("%s: %v\n", f.Name, f.Err)
		}),
	)

	_ = c.Wait(ctx)

	// Output:
	// sync-accounts: upstream unavailable
}

// ExampleWithMetrics shows how to record launch metrics. Here the built-in
// BasicProvider is used; in production you can pass the Prometheus adapter
// from the metrics/prometheus subpackage.
func ExampleWithMetrics() {
	ctx := context.Background()
	p := metrics.NewBasicProvider()
	c := routines.NewCounter()

	_ = routines.Go(ctx, func(context.Context) error { return nil },
		routines.WithCounter(c),
		routines.WithMetrics(p),
	)
	_ = c.Wait(ctx)

	// Inspect instruments if needed:
	_ = p.Counter("routines_launched_total")
	_ = p.Histogram("routines_duration_seconds")

	// Output:
}
