package routines_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/routines"
)

// Fan-out: spawn N no-op routines and wait, compared against a raw
// sync.WaitGroup and errgroup.

func BenchmarkFanOut_Native(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var wg sync.WaitGroup
				for j := 0; j < n; j++ {
					wg.Add(1)
					go func() { wg.Done() }()
				}
				wg.Wait()
			}
		})
	}
}

func BenchmarkFanOut_Errgroup(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var g errgroup.Group
				for j := 0; j < n; j++ {
					g.Go(func() error { return nil })
				}
				_ = g.Wait()
			}
		})
	}
}

func BenchmarkFanOut_Routines(b *testing.B) {
	ctx := context.Background()
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c := routines.NewCounter()
				for j := 0; j < n; j++ {
					_ = routines.Go(ctx, func(context.Context) error { return nil },
						routines.WithCounter(c))
				}
				_ = c.Wait(ctx)
			}
		})
	}
}

func BenchmarkChannel_SendReceive(b *testing.B) {
	ctx := context.Background()
	for _, capacity := range []int{0, 64} {
		name := "unbounded"
		if capacity > 0 {
			name = fmt.Sprintf("bounded=%d", capacity)
		}
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			var ch *routines.Channel[int]
			if capacity > 0 {
				ch, _ = routines.NewBounded[int](capacity)
			} else {
				ch = routines.NewChannel[int]()
			}
			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					if _, err := ch.Receive(ctx); err != nil {
						return
					}
				}
			}()
			for i := 0; i < b.N; i++ {
				_ = ch.Send(ctx, i)
			}
			ch.Complete()
			<-done
		})
	}
}

func BenchmarkLimiter_AcquireRelease(b *testing.B) {
	ctx := context.Background()
	lim, _ := routines.NewLimiter(8)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := lim.Acquire(ctx); err != nil {
				b.Fatal(err)
			}
			lim.Release()
		}
	})
}
