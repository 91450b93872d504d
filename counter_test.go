package routines

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounter_NewWaitReturnsImmediately(t *testing.T) {
	c := NewCounter()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestCounter_NegativeClampedToZero(t *testing.T) {
	c := NewCounter()

	err := c.Done()
	require.ErrorIs(t, err, ErrCounterNegative)
	require.Equal(t, 0, c.Count())

	// The counter stays usable after the misuse was reported.
	require.NoError(t, c.Add(2))
	require.NoError(t, c.Done())
	require.NoError(t, c.Done())
	require.Equal(t, 0, c.Count())
}

func TestCounter_NegativeFromPositiveReleasesWaiters(t *testing.T) {
	c := NewCounter()
	require.NoError(t, c.Add(1))

	err := c.Add(-2)
	require.ErrorIs(t, err, ErrCounterNegative)
	require.Equal(t, 0, c.Count())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestCounter_SignalRearmsOnNewBatch(t *testing.T) {
	c := NewCounter()

	require.NoError(t, c.Add(1))
	require.NoError(t, c.Done())

	// Second batch: a waiter registered now must wait for this batch, not
	// observe the stale completed signal.
	require.NoError(t, c.Add(1))

	waited := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		waited <- c.Wait(ctx)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while count was positive")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, c.Done())
	require.NoError(t, <-waited)
}

func TestCounter_WaitCancelled(t *testing.T) {
	c := NewCounter()
	require.NoError(t, c.Add(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.Wait(ctx), context.Canceled)

	require.NoError(t, c.Done())
}

func TestCounter_WaitObservesAllDecrements(t *testing.T) {
	const n = 50
	const rounds = 20

	for round := 0; round < rounds; round++ {
		c := NewCounter()
		var remaining atomic.Int32
		remaining.Store(n)

		require.NoError(t, c.Add(n))
		for i := 0; i < n; i++ {
			go func() {
				remaining.Add(-1)
				_ = c.Done()
			}()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		require.NoError(t, c.Wait(ctx))
		cancel()

		if got := remaining.Load(); got != 0 {
			t.Fatalf("round %d: Wait returned with %d decrements outstanding", round, got)
		}
	}
}

func TestCounter_ConcurrentAddDone(t *testing.T) {
	c := NewCounter()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, c.Add(1))
			require.NoError(t, c.Done())
		}()
	}
	wg.Wait()

	require.Equal(t, 0, c.Count())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}
