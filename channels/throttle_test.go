package channels

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottledSenderRunsTasksInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := NewThrottledSender(1 * time.Millisecond)
	sender.Start(ctx)

	var mu sync.Mutex
	var order []int

	for i := 1; i <= 5; i++ {
		i := i
		err := sender.Do(ctx, func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestThrottledSenderEnforcesDelayBetweenTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delay := 30 * time.Millisecond
	sender := NewThrottledSender(delay)
	sender.Start(ctx)

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		err := sender.Do(ctx, func() {
			stamps = append(stamps, time.Now())
		})
		require.NoError(t, err)
	}

	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), delay)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), delay)
}

func TestThrottledSenderFullQueueWaitsUntilCancelled(t *testing.T) {
	// Worker never started: the buffer fills and the next submission waits
	// for a slot instead of failing, until its context is cancelled.
	sender := NewThrottledSender(time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < cap(sender.tasks); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sender.Do(ctx, func() {})
		}()
	}

	// Wait until every submitter has parked its task in the queue.
	require.Eventually(t, func() bool {
		return len(sender.tasks) == cap(sender.tasks)
	}, time.Second, time.Millisecond)

	submitCtx, cancelSubmit := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sender.Do(submitCtx, func() {}) }()

	select {
	case err := <-errCh:
		t.Fatalf("Do returned %v while the queue was full", err)
	case <-time.After(20 * time.Millisecond):
		// still waiting, as it should
	}

	cancelSubmit()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}

	// Drain so the parked goroutines finish.
	runCtx, cancel := context.WithCancel(context.Background())
	sender.Start(runCtx)
	wg.Wait()
	cancel()
}
