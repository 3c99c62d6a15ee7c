package channels

import (
	"context"
	"time"
)

// ThrottledSender serializes sends for channel types with strict provider
// rate limits. It is a bounded-concurrency worker of size one consuming a
// FIFO task queue, with a mandatory delay after every task. It throttles a
// shared external resource; it does not guard shared state.
type ThrottledSender struct {
	tasks chan throttleTask
	delay time.Duration
}

type throttleTask struct {
	run  func()
	done chan struct{}
}

func NewThrottledSender(delay time.Duration) *ThrottledSender {
	return &ThrottledSender{
		tasks: make(chan throttleTask, 64),
		delay: delay,
	}
}

// Start launches the single worker. Tasks submitted after ctx is cancelled
// fail; a task already picked up runs to completion.
func (t *ThrottledSender) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-t.tasks:
				task.run()
				close(task.done)
				time.Sleep(t.delay)
			}
		}
	}()
}

// Do enqueues fn and blocks until the worker has executed it, preserving
// submission order across callers. A full queue makes Do wait for a slot;
// ctx bounds both the wait for a slot and the wait for completion.
func (t *ThrottledSender) Do(ctx context.Context, fn func()) error {
	task := throttleTask{run: fn, done: make(chan struct{})}

	select {
	case t.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-task.done:
		return nil
	case <-ctx.Done():
		// The worker still owns the task; report the wait as cancelled.
		return ctx.Err()
	}
}
