package runloop

import (
	"context"
	"sync"
	"time"
)

// Loop is a serialized task executor. Tasks run strictly in post order,
// one at a time, on the goroutine that called Run.
type Loop struct {
	// mu protects the pending task queue.
	mu sync.Mutex
	// tasks is the pending task queue in arrival order.
	tasks []func()
	// wake signals the runner that new tasks arrived.
	wake chan struct{}
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Post appends a task to the queue. Safe to call from any goroutine,
// including from a task already running on the loop.
func (l *Loop) Post(task func()) {
	if task == nil {
		return
	}

	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// PostDelayed schedules a task to be posted after the provided delay.
// The returned timer can be stopped to cancel delivery.
func (l *Loop) PostDelayed(delay time.Duration, task func()) *time.Timer {
	return time.AfterFunc(delay, func() {
		l.Post(task)
	})
}

// Run executes tasks until the context is canceled.
func (l *Loop) Run(ctx context.Context) {
	for {
		l.drain()

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Flush synchronously executes every pending task, including tasks enqueued
// by the tasks themselves. Intended for tests and teardown paths where no
// Run goroutine is active.
func (l *Loop) Flush() {
	l.drain()
}

// drain runs queued tasks until the queue is observed empty.
func (l *Loop) drain() {
	for {
		l.mu.Lock()

		if len(l.tasks) == 0 {
			l.mu.Unlock()

			return
		}

		task := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		task()
	}
}
