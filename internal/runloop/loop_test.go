package runloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFlushRunsTasksInOrder verifies FIFO execution, including tasks posted by tasks.
func TestFlushRunsTasksInOrder(t *testing.T) {
	t.Parallel()

	l := New()

	var order []int

	l.Post(func() {
		order = append(order, 1)
		l.Post(func() { order = append(order, 3) })
	})
	l.Post(func() { order = append(order, 2) })

	l.Flush()
	require.Equal(t, []int{1, 2, 3}, order)
}

// TestRunExecutesPostedTasks verifies cross-goroutine posting against a running loop.
func TestRunExecutesPostedTasks(t *testing.T) {
	t.Parallel()

	l := New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go l.Run(ctx)

	done := make(chan struct{})
	l.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

// TestPostDelayed verifies delayed delivery and cancellation.
func TestPostDelayed(t *testing.T) {
	t.Parallel()

	l := New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go l.Run(ctx)

	fired := make(chan struct{})
	l.PostDelayed(10*time.Millisecond, func() { close(fired) })

	canceled := l.PostDelayed(500*time.Millisecond, func() { t.Error("canceled task ran") })
	canceled.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("delayed task did not run")
	}

	// Give the canceled timer a chance to misfire before finishing.
	time.Sleep(30 * time.Millisecond)
}
