package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pawdue/pawdue/internal/domain/dogs"
	"github.com/pawdue/pawdue/internal/runloop"
)

// recordingDelegate captures scheduler events for assertions.
type recordingDelegate struct {
	fires       []string
	skipExpired []*dogs.Reminder
}

func (d *recordingDelegate) HandleReminderFire(_, reminderID string) {
	d.fires = append(d.fires, reminderID)
}

func (d *recordingDelegate) HandleSkipExpired(_ string, r *dogs.Reminder) {
	d.skipExpired = append(d.skipExpired, r)
}

// managerWithCountdown builds a single-dog collection holding one enabled
// countdown reminder whose basis is offset from now.
func managerWithCountdown(basis time.Time, interval time.Duration) *dogs.Manager {
	return &dogs.Manager{
		Dogs: []*dogs.Dog{{
			ID:   "d-1",
			Name: "Biscuit",
			Reminders: []*dogs.Reminder{{
				ID:             "r-1",
				DogID:          "d-1",
				Action:         dogs.Action{Kind: dogs.ActionWalk},
				Kind:           dogs.KindCountdown,
				IsEnabled:      true,
				ExecutionBasis: basis,
				Countdown:      dogs.CountdownComponents{Interval: interval},
			}},
		}},
	}
}

// settle waits out pending timers and runs what they posted.
func settle(loop *runloop.Loop, wait time.Duration) {
	time.Sleep(wait)
	loop.Flush()
}

// TestFireClockMatures verifies a clock fires once at maturity and is not re-armed.
func TestFireClockMatures(t *testing.T) {
	t.Parallel()

	loop := runloop.New()
	delegate := &recordingDelegate{}
	s := New(context.Background(), loop, delegate)

	s.Initialize(managerWithCountdown(time.Now(), 20*time.Millisecond))
	require.Len(t, s.fireClocks, 1)

	settle(loop, 60*time.Millisecond)
	require.Equal(t, []string{"r-1"}, delegate.fires)
	require.Empty(t, s.fireClocks)

	// No self re-arm: firing again is the delegate's call after it rebuilds.
	settle(loop, 60*time.Millisecond)
	require.Len(t, delegate.fires, 1)
}

// TestPastDueFiresImmediately verifies an overdue reminder gets a zero-delay clock.
func TestPastDueFiresImmediately(t *testing.T) {
	t.Parallel()

	loop := runloop.New()
	delegate := &recordingDelegate{}
	s := New(context.Background(), loop, delegate)

	s.Initialize(managerWithCountdown(time.Now().Add(-time.Hour), time.Minute))

	settle(loop, 30*time.Millisecond)
	require.Equal(t, []string{"r-1"}, delegate.fires)
}

// TestIneligibleRemindersGetNoClock verifies disabled, session-claimed and
// misconfigured reminders are left alone.
func TestIneligibleRemindersGetNoClock(t *testing.T) {
	t.Parallel()

	loop := runloop.New()
	s := New(context.Background(), loop, &recordingDelegate{})

	disabled := managerWithCountdown(time.Now(), time.Minute)
	disabled.Dogs[0].Reminders[0].IsEnabled = false

	claimed := managerWithCountdown(time.Now(), time.Minute)
	claimed.Dogs[0].Reminders[0].PresentationHandled = true

	misconfigured := managerWithCountdown(time.Now(), time.Minute)
	misconfigured.Dogs[0].Reminders[0].Countdown.Interval = 0

	for _, m := range []*dogs.Manager{disabled, claimed, misconfigured} {
		s.Initialize(m)
		require.Empty(t, s.fireClocks)
		require.Empty(t, s.skipClocks)
	}
}

// TestInvalidateAllDropsStaleFires verifies invalidation cancels pending
// clocks and silences fires already in flight.
func TestInvalidateAllDropsStaleFires(t *testing.T) {
	t.Parallel()

	loop := runloop.New()
	delegate := &recordingDelegate{}
	s := New(context.Background(), loop, delegate)

	// Canceled before maturity.
	s.Initialize(managerWithCountdown(time.Now(), 20*time.Millisecond))
	s.InvalidateAll()
	settle(loop, 60*time.Millisecond)
	require.Empty(t, delegate.fires)

	// Fired but not yet executed: the posted task must notice its clock
	// generation is gone.
	s.Initialize(managerWithCountdown(time.Now().Add(-time.Hour), time.Minute))
	time.Sleep(30 * time.Millisecond)
	s.InvalidateAll()
	loop.Flush()
	require.Empty(t, delegate.fires)

	// Invalidating an empty scheduler is a no-op.
	s.InvalidateAll()
}

// TestSkipRevertClock verifies an expired skip is reverted locally and
// reported to the delegate.
func TestSkipRevertClock(t *testing.T) {
	t.Parallel()

	loop := runloop.New()
	delegate := &recordingDelegate{}
	s := New(context.Background(), loop, delegate)

	// Basis a week back: the skipped occurrence is already in the past, so
	// the revert clock fires immediately.
	skippedAt := time.Now().Add(-6 * 24 * time.Hour)
	r := &dogs.Reminder{
		ID:             "r-1",
		DogID:          "d-1",
		Action:         dogs.Action{Kind: dogs.ActionFeed},
		Kind:           dogs.KindWeekly,
		IsEnabled:      true,
		ExecutionBasis: time.Now().Add(-7 * 24 * time.Hour),
		Weekly: dogs.WeeklyComponents{
			Weekdays:   []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday},
			Hour:       12,
			Minute:     0,
			IsSkipping: true,
			SkippedAt:  &skippedAt,
		},
	}
	m := &dogs.Manager{Dogs: []*dogs.Dog{{ID: "d-1", Name: "Biscuit", Reminders: []*dogs.Reminder{r}}}}

	s.Initialize(m)
	require.Len(t, s.skipClocks, 1)

	before := time.Now()

	settle(loop, 30*time.Millisecond)
	require.Len(t, delegate.skipExpired, 1)
	require.Same(t, r, delegate.skipExpired[0])
	require.False(t, r.IsSkipping())
	require.Nil(t, r.Weekly.SkippedAt)
	require.False(t, r.ExecutionBasis.Before(before))
	require.Empty(t, s.skipClocks)
}

// TestReinitializeReplacesClocks verifies rebuilding swaps generations so the
// newest schedule wins.
func TestReinitializeReplacesClocks(t *testing.T) {
	t.Parallel()

	loop := runloop.New()
	delegate := &recordingDelegate{}
	s := New(context.Background(), loop, delegate)

	s.Initialize(managerWithCountdown(time.Now(), time.Hour))
	require.Len(t, s.fireClocks, 1)

	// Rebuild with a near-term schedule; only the new clock may fire.
	s.Reinitialize(managerWithCountdown(time.Now(), 20*time.Millisecond))
	require.Len(t, s.fireClocks, 1)

	settle(loop, 60*time.Millisecond)
	require.Equal(t, []string{"r-1"}, delegate.fires)
}
