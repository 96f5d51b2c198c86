package scheduler

import (
	"context"
	"time"

	"github.com/pawdue/pawdue/internal/domain/dogs"
	"github.com/pawdue/pawdue/internal/logger"
	"github.com/pawdue/pawdue/internal/runloop"
)

// Delegate receives scheduler events on the run loop.
type Delegate interface {
	// HandleReminderFire is invoked when a reminder's fire clock matures.
	// The reminder is identified by ids only; the delegate revalidates
	// against its collection and the remote store before acting.
	HandleReminderFire(dogID, reminderID string)
	// HandleSkipExpired is invoked after the scheduler has reverted an
	// expired skip on the reminder. The delegate persists the change and
	// rebuilds clocks.
	HandleSkipExpired(dogID string, reminder *dogs.Reminder)
}

// clock is a single armed timer. Identity matters: a fire is honored only if
// the scheduler still holds this exact clock for the reminder, which makes
// fires from invalidated generations harmless.
type clock struct {
	timer  *time.Timer
	fireAt time.Time
}

// Scheduler maintains the countdown clocks for a reminder collection.
// All methods must be called on the run loop.
type Scheduler struct {
	// loop is the run loop timers post back onto.
	loop *runloop.Loop
	// ctx carries the scoped logger.
	ctx context.Context //nolint:containedctx // Loop-bound component, context set once at construction.
	// delegate receives fire and skip-expiry events.
	delegate Delegate

	// fireClocks maps reminder id to its armed fire clock.
	fireClocks map[string]*clock
	// skipClocks maps reminder id to its armed skip-revert clock.
	skipClocks map[string]*clock

	// now is the clock source, swappable in tests.
	now func() time.Time
}

// New creates a scheduler with no armed clocks.
func New(ctx context.Context, loop *runloop.Loop, delegate Delegate) *Scheduler {
	return &Scheduler{
		loop:       loop,
		ctx:        logger.WithName(ctx, "scheduler"),
		delegate:   delegate,
		fireClocks: make(map[string]*clock),
		skipClocks: make(map[string]*clock),
		now:        time.Now,
	}
}

// Initialize arms clocks for every eligible reminder in the collection.
// Disabled reminders, reminders already claimed by an alarm session, and
// reminders without a computable execution date get no clock. A reminder
// whose execution date is already in the past fires immediately.
func (s *Scheduler) Initialize(manager *dogs.Manager) {
	for _, d := range manager.Dogs {
		for _, r := range d.Reminders {
			s.armReminder(d.ID, r)
		}
	}

	logger.DebugKV(s.ctx, "Clocks initialized",
		"fire_clocks", len(s.fireClocks),
		"skip_clocks", len(s.skipClocks))
}

// InvalidateAll stops and discards every armed clock. Idempotent; in-flight
// fires from stopped clocks are ignored by the identity check.
func (s *Scheduler) InvalidateAll() {
	for id, c := range s.fireClocks {
		c.timer.Stop()
		delete(s.fireClocks, id)
	}

	for id, c := range s.skipClocks {
		c.timer.Stop()
		delete(s.skipClocks, id)
	}
}

// Reinitialize rebuilds the full clock set from the collection. Call after
// any reminder mutation.
func (s *Scheduler) Reinitialize(manager *dogs.Manager) {
	s.InvalidateAll()
	s.Initialize(manager)
}

// armReminder arms the fire clock and, for an active skip, the revert clock.
func (s *Scheduler) armReminder(dogID string, r *dogs.Reminder) {
	if !r.IsEnabled || r.PresentationHandled {
		return
	}

	if r.IsSkipping() {
		if revertAt := r.SkipRevertDate(); revertAt != nil {
			s.armSkipClock(dogID, r, *revertAt)
		}
	}

	execAt := r.ExecutionDate()
	if execAt == nil {
		return
	}

	s.armFireClock(dogID, r.ID, *execAt)
}

// armFireClock schedules a fire event for the reminder at the given instant.
func (s *Scheduler) armFireClock(dogID, reminderID string, fireAt time.Time) {
	c := &clock{fireAt: fireAt}
	s.fireClocks[reminderID] = c

	c.timer = s.loop.PostDelayed(s.delayUntil(fireAt), func() {
		if s.fireClocks[reminderID] != c {
			return
		}

		delete(s.fireClocks, reminderID)

		logger.DebugKV(s.ctx, "Reminder clock fired", "dog_id", dogID, "reminder_id", reminderID)
		s.delegate.HandleReminderFire(dogID, reminderID)
	})
}

// armSkipClock schedules the skip reversion for the reminder.
func (s *Scheduler) armSkipClock(dogID string, r *dogs.Reminder, revertAt time.Time) {
	c := &clock{fireAt: revertAt}
	s.skipClocks[r.ID] = c

	c.timer = s.loop.PostDelayed(s.delayUntil(revertAt), func() {
		if s.skipClocks[r.ID] != c {
			return
		}

		delete(s.skipClocks, r.ID)

		r.ExpireSkip(s.now())

		logger.DebugKV(s.ctx, "Skip expired", "dog_id", dogID, "reminder_id", r.ID)
		s.delegate.HandleSkipExpired(dogID, r)
	})
}

// delayUntil clamps past instants to an immediate fire.
func (s *Scheduler) delayUntil(at time.Time) time.Duration {
	delay := at.Sub(s.now())
	if delay < 0 {
		return 0
	}

	return delay
}
