package alarm

import (
	"context"
	"errors"
	"time"

	"github.com/pawdue/pawdue/internal/domain/dogs"
	"github.com/pawdue/pawdue/internal/logger"
	"github.com/pawdue/pawdue/internal/presentation"
	"github.com/pawdue/pawdue/internal/runloop"
	"github.com/pawdue/pawdue/internal/store"
)

// Fallbacks for zero-valued Config fields.
const (
	defaultSnoozeLength       = 5 * time.Minute
	defaultReplayStagger      = 25 * time.Millisecond
	defaultUnskipLogTolerance = 5 * time.Second
)

// CollectionSink is notified after the coordinator mutates the collection.
// The owner typically persists nothing here (transitions are already remote)
// but rebuilds scheduler clocks and refreshes views.
type CollectionSink interface {
	// ReminderUpdated reports that the reminder was replaced or changed.
	ReminderUpdated(dogID string, r *dogs.Reminder)
	// ReminderRemoved reports that the reminder no longer exists.
	ReminderRemoved(dogID, reminderID string)
	// LogAdded reports a new log entry.
	LogAdded(dogID string, l *dogs.Log)
	// LogRemoved reports a deleted log entry.
	LogRemoved(dogID, logID string)
}

// Lifecycle answers whether the app is currently backgrounded. Fires that
// arrive while backgrounded are deferred until ReplayDeferredFires.
type Lifecycle interface {
	IsBackgrounded() bool
}

// ReviewNotifier is pinged after every successful terminal alarm response.
type ReviewNotifier interface {
	NoteCompletedAlarm()
}

// Config tunes coordinator timing. Zero values fall back to defaults.
type Config struct {
	// SnoozeLength is how far a snooze pushes the next fire.
	SnoozeLength time.Duration
	// ReplayStagger spaces out deferred fires on foregrounding.
	ReplayStagger time.Duration
	// UnskipLogTolerance is the window for matching a skip log by date.
	UnskipLogTolerance time.Duration
}

func (c Config) normalized() Config {
	if c.SnoozeLength <= 0 {
		c.SnoozeLength = defaultSnoozeLength
	}

	if c.ReplayStagger <= 0 {
		c.ReplayStagger = defaultReplayStagger
	}

	if c.UnskipLogTolerance <= 0 {
		c.UnskipLogTolerance = defaultUnskipLogTolerance
	}

	return c
}

// Deps are the coordinator's collaborators.
type Deps struct {
	// Loop is the run loop everything resumes on.
	Loop *runloop.Loop
	// Store is the authoritative remote store.
	Store store.Store
	// Manager is the local collection snapshot the coordinator reconciles.
	Manager *dogs.Manager
	// Queue presents dialogs and banners.
	Queue *presentation.Queue
	// Sink observes collection mutations.
	Sink CollectionSink
	// Lifecycle gates fire handling on foreground state.
	Lifecycle Lifecycle
	// Review, when non-nil, is pinged on completed alarms.
	Review ReviewNotifier
}

// Coordinator owns the alarm fire-to-response lifecycle.
// All exported methods must be called on the run loop.
type Coordinator struct {
	loop      *runloop.Loop
	ctx       context.Context //nolint:containedctx // Loop-bound component, context set once at construction.
	store     store.Store
	manager   *dogs.Manager
	queue     *presentation.Queue
	sink      CollectionSink
	lifecycle Lifecycle
	review    ReviewNotifier
	cfg       Config

	// sessions tracks in-flight alarm presentations by reminder id.
	sessions map[string]*Session
	// deferred are fires received while backgrounded, in arrival order.
	deferred []fireEvent

	// now is the clock source, swappable in tests.
	now func() time.Time
}

// New creates a coordinator.
func New(ctx context.Context, deps Deps, cfg Config) *Coordinator {
	return &Coordinator{
		loop:      deps.Loop,
		ctx:       logger.WithName(ctx, "alarm"),
		store:     deps.Store,
		manager:   deps.Manager,
		queue:     deps.Queue,
		sink:      deps.Sink,
		lifecycle: deps.Lifecycle,
		review:    deps.Review,
		cfg:       cfg.normalized(),
		sessions:  make(map[string]*Session),
		now:       time.Now,
	}
}

// SetManager swaps the collection snapshot after a wholesale replacement.
// In-flight fetches for reminders absent from the new snapshot resolve as
// no-ops.
func (c *Coordinator) SetManager(m *dogs.Manager) {
	c.manager = m
}

// Sessions returns the in-flight alarm sessions.
func (c *Coordinator) Sessions() map[string]*Session {
	return c.sessions
}

// HandleReminderFire begins the alarm lifecycle for a matured reminder.
// While backgrounded the fire is deferred instead; local alarms have no
// meaningful presentation surface there.
func (c *Coordinator) HandleReminderFire(dogID, reminderID string) {
	if c.lifecycle != nil && c.lifecycle.IsBackgrounded() {
		c.deferred = append(c.deferred, fireEvent{dogID: dogID, reminderID: reminderID})
		logger.DebugKV(c.ctx, "Fire deferred while backgrounded", "reminder_id", reminderID)

		return
	}

	c.begin(dogID, reminderID)
}

// HandleSkipExpired propagates a skip reversion the scheduler already
// applied. A purely local transition: no remote call and no log, the store
// learns about it with the next regular update.
func (c *Coordinator) HandleSkipExpired(dogID string, r *dogs.Reminder) {
	c.sink.ReminderUpdated(dogID, r)
}

// ReplayDeferredFires re-enters every deferred fire in arrival order, each
// staggered a beat apart so their dialogs enqueue in order without racing.
func (c *Coordinator) ReplayDeferredFires() {
	pending := c.deferred
	c.deferred = nil

	for i, ev := range pending {
		ev := ev

		c.loop.PostDelayed(time.Duration(i)*c.cfg.ReplayStagger, func() {
			c.HandleReminderFire(ev.dogID, ev.reminderID)
		})
	}
}

// begin claims the reminder and starts the revalidation fetch.
func (c *Coordinator) begin(dogID, reminderID string) {
	local := c.findReminder(dogID, reminderID)
	if local == nil {
		logger.DebugKV(c.ctx, "Fire for unknown reminder ignored", "reminder_id", reminderID)

		return
	}

	if local.PresentationHandled {
		logger.DebugKV(c.ctx, "Fire for claimed reminder ignored", "reminder_id", reminderID)

		return
	}

	// Claim before the async fetch so a duplicate fire cannot open a
	// second session for the same reminder.
	local.PresentationHandled = true

	asyncCall(c.loop, func() (*dogs.Reminder, error) {
		return c.store.FetchReminder(c.ctx, dogID, reminderID)
	}, func(fetched *dogs.Reminder, err error) {
		c.resolveFetch(dogID, reminderID, fetched, err)
	})
}

// resolveFetch reconciles the fetch outcome against the local collection.
func (c *Coordinator) resolveFetch(dogID, reminderID string, fetched *dogs.Reminder, err error) {
	local := c.findReminder(dogID, reminderID)
	if local == nil {
		// Removed while the fetch was in flight; the response is moot.
		return
	}

	if err != nil {
		local.PresentationHandled = false

		if errors.Is(err, store.ErrNoResponse) {
			logger.WarnKV(c.ctx, "Alarm revalidation got no response", "reminder_id", reminderID)

			return
		}

		logger.ErrorKV(c.ctx, "Alarm revalidation failed", "reminder_id", reminderID, "error", err)
		c.queue.EnqueueBanner(&presentation.Banner{
			Category: presentation.CategoryServerError,
			Text:     "Could not check reminder with the server.",
		})

		return
	}

	dog := c.manager.Dog(dogID)

	if fetched == nil {
		// Deleted on another device. Reconcile silently.
		dog.RemoveReminder(reminderID)
		c.sink.ReminderRemoved(dogID, reminderID)
		logger.InfoKV(c.ctx, "Fired reminder gone remotely, removed locally", "reminder_id", reminderID)

		return
	}

	execAt := fetched.ExecutionDate()
	due := execAt != nil && !execAt.After(c.now())

	if !due {
		// Rescheduled elsewhere. Adopt the fetched state and nothing more;
		// a broad collection refresh from this path is forbidden.
		fetched.PresentationHandled = false
		dog.SetReminder(fetched)
		c.sink.ReminderUpdated(dogID, fetched)
		logger.InfoKV(c.ctx, "Fired reminder no longer due, adopted remote state", "reminder_id", reminderID)

		return
	}

	fetched.PresentationHandled = true
	dog.SetReminder(fetched)
	c.sink.ReminderUpdated(dogID, fetched)

	session := &Session{
		DogID:      dogID,
		ReminderID: reminderID,
		Reminder:   fetched,
	}
	session.Dialog = c.buildDialog(dog.Name, session)
	c.sessions[reminderID] = session

	c.queue.EnqueueModal(session.Dialog)
}

// Skip marks the next occurrence of a recurring reminder as already handled,
// recording a log entry as if the action had been performed now.
func (c *Coordinator) Skip(dogID, reminderID string) error {
	local := c.findReminder(dogID, reminderID)
	if local == nil {
		return nil
	}

	advanced := local.Clone()
	advanced.PresentationHandled = false

	skipInstant := c.now()
	if err := advanced.ElectSkip(skipInstant); err != nil {
		return err
	}

	entry := &dogs.Log{
		DogID:  dogID,
		Action: local.Action,
		Date:   skipInstant,
		Note:   local.Action.CustomName,
	}

	asyncCall(c.loop, func() (string, error) {
		if err := c.store.UpdateReminder(c.ctx, dogID, advanced); err != nil {
			return "", err
		}

		return c.store.CreateLog(c.ctx, dogID, entry)
	}, func(logID string, err error) {
		if err != nil {
			c.failTransition("skip", err)

			return
		}

		c.adoptReminder(dogID, advanced)

		entry.ID = logID
		c.adoptLog(dogID, entry)
	})

	return nil
}

// Unskip reverts a pending skip and removes the skip log it created, matched
// heuristically by the recorded skip instant. A missing log is not an error:
// the user may have deleted it by hand.
func (c *Coordinator) Unskip(dogID, reminderID string) error {
	local := c.findReminder(dogID, reminderID)
	if local == nil {
		return nil
	}

	skippedAt := local.SkippedAt()

	advanced := local.Clone()
	advanced.PresentationHandled = false

	if err := advanced.ClearSkip(); err != nil {
		return err
	}

	c.goStore(func() error {
		return c.store.UpdateReminder(c.ctx, dogID, advanced)
	}, func(err error) {
		if err != nil {
			c.failTransition("unskip", err)

			return
		}

		c.adoptReminder(dogID, advanced)

		if skippedAt == nil {
			return
		}

		c.removeSkipLog(dogID, *skippedAt)
	})

	return nil
}

// removeSkipLog deletes the first log within the tolerance window around the
// skip instant, remotely then locally. Zero matches is a no-op.
func (c *Coordinator) removeSkipLog(dogID string, skippedAt time.Time) {
	dog := c.manager.Dog(dogID)
	if dog == nil {
		return
	}

	entry := dog.LogNear(skippedAt, c.cfg.UnskipLogTolerance)
	if entry == nil {
		logger.DebugKV(c.ctx, "No skip log within tolerance", "dog_id", dogID)

		return
	}

	logID := entry.ID

	c.goStore(func() error {
		return c.store.DeleteLog(c.ctx, dogID, logID)
	}, func(err error) {
		if err != nil {
			c.failTransition("skip log removal", err)

			return
		}

		if d := c.manager.Dog(dogID); d != nil && d.RemoveLog(logID) {
			c.sink.LogRemoved(dogID, logID)
		}
	})
}

// applyDismiss resolves an alarm with no record kept. One-time reminders are
// deleted outright; recurring ones advance to their next occurrence.
func (c *Coordinator) applyDismiss(s *Session) {
	local := c.endSession(s)
	if local == nil {
		return
	}

	if local.Kind == dogs.KindOneTime {
		c.goStore(func() error {
			return c.store.DeleteReminder(c.ctx, s.DogID, s.ReminderID)
		}, func(err error) {
			if err != nil {
				c.failDialogTransition(s, "dismiss", err)

				return
			}

			c.removeReminder(s.DogID, s.ReminderID)
			c.noteCompleted()
		})

		return
	}

	advanced := c.advance(local)

	c.goStore(func() error {
		return c.store.UpdateReminder(c.ctx, s.DogID, advanced)
	}, func(err error) {
		if err != nil {
			c.failDialogTransition(s, "dismiss", err)

			return
		}

		c.adoptReminder(s.DogID, advanced)
		c.noteCompleted()
	})
}

// applyLog resolves an alarm by recording the performed action, then
// advancing (recurring) or deleting (one-time) the reminder.
func (c *Coordinator) applyLog(s *Session, kind dogs.ActionKind) {
	local := c.endSession(s)
	if local == nil {
		return
	}

	entry := &dogs.Log{
		DogID:  s.DogID,
		Action: dogs.Action{Kind: kind, CustomName: local.Action.CustomName},
		Date:   c.now(),
		Note:   local.Action.CustomName,
	}

	if local.Kind == dogs.KindOneTime {
		asyncCall(c.loop, func() (string, error) {
			if err := c.store.DeleteReminder(c.ctx, s.DogID, s.ReminderID); err != nil {
				return "", err
			}

			return c.store.CreateLog(c.ctx, s.DogID, entry)
		}, func(logID string, err error) {
			if err != nil {
				c.failDialogTransition(s, "log", err)

				return
			}

			c.removeReminder(s.DogID, s.ReminderID)

			entry.ID = logID
			c.adoptLog(s.DogID, entry)
			c.noteCompleted()
		})

		return
	}

	advanced := c.advance(local)

	asyncCall(c.loop, func() (string, error) {
		if err := c.store.UpdateReminder(c.ctx, s.DogID, advanced); err != nil {
			return "", err
		}

		return c.store.CreateLog(c.ctx, s.DogID, entry)
	}, func(logID string, err error) {
		if err != nil {
			c.failDialogTransition(s, "log", err)

			return
		}

		c.adoptReminder(s.DogID, advanced)

		entry.ID = logID
		c.adoptLog(s.DogID, entry)
		c.noteCompleted()
	})
}

// applySnooze pushes the alarm out by the configured snooze length. Not a
// completion: no log and no review ping.
func (c *Coordinator) applySnooze(s *Session) {
	local := c.endSession(s)
	if local == nil {
		return
	}

	advanced := local.Clone()
	advanced.PresentationHandled = false
	advanced.BeginSnooze(c.now(), c.cfg.SnoozeLength)

	c.goStore(func() error {
		return c.store.UpdateReminder(c.ctx, s.DogID, advanced)
	}, func(err error) {
		if err != nil {
			c.failDialogTransition(s, "snooze", err)

			return
		}

		c.adoptReminder(s.DogID, advanced)
	})
}

// endSession closes the session and returns the live reminder, or nil when
// it vanished while the dialog was up.
func (c *Coordinator) endSession(s *Session) *dogs.Reminder {
	delete(c.sessions, s.ReminderID)

	return c.findReminder(s.DogID, s.ReminderID)
}

// advance clones the reminder past its current occurrence for a remote push.
func (c *Coordinator) advance(r *dogs.Reminder) *dogs.Reminder {
	advanced := r.Clone()
	advanced.PresentationHandled = false
	advanced.PrepareForNextAlarm(c.now())

	return advanced
}

// adoptReminder installs the reminder locally and notifies the sink.
func (c *Coordinator) adoptReminder(dogID string, r *dogs.Reminder) {
	dog := c.manager.Dog(dogID)
	if dog == nil {
		return
	}

	dog.SetReminder(r)
	c.sink.ReminderUpdated(dogID, r)
}

// removeReminder drops the reminder locally and notifies the sink.
func (c *Coordinator) removeReminder(dogID, reminderID string) {
	if dog := c.manager.Dog(dogID); dog != nil {
		dog.RemoveReminder(reminderID)
	}

	c.sink.ReminderRemoved(dogID, reminderID)
}

// adoptLog installs the log locally and notifies the sink.
func (c *Coordinator) adoptLog(dogID string, entry *dogs.Log) {
	dog := c.manager.Dog(dogID)
	if dog == nil {
		return
	}

	dog.AddLog(entry)
	c.sink.LogAdded(dogID, entry)
}

// noteCompleted pings the review gate after a terminal response.
func (c *Coordinator) noteCompleted() {
	if c.review != nil {
		c.review.NoteCompletedAlarm()
	}
}

// failDialogTransition reports a failed alarm response and releases the
// reminder so the next fire can claim it again.
func (c *Coordinator) failDialogTransition(s *Session, what string, err error) {
	if local := c.findReminder(s.DogID, s.ReminderID); local != nil {
		local.PresentationHandled = false
	}

	c.failTransition(what, err)
}

// failTransition logs a failed remote transition; rejections additionally
// surface a non-blocking banner. Local state is untouched either way.
func (c *Coordinator) failTransition(what string, err error) {
	if errors.Is(err, store.ErrNoResponse) {
		logger.WarnKV(c.ctx, "No response from server, transition dropped", "transition", what)

		return
	}

	logger.ErrorKV(c.ctx, "Server rejected transition", "transition", what, "error", err)
	c.queue.EnqueueBanner(&presentation.Banner{
		Category: presentation.CategoryServerError,
		Text:     "The server rejected the " + what + ".",
	})
}

// findReminder resolves (dogID, reminderID) in the local collection.
func (c *Coordinator) findReminder(dogID, reminderID string) *dogs.Reminder {
	dog := c.manager.Dog(dogID)
	if dog == nil {
		return nil
	}

	return dog.Reminder(reminderID)
}

// goStore runs a remote call off the loop and posts its completion back.
func (c *Coordinator) goStore(call func() error, done func(error)) {
	go func() {
		err := call()
		c.loop.Post(func() { done(err) })
	}()
}

// asyncCall runs a value-producing remote call off the loop and posts its
// completion back.
func asyncCall[T any](loop *runloop.Loop, call func() (T, error), done func(T, error)) {
	go func() {
		v, err := call()
		loop.Post(func() { done(v, err) })
	}()
}
