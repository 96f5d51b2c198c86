package dogs

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"
)

// Kind is the current scheduling mode of a reminder.
// Exactly one kind's component bag is authoritative at a time.
type Kind string

// Reminder kinds.
const (
	KindCountdown Kind = "countdown"
	KindSnooze    Kind = "snooze"
	KindWeekly    Kind = "weekly"
	KindMonthly   Kind = "monthly"
	KindOneTime   Kind = "oneTime"
)

// CountdownComponents drive interval-based reminders.
type CountdownComponents struct {
	// Interval is the full countdown length.
	Interval time.Duration
	// IntervalElapsed is how much of the interval was already consumed
	// before the current execution basis.
	IntervalElapsed time.Duration
}

// SnoozeComponents drive a temporarily snoozed reminder.
type SnoozeComponents struct {
	// Interval is the snooze length.
	Interval time.Duration
	// IntervalElapsed is how much of the snooze was already consumed.
	IntervalElapsed time.Duration
	// PreviousKind is the kind the reminder reverts to once the snooze
	// alarm receives a terminal response.
	PreviousKind Kind
}

// WeeklyComponents drive weekday-of-week reminders.
type WeeklyComponents struct {
	// Weekdays is the set of weekdays the reminder fires on.
	Weekdays []time.Weekday
	// Hour and Minute are the local fire time.
	Hour   int
	Minute int
	// IsSkipping marks a single-occurrence skip election.
	IsSkipping bool
	// SkippedAt is when the skip was elected.
	SkippedAt *time.Time
}

// MonthlyComponents drive day-of-month reminders.
type MonthlyComponents struct {
	// Day is the day of the month the reminder fires on.
	Day int
	// Hour and Minute are the local fire time.
	Hour   int
	Minute int
	// IsSkipping marks a single-occurrence skip election.
	IsSkipping bool
	// SkippedAt is when the skip was elected.
	SkippedAt *time.Time
}

// OneTimeComponents drive single-shot reminders.
type OneTimeComponents struct {
	// Date is the fixed fire instant.
	Date time.Time
}

// Reminder is a recurring or one-shot alarm definition owned by a dog.
type Reminder struct {
	// ID is the reminder identifier assigned by the remote store.
	ID string
	// DogID is the identifier of the owning dog.
	DogID string
	// Action is what the reminder asks for when it fires.
	Action Action
	// Kind selects which component bag is authoritative.
	Kind Kind
	// IsEnabled gates scheduling entirely.
	IsEnabled bool
	// ExecutionBasis is the reference instant recurrence is computed from.
	ExecutionBasis time.Time

	// Countdown, Snooze, Weekly, Monthly and OneTime are the per-kind
	// component bags. Only the bag matching Kind is authoritative.
	Countdown CountdownComponents
	Snooze    SnoozeComponents
	Weekly    WeeklyComponents
	Monthly   MonthlyComponents
	OneTime   OneTimeComponents

	// PresentationHandled is a local-only flag preventing a second concurrent
	// alarm session for the same reminder while a fetch is in flight.
	// It is never sent to the remote store.
	PresentationHandled bool
}

var (
	// ErrNotSkippable is returned when a skip is elected on a kind that
	// does not support skipping.
	ErrNotSkippable = errors.New("only weekly and monthly reminders can skip")
	// ErrNotSkipping is returned when a skip is cleared but none is elected.
	ErrNotSkipping = errors.New("reminder is not skipping")
)

// weekdayRules maps Go weekdays to recurrence-rule weekdays.
//
//nolint:gochecknoglobals // Static lookup table.
var weekdayRules = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// ExecutionDate derives the next fire instant, or nil when the reminder is
// disabled or its authoritative component bag is misconfigured.
func (r *Reminder) ExecutionDate() *time.Time {
	if !r.IsEnabled {
		return nil
	}

	switch r.Kind {
	case KindCountdown:
		return intervalDate(r.ExecutionBasis, r.Countdown.Interval, r.Countdown.IntervalElapsed)
	case KindSnooze:
		return intervalDate(r.ExecutionBasis, r.Snooze.Interval, r.Snooze.IntervalElapsed)
	case KindWeekly:
		next := r.nextWeekly(r.ExecutionBasis)
		if next == nil || !r.Weekly.IsSkipping {
			return next
		}

		// An elected skip jumps over the next occurrence.
		return r.nextWeekly(*next)
	case KindMonthly:
		next := r.nextMonthly(r.ExecutionBasis)
		if next == nil || !r.Monthly.IsSkipping {
			return next
		}

		return r.nextMonthly(*next)
	case KindOneTime:
		date := r.OneTime.Date
		if date.IsZero() {
			return nil
		}

		return &date
	}

	return nil
}

// SkipRevertDate is the instant a skipped weekly/monthly reminder reverts to
// normal scheduling: the occurrence the skip elected to jump over.
// Returns nil when no skip is pending.
func (r *Reminder) SkipRevertDate() *time.Time {
	if !r.IsEnabled || !r.IsSkipping() {
		return nil
	}

	switch r.Kind {
	case KindWeekly:
		return r.nextWeekly(r.ExecutionBasis)
	case KindMonthly:
		return r.nextMonthly(r.ExecutionBasis)
	default:
		return nil
	}
}

// PrepareForNextAlarm advances the reminder past the current occurrence.
// A snooze reminder first reverts to the kind it was snoozed from.
// One-time reminders are deleted by callers instead of being advanced.
func (r *Reminder) PrepareForNextAlarm(now time.Time) {
	switch r.Kind {
	case KindCountdown:
		r.Countdown.IntervalElapsed = 0
		r.ExecutionBasis = now
	case KindSnooze:
		r.Snooze.IntervalElapsed = 0

		if prev := r.Snooze.PreviousKind; prev != "" && prev != KindSnooze {
			r.Kind = prev
			r.Snooze.PreviousKind = ""
			r.PrepareForNextAlarm(now)

			return
		}

		r.ExecutionBasis = now
	case KindWeekly:
		r.Weekly.IsSkipping = false
		r.Weekly.SkippedAt = nil
		r.ExecutionBasis = now
	case KindMonthly:
		r.Monthly.IsSkipping = false
		r.Monthly.SkippedAt = nil
		r.ExecutionBasis = now
	case KindOneTime:
	}
}

// BeginSnooze advances the reminder and forces its kind into snooze with the
// provided length, remembering the kind to restore afterwards.
func (r *Reminder) BeginSnooze(now time.Time, length time.Duration) {
	r.PrepareForNextAlarm(now)

	if r.Kind != KindSnooze {
		r.Snooze.PreviousKind = r.Kind
	}

	r.Kind = KindSnooze
	r.Snooze.Interval = length
	r.Snooze.IntervalElapsed = 0
	r.ExecutionBasis = now
}

// CanSkip reports whether the reminder's kind supports single-occurrence skips.
func (r *Reminder) CanSkip() bool {
	return r.Kind == KindWeekly || r.Kind == KindMonthly
}

// IsSkipping reports whether a skip is elected on the authoritative bag.
func (r *Reminder) IsSkipping() bool {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.IsSkipping
	case KindMonthly:
		return r.Monthly.IsSkipping
	default:
		return false
	}
}

// SkippedAt returns the recorded skip instant, or nil when not skipping.
func (r *Reminder) SkippedAt() *time.Time {
	switch r.Kind {
	case KindWeekly:
		return r.Weekly.SkippedAt
	case KindMonthly:
		return r.Monthly.SkippedAt
	default:
		return nil
	}
}

// ElectSkip marks the next occurrence as skipped, recording the skip instant.
func (r *Reminder) ElectSkip(now time.Time) error {
	at := now

	switch r.Kind {
	case KindWeekly:
		r.Weekly.IsSkipping = true
		r.Weekly.SkippedAt = &at
	case KindMonthly:
		r.Monthly.IsSkipping = true
		r.Monthly.SkippedAt = &at
	default:
		return ErrNotSkippable
	}

	return nil
}

// ClearSkip removes a pending skip election without touching the execution
// basis, restoring the originally skipped occurrence.
func (r *Reminder) ClearSkip() error {
	if !r.IsSkipping() {
		return ErrNotSkipping
	}

	switch r.Kind {
	case KindWeekly:
		r.Weekly.IsSkipping = false
		r.Weekly.SkippedAt = nil
	case KindMonthly:
		r.Monthly.IsSkipping = false
		r.Monthly.SkippedAt = nil
	}

	return nil
}

// ExpireSkip clears a skip whose occurrence has passed and resets the basis
// to now so normal scheduling resumes. Pure local transition, no log.
func (r *Reminder) ExpireSkip(now time.Time) {
	switch r.Kind {
	case KindWeekly:
		r.Weekly.IsSkipping = false
		r.Weekly.SkippedAt = nil
	case KindMonthly:
		r.Monthly.IsSkipping = false
		r.Monthly.SkippedAt = nil
	default:
		return
	}

	r.ExecutionBasis = now
}

// Clone returns a deep copy of the reminder.
func (r *Reminder) Clone() *Reminder {
	if r == nil {
		return nil
	}

	cloned := *r

	if r.Weekly.Weekdays != nil {
		cloned.Weekly.Weekdays = append([]time.Weekday(nil), r.Weekly.Weekdays...)
	}

	if r.Weekly.SkippedAt != nil {
		at := *r.Weekly.SkippedAt
		cloned.Weekly.SkippedAt = &at
	}

	if r.Monthly.SkippedAt != nil {
		at := *r.Monthly.SkippedAt
		cloned.Monthly.SkippedAt = &at
	}

	return &cloned
}

// intervalDate computes basis + (interval - elapsed), nil for non-positive intervals.
func intervalDate(basis time.Time, interval, elapsed time.Duration) *time.Time {
	if interval <= 0 {
		return nil
	}

	date := basis.Add(interval - elapsed)

	return &date
}

// nextWeekly returns the first weekly occurrence strictly after the provided
// instant, or nil when the weekly bag is misconfigured.
func (r *Reminder) nextWeekly(after time.Time) *time.Time {
	if len(r.Weekly.Weekdays) == 0 || !validClock(r.Weekly.Hour, r.Weekly.Minute) {
		return nil
	}

	byWeekday := make([]rrule.Weekday, 0, len(r.Weekly.Weekdays))
	for _, day := range r.Weekly.Weekdays {
		byWeekday = append(byWeekday, weekdayRules[day])
	}

	//nolint:exhaustruct // Unset recurrence options default correctly.
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   r.ExecutionBasis,
		Byweekday: byWeekday,
		Byhour:    []int{r.Weekly.Hour},
		Byminute:  []int{r.Weekly.Minute},
		Bysecond:  []int{0},
	})
	if err != nil {
		return nil
	}

	return afterRule(rule, after)
}

// nextMonthly returns the first monthly occurrence strictly after the provided
// instant, or nil when the monthly bag is misconfigured.
func (r *Reminder) nextMonthly(after time.Time) *time.Time {
	if r.Monthly.Day < 1 || r.Monthly.Day > 31 || !validClock(r.Monthly.Hour, r.Monthly.Minute) {
		return nil
	}

	//nolint:exhaustruct // Unset recurrence options default correctly.
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.MONTHLY,
		Dtstart:    r.ExecutionBasis,
		Bymonthday: []int{r.Monthly.Day},
		Byhour:     []int{r.Monthly.Hour},
		Byminute:   []int{r.Monthly.Minute},
		Bysecond:   []int{0},
	})
	if err != nil {
		return nil
	}

	return afterRule(rule, after)
}

// afterRule evaluates the rule strictly after the instant.
func afterRule(rule *rrule.RRule, after time.Time) *time.Time {
	next := rule.After(after, false)
	if next.IsZero() {
		return nil
	}

	return &next
}

// validClock checks an hour/minute pair.
func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}
