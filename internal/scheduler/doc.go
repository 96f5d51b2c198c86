// Package scheduler arms local countdown clocks for reminders.
//
// Scheduler owns one fire clock per eligible reminder plus one revert clock
// per actively skipped recurring reminder. Clocks are plain timers that post
// back onto the run loop; the scheduler never fires a reminder itself and
// never re-arms after a fire. Rebuilding the clock set after any collection
// change is the delegate's job via Reinitialize.
package scheduler
