// Package dogs contains the core domain types for the reminder business logic.
//
// It defines Dog (the entity owning reminders and logs), Reminder (a recurring
// or one-shot alarm definition with per-kind component bags), Log (a recorded
// care action) and Manager (the top-level collection the scheduler walks).
// All types carry Clone helpers to avoid leaking internal references.
package dogs
