package dogs

import "time"

// Log records a care action that happened at a point in time.
// Logs are created only as a side effect of an alarm response or a manual
// user action; they never mutate a Reminder.
type Log struct {
	// ID is the log identifier assigned by the remote store.
	ID string
	// DogID is the identifier of the owning dog.
	DogID string
	// Action is what was done, including the custom name for custom actions.
	Action Action
	// Date is when the action happened.
	Date time.Time
	// Note is optional free text attached to the entry.
	Note string
}

// Clone returns a copy of the log.
func (l *Log) Clone() *Log {
	if l == nil {
		return nil
	}

	cloned := *l

	return &cloned
}
