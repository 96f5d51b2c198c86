package dogs

import "time"

// Dog owns an ordered-by-insertion set of reminders and a set of logs.
// A reminder or log belongs to exactly one dog.
type Dog struct {
	// ID is the dog identifier assigned by the remote store.
	ID string
	// Name is the dog's display name.
	Name string
	// Reminders are the dog's reminders in insertion order.
	Reminders []*Reminder
	// Logs are the dog's recorded care actions.
	Logs []*Log
}

// Reminder returns the reminder with the provided id, or nil.
func (d *Dog) Reminder(id string) *Reminder {
	for _, r := range d.Reminders {
		if r.ID == id {
			return r
		}
	}

	return nil
}

// SetReminder replaces the reminder with the same id, or appends it.
func (d *Dog) SetReminder(r *Reminder) {
	for i, existing := range d.Reminders {
		if existing.ID == r.ID {
			d.Reminders[i] = r

			return
		}
	}

	d.Reminders = append(d.Reminders, r)
}

// RemoveReminder deletes the reminder with the provided id.
// Reports whether a reminder was removed.
func (d *Dog) RemoveReminder(id string) bool {
	for i, r := range d.Reminders {
		if r.ID == id {
			d.Reminders = append(d.Reminders[:i], d.Reminders[i+1:]...)

			return true
		}
	}

	return false
}

// Log returns the log with the provided id, or nil.
func (d *Dog) Log(id string) *Log {
	for _, l := range d.Logs {
		if l.ID == id {
			return l
		}
	}

	return nil
}

// AddLog appends a log entry.
func (d *Dog) AddLog(l *Log) {
	d.Logs = append(d.Logs, l)
}

// RemoveLog deletes the log with the provided id.
// Reports whether a log was removed.
func (d *Dog) RemoveLog(id string) bool {
	for i, l := range d.Logs {
		if l.ID == id {
			d.Logs = append(d.Logs[:i], d.Logs[i+1:]...)

			return true
		}
	}

	return false
}

// LogNear returns the first log whose date falls within the symmetric
// tolerance window around the provided instant, or nil when none matches.
// This is a heuristic match used when no identifier was retained.
func (d *Dog) LogNear(at time.Time, tolerance time.Duration) *Log {
	for _, l := range d.Logs {
		delta := l.Date.Sub(at)
		if delta < 0 {
			delta = -delta
		}

		if delta <= tolerance {
			return l
		}
	}

	return nil
}

// Clone returns a deep copy of the dog, its reminders and its logs.
func (d *Dog) Clone() *Dog {
	if d == nil {
		return nil
	}

	cloned := &Dog{
		ID:   d.ID,
		Name: d.Name,
	}

	if d.Reminders != nil {
		cloned.Reminders = make([]*Reminder, 0, len(d.Reminders))
		for _, r := range d.Reminders {
			cloned.Reminders = append(cloned.Reminders, r.Clone())
		}
	}

	if d.Logs != nil {
		cloned.Logs = make([]*Log, 0, len(d.Logs))
		for _, l := range d.Logs {
			cloned.Logs = append(cloned.Logs, l.Clone())
		}
	}

	return cloned
}

// Manager is the top-level dog collection the scheduler walks to arm timers.
// The UI layer owns a single snapshot at a time and replaces it wholesale on
// login, refresh, pause/unpause and family sync.
type Manager struct {
	// Dogs is the owned dog collection in insertion order.
	Dogs []*Dog
}

// Dog returns the dog with the provided id, or nil.
func (m *Manager) Dog(id string) *Dog {
	for _, d := range m.Dogs {
		if d.ID == id {
			return d
		}
	}

	return nil
}

// AddDog appends a dog to the collection.
func (m *Manager) AddDog(d *Dog) {
	m.Dogs = append(m.Dogs, d)
}

// Clone returns a deep copy of the collection.
func (m *Manager) Clone() *Manager {
	if m == nil {
		return nil
	}

	cloned := new(Manager)
	for _, d := range m.Dogs {
		cloned.Dogs = append(cloned.Dogs, d.Clone())
	}

	return cloned
}
