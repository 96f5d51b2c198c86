package alarm

import (
	"github.com/pawdue/pawdue/internal/domain/dogs"
	"github.com/pawdue/pawdue/internal/presentation"
)

// Session is one in-flight alarm presentation. It exists from the moment a
// re-fetched reminder is confirmed due until a response transition settles
// (or fails). At most one session per reminder can exist; the reminder's
// PresentationHandled flag enforces that across duplicate fires.
type Session struct {
	// DogID identifies the dog owning the fired reminder.
	DogID string
	// ReminderID identifies the fired reminder.
	ReminderID string
	// Reminder is the re-fetched snapshot the alarm presents.
	Reminder *dogs.Reminder
	// Dialog is the modal offered to the user.
	Dialog *presentation.Dialog
}

// fireEvent is a deferred reminder fire awaiting foreground replay.
type fireEvent struct {
	dogID      string
	reminderID string
}
