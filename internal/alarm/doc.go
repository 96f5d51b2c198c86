// Package alarm turns matured reminder clocks into user-facing alarms.
//
// Coordinator is the sole owner of the fire-to-response lifecycle: it
// revalidates a fired reminder against the remote store, silently adopts
// whatever the store answers, and only then presents a modal. User responses
// (dismiss, log, snooze) and the manual skip/unskip entry points are applied
// as remote-first transitions: the local collection mutates only after the
// last remote step succeeded, so a half-applied transition cannot exist
// locally. Collection changes are announced through an injected sink rather
// than global notifications.
package alarm
