// Package presentation serializes user-facing interruptions.
//
// Queue guarantees that at most one modal dialog is on screen at a time,
// strictly in enqueue order, regardless of how many alarms fire together or
// how long the host surface takes to become available. Banners are
// transient, non-blocking notices shown opportunistically. Duplicate
// suppression is keyed by a typed dialog category rather than view tags.
package presentation
