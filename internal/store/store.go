package store

import (
	"context"
	"errors"

	"github.com/pawdue/pawdue/internal/domain/dogs"
)

var (
	// ErrNoResponse indicates the store could not be reached at all
	// (network failure or timeout). Local state must stay untouched and
	// no automatic retry may be scheduled.
	ErrNoResponse = errors.New("remote store did not respond")
	// ErrServerRejection indicates the store answered with a non-success
	// status. Local state must stay untouched.
	ErrServerRejection = errors.New("remote store rejected the request")
)

// Store is the authoritative source of truth for dogs, reminders and logs.
// Local objects are client-side caches of what a Store returns.
//
// FetchReminder returns (nil, nil) when the reminder no longer exists
// remotely; that is a successful answer, not an error.
type Store interface {
	FetchDogs(ctx context.Context) (*dogs.Manager, error)
	FetchReminder(ctx context.Context, dogID, reminderID string) (*dogs.Reminder, error)
	UpdateReminder(ctx context.Context, dogID string, reminder *dogs.Reminder) error
	DeleteReminder(ctx context.Context, dogID, reminderID string) error
	CreateLog(ctx context.Context, dogID string, log *dogs.Log) (string, error)
	DeleteLog(ctx context.Context, dogID, logID string) error
}
