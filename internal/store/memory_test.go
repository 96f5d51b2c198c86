package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pawdue/pawdue/internal/domain/dogs"
)

// TestMemoryStoreIsolation ensures fetched objects never alias stored state.
func TestMemoryStoreIsolation(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.UpsertDog(&dogs.Dog{
		ID:   "d-1",
		Name: "Biscuit",
		Reminders: []*dogs.Reminder{
			{ID: "r-1", DogID: "d-1", Kind: dogs.KindCountdown, IsEnabled: true},
		},
	})

	ctx := context.Background()

	fetched, err := s.FetchReminder(ctx, "d-1", "r-1")
	require.NoError(t, err)
	require.NotNil(t, fetched)

	// Mutating the fetched copy must not leak into the store.
	fetched.IsEnabled = false

	again, err := s.FetchReminder(ctx, "d-1", "r-1")
	require.NoError(t, err)
	require.True(t, again.IsEnabled)

	// Absent reminders answer (nil, nil).
	missing, err := s.FetchReminder(ctx, "d-1", "gone")
	require.NoError(t, err)
	require.Nil(t, missing)
}

// TestMemoryStoreMutations covers update, delete and log round-trips.
func TestMemoryStoreMutations(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.UpsertDog(&dogs.Dog{ID: "d-1", Name: "Biscuit"})

	ctx := context.Background()

	r := &dogs.Reminder{
		ID:                  "r-1",
		DogID:               "d-1",
		Kind:                dogs.KindOneTime,
		IsEnabled:           true,
		OneTime:             dogs.OneTimeComponents{Date: time.Now()},
		PresentationHandled: true,
	}
	require.NoError(t, s.UpdateReminder(ctx, "d-1", r))

	// The local-only flag never survives the boundary.
	stored, err := s.FetchReminder(ctx, "d-1", "r-1")
	require.NoError(t, err)
	require.False(t, stored.PresentationHandled)

	id, err := s.CreateLog(ctx, "d-1", &dogs.Log{DogID: "d-1", Action: dogs.Action{Kind: dogs.ActionWalk}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.DeleteLog(ctx, "d-1", id))
	require.NoError(t, s.DeleteLog(ctx, "d-1", id)) // idempotent

	require.NoError(t, s.DeleteReminder(ctx, "d-1", "r-1"))

	gone, err := s.FetchReminder(ctx, "d-1", "r-1")
	require.NoError(t, err)
	require.Nil(t, gone)
}

// TestMemoryStoreFailureInjection verifies blanket failures for outage simulation.
func TestMemoryStoreFailureInjection(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.UpsertDog(&dogs.Dog{ID: "d-1"})
	s.SetFailure(ErrNoResponse)

	ctx := context.Background()

	_, err := s.FetchReminder(ctx, "d-1", "r-1")
	require.ErrorIs(t, err, ErrNoResponse)

	require.ErrorIs(t, s.UpdateReminder(ctx, "d-1", &dogs.Reminder{ID: "r-1"}), ErrNoResponse)

	s.SetFailure(nil)

	_, err = s.FetchDogs(ctx)
	require.NoError(t, err)
}
