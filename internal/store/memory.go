package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pawdue/pawdue/internal/domain/dogs"
)

// MemoryStore is an in-memory Store used by tests and the demo seed path.
// Everything crossing its boundary is deep-cloned so callers never share
// state with the "remote" side, mirroring a real transport.
type MemoryStore struct {
	// mu protects the collection and the injected failure.
	mu sync.Mutex
	// manager holds the authoritative collection.
	manager *dogs.Manager
	// failure, when set, is returned by every operation.
	failure error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		manager: new(dogs.Manager),
	}
}

// SetFailure makes every subsequent operation fail with the provided error
// until cleared with a nil value.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failure = err
}

// UpsertDog stores a deep copy of the dog, replacing any existing one.
func (s *MemoryStore) UpsertDog(d *dogs.Dog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := d.Clone()
	for i, existing := range s.manager.Dogs {
		if existing.ID == cloned.ID {
			s.manager.Dogs[i] = cloned

			return
		}
	}

	s.manager.AddDog(cloned)
}

// FetchDogs returns a deep copy of the whole collection.
func (s *MemoryStore) FetchDogs(_ context.Context) (*dogs.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return nil, s.failure
	}

	return s.manager.Clone(), nil
}

// FetchReminder returns a deep copy of the reminder, or (nil, nil) when the
// dog or reminder is absent.
func (s *MemoryStore) FetchReminder(_ context.Context, dogID, reminderID string) (*dogs.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return nil, s.failure
	}

	d := s.manager.Dog(dogID)
	if d == nil {
		return nil, nil
	}

	return d.Reminder(reminderID).Clone(), nil
}

// UpdateReminder upserts a deep copy of the reminder.
// The local-only presentation flag is stripped, as a real server would never
// see it.
func (s *MemoryStore) UpdateReminder(_ context.Context, dogID string, reminder *dogs.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return s.failure
	}

	d := s.manager.Dog(dogID)
	if d == nil {
		return ErrServerRejection
	}

	cloned := reminder.Clone()
	cloned.PresentationHandled = false
	d.SetReminder(cloned)

	return nil
}

// DeleteReminder removes the reminder. Deleting an absent reminder succeeds.
func (s *MemoryStore) DeleteReminder(_ context.Context, dogID, reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return s.failure
	}

	if d := s.manager.Dog(dogID); d != nil {
		d.RemoveReminder(reminderID)
	}

	return nil
}

// CreateLog stores a deep copy of the log, assigning an id when empty,
// and returns the assigned id.
func (s *MemoryStore) CreateLog(_ context.Context, dogID string, log *dogs.Log) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return "", s.failure
	}

	d := s.manager.Dog(dogID)
	if d == nil {
		return "", ErrServerRejection
	}

	cloned := log.Clone()
	if cloned.ID == "" {
		cloned.ID = uuid.NewString()
	}

	d.AddLog(cloned)

	return cloned.ID, nil
}

// DeleteLog removes the log. Deleting an absent log succeeds.
func (s *MemoryStore) DeleteLog(_ context.Context, dogID, logID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return s.failure
	}

	if d := s.manager.Dog(dogID); d != nil {
		d.RemoveLog(logID)
	}

	return nil
}
