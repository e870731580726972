package memory

import (
	"context"
	"slices"
	"sync"

	audit "easel/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process memory for tests and dev runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByBoard returns events recorded for one board, in append order.
func (s *InMemoryStore) ListByBoard(_ context.Context, boardUID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []audit.Event{}
	for _, e := range s.events {
		if e.BoardUID == boardUID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every recorded event, in append order.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}
