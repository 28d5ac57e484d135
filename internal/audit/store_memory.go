package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events per pocket for tests and local runs.
// Verification events carry no pocket and are listed under the empty pocket ID.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.PocketID] = append(s.events[event.PocketID], event)
	return nil
}

func (s *InMemoryStore) ListByPocket(_ context.Context, pocketID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[pocketID]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]Event)
}
