package store

import (
	"context"
	"sync"

	"mysafepocket/internal/pocket/models"
)

// InMemoryStore keeps pocket records as encoded JSON in process memory.
// It is safe for concurrent access but does not persist across process restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte
}

// NewInMemoryStore constructs an empty in-memory pocket store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]map[string][]byte)}
}

func (s *InMemoryStore) get(pocketID, record string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.records[pocketID][record]
	return data, ok
}

func (s *InMemoryStore) put(pocketID, record string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[pocketID] == nil {
		s.records[pocketID] = make(map[string][]byte)
	}
	s.records[pocketID][record] = data
}

// LoadIdentity returns the pocket identity or ErrNotFound.
func (s *InMemoryStore) LoadIdentity(_ context.Context, pocketID string) (models.Identity, error) {
	data, ok := s.get(pocketID, IdentityRecord)
	if !ok {
		return models.Identity{}, ErrNotFound
	}
	return decodeIdentity(data)
}

func (s *InMemoryStore) SaveIdentity(_ context.Context, pocketID string, identity models.Identity) error {
	data, err := encodeIdentity(identity)
	if err != nil {
		return err
	}
	s.put(pocketID, IdentityRecord, data)
	return nil
}

// LoadCredentials returns the stored credentials, or an empty slice when none were saved.
func (s *InMemoryStore) LoadCredentials(_ context.Context, pocketID string) ([]models.Credential, error) {
	data, ok := s.get(pocketID, CredentialsRecord)
	if !ok {
		return []models.Credential{}, nil
	}
	return decodeCredentials(data)
}

func (s *InMemoryStore) SaveCredentials(_ context.Context, pocketID string, creds []models.Credential) error {
	data, err := encodeCredentials(creds)
	if err != nil {
		return err
	}
	s.put(pocketID, CredentialsRecord, data)
	return nil
}

// Delete removes both records of a pocket. Deleting an unknown pocket is not an error.
func (s *InMemoryStore) Delete(_ context.Context, pocketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, pocketID)
	return nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(context.Context) error {
	return nil
}
