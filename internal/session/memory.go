package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps the session in process memory. Used by tests and by
// short-lived tooling that has no business persisting credentials.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore builds an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Save(_ context.Context, profile UserProfile, token string) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyUser] = string(raw)
	s.values[KeyToken] = token
	s.values[KeyLoggedIn] = flagTrue
	return nil
}

func (s *MemoryStore) Profile(_ context.Context) (*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeProfile([]byte(s.values[KeyUser])), nil
}

func (s *MemoryStore) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[KeyToken], nil
}

func (s *MemoryStore) FlagSet(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[KeyLoggedIn] == flagTrue, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, KeyUser)
	delete(s.values, KeyToken)
	delete(s.values, KeyLoggedIn)
	return nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := decodeProfile([]byte(s.values[KeyUser]))
	if current == nil {
		return nil
	}
	raw, err := json.Marshal(current.Apply(patch))
	if err != nil {
		return err
	}
	s.values[KeyUser] = string(raw)
	return nil
}

// Seed writes raw values directly, bypassing Save's batching. Tests use it to
// stage inconsistent or corrupt states.
func (s *MemoryStore) Seed(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
