package store

import (
	"sync"

	"dealcoach/pkg/flow"
)

// MemoryStore keeps snapshots and entitlements in process memory. It backs
// tests and the single-user CLI, where a database would be ceremony.
type MemoryStore struct {
	mu           sync.Mutex
	sessions     map[string]flow.Snapshot
	entitlements map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:     make(map[string]flow.Snapshot),
		entitlements: make(map[string]bool),
	}
}

func (m *MemoryStore) SaveSession(snap flow.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[snap.ID] = snap
	return nil
}

func (m *MemoryStore) LoadSession(id string) (flow.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.sessions[id]
	if !ok {
		return flow.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (m *MemoryStore) DeleteSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) HasInPersonPack(userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entitlements[userID], nil
}

func (m *MemoryStore) SetInPersonPack(userID string, entitled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entitlements[userID] = entitled
	return nil
}
