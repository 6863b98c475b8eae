package flow

import (
	"sync"

	"dealcoach/pkg/taxes"
	"dealcoach/pkg/utils"
)

// Manager owns the live sessions behind the server surface. Sessions share
// nothing with each other; the manager's lock only guards the registry map.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	rates    *taxes.Table
	logger   *utils.Logger
}

// NewManager builds an empty session registry.
func NewManager(rates *taxes.Table, logger *utils.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		rates:    rates,
		logger:   logger,
	}
}

// Create starts a new session and registers it.
func (m *Manager) Create() *Session {
	s := NewSession(m.rates, m.logger)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Restore rebuilds a persisted session and registers it.
func (m *Manager) Restore(snap Snapshot) *Session {
	s := Restore(snap, m.rates, m.logger)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Remove drops a session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
