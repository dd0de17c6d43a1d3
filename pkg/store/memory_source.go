package store

import (
	"sync"
	"time"

	"screensync/pkg/domain"
)

// MemorySource is an in-process Source used by tests and local
// development.
type MemorySource struct {
	mu       sync.RWMutex
	users    []domain.SourceUser
	sessions []domain.SourceSession
	scans    []domain.SourceScan
}

// NewMemorySource initializes an empty in-memory operational store.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// AddUser appends a source user.
func (m *MemorySource) AddUser(u domain.SourceUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

// AddSession appends a source session.
func (m *MemorySource) AddSession(s domain.SourceSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, s)
}

// AddScan appends a source scan.
func (m *MemorySource) AddScan(s domain.SourceScan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, s)
}

// EndSession sets an end time on a stored session.
func (m *MemorySource) EndSession(sessionID string, end time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == sessionID {
			m.sessions[i].EndTime = &end
			return
		}
	}
}

func (m *MemorySource) ListUsers() ([]domain.SourceUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SourceUser, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *MemorySource) ListSessions() ([]domain.SourceSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SourceSession, len(m.sessions))
	copy(out, m.sessions)
	return out, nil
}

func (m *MemorySource) ListScans() ([]domain.SourceScan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SourceScan, len(m.scans))
	copy(out, m.scans)
	return out, nil
}
