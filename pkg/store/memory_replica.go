package store

import (
	"sync"
	"time"

	"screensync/pkg/domain"
)

// MemoryReplica keeps the replica store in-process. It mirrors the
// GormReplica upsert semantics, including preservation of the
// management-owned columns on update.
type MemoryReplica struct {
	mu       sync.RWMutex
	users    map[string]domain.ReplicaUser
	sessions map[string]domain.ReplicaSession
	screens  map[string]domain.ReplicaScreen
	stats    map[time.Time]domain.DailyStatistics
	runLogs  []domain.SyncRunLog
}

// NewMemoryReplica initializes an empty in-memory replica store.
func NewMemoryReplica() *MemoryReplica {
	return &MemoryReplica{
		users:    make(map[string]domain.ReplicaUser),
		sessions: make(map[string]domain.ReplicaSession),
		screens:  make(map[string]domain.ReplicaScreen),
		stats:    make(map[time.Time]domain.DailyStatistics),
	}
}

func (m *MemoryReplica) GetUserBySourceID(sourceUserID string) (domain.ReplicaUser, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[sourceUserID]
	return u, ok, nil
}

func (m *MemoryReplica) SaveUser(u domain.ReplicaUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[u.SourceUserID]; ok {
		u.IsActive = existing.IsActive
		u.Role = existing.Role
	}
	m.users[u.SourceUserID] = u
	return nil
}

func (m *MemoryReplica) GetSessionBySourceID(sourceSessionID string) (domain.ReplicaSession, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sourceSessionID]
	return s, ok, nil
}

func (m *MemoryReplica) SaveSession(s domain.ReplicaSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SourceSessionID] = s
	return nil
}

func (m *MemoryReplica) ListSessionsStartedBetween(from, to time.Time) ([]domain.ReplicaSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.ReplicaSession
	for _, s := range m.sessions {
		if !s.StartTime.Before(from) && !s.StartTime.After(to) {
			res = append(res, s)
		}
	}
	return res, nil
}

func (m *MemoryReplica) GetScreenBySourceID(sourceScreenID string) (domain.ReplicaScreen, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.screens[sourceScreenID]
	return s, ok, nil
}

func (m *MemoryReplica) SaveScreen(s domain.ReplicaScreen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.screens[s.SourceScreenID]; ok {
		s.ActionTaken = existing.ActionTaken
		s.ActionTimestamp = existing.ActionTimestamp
		s.Notes = existing.Notes
	}
	m.screens[s.SourceScreenID] = s
	return nil
}

func (m *MemoryReplica) ListScreensScannedBetween(from, to time.Time) ([]domain.ReplicaScreen, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.ReplicaScreen
	for _, s := range m.screens {
		if !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			res = append(res, s)
		}
	}
	return res, nil
}

func (m *MemoryReplica) GetStatisticsByDate(date time.Time) (domain.DailyStatistics, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[date.UTC()]
	return s, ok, nil
}

func (m *MemoryReplica) SaveStatistics(s domain.DailyStatistics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[s.Date.UTC()] = s
	return nil
}

func (m *MemoryReplica) AppendRunLog(l domain.SyncRunLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runLogs = append(m.runLogs, l)
	return nil
}

func (m *MemoryReplica) ListRunLogs(limit int) ([]domain.SyncRunLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.SyncRunLog, 0, len(m.runLogs))
	for i := len(m.runLogs) - 1; i >= 0; i-- {
		res = append(res, m.runLogs[i])
		if limit > 0 && len(res) >= limit {
			break
		}
	}
	return res, nil
}

// SetScreenAction simulates management tooling editing the
// management-owned columns directly, bypassing sync preservation.
func (m *MemoryReplica) SetScreenAction(sourceScreenID string, action domain.ActionTaken, ts *time.Time, notes string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[sourceScreenID]
	if !ok {
		return
	}
	s.ActionTaken = action
	s.ActionTimestamp = ts
	s.Notes = notes
	m.screens[sourceScreenID] = s
}

// UserCount reports how many replica users exist.
func (m *MemoryReplica) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// ScreenCount reports how many replica screens exist.
func (m *MemoryReplica) ScreenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.screens)
}
