package store

import (
	"time"

	"screensync/pkg/domain"
)

// Source exposes read-only access to the operational store. The mobile
// API owns this data; the sync engine never writes it.
type Source interface {
	ListUsers() ([]domain.SourceUser, error)
	ListSessions() ([]domain.SourceSession, error)
	ListScans() ([]domain.SourceScan, error)
}

// Replica defines persistence operations for the denormalized
// management store. All lookups are by the source record's natural key.
type Replica interface {
	// users
	GetUserBySourceID(sourceUserID string) (domain.ReplicaUser, bool, error)
	SaveUser(domain.ReplicaUser) error

	// sessions
	GetSessionBySourceID(sourceSessionID string) (domain.ReplicaSession, bool, error)
	SaveSession(domain.ReplicaSession) error
	ListSessionsStartedBetween(from, to time.Time) ([]domain.ReplicaSession, error)

	// screens
	GetScreenBySourceID(sourceScreenID string) (domain.ReplicaScreen, bool, error)
	SaveScreen(domain.ReplicaScreen) error
	ListScreensScannedBetween(from, to time.Time) ([]domain.ReplicaScreen, error)

	// daily statistics
	GetStatisticsByDate(date time.Time) (domain.DailyStatistics, bool, error)
	SaveStatistics(domain.DailyStatistics) error

	// run log, append-only
	AppendRunLog(domain.SyncRunLog) error
	ListRunLogs(limit int) ([]domain.SyncRunLog, error)
}
