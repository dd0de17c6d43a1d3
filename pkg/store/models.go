package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"screensync/pkg/domain"
)

// GORM models for the operational store. The mobile API owns this
// schema, so nothing here is ever migrated or written by the engine.

type SourceUserModel struct {
	ID           string `gorm:"primaryKey"`
	Department   string `gorm:"not null"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SourceUserModel) TableName() string { return "users" }

type SourceSessionModel struct {
	ID           string    `gorm:"primaryKey"`
	TechnicianID string    `gorm:"not null;index"`
	StartTime    time.Time `gorm:"not null"`
	EndTime      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SourceSessionModel) TableName() string { return "sessions" }

type SourceScanModel struct {
	ID        string    `gorm:"primaryKey"`
	Barcode   string    `gorm:"not null"`
	Status    string    `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index"`
	SessionID string    `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SourceScanModel) TableName() string { return "scans" }

// GORM models for the replica store. The source record's ID doubles as
// the primary key, which is what makes every save an idempotent upsert.

type ReplicaUserModel struct {
	SourceUserID string    `gorm:"primaryKey"`
	Department   string    `gorm:"not null"`
	Username     string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	Role         string    `gorm:"not null;default:technician"`
	LastSynced   time.Time `gorm:"not null"`
	SyncVersion  int       `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ReplicaUserModel) TableName() string { return "replica_users" }

type ReplicaSessionModel struct {
	SourceSessionID   string    `gorm:"primaryKey"`
	TechnicianID      string    `gorm:"not null;index"`
	StartTime         time.Time `gorm:"not null;index"`
	EndTime           *time.Time
	Status            string `gorm:"not null"`
	DurationMs        *int64
	ScanCount         int       `gorm:"not null"`
	ReparableCount    int       `gorm:"not null"`
	BeyondRepairCount int       `gorm:"not null"`
	HealthyCount      int       `gorm:"not null"`
	LastSynced        time.Time `gorm:"not null"`
	SyncVersion       int       `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ReplicaSessionModel) TableName() string { return "replica_sessions" }

type ReplicaScreenModel struct {
	SourceScreenID  string    `gorm:"primaryKey"`
	Barcode         string    `gorm:"not null"`
	Status          string    `gorm:"not null"`
	Timestamp       time.Time `gorm:"not null;index"`
	SessionRef      string    `gorm:"not null;index"`
	TechnicianID    string    `gorm:"not null"`
	Department      string    `gorm:"not null;index"`
	ActionTaken     string    `gorm:"not null;default:none"`
	ActionTimestamp *time.Time
	Notes           string
	LastSynced      time.Time `gorm:"not null"`
	SyncVersion     int       `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ReplicaScreenModel) TableName() string { return "replica_screens" }

type DailyStatisticsModel struct {
	Date                  time.Time      `gorm:"primaryKey"`
	TotalScans            int            `gorm:"not null"`
	TotalReparable        int            `gorm:"not null"`
	TotalBeyondRepair     int            `gorm:"not null"`
	TotalHealthy          int            `gorm:"not null"`
	TotalSessions         int            `gorm:"not null"`
	ActiveTechnicianCount int            `gorm:"not null"`
	DepartmentBreakdown   datatypes.JSON `gorm:"type:jsonb"`
	LastSynced            time.Time      `gorm:"not null"`
	SyncVersion           int            `gorm:"not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (DailyStatisticsModel) TableName() string { return "daily_statistics" }

type SyncRunLogModel struct {
	ID               string `gorm:"primaryKey"`
	Operation        string `gorm:"not null"`
	Status           string `gorm:"not null"`
	RecordsProcessed int    `gorm:"not null"`
	RecordsCreated   int    `gorm:"not null"`
	RecordsUpdated   int    `gorm:"not null"`
	RecordsDeleted   int    `gorm:"not null"`
	ErrorMessage     string
	DurationMs       int64     `gorm:"not null"`
	Timestamp        time.Time `gorm:"not null;index"`
}

func (SyncRunLogModel) TableName() string { return "sync_run_logs" }

func sourceUserFromModel(m SourceUserModel) domain.SourceUser {
	return domain.SourceUser{
		ID:           m.ID,
		Department:   m.Department,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
	}
}

func sourceSessionFromModel(m SourceSessionModel) domain.SourceSession {
	return domain.SourceSession{
		ID:           m.ID,
		TechnicianID: m.TechnicianID,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
	}
}

func sourceScanFromModel(m SourceScanModel) domain.SourceScan {
	return domain.SourceScan{
		ID:        m.ID,
		Barcode:   m.Barcode,
		Status:    domain.ScanStatus(m.Status),
		Timestamp: m.Timestamp,
		SessionID: m.SessionID,
	}
}

func replicaUserToModel(u domain.ReplicaUser) ReplicaUserModel {
	return ReplicaUserModel{
		SourceUserID: u.SourceUserID,
		Department:   u.Department,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		Role:         string(u.Role),
		LastSynced:   u.LastSynced,
		SyncVersion:  u.SyncVersion,
	}
}

func replicaUserFromModel(m ReplicaUserModel) domain.ReplicaUser {
	return domain.ReplicaUser{
		SourceUserID: m.SourceUserID,
		Department:   m.Department,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		Role:         domain.UserRole(m.Role),
		LastSynced:   m.LastSynced,
		SyncVersion:  m.SyncVersion,
	}
}

func replicaSessionToModel(s domain.ReplicaSession) ReplicaSessionModel {
	return ReplicaSessionModel{
		SourceSessionID:   s.SourceSessionID,
		TechnicianID:      s.TechnicianID,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		Status:            string(s.Status),
		DurationMs:        s.DurationMs,
		ScanCount:         s.ScanCount,
		ReparableCount:    s.ReparableCount,
		BeyondRepairCount: s.BeyondRepairCount,
		HealthyCount:      s.HealthyCount,
		LastSynced:        s.LastSynced,
		SyncVersion:       s.SyncVersion,
	}
}

func replicaSessionFromModel(m ReplicaSessionModel) domain.ReplicaSession {
	return domain.ReplicaSession{
		SourceSessionID:   m.SourceSessionID,
		TechnicianID:      m.TechnicianID,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		Status:            domain.SessionStatus(m.Status),
		DurationMs:        m.DurationMs,
		ScanCount:         m.ScanCount,
		ReparableCount:    m.ReparableCount,
		BeyondRepairCount: m.BeyondRepairCount,
		HealthyCount:      m.HealthyCount,
		LastSynced:        m.LastSynced,
		SyncVersion:       m.SyncVersion,
	}
}

func replicaScreenToModel(s domain.ReplicaScreen) ReplicaScreenModel {
	return ReplicaScreenModel{
		SourceScreenID:  s.SourceScreenID,
		Barcode:         s.Barcode,
		Status:          string(s.Status),
		Timestamp:       s.Timestamp,
		SessionRef:      s.SessionRef,
		TechnicianID:    s.TechnicianID,
		Department:      s.Department,
		ActionTaken:     string(s.ActionTaken),
		ActionTimestamp: s.ActionTimestamp,
		Notes:           s.Notes,
		LastSynced:      s.LastSynced,
		SyncVersion:     s.SyncVersion,
	}
}

func replicaScreenFromModel(m ReplicaScreenModel) domain.ReplicaScreen {
	return domain.ReplicaScreen{
		SourceScreenID:  m.SourceScreenID,
		Barcode:         m.Barcode,
		Status:          domain.ScanStatus(m.Status),
		Timestamp:       m.Timestamp,
		SessionRef:      m.SessionRef,
		TechnicianID:    m.TechnicianID,
		Department:      m.Department,
		ActionTaken:     domain.ActionTaken(m.ActionTaken),
		ActionTimestamp: m.ActionTimestamp,
		Notes:           m.Notes,
		LastSynced:      m.LastSynced,
		SyncVersion:     m.SyncVersion,
	}
}

func statisticsToModel(s domain.DailyStatistics) (DailyStatisticsModel, error) {
	breakdown, err := json.Marshal(s.DepartmentBreakdown)
	if err != nil {
		return DailyStatisticsModel{}, fmt.Errorf("marshal department breakdown: %w", err)
	}
	return DailyStatisticsModel{
		Date:                  s.Date,
		TotalScans:            s.TotalScans,
		TotalReparable:        s.TotalReparable,
		TotalBeyondRepair:     s.TotalBeyondRepair,
		TotalHealthy:          s.TotalHealthy,
		TotalSessions:         s.TotalSessions,
		ActiveTechnicianCount: s.ActiveTechnicianCount,
		DepartmentBreakdown:   datatypes.JSON(breakdown),
		LastSynced:            s.LastSynced,
		SyncVersion:           s.SyncVersion,
	}, nil
}

func statisticsFromModel(m DailyStatisticsModel) (domain.DailyStatistics, error) {
	var breakdown []domain.DepartmentStat
	if len(m.DepartmentBreakdown) > 0 {
		if err := json.Unmarshal(m.DepartmentBreakdown, &breakdown); err != nil {
			return domain.DailyStatistics{}, fmt.Errorf("unmarshal department breakdown: %w", err)
		}
	}
	return domain.DailyStatistics{
		Date:                  m.Date,
		TotalScans:            m.TotalScans,
		TotalReparable:        m.TotalReparable,
		TotalBeyondRepair:     m.TotalBeyondRepair,
		TotalHealthy:          m.TotalHealthy,
		TotalSessions:         m.TotalSessions,
		ActiveTechnicianCount: m.ActiveTechnicianCount,
		DepartmentBreakdown:   breakdown,
		LastSynced:            m.LastSynced,
		SyncVersion:           m.SyncVersion,
	}, nil
}

func runLogToModel(l domain.SyncRunLog) SyncRunLogModel {
	return SyncRunLogModel{
		ID:               l.ID,
		Operation:        l.Operation,
		Status:           string(l.Status),
		RecordsProcessed: l.RecordsProcessed,
		RecordsCreated:   l.RecordsCreated,
		RecordsUpdated:   l.RecordsUpdated,
		RecordsDeleted:   l.RecordsDeleted,
		ErrorMessage:     l.ErrorMessage,
		DurationMs:       l.DurationMs,
		Timestamp:        l.Timestamp,
	}
}

func runLogFromModel(m SyncRunLogModel) domain.SyncRunLog {
	return domain.SyncRunLog{
		ID:               m.ID,
		Operation:        m.Operation,
		Status:           domain.RunStatus(m.Status),
		RecordsProcessed: m.RecordsProcessed,
		RecordsCreated:   m.RecordsCreated,
		RecordsUpdated:   m.RecordsUpdated,
		RecordsDeleted:   m.RecordsDeleted,
		ErrorMessage:     m.ErrorMessage,
		DurationMs:       m.DurationMs,
		Timestamp:        m.Timestamp,
	}
}
