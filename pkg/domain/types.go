package domain

import "time"

// ScanStatus is the classification a technician assigns to a scanned screen.
type ScanStatus string

const (
	ScanReparable    ScanStatus = "Reparable"
	ScanBeyondRepair ScanStatus = "Beyond Repair"
	ScanHealthy      ScanStatus = "Healthy"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

type UserRole string

const (
	RoleTechnician UserRole = "technician"
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
)

// ActionTaken records what management decided to do with a scanned screen.
type ActionTaken string

const (
	ActionNone         ActionTaken = "none"
	ActionSentToRepair ActionTaken = "sent_to_repair"
	ActionSentToProd   ActionTaken = "sent_to_production"
	ActionWriteOff     ActionTaken = "write_off"
)

type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
	RunPartial RunStatus = "partial"
)

// Source entities, written by the mobile scanning API. The sync engine
// only ever reads these.

type SourceUser struct {
	ID           string `json:"id"`
	Department   string `json:"department"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type SourceSession struct {
	ID           string     `json:"id"`
	TechnicianID string     `json:"technicianId"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
}

type SourceScan struct {
	ID        string     `json:"id"`
	Barcode   string     `json:"barcode"`
	Status    ScanStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	SessionID string     `json:"sessionId"`
}

// Replica entities, owned by the sync engine and read by management
// tooling. Each is keyed by the source record's own ID so repeated runs
// update in place instead of inserting duplicates.

type ReplicaUser struct {
	SourceUserID string    `json:"sourceUserId"`
	Department   string    `json:"department"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	Role         UserRole  `json:"role"`
	LastSynced   time.Time `json:"lastSynced"`
	SyncVersion  int       `json:"syncVersion"`
}

type ReplicaSession struct {
	SourceSessionID   string        `json:"sourceSessionId"`
	TechnicianID      string        `json:"technicianId"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           *time.Time    `json:"endTime,omitempty"`
	Status            SessionStatus `json:"status"`
	DurationMs        *int64        `json:"durationMs,omitempty"`
	ScanCount         int           `json:"scanCount"`
	ReparableCount    int           `json:"reparableCount"`
	BeyondRepairCount int           `json:"beyondRepairCount"`
	HealthyCount      int           `json:"healthyCount"`
	LastSynced        time.Time     `json:"lastSynced"`
	SyncVersion       int           `json:"syncVersion"`
}

type ReplicaScreen struct {
	SourceScreenID  string      `json:"sourceScreenId"`
	Barcode         string      `json:"barcode"`
	Status          ScanStatus  `json:"status"`
	Timestamp       time.Time   `json:"timestamp"`
	SessionRef      string      `json:"sessionRef"`
	TechnicianID    string      `json:"technicianId"`
	Department      string      `json:"department"`
	ActionTaken     ActionTaken `json:"actionTaken"`
	ActionTimestamp *time.Time  `json:"actionTimestamp,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	LastSynced      time.Time   `json:"lastSynced"`
	SyncVersion     int         `json:"syncVersion"`
}

// DepartmentStat is one row of a day's per-department breakdown.
type DepartmentStat struct {
	Department   string `json:"department"`
	Scans        int    `json:"scans"`
	Reparable    int    `json:"reparable"`
	BeyondRepair int    `json:"beyondRepair"`
	Healthy      int    `json:"healthy"`
	Sessions     int    `json:"sessions"`
}

type DailyStatistics struct {
	Date                  time.Time        `json:"date"`
	TotalScans            int              `json:"totalScans"`
	TotalReparable        int              `json:"totalReparable"`
	TotalBeyondRepair     int              `json:"totalBeyondRepair"`
	TotalHealthy          int              `json:"totalHealthy"`
	TotalSessions         int              `json:"totalSessions"`
	ActiveTechnicianCount int              `json:"activeTechnicianCount"`
	DepartmentBreakdown   []DepartmentStat `json:"departmentBreakdown"`
	LastSynced            time.Time        `json:"lastSynced"`
	SyncVersion           int              `json:"syncVersion"`
}

// SyncRunLog is the audit record of one orchestrator run. Rows are
// append-only and never modified after insert.
type SyncRunLog struct {
	ID               string    `json:"id"`
	Operation        string    `json:"operation"`
	Status           RunStatus `json:"status"`
	RecordsProcessed int       `json:"recordsProcessed"`
	RecordsCreated   int       `json:"recordsCreated"`
	RecordsUpdated   int       `json:"recordsUpdated"`
	RecordsDeleted   int       `json:"recordsDeleted"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	DurationMs       int64     `json:"durationMs"`
	Timestamp        time.Time `json:"timestamp"`
}
