package engine

import (
	"fmt"
	"log/slog"
	"time"

	"screensync/pkg/domain"
	"screensync/pkg/store"
)

// sessionSyncer projects operational sessions into the replica,
// deriving status, duration and per-status scan counters.
type sessionSyncer struct {
	source  store.Source
	replica store.Replica
	logger  *slog.Logger
}

func (s *sessionSyncer) sync(now time.Time) (Counters, error) {
	sessions, err := s.source.ListSessions()
	if err != nil {
		return Counters{}, fmt.Errorf("list source sessions: %w", err)
	}
	scans, err := s.source.ListScans()
	if err != nil {
		return Counters{}, fmt.Errorf("list source scans: %w", err)
	}
	scansBySession := make(map[string][]domain.SourceScan)
	for _, scan := range scans {
		scansBySession[scan.SessionID] = append(scansBySession[scan.SessionID], scan)
	}

	var c Counters
	for _, sess := range sessions {
		created, err := s.syncOne(sess, scansBySession[sess.ID], now)
		if err != nil {
			s.logger.Error("session sync record failed", "sourceSessionId", sess.ID, "err", err)
			c.Errors++
			continue
		}
		if created {
			c.Created++
		} else {
			c.Updated++
		}
	}
	s.logger.Info("sessions synced", "created", c.Created, "updated", c.Updated, "errors", c.Errors)
	return c, nil
}

func (s *sessionSyncer) syncOne(sess domain.SourceSession, scans []domain.SourceScan, now time.Time) (bool, error) {
	rec := domain.ReplicaSession{
		SourceSessionID: sess.ID,
		TechnicianID:    sess.TechnicianID,
		StartTime:       sess.StartTime,
		EndTime:         sess.EndTime,
		Status:          domain.SessionActive,
		ScanCount:       len(scans),
		LastSynced:      now,
		SyncVersion:     1,
	}
	for _, scan := range scans {
		switch scan.Status {
		case domain.ScanReparable:
			rec.ReparableCount++
		case domain.ScanBeyondRepair:
			rec.BeyondRepairCount++
		case domain.ScanHealthy:
			rec.HealthyCount++
		}
	}
	if sess.EndTime != nil {
		rec.Status = domain.SessionCompleted
		durationMs := sess.EndTime.Sub(sess.StartTime).Milliseconds()
		rec.DurationMs = &durationMs
	}

	existing, found, err := s.replica.GetSessionBySourceID(sess.ID)
	if err != nil {
		return false, fmt.Errorf("lookup replica session: %w", err)
	}
	if found {
		rec.SyncVersion = existing.SyncVersion + 1
	}
	if err := s.replica.SaveSession(rec); err != nil {
		return false, fmt.Errorf("save replica session: %w", err)
	}
	return !found, nil
}
