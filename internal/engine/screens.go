package engine

import (
	"fmt"
	"log/slog"
	"time"

	"screensync/pkg/domain"
	"screensync/pkg/store"
)

// screenSyncer projects operational scans into replica screens,
// denormalizing technician and department through the scan's session.
// A scan whose session or technician cannot be resolved is counted as
// a record error and skipped.
type screenSyncer struct {
	source  store.Source
	replica store.Replica
	logger  *slog.Logger
}

func (s *screenSyncer) sync(now time.Time) (Counters, error) {
	scans, err := s.source.ListScans()
	if err != nil {
		return Counters{}, fmt.Errorf("list source scans: %w", err)
	}
	sessions, err := s.source.ListSessions()
	if err != nil {
		return Counters{}, fmt.Errorf("list source sessions: %w", err)
	}
	users, err := s.source.ListUsers()
	if err != nil {
		return Counters{}, fmt.Errorf("list source users: %w", err)
	}
	sessionByID := make(map[string]domain.SourceSession, len(sessions))
	for _, sess := range sessions {
		sessionByID[sess.ID] = sess
	}
	userByID := make(map[string]domain.SourceUser, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	var c Counters
	for _, scan := range scans {
		created, err := s.syncOne(scan, sessionByID, userByID, now)
		if err != nil {
			s.logger.Error("screen sync record failed",
				"sourceScreenId", scan.ID, "barcode", scan.Barcode, "err", err)
			c.Errors++
			continue
		}
		if created {
			c.Created++
		} else {
			c.Updated++
		}
	}
	s.logger.Info("screens synced", "created", c.Created, "updated", c.Updated, "errors", c.Errors)
	return c, nil
}

func (s *screenSyncer) syncOne(scan domain.SourceScan, sessionByID map[string]domain.SourceSession, userByID map[string]domain.SourceUser, now time.Time) (bool, error) {
	sess, ok := sessionByID[scan.SessionID]
	if !ok {
		return false, fmt.Errorf("session %s not found", scan.SessionID)
	}
	technician, ok := userByID[sess.TechnicianID]
	if !ok {
		return false, fmt.Errorf("technician %s not found for session %s", sess.TechnicianID, sess.ID)
	}

	rec := domain.ReplicaScreen{
		SourceScreenID: scan.ID,
		Barcode:        scan.Barcode,
		Status:         scan.Status,
		Timestamp:      scan.Timestamp,
		SessionRef:     sess.ID,
		TechnicianID:   technician.ID,
		Department:     technician.Department,
		ActionTaken:    domain.ActionNone,
		LastSynced:     now,
		SyncVersion:    1,
	}

	existing, found, err := s.replica.GetScreenBySourceID(scan.ID)
	if err != nil {
		return false, fmt.Errorf("lookup replica screen: %w", err)
	}
	if found {
		rec.SyncVersion = existing.SyncVersion + 1
		rec.ActionTaken = existing.ActionTaken
		rec.ActionTimestamp = existing.ActionTimestamp
		rec.Notes = existing.Notes
	}
	if err := s.replica.SaveScreen(rec); err != nil {
		return false, fmt.Errorf("save replica screen: %w", err)
	}
	return !found, nil
}
