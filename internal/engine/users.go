package engine

import (
	"fmt"
	"log/slog"
	"time"

	"screensync/pkg/domain"
	"screensync/pkg/store"
)

// userSyncer projects operational users into the replica.
type userSyncer struct {
	source  store.Source
	replica store.Replica
	logger  *slog.Logger
}

func (s *userSyncer) sync(now time.Time) (Counters, error) {
	users, err := s.source.ListUsers()
	if err != nil {
		return Counters{}, fmt.Errorf("list source users: %w", err)
	}
	var c Counters
	for _, u := range users {
		created, err := s.syncOne(u, now)
		if err != nil {
			s.logger.Error("user sync record failed",
				"sourceUserId", u.ID, "username", u.Username, "err", err)
			c.Errors++
			continue
		}
		if created {
			c.Created++
		} else {
			c.Updated++
		}
	}
	s.logger.Info("users synced", "created", c.Created, "updated", c.Updated, "errors", c.Errors)
	return c, nil
}

// syncOne upserts a single user by its source ID. The bool result is
// true when a new replica row was inserted.
func (s *userSyncer) syncOne(u domain.SourceUser, now time.Time) (bool, error) {
	existing, found, err := s.replica.GetUserBySourceID(u.ID)
	if err != nil {
		return false, fmt.Errorf("lookup replica user: %w", err)
	}
	rec := domain.ReplicaUser{
		SourceUserID: u.ID,
		Department:   u.Department,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsActive:     true,
		Role:         domain.RoleTechnician,
		LastSynced:   now,
		SyncVersion:  1,
	}
	if found {
		rec.IsActive = existing.IsActive
		rec.Role = existing.Role
		rec.SyncVersion = existing.SyncVersion + 1
	}
	if err := s.replica.SaveUser(rec); err != nil {
		return false, fmt.Errorf("save replica user: %w", err)
	}
	return !found, nil
}
