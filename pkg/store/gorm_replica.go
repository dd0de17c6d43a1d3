package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"screensync/pkg/domain"
)

const migrateLockID int64 = 52415241

// GormReplica implements Replica using GORM + Postgres.
type GormReplica struct {
	db *gorm.DB
}

// NewGormReplica opens the replica DB and runs auto-migrations.
func NewGormReplica(dsn string) (*GormReplica, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open replica db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&ReplicaUserModel{},
			&ReplicaSessionModel{},
			&ReplicaScreenModel{},
			&DailyStatisticsModel{},
			&SyncRunLogModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormReplica{db: db}, nil
}

// withMigrationLock serializes schema migration across concurrently
// starting service instances using a Postgres advisory lock.
func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// GetUserBySourceID looks up a replica user by its source ID.
func (s *GormReplica) GetUserBySourceID(sourceUserID string) (domain.ReplicaUser, bool, error) {
	var model ReplicaUserModel
	if err := s.db.First(&model, "source_user_id = ?", sourceUserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ReplicaUser{}, false, nil
		}
		return domain.ReplicaUser{}, false, err
	}
	return replicaUserFromModel(model), true, nil
}

// SaveUser inserts or updates a replica user keyed by source_user_id.
func (s *GormReplica) SaveUser(u domain.ReplicaUser) error {
	model := replicaUserToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"department", "username", "password_hash", "last_synced", "sync_version", "updated_at"}),
	}).Create(&model).Error
}

// GetSessionBySourceID looks up a replica session by its source ID.
func (s *GormReplica) GetSessionBySourceID(sourceSessionID string) (domain.ReplicaSession, bool, error) {
	var model ReplicaSessionModel
	if err := s.db.First(&model, "source_session_id = ?", sourceSessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ReplicaSession{}, false, nil
		}
		return domain.ReplicaSession{}, false, err
	}
	return replicaSessionFromModel(model), true, nil
}

// SaveSession inserts or updates a replica session keyed by source_session_id.
func (s *GormReplica) SaveSession(sess domain.ReplicaSession) error {
	model := replicaSessionToModel(sess)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"technician_id", "start_time", "end_time", "status", "duration_ms",
			"scan_count", "reparable_count", "beyond_repair_count", "healthy_count",
			"last_synced", "sync_version", "updated_at",
		}),
	}).Create(&model).Error
}

// ListSessionsStartedBetween returns replica sessions whose start time
// falls within [from, to].
func (s *GormReplica) ListSessionsStartedBetween(from, to time.Time) ([]domain.ReplicaSession, error) {
	var models []ReplicaSessionModel
	if err := s.db.Where("start_time >= ? AND start_time <= ?", from, to).
		Order("start_time ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ReplicaSession, 0, len(models))
	for _, m := range models {
		res = append(res, replicaSessionFromModel(m))
	}
	return res, nil
}

// GetScreenBySourceID looks up a replica screen by its source ID.
func (s *GormReplica) GetScreenBySourceID(sourceScreenID string) (domain.ReplicaScreen, bool, error) {
	var model ReplicaScreenModel
	if err := s.db.First(&model, "source_screen_id = ?", sourceScreenID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ReplicaScreen{}, false, nil
		}
		return domain.ReplicaScreen{}, false, err
	}
	return replicaScreenFromModel(model), true, nil
}

// SaveScreen inserts or updates a replica screen keyed by source_screen_id.
// Management-owned columns (action_taken, action_timestamp, notes) are
// left untouched on update.
func (s *GormReplica) SaveScreen(scr domain.ReplicaScreen) error {
	model := replicaScreenToModel(scr)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_screen_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"barcode", "status", "timestamp", "session_ref", "technician_id",
			"department", "last_synced", "sync_version", "updated_at",
		}),
	}).Create(&model).Error
}

// ListScreensScannedBetween returns replica screens whose scan timestamp
// falls within [from, to].
func (s *GormReplica) ListScreensScannedBetween(from, to time.Time) ([]domain.ReplicaScreen, error) {
	var models []ReplicaScreenModel
	if err := s.db.Where("timestamp >= ? AND timestamp <= ?", from, to).
		Order("timestamp ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ReplicaScreen, 0, len(models))
	for _, m := range models {
		res = append(res, replicaScreenFromModel(m))
	}
	return res, nil
}

// GetStatisticsByDate returns the rollup row for a calendar day.
func (s *GormReplica) GetStatisticsByDate(date time.Time) (domain.DailyStatistics, bool, error) {
	var model DailyStatisticsModel
	if err := s.db.First(&model, "date = ?", date).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.DailyStatistics{}, false, nil
		}
		return domain.DailyStatistics{}, false, err
	}
	stats, err := statisticsFromModel(model)
	if err != nil {
		return domain.DailyStatistics{}, false, err
	}
	return stats, true, nil
}

// SaveStatistics inserts or updates the rollup row keyed by date.
func (s *GormReplica) SaveStatistics(stats domain.DailyStatistics) error {
	model, err := statisticsToModel(stats)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_scans", "total_reparable", "total_beyond_repair", "total_healthy",
			"total_sessions", "active_technician_count", "department_breakdown",
			"last_synced", "sync_version", "updated_at",
		}),
	}).Create(&model).Error
}

// AppendRunLog inserts one immutable run-log row.
func (s *GormReplica) AppendRunLog(l domain.SyncRunLog) error {
	model := runLogToModel(l)
	return s.db.Create(&model).Error
}

// ListRunLogs returns the most recent run-log rows, newest first.
func (s *GormReplica) ListRunLogs(limit int) ([]domain.SyncRunLog, error) {
	var models []SyncRunLogModel
	tx := s.db.Order("timestamp DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SyncRunLog, 0, len(models))
	for _, m := range models {
		res = append(res, runLogFromModel(m))
	}
	return res, nil
}
