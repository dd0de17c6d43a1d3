package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"screensync/pkg/domain"
)

// GormSource implements Source against the operational Postgres
// database. It opens a read-oriented connection and never migrates or
// writes the schema.
type GormSource struct {
	db *gorm.DB
}

// NewGormSource opens the operational database.
func NewGormSource(dsn string) (*GormSource, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	return &GormSource{db: db}, nil
}

// Ping verifies the connection is usable.
func (s *GormSource) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Ping()
}

// ListUsers returns every user in the operational store.
func (s *GormSource) ListUsers() ([]domain.SourceUser, error) {
	var models []SourceUserModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SourceUser, 0, len(models))
	for _, m := range models {
		res = append(res, sourceUserFromModel(m))
	}
	return res, nil
}

// ListSessions returns every scanning session in the operational store.
func (s *GormSource) ListSessions() ([]domain.SourceSession, error) {
	var models []SourceSessionModel
	if err := s.db.Order("start_time ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SourceSession, 0, len(models))
	for _, m := range models {
		res = append(res, sourceSessionFromModel(m))
	}
	return res, nil
}

// ListScans returns every scan in the operational store.
func (s *GormSource) ListScans() ([]domain.SourceScan, error) {
	var models []SourceScanModel
	if err := s.db.Order("timestamp ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SourceScan, 0, len(models))
	for _, m := range models {
		res = append(res, sourceScanFromModel(m))
	}
	return res, nil
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
