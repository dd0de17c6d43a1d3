// Command seeddev populates the operational store with sample scanning
// data for local development: one technician per department, an open
// session each, and a handful of classified scans. Passwords are
// bcrypt-hashed the same way the mobile API hashes them. Never point
// this at a production operational database.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"screensync/internal/config"
	"screensync/internal/util"
	"screensync/pkg/store"
)

var statuses = []string{"Reparable", "Beyond Repair", "Healthy"}

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config file")
	departments := flag.String("departments", "Assembly,QC", "comma-separated department names")
	scansPer := flag.Int("scans", 6, "scans to create per session")
	password := flag.String("password", "scan1234", "password for seeded technicians")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.InitLogger(cfg.LogLevel)

	db, err := gorm.Open(postgres.Open(cfg.SourceDatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open source store: %v", err)
	}
	// Dev convenience only: the mobile API owns this schema in real
	// deployments.
	if err := db.AutoMigrate(&store.SourceUserModel{}, &store.SourceSessionModel{}, &store.SourceScanModel{}); err != nil {
		log.Fatalf("failed to migrate source schema: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	for i, dept := range strings.Split(*departments, ",") {
		dept = strings.TrimSpace(dept)
		if dept == "" {
			continue
		}
		user := store.SourceUserModel{
			ID:           util.NewID(),
			Department:   dept,
			Username:     fmt.Sprintf("tech%d", i+1),
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("failed to create user %s: %v", user.Username, err)
		}
		session := store.SourceSessionModel{
			ID:           util.NewID(),
			TechnicianID: user.ID,
			StartTime:    now.Add(-time.Hour),
		}
		if err := db.Create(&session).Error; err != nil {
			log.Fatalf("failed to create session for %s: %v", user.Username, err)
		}
		for j := 0; j < *scansPer; j++ {
			scan := store.SourceScanModel{
				ID:        util.NewID(),
				Barcode:   fmt.Sprintf("SCR-%s-%04d", strings.ToUpper(dept[:1]), j+1),
				Status:    statuses[j%len(statuses)],
				Timestamp: now.Add(-time.Hour + time.Duration(j)*time.Minute),
				SessionID: session.ID,
			}
			if err := db.Create(&scan).Error; err != nil {
				log.Fatalf("failed to create scan: %v", err)
			}
		}
		slog.Info("seeded department", "department", dept, "technician", user.Username, "scans", *scansPer)
	}
	slog.Info("seed complete")
}
