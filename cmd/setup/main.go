// Command setup verifies connectivity to both stores and ensures the
// replica schema exists. Run it once before first starting the sync
// service, or any time after upgrading.
package main

import (
	"flag"
	"log"
	"log/slog"

	"screensync/internal/config"
	"screensync/internal/util"
	"screensync/pkg/store"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.InitLogger(cfg.LogLevel)

	source, err := store.NewGormSource(cfg.SourceDatabaseURL)
	if err != nil {
		log.Fatalf("failed to open source store: %v", err)
	}
	if err := source.Ping(); err != nil {
		log.Fatalf("source store unreachable: %v", err)
	}
	slog.Info("source store reachable")

	replica, err := store.NewGormReplica(cfg.ReplicaDatabaseURL)
	if err != nil {
		log.Fatalf("failed to migrate replica store: %v", err)
	}
	slog.Info("replica schema ready")

	logs, err := replica.ListRunLogs(1)
	if err != nil {
		log.Fatalf("failed to read run log: %v", err)
	}
	if len(logs) == 0 {
		slog.Info("no sync runs recorded yet")
	} else {
		last := logs[0]
		slog.Info("latest sync run",
			"status", string(last.Status), "processed", last.RecordsProcessed,
			"timestamp", last.Timestamp)
	}
}
