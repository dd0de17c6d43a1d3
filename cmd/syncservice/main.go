package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"screensync/internal/config"
	"screensync/internal/engine"
	"screensync/internal/util"
	"screensync/pkg/store"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config file")
	once := flag.Bool("once", false, "run a single sync and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	source, err := store.NewGormSource(cfg.SourceDatabaseURL)
	if err != nil {
		log.Fatalf("failed to open source store: %v", err)
	}
	replica, err := store.NewGormReplica(cfg.ReplicaDatabaseURL)
	if err != nil {
		log.Fatalf("failed to open replica store: %v", err)
	}

	var lock engine.Locker
	if cfg.RedisAddr != "" {
		// The TTL outlives a normal run so a crashed instance cannot
		// wedge the lock for long.
		lock = engine.NewRedisRunLock(cfg.RedisAddr, cfg.RedisPassword, 2*cfg.SyncInterval())
	}

	orch, err := engine.New(engine.Config{
		Source:  source,
		Replica: replica,
		Logger:  logger,
		Lock:    lock,
	})
	if err != nil {
		log.Fatalf("failed to init orchestrator: %v", err)
	}

	if *once {
		summary, err := orch.RunFullSync()
		if err != nil {
			logger.Error("manual sync failed", "err", err)
			os.Exit(1)
		}
		totals := summary.Totals()
		slog.Info("manual sync completed",
			"created", totals.Created, "updated", totals.Updated, "errors", totals.Errors)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("sync service starting", "intervalMinutes", cfg.SyncIntervalMinutes)
	sched := engine.NewScheduler(cfg.SyncInterval(), orch, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("sync service error", "err", err)
		os.Exit(1)
	}
	slog.Info("sync service stopped")
}
