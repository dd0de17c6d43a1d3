package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"screensync/internal/util"
	"screensync/pkg/domain"
	"screensync/pkg/store"
)

// ErrRunInProgress is returned when a sync run is requested while
// another run holds the run guard.
var ErrRunInProgress = errors.New("sync run already in progress")

const operationFullSync = "full_sync"

// Locker guards a run across service instances. Acquire reports false
// when another holder owns the lock.
type Locker interface {
	Acquire() (bool, error)
	Release() error
}

// Config holds orchestrator dependencies.
type Config struct {
	Source  store.Source
	Replica store.Replica
	Logger  *slog.Logger
	// Lock optionally extends the run guard across processes sharing
	// the same replica store.
	Lock Locker
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Orchestrator executes the four-phase sync pipeline in dependency
// order: users, then sessions, then screens, then statistics. Sessions
// reference users and screens reference sessions, so each phase must
// observe replica state the prior phase wrote.
type Orchestrator struct {
	source  store.Source
	replica store.Replica
	logger  *slog.Logger
	lock    Locker
	now     func() time.Time
	running atomic.Bool

	users    userSyncer
	sessions sessionSyncer
	screens  screenSyncer
	stats    aggregator
}

// New constructs an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Source == nil {
		return nil, errors.New("source store required")
	}
	if cfg.Replica == nil {
		return nil, errors.New("replica store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		source:   cfg.Source,
		replica:  cfg.Replica,
		logger:   logger,
		lock:     cfg.Lock,
		now:      now,
		users:    userSyncer{source: cfg.Source, replica: cfg.Replica, logger: logger},
		sessions: sessionSyncer{source: cfg.Source, replica: cfg.Replica, logger: logger},
		screens:  screenSyncer{source: cfg.Source, replica: cfg.Replica, logger: logger},
		stats:    aggregator{replica: cfg.Replica, logger: logger},
	}, nil
}

// RunFullSync executes one complete sync run and appends exactly one
// run-log row. A phase whose bulk fetch fails aborts the remaining
// phases; the error is recorded in the run log and returned. Individual
// record failures inside a phase are counted, not propagated. Only one
// run can be active at a time; a concurrent call gets ErrRunInProgress.
func (o *Orchestrator) RunFullSync() (RunSummary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return RunSummary{}, ErrRunInProgress
	}
	defer o.running.Store(false)

	if o.lock != nil {
		acquired, err := o.lock.Acquire()
		if err != nil {
			// A lock backend outage should not stop replication; the
			// in-process guard still prevents overlap within this
			// instance.
			o.logger.Warn("run lock unavailable, proceeding unlocked", "err", err)
		} else if !acquired {
			return RunSummary{}, ErrRunInProgress
		} else {
			defer func() {
				if err := o.lock.Release(); err != nil {
					o.logger.Warn("run lock release failed", "err", err)
				}
			}()
		}
	}

	start := o.now()
	o.logger.Info("full sync started")

	var summary RunSummary
	runErr := o.runPhases(&summary, start)
	summary.Duration = o.now().Sub(start)

	status := domain.RunSuccess
	errMsg := ""
	if runErr != nil {
		status = domain.RunError
		errMsg = runErr.Error()
	}
	totals := summary.Totals()
	entry := domain.SyncRunLog{
		ID:               util.NewID(),
		Operation:        operationFullSync,
		Status:           status,
		RecordsProcessed: totals.processed(),
		RecordsCreated:   totals.Created,
		RecordsUpdated:   totals.Updated,
		RecordsDeleted:   0,
		ErrorMessage:     errMsg,
		DurationMs:       summary.Duration.Milliseconds(),
		Timestamp:        o.now(),
	}
	if err := o.replica.AppendRunLog(entry); err != nil {
		o.logger.Error("run log write failed", "err", err)
	}

	if runErr != nil {
		o.logger.Error("full sync failed", "err", runErr, "durationMs", entry.DurationMs)
		return summary, runErr
	}
	o.logger.Info("full sync completed",
		"created", totals.Created, "updated", totals.Updated, "errors", totals.Errors,
		"durationMs", entry.DurationMs)
	return summary, nil
}

func (o *Orchestrator) runPhases(summary *RunSummary, now time.Time) error {
	var err error
	if summary.Users, err = o.users.sync(now); err != nil {
		return fmt.Errorf("user sync: %w", err)
	}
	if summary.Sessions, err = o.sessions.sync(now); err != nil {
		return fmt.Errorf("session sync: %w", err)
	}
	if summary.Screens, err = o.screens.sync(now); err != nil {
		return fmt.Errorf("screen sync: %w", err)
	}
	if summary.Statistics, err = o.stats.update(now); err != nil {
		return fmt.Errorf("statistics update: %w", err)
	}
	return nil
}
