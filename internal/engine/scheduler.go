package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Runner is the orchestrator surface the scheduler drives.
type Runner interface {
	RunFullSync() (RunSummary, error)
}

// Scheduler triggers one sync run immediately and then on ticks
// anchored to wall-clock multiples of the interval (a 5 minute
// interval fires at :00, :05, :10, ...). A tick that finds a run still
// active is skipped and logged rather than overlapping it.
type Scheduler struct {
	interval time.Duration
	runner   Runner
	logger   *slog.Logger
	now      func() time.Time
}

// NewScheduler builds a scheduler around the given runner.
func NewScheduler(interval time.Duration, runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		runner:   runner,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled. The initial run executes
// synchronously; scheduled runs execute in their own goroutine so a
// slow run cannot delay the tick clock (overlap is handled by the run
// guard, not by queueing).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval.String())
	s.runOnce("startup")
	for {
		next := nextTick(s.now(), s.interval)
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			go s.runOnce("scheduled")
		}
	}
}

func (s *Scheduler) runOnce(trigger string) {
	_, err := s.runner.RunFullSync()
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Warn("sync tick skipped, run already in progress", "trigger", trigger)
	case err != nil:
		s.logger.Error("sync run failed", "trigger", trigger, "err", err)
	}
}

// nextTick returns the first wall-clock multiple of interval strictly
// after now.
func nextTick(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}
