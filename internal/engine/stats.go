package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"screensync/pkg/domain"
	"screensync/pkg/store"
)

// aggregator recomputes today's rollup row from replica data. It runs
// after the synchronizers so it observes the state this run produced.
type aggregator struct {
	replica store.Replica
	logger  *slog.Logger
}

func (a *aggregator) update(now time.Time) (Counters, error) {
	day := startOfDayUTC(now)
	stats, err := a.calculate(day)
	if err != nil {
		return Counters{}, err
	}
	stats.LastSynced = now

	existing, found, err := a.replica.GetStatisticsByDate(day)
	if err != nil {
		return Counters{}, fmt.Errorf("lookup statistics: %w", err)
	}
	if found {
		stats.SyncVersion = existing.SyncVersion + 1
	}
	if err := a.replica.SaveStatistics(stats); err != nil {
		return Counters{}, fmt.Errorf("save statistics: %w", err)
	}

	var c Counters
	if found {
		c.Updated++
	} else {
		c.Created++
	}
	a.logger.Info("statistics updated", "date", day.Format("2006-01-02"),
		"totalScans", stats.TotalScans, "totalSessions", stats.TotalSessions)
	return c, nil
}

// calculate builds the rollup for the day starting at the given UTC
// midnight. An empty window still produces a zero-valued row so that a
// day with no activity is recorded rather than missing.
func (a *aggregator) calculate(day time.Time) (domain.DailyStatistics, error) {
	from := day
	to := day.Add(24*time.Hour - time.Nanosecond)

	screens, err := a.replica.ListScreensScannedBetween(from, to)
	if err != nil {
		return domain.DailyStatistics{}, fmt.Errorf("list replica screens: %w", err)
	}
	sessions, err := a.replica.ListSessionsStartedBetween(from, to)
	if err != nil {
		return domain.DailyStatistics{}, fmt.Errorf("list replica sessions: %w", err)
	}

	stats := domain.DailyStatistics{
		Date:          day,
		TotalScans:    len(screens),
		TotalSessions: len(sessions),
		SyncVersion:   1,
	}
	for _, scr := range screens {
		switch scr.Status {
		case domain.ScanReparable:
			stats.TotalReparable++
		case domain.ScanBeyondRepair:
			stats.TotalBeyondRepair++
		case domain.ScanHealthy:
			stats.TotalHealthy++
		}
	}
	technicians := make(map[string]struct{})
	for _, sess := range sessions {
		technicians[sess.TechnicianID] = struct{}{}
	}
	stats.ActiveTechnicianCount = len(technicians)
	stats.DepartmentBreakdown = departmentBreakdown(screens, sessions)
	return stats, nil
}

// departmentBreakdown computes per-department scan counts plus the
// number of sessions that produced scans for that department. Sorted by
// department name so output is stable across runs.
func departmentBreakdown(screens []domain.ReplicaScreen, sessions []domain.ReplicaSession) []domain.DepartmentStat {
	byDept := make(map[string]*domain.DepartmentStat)
	deptSessions := make(map[string]map[string]struct{})
	for _, scr := range screens {
		stat, ok := byDept[scr.Department]
		if !ok {
			stat = &domain.DepartmentStat{Department: scr.Department}
			byDept[scr.Department] = stat
			deptSessions[scr.Department] = make(map[string]struct{})
		}
		stat.Scans++
		switch scr.Status {
		case domain.ScanReparable:
			stat.Reparable++
		case domain.ScanBeyondRepair:
			stat.BeyondRepair++
		case domain.ScanHealthy:
			stat.Healthy++
		}
		deptSessions[scr.Department][scr.SessionRef] = struct{}{}
	}
	sessionIDs := make(map[string]struct{}, len(sessions))
	for _, sess := range sessions {
		sessionIDs[sess.SourceSessionID] = struct{}{}
	}

	res := make([]domain.DepartmentStat, 0, len(byDept))
	for dept, stat := range byDept {
		for ref := range deptSessions[dept] {
			if _, ok := sessionIDs[ref]; ok {
				stat.Sessions++
			}
		}
		res = append(res, *stat)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Department < res[j].Department })
	return res
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
