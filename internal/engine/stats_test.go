package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"screensync/pkg/domain"
	"screensync/pkg/store"
)

func TestAggregateTotalsMatchBreakdownSums(t *testing.T) {
	replica := store.NewMemoryReplica()
	rng := rand.New(rand.NewSource(7))

	scanID := 0
	for d := 0; d < 4; d++ {
		dept := fmt.Sprintf("dept-%d", d)
		sessionID := fmt.Sprintf("s-%d", d)
		if err := replica.SaveSession(domain.ReplicaSession{
			SourceSessionID: sessionID,
			TechnicianID:    fmt.Sprintf("u-%d", d),
			StartTime:       testNow.Add(-time.Duration(d+1) * time.Hour),
			Status:          domain.SessionActive,
			SyncVersion:     1,
		}); err != nil {
			t.Fatalf("save session: %v", err)
		}
		for _, status := range []domain.ScanStatus{domain.ScanReparable, domain.ScanBeyondRepair, domain.ScanHealthy} {
			for i := 0; i < rng.Intn(5)+1; i++ {
				scanID++
				if err := replica.SaveScreen(domain.ReplicaScreen{
					SourceScreenID: fmt.Sprintf("c-%d", scanID),
					Barcode:        fmt.Sprintf("B-%d", scanID),
					Status:         status,
					Timestamp:      testNow.Add(-time.Duration(scanID) * time.Minute),
					SessionRef:     sessionID,
					TechnicianID:   fmt.Sprintf("u-%d", d),
					Department:     dept,
					ActionTaken:    domain.ActionNone,
					SyncVersion:    1,
				}); err != nil {
					t.Fatalf("save screen: %v", err)
				}
			}
		}
	}

	agg := aggregator{replica: replica, logger: slog.Default()}
	if _, err := agg.update(testNow); err != nil {
		t.Fatalf("update statistics: %v", err)
	}

	stats, ok, _ := replica.GetStatisticsByDate(startOfDayUTC(testNow))
	if !ok {
		t.Fatalf("statistics row missing")
	}
	var scans, reparable, beyondRepair, healthy int
	for _, d := range stats.DepartmentBreakdown {
		scans += d.Scans
		reparable += d.Reparable
		beyondRepair += d.BeyondRepair
		healthy += d.Healthy
	}
	if stats.TotalScans != scans {
		t.Fatalf("totalScans = %d, breakdown sum = %d", stats.TotalScans, scans)
	}
	if stats.TotalReparable != reparable || stats.TotalBeyondRepair != beyondRepair || stats.TotalHealthy != healthy {
		t.Fatalf("status totals do not match breakdown sums: %+v", stats)
	}
	if stats.TotalSessions != 4 || stats.ActiveTechnicianCount != 4 {
		t.Fatalf("unexpected session stats: %+v", stats)
	}
}

func TestAggregateEmptyWindowWritesZeroRow(t *testing.T) {
	replica := store.NewMemoryReplica()
	agg := aggregator{replica: replica, logger: slog.Default()}

	c, err := agg.update(testNow)
	if err != nil {
		t.Fatalf("update statistics: %v", err)
	}
	if c.Created != 1 {
		t.Fatalf("created = %d, want 1", c.Created)
	}
	stats, ok, _ := replica.GetStatisticsByDate(startOfDayUTC(testNow))
	if !ok {
		t.Fatalf("a day without activity must still be recorded")
	}
	if stats.TotalScans != 0 || stats.TotalSessions != 0 || stats.ActiveTechnicianCount != 0 {
		t.Fatalf("expected zero-valued row: %+v", stats)
	}
	if stats.SyncVersion != 1 {
		t.Fatalf("syncVersion = %d, want 1", stats.SyncVersion)
	}
}

func TestAggregateUpsertsByDate(t *testing.T) {
	replica := store.NewMemoryReplica()
	agg := aggregator{replica: replica, logger: slog.Default()}

	if _, err := agg.update(testNow); err != nil {
		t.Fatalf("first update: %v", err)
	}
	c, err := agg.update(testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if c.Updated != 1 || c.Created != 0 {
		t.Fatalf("same-day rerun should update in place: %+v", c)
	}
	stats, _, _ := replica.GetStatisticsByDate(startOfDayUTC(testNow))
	if stats.SyncVersion != 2 {
		t.Fatalf("syncVersion = %d, want 2", stats.SyncVersion)
	}
}

func TestAggregateIgnoresOtherDays(t *testing.T) {
	replica := store.NewMemoryReplica()
	if err := replica.SaveScreen(domain.ReplicaScreen{
		SourceScreenID: "old",
		Status:         domain.ScanHealthy,
		Timestamp:      testNow.AddDate(0, 0, -2),
		SessionRef:     "s-old",
		Department:     "A",
		SyncVersion:    1,
	}); err != nil {
		t.Fatalf("save screen: %v", err)
	}
	agg := aggregator{replica: replica, logger: slog.Default()}
	if _, err := agg.update(testNow); err != nil {
		t.Fatalf("update: %v", err)
	}
	stats, _, _ := replica.GetStatisticsByDate(startOfDayUTC(testNow))
	if stats.TotalScans != 0 {
		t.Fatalf("yesterday's scan leaked into today's rollup: %+v", stats)
	}
}
