package engine

import (
	"errors"
	"testing"
	"time"

	"screensync/pkg/domain"
	"screensync/pkg/store"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestOrchestrator(t *testing.T, source store.Source, replica store.Replica) *Orchestrator {
	t.Helper()
	orch, err := New(Config{Source: source, Replica: replica, Now: fixedClock})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return orch
}

// seedScanningDay loads one technician in department A with an open
// session holding a Reparable and a Healthy scan.
func seedScanningDay(src *store.MemorySource) {
	src.AddUser(domain.SourceUser{ID: "u1", Department: "A", Username: "tech1", PasswordHash: "x"})
	src.AddSession(domain.SourceSession{ID: "s1", TechnicianID: "u1", StartTime: testNow.Add(-time.Hour)})
	src.AddScan(domain.SourceScan{ID: "c1", Barcode: "B-1", Status: domain.ScanReparable, Timestamp: testNow.Add(-30 * time.Minute), SessionID: "s1"})
	src.AddScan(domain.SourceScan{ID: "c2", Barcode: "B-2", Status: domain.ScanHealthy, Timestamp: testNow.Add(-20 * time.Minute), SessionID: "s1"})
}

func TestRunFullSyncScenario(t *testing.T) {
	src := store.NewMemorySource()
	seedScanningDay(src)
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, src, replica)

	summary, err := orch.RunFullSync()
	if err != nil {
		t.Fatalf("run full sync: %v", err)
	}
	if summary.Users.Created != 1 || summary.Sessions.Created != 1 || summary.Screens.Created != 2 {
		t.Fatalf("unexpected created counts: %+v", summary)
	}

	user, ok, err := replica.GetUserBySourceID("u1")
	if err != nil || !ok {
		t.Fatalf("replica user missing: ok=%v err=%v", ok, err)
	}
	if user.SyncVersion != 1 {
		t.Fatalf("user syncVersion = %d, want 1", user.SyncVersion)
	}
	if user.Role != domain.RoleTechnician || !user.IsActive {
		t.Fatalf("unexpected user defaults: %+v", user)
	}

	sess, ok, _ := replica.GetSessionBySourceID("s1")
	if !ok {
		t.Fatalf("replica session missing")
	}
	if sess.Status != domain.SessionActive {
		t.Fatalf("session status = %q, want active", sess.Status)
	}
	if sess.ScanCount != 2 || sess.ReparableCount != 1 || sess.HealthyCount != 1 || sess.BeyondRepairCount != 0 {
		t.Fatalf("unexpected session counters: %+v", sess)
	}
	if sess.DurationMs != nil {
		t.Fatalf("open session should have no duration")
	}

	for _, id := range []string{"c1", "c2"} {
		scr, ok, _ := replica.GetScreenBySourceID(id)
		if !ok {
			t.Fatalf("replica screen %s missing", id)
		}
		if scr.Department != "A" || scr.TechnicianID != "u1" || scr.SessionRef != "s1" {
			t.Fatalf("screen %s denormalization wrong: %+v", id, scr)
		}
		if scr.ActionTaken != domain.ActionNone {
			t.Fatalf("screen %s actionTaken = %q, want none", id, scr.ActionTaken)
		}
	}

	stats, ok, _ := replica.GetStatisticsByDate(startOfDayUTC(testNow))
	if !ok {
		t.Fatalf("daily statistics missing")
	}
	if stats.TotalScans != 2 || stats.TotalReparable != 1 || stats.TotalHealthy != 1 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.TotalSessions != 1 || stats.ActiveTechnicianCount != 1 {
		t.Fatalf("unexpected session stats: %+v", stats)
	}
	if len(stats.DepartmentBreakdown) != 1 {
		t.Fatalf("breakdown rows = %d, want 1", len(stats.DepartmentBreakdown))
	}
	dept := stats.DepartmentBreakdown[0]
	if dept.Department != "A" || dept.Scans != 2 || dept.Reparable != 1 || dept.Healthy != 1 || dept.Sessions != 1 {
		t.Fatalf("unexpected breakdown: %+v", dept)
	}

	logs, _ := replica.ListRunLogs(0)
	if len(logs) != 1 {
		t.Fatalf("run log rows = %d, want 1", len(logs))
	}
	entry := logs[0]
	if entry.Status != domain.RunSuccess || entry.Operation != "full_sync" {
		t.Fatalf("unexpected run log: %+v", entry)
	}
	// users 1 + session 1 + screens 2 + statistics 1
	if entry.RecordsProcessed != 5 || entry.RecordsCreated != 5 || entry.RecordsUpdated != 0 {
		t.Fatalf("unexpected run log counts: %+v", entry)
	}
}

func TestRunFullSyncIdempotent(t *testing.T) {
	src := store.NewMemorySource()
	seedScanningDay(src)
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, src, replica)

	if _, err := orch.RunFullSync(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _, _ := replica.GetScreenBySourceID("c1")

	summary, err := orch.RunFullSync()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Screens.Created != 0 || summary.Screens.Updated != 2 {
		t.Fatalf("second run should update, not create: %+v", summary.Screens)
	}
	if replica.ScreenCount() != 2 || replica.UserCount() != 1 {
		t.Fatalf("second run created duplicates")
	}

	second, _, _ := replica.GetScreenBySourceID("c1")
	if second.SyncVersion != first.SyncVersion+1 {
		t.Fatalf("syncVersion = %d after second run, want %d", second.SyncVersion, first.SyncVersion+1)
	}
	first.SyncVersion = second.SyncVersion
	first.LastSynced = second.LastSynced
	if first != second {
		t.Fatalf("field values changed between identical runs:\n%+v\n%+v", first, second)
	}
}

func TestSyncVersionMonotonic(t *testing.T) {
	src := store.NewMemorySource()
	src.AddUser(domain.SourceUser{ID: "u1", Department: "A", Username: "tech1"})
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, src, replica)

	for want := 1; want <= 3; want++ {
		if _, err := orch.RunFullSync(); err != nil {
			t.Fatalf("run %d: %v", want, err)
		}
		user, _, _ := replica.GetUserBySourceID("u1")
		if user.SyncVersion != want {
			t.Fatalf("syncVersion after run %d = %d, want %d", want, user.SyncVersion, want)
		}
	}
}

// failingSource fails the bulk scan fetch, simulating connectivity loss
// partway through a run.
type failingSource struct {
	*store.MemorySource
}

func (f failingSource) ListScans() ([]domain.SourceScan, error) {
	return nil, errors.New("connection reset")
}

func TestRunFullSyncFetchErrorAbortsAndLogs(t *testing.T) {
	src := store.NewMemorySource()
	seedScanningDay(src)
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, failingSource{src}, replica)

	_, err := orch.RunFullSync()
	if err == nil {
		t.Fatalf("expected run error")
	}

	// The user phase completed before the failure; later phases did not run.
	if replica.UserCount() != 1 {
		t.Fatalf("user phase should have completed")
	}
	if replica.ScreenCount() != 0 {
		t.Fatalf("screen phase should not have run")
	}
	if _, ok, _ := replica.GetStatisticsByDate(startOfDayUTC(testNow)); ok {
		t.Fatalf("statistics phase should not have run")
	}

	logs, _ := replica.ListRunLogs(0)
	if len(logs) != 1 {
		t.Fatalf("run log rows = %d, want 1", len(logs))
	}
	if logs[0].Status != domain.RunError {
		t.Fatalf("run log status = %q, want error", logs[0].Status)
	}
	if logs[0].ErrorMessage == "" {
		t.Fatalf("run log should carry the error message")
	}
}

func TestRunFullSyncGuardRejectsConcurrentRun(t *testing.T) {
	src := store.NewMemorySource()
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, src, replica)

	orch.running.Store(true)
	if _, err := orch.RunFullSync(); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	orch.running.Store(false)
	if _, err := orch.RunFullSync(); err != nil {
		t.Fatalf("run after guard released: %v", err)
	}
}
