package engine

import (
	"testing"
	"time"

	"screensync/pkg/domain"
	"screensync/pkg/store"
)

func TestScreenSyncIsolationOnDanglingSession(t *testing.T) {
	src := store.NewMemorySource()
	seedScanningDay(src)
	// A scan whose session never existed in the source.
	src.AddScan(domain.SourceScan{ID: "c3", Barcode: "B-3", Status: domain.ScanHealthy, Timestamp: testNow.Add(-5 * time.Minute), SessionID: "ghost"})
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, src, replica)

	summary, err := orch.RunFullSync()
	if err != nil {
		t.Fatalf("run should not abort on a record error: %v", err)
	}
	if summary.Screens.Errors != 1 {
		t.Fatalf("screen errors = %d, want 1", summary.Screens.Errors)
	}
	if summary.Screens.Created != 2 {
		t.Fatalf("screen created = %d, want 2", summary.Screens.Created)
	}
	if _, ok, _ := replica.GetScreenBySourceID("c3"); ok {
		t.Fatalf("dangling scan must not reach the replica")
	}

	// Every synced screen still resolves to an existing replica session.
	for _, id := range []string{"c1", "c2"} {
		scr, ok, _ := replica.GetScreenBySourceID(id)
		if !ok {
			t.Fatalf("screen %s missing", id)
		}
		if _, ok, _ := replica.GetSessionBySourceID(scr.SessionRef); !ok {
			t.Fatalf("screen %s has dangling sessionRef %s", id, scr.SessionRef)
		}
	}

	logs, _ := replica.ListRunLogs(0)
	if len(logs) != 1 || logs[0].Status != domain.RunSuccess {
		t.Fatalf("record errors must not fail the run: %+v", logs)
	}
}

func TestScreenSyncErrorOnMissingTechnician(t *testing.T) {
	src := store.NewMemorySource()
	src.AddSession(domain.SourceSession{ID: "s1", TechnicianID: "ghost", StartTime: testNow.Add(-time.Hour)})
	src.AddScan(domain.SourceScan{ID: "c1", Barcode: "B-1", Status: domain.ScanReparable, Timestamp: testNow.Add(-30 * time.Minute), SessionID: "s1"})
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, src, replica)

	summary, err := orch.RunFullSync()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Screens.Errors != 1 || summary.Screens.Created != 0 {
		t.Fatalf("unexpected screen counters: %+v", summary.Screens)
	}
}

func TestScreenSyncPreservesManagementFields(t *testing.T) {
	src := store.NewMemorySource()
	seedScanningDay(src)
	replica := store.NewMemoryReplica()
	orch := newTestOrchestrator(t, src, replica)

	if _, err := orch.RunFullSync(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Management tooling takes an action on the screen between runs.
	actionAt := testNow.Add(-time.Minute)
	replica.SetScreenAction("c1", domain.ActionSentToRepair, &actionAt, "cracked corner")

	if _, err := orch.RunFullSync(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	got, _, _ := replica.GetScreenBySourceID("c1")
	if got.ActionTaken != domain.ActionSentToRepair || got.Notes != "cracked corner" {
		t.Fatalf("sync overwrote management fields: %+v", got)
	}
	if got.ActionTimestamp == nil || !got.ActionTimestamp.Equal(actionAt) {
		t.Fatalf("sync overwrote action timestamp: %+v", got)
	}
}
