package store

import (
	"testing"
	"time"

	"screensync/pkg/domain"
)

func TestStatisticsBreakdownJSONMapping(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	in := domain.DailyStatistics{
		Date:                  day,
		TotalScans:            7,
		TotalReparable:        3,
		TotalBeyondRepair:     1,
		TotalHealthy:          3,
		TotalSessions:         2,
		ActiveTechnicianCount: 2,
		DepartmentBreakdown: []domain.DepartmentStat{
			{Department: "Assembly", Scans: 4, Reparable: 2, BeyondRepair: 1, Healthy: 1, Sessions: 1},
			{Department: "QC", Scans: 3, Reparable: 1, Healthy: 2, Sessions: 1},
		},
		LastSynced:  day.Add(10 * time.Hour),
		SyncVersion: 3,
	}

	model, err := statisticsToModel(in)
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	out, err := statisticsFromModel(model)
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	if len(out.DepartmentBreakdown) != 2 {
		t.Fatalf("breakdown rows = %d, want 2", len(out.DepartmentBreakdown))
	}
	if out.DepartmentBreakdown[0] != in.DepartmentBreakdown[0] || out.DepartmentBreakdown[1] != in.DepartmentBreakdown[1] {
		t.Fatalf("breakdown changed through jsonb mapping:\n%+v\n%+v", in.DepartmentBreakdown, out.DepartmentBreakdown)
	}
	if out.SyncVersion != 3 || out.TotalScans != 7 {
		t.Fatalf("scalar fields changed: %+v", out)
	}
}

func TestStatisticsNullBreakdown(t *testing.T) {
	out, err := statisticsFromModel(DailyStatisticsModel{SyncVersion: 1})
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	if out.DepartmentBreakdown != nil {
		t.Fatalf("expected nil breakdown, got %+v", out.DepartmentBreakdown)
	}
}
