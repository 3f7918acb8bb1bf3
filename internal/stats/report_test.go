package stats

import (
	"reflect"
	"testing"
	"time"

	"kanban-metrics/internal/asana"
	"kanban-metrics/internal/config"
)

func TestBuildReport(t *testing.T) {
	data := testData()
	data.Tasks = []asana.Task{
		{GID: "t1", CreatedAt: ts("2024-01-01T08:00:00Z"), Memberships: membership("s3")},
		{GID: "t2", CreatedAt: ts("2024-01-02T08:00:00Z"), Memberships: membership("s2")},
	}
	data.TaskStories = []asana.TaskStories{
		{TaskGID: "t1", Stories: []asana.Story{
			{
				CreatedAt:       ts("2024-01-09T08:00:00Z"),
				ResourceSubtype: SectionChangedSubtype,
				Text:            `moved this Task from "To Do" to "Done" in Platform Team`,
			},
		}},
		{TaskGID: "t2"},
	}

	cfg := &config.ReportConfig{
		Projects: map[string]config.ProjectConfig{
			"platform": {
				GID:        "p1",
				Horizon:    ts("2024-01-01T00:00:00Z"),
				CFDStates:  []string{"To Do", "In Progress", "Done"},
				DoneStates: []string{"Done"},
			},
		},
	}

	report, err := BuildReport(cfg, data)
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}

	if len(report.Projects) != 1 {
		t.Fatalf("Expected 1 project report, got %d", len(report.Projects))
	}
	pr := report.Projects[0]
	if pr.Label != "platform" || pr.Name != "Platform Team" {
		t.Errorf("Project identity = %q / %q, want platform / Platform Team", pr.Label, pr.Name)
	}
	if !reflect.DeepEqual(pr.CFD.CFDStates, cfg.Projects["platform"].CFDStates) {
		t.Errorf("Echoed CFDStates = %v", pr.CFD.CFDStates)
	}

	// t1 synthesized into To Do at creation, moved to Done on Jan 9 (second
	// period); t2 synthesized into In Progress at creation. The Jan 9 event
	// closes the first week.
	if len(pr.CFD.Counts) != 1 {
		t.Fatalf("Expected 1 emitted period, got %d", len(pr.CFD.Counts))
	}
	pc := pr.CFD.Counts[0]
	if !pc.Date.Equal(ts("2024-01-01T00:00:00Z")) {
		t.Errorf("Period date = %v, want 2024-01-01", pc.Date)
	}
	if !reflect.DeepEqual(pc.StateCounts, []int{1, 1, 0}) {
		t.Errorf("StateCounts = %v, want [1 1 0]", pc.StateCounts)
	}
	if pc.DoneCount != 0 {
		t.Errorf("DoneCount = %d, want 0", pc.DoneCount)
	}
}

func TestBuildReportUnknownProjectGID(t *testing.T) {
	cfg := &config.ReportConfig{
		Projects: map[string]config.ProjectConfig{
			"ghost": {
				GID:       "nope",
				Horizon:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				CFDStates: []string{"To Do"},
			},
		},
	}

	if _, err := BuildReport(cfg, testData()); err == nil {
		t.Fatal("Expected error for project gid missing from dataset, got nil")
	}
}
