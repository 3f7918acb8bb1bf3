package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kanban-metrics/internal/stats"
)

func sampleReport() stats.ProjectReport {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return stats.ProjectReport{
		Label: "platform",
		Name:  "Platform Team",
		CFD: stats.CFD{
			CFDStates:  []string{"To Do", "Done"},
			DoneStates: []string{"Done"},
			Counts: []stats.PeriodCounts{
				{Date: monday, StateCounts: []int{2, 1}, DoneCount: 1},
				{Date: monday.AddDate(0, 0, 7), StateCounts: []int{1, 2}, DoneCount: 1},
			},
			Durations: []stats.PeriodDurations{
				{Date: monday, P90Seconds: []int64{86400, 0}},
				{Date: monday.AddDate(0, 0, 7), P90Seconds: []int64{43200, 172800}},
			},
		},
	}
}

func TestWriteProject(t *testing.T) {
	dir := t.TempDir()

	if err := WriteProject(sampleReport(), dir); err != nil {
		t.Fatalf("WriteProject returned error: %v", err)
	}

	for _, name := range []string{
		"platform_cfd.dat",
		"platform_p90_durations.dat",
		"platform_done.dat",
		"platform.gnuplot",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Missing output file %s: %v", name, err)
		}
	}
}

func TestCFDDataContents(t *testing.T) {
	dir := t.TempDir()
	if err := WriteProject(sampleReport(), dir); err != nil {
		t.Fatalf("WriteProject returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "platform_cfd.dat"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")

	if lines[0] != `# date "To Do" "Done"` {
		t.Errorf("Header = %q", lines[0])
	}
	if lines[1] != "2024-01-01 2 1" {
		t.Errorf("First record = %q", lines[1])
	}
	if lines[2] != "2024-01-08 1 2" {
		t.Errorf("Second record = %q", lines[2])
	}
}

func TestDurationDataConvertsToDays(t *testing.T) {
	dir := t.TempDir()
	if err := WriteProject(sampleReport(), dir); err != nil {
		t.Fatalf("WriteProject returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "platform_p90_durations.dat"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")

	if lines[1] != "2024-01-01 1 0" {
		t.Errorf("First record = %q, want 86400s rendered as 1 day", lines[1])
	}
	if lines[2] != "2024-01-08 0.5 2" {
		t.Errorf("Second record = %q", lines[2])
	}
}

func TestScriptStacksColumns(t *testing.T) {
	dir := t.TempDir()
	if err := WriteProject(sampleReport(), dir); err != nil {
		t.Fatalf("WriteProject returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "platform.gnuplot"))
	if err != nil {
		t.Fatal(err)
	}
	script := string(raw)

	// Two states: first column plots $2+$3, second just $3.
	if !strings.Contains(script, `using 1:($2+$3) with filledcurve x1 title "To Do"`) {
		t.Errorf("Missing stacked To Do plot line in:\n%s", script)
	}
	if !strings.Contains(script, `using 1:($3) with filledcurve x1 title "Done"`) {
		t.Errorf("Missing Done plot line in:\n%s", script)
	}
	if !strings.Contains(script, `set multiplot layout 3,1 title "Platform Team"`) {
		t.Errorf("Missing multiplot header in:\n%s", script)
	}
}
