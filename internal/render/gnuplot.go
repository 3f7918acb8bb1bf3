// Package render formats aggregated flow tables into gnuplot data and script
// files, one set per project: <label>_cfd.dat, <label>_p90_durations.dat,
// <label>_done.dat and <label>.gnuplot.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kanban-metrics/internal/stats"

	"github.com/rs/zerolog/log"
)

const dateFormat = "2006-01-02"

// WriteProject writes all output files for one project report into outputDir.
func WriteProject(rep stats.ProjectReport, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	cfdFile := rep.Label + "_cfd.dat"
	durationFile := rep.Label + "_p90_durations.dat"
	doneFile := rep.Label + "_done.dat"

	files := []struct {
		name    string
		content string
	}{
		{cfdFile, cfdData(rep)},
		{durationFile, durationData(rep)},
		{doneFile, doneData(rep)},
		{rep.Label + ".gnuplot", script(rep, cfdFile, durationFile, doneFile)},
	}

	for _, f := range files {
		path := filepath.Join(outputDir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Info().Str("path", path).Msg("Wrote output file")
	}

	return nil
}

func header(states []string) string {
	var sb strings.Builder
	sb.WriteString("# date")
	for _, state := range states {
		fmt.Fprintf(&sb, " %q", state)
	}
	sb.WriteString("\n")
	return sb.String()
}

func cfdData(rep stats.ProjectReport) string {
	var sb strings.Builder
	sb.WriteString(header(rep.CFD.CFDStates))
	for _, pc := range rep.CFD.Counts {
		sb.WriteString(pc.Date.Format(dateFormat))
		for _, count := range pc.StateCounts {
			fmt.Fprintf(&sb, " %d", count)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func durationData(rep stats.ProjectReport) string {
	var sb strings.Builder
	sb.WriteString(header(rep.CFD.CFDStates))
	for _, pd := range rep.CFD.Durations {
		sb.WriteString(pd.Date.Format(dateFormat))
		for _, seconds := range pd.P90Seconds {
			// Plotted in days.
			fmt.Fprintf(&sb, " %g", float64(seconds)/(24.0*60.0*60.0))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func doneData(rep stats.ProjectReport) string {
	var sb strings.Builder
	sb.WriteString("# date done_count\n")
	for _, pc := range rep.CFD.Counts {
		fmt.Fprintf(&sb, "%s %d\n", pc.Date.Format(dateFormat), pc.DoneCount)
	}
	return sb.String()
}

func script(rep stats.ProjectReport, cfdFile, durationFile, doneFile string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `
set terminal png enhanced font "Arial,10" fontscale 1.0 size 1024,768
set output "%s.png"
set multiplot layout 3,1 title "%s"
`, rep.Label, rep.Name)

	fmt.Fprintf(&sb, `# CFD
set title "Cumulative Tasks in State - Count"
set key left top outside
set xdata time
set timefmt "%%Y-%%m-%%d"
%s
`, stackedPlotLine(cfdFile, rep.CFD.CFDStates))

	fmt.Fprintf(&sb, `# P90 Duration (Days)
set title "P90 Age Tasks in State - Days"
set key left top outside
set xdata time
set timefmt "%%Y-%%m-%%d"
%s
`, stackedPlotLine(durationFile, rep.CFD.CFDStates))

	fmt.Fprintf(&sb, `# Tasks "Done" per period
set title "Throughput - Tasks Transitioning Into %s - Count"
unset key
set xdata time
set timefmt "%%Y-%%m-%%d"
plot "%s" using 1:2 with filledcurve x1
`, strings.Join(rep.CFD.DoneStates, ", "), doneFile)

	return sb.String()
}

// stackedPlotLine builds the plot command stacking states as filled curves.
// Column 1 is the date; state columns start at 2. Each state plots the sum
// of its own column and every later one so earlier states overdraw on top.
func stackedPlotLine(fileName string, states []string) string {
	var sb strings.Builder
	sb.WriteString("plot")
	maxCol := len(states) + 1
	for idx, state := range states {
		if idx > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, ` "%s" using 1:(%s) with filledcurve x1 title "%s"`,
			fileName, colSumExpression(idx+2, maxCol), state)
	}
	return sb.String()
}

// colSumExpression returns "$cur+$cur+1+...+$max".
func colSumExpression(cur, max int) string {
	var sb strings.Builder
	for i := cur; i <= max; i++ {
		if i > cur {
			sb.WriteString("+")
		}
		fmt.Fprintf(&sb, "$%d", i)
	}
	return sb.String()
}
