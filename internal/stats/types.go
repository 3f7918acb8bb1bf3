package stats

import (
	"time"
)

// Event marks a task's entry into a workflow state. Events are scoped to one
// project by the state-name namespace and are only meaningful in timestamp
// order.
type Event struct {
	At      time.Time
	TaskGID string
	State   string
}

// PeriodCounts is the occupancy snapshot emitted when a reporting period
// closes: one count per configured CFD state, in configured order, plus the
// number of tasks that entered a done state during the period.
type PeriodCounts struct {
	Date        time.Time
	StateCounts []int
	DoneCount   int
}

// PeriodDurations carries the p90 dwell time in seconds per configured CFD
// state for one closed period. States with no samples report 0.
type PeriodDurations struct {
	Date       time.Time
	P90Seconds []int64
}

// CFD is the full period table for one project, together with the state
// configuration the formatting layer needs to render columns.
type CFD struct {
	CFDStates  []string
	DoneStates []string
	Counts     []PeriodCounts
	Durations  []PeriodDurations
}

// ProjectReport binds a configured label to its resolved project name and
// aggregated flow tables.
type ProjectReport struct {
	Label string
	Name  string
	CFD   CFD
}

// Report is the output of one full aggregation run.
type Report struct {
	Projects []ProjectReport
}
