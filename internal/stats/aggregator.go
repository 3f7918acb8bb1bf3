package stats

import (
	"slices"
	"time"
)

// taskState is the aggregator's last-known state for one task.
type taskState struct {
	state     string
	enteredAt time.Time
}

// aggregator is the per-project accumulator replaying one ordered event
// stream through fixed weekly periods. All mutable state is private to one
// project's pass and discarded afterwards.
type aggregator struct {
	periodStart time.Time
	periodEnd   time.Time

	latest map[string]taskState // task gid -> last known state
	dwell  map[string][]int64   // state -> dwell samples (seconds), current period only
	done   int                  // tasks entering a done state, current period only

	cfdStates  []string
	doneStates []string

	counts    []PeriodCounts
	durations []PeriodDurations
}

// Aggregate replays a project's event stream and returns the snapshot and
// duration table for every fully elapsed period. The first period starts on
// the Monday of the horizon's ISO week at 00:00:00 UTC; a period is emitted
// only once an event reaches the following period, so the final open period
// is never flushed.
func Aggregate(events []Event, horizon time.Time, cfdStates, doneStates []string) ([]PeriodCounts, []PeriodDurations) {
	start := WeekStart(horizon)
	agg := &aggregator{
		periodStart: start,
		periodEnd:   start.AddDate(0, 0, 7),
		latest:      make(map[string]taskState),
		dwell:       make(map[string][]int64),
		cfdStates:   cfdStates,
		doneStates:  doneStates,
	}

	for _, ev := range events {
		agg.apply(ev)
	}

	return agg.counts, agg.durations
}

func (a *aggregator) apply(ev Event) {
	// An event at or past the period end closes the current period. One
	// event may close several: each crossing emits its own snapshot and
	// duration row.
	for !ev.At.Before(a.periodEnd) {
		a.rollover()
	}

	if prev, ok := a.latest[ev.TaskGID]; ok {
		seconds := int64(ev.At.Sub(prev.enteredAt).Seconds())
		a.dwell[prev.state] = append(a.dwell[prev.state], seconds)
	}
	a.latest[ev.TaskGID] = taskState{state: ev.State, enteredAt: ev.At}

	if slices.Contains(a.doneStates, ev.State) {
		a.done++
	}
}

// rollover finalizes the current period and advances one week.
//
// Occupancy is a full recount of every tracked task's last known state as of
// the boundary instant, never an incremental counter: tasks with no event in
// the closed period must still appear. The same sweep synthesizes the still
// open dwell span from each task's last state entry up to the boundary, so
// the percentiles reflect tasks currently sitting in a state, not only
// completed spans.
func (a *aggregator) rollover() {
	occupancy := make(map[string]int, len(a.latest))
	for _, ts := range a.latest {
		occupancy[ts.state]++
		seconds := int64(a.periodEnd.Sub(ts.enteredAt).Seconds())
		a.dwell[ts.state] = append(a.dwell[ts.state], seconds)
	}

	stateCounts := make([]int, len(a.cfdStates))
	for i, s := range a.cfdStates {
		stateCounts[i] = occupancy[s]
	}
	a.counts = append(a.counts, PeriodCounts{
		Date:        a.periodStart,
		StateCounts: stateCounts,
		DoneCount:   a.done,
	})

	p90s := make([]int64, len(a.cfdStates))
	for i, s := range a.cfdStates {
		if samples := a.dwell[s]; len(samples) > 0 {
			slices.Sort(samples)
			p90s[i] = P90(samples)
		}
	}
	a.durations = append(a.durations, PeriodDurations{
		Date:       a.periodStart,
		P90Seconds: p90s,
	})

	// Dwell samples and throughput are scoped to a single period.
	a.dwell = make(map[string][]int64)
	a.done = 0

	a.periodStart = a.periodEnd
	a.periodEnd = a.periodEnd.AddDate(0, 0, 7)
}
