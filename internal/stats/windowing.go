package stats

import "time"

// WeekStart normalizes a timestamp to the Monday of its ISO week at
// 00:00:00 UTC. Reporting periods are anchored here and advance in
// 7-day steps.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday -> 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, time.UTC)
}
