package stats

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"MondayMidnight",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"MidWeek",
			time.Date(2024, 1, 4, 15, 30, 0, 0, time.UTC), // Thursday
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"Sunday",
			time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"MonthBoundary",
			time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), // Thursday
			time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
