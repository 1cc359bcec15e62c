// internal/services/period_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodForDate(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		number    int
		startDay  int
		endDay    int
	}{
		{"first day of month", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), 1, 1, 10},
		{"day ten closes first window", time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), 1, 1, 10},
		{"day eleven opens second window", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), 2, 11, 20},
		{"day twenty closes second window", time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC), 2, 11, 20},
		{"day twenty-one opens third window", time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC), 3, 21, 31},
		{"last of a 31-day month", time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC), 3, 21, 31},
		{"february non-leap ends on 28", time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC), 3, 21, 28},
		{"february leap year ends on 29", time.Date(2028, 2, 25, 0, 0, 0, 0, time.UTC), 3, 21, 29},
		{"30-day month third window", time.Date(2026, 4, 30, 6, 0, 0, 0, time.UTC), 3, 21, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds := PeriodForDate(tt.date)
			assert.Equal(t, tt.number, bounds.Number)
			assert.Equal(t, tt.startDay, bounds.Start.Day())
			assert.Equal(t, tt.endDay, bounds.End.Day())
			assert.Equal(t, 0, bounds.Start.Hour())
			assert.Equal(t, 23, bounds.End.Hour())
			assert.Equal(t, 59, bounds.End.Minute())
			assert.Equal(t, 999000000, bounds.End.Nanosecond())
		})
	}
}

func TestPeriodForDatePreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	bounds := PeriodForDate(time.Date(2026, 6, 5, 10, 0, 0, 0, loc))
	assert.Equal(t, loc, bounds.Start.Location())
	assert.Equal(t, loc, bounds.End.Location())
}

func TestDeadlineSkipsWeekends(t *testing.T) {
	tests := []struct {
		name string
		end  time.Time
		want time.Time
	}{
		{
			// Wednesday end: Thu and Fri count
			"weekday end",
			time.Date(2026, 6, 10, 23, 59, 59, 999000000, time.UTC), // Wednesday
			time.Date(2026, 6, 12, 23, 59, 59, 999000000, time.UTC), // Friday
		},
		{
			// Thursday end: Fri counts, Sat/Sun skipped, Mon counts
			"deadline crosses weekend",
			time.Date(2026, 6, 18, 23, 59, 59, 999000000, time.UTC), // Thursday
			time.Date(2026, 6, 22, 23, 59, 59, 999000000, time.UTC), // Monday
		},
		{
			// Friday end: Sat/Sun skipped, Mon and Tue count
			"friday end lands on tuesday",
			time.Date(2026, 6, 19, 23, 59, 59, 999000000, time.UTC), // Friday
			time.Date(2026, 6, 23, 23, 59, 59, 999000000, time.UTC), // Tuesday
		},
		{
			// Saturday end: Sun skipped, Mon and Tue count
			"saturday end lands on tuesday",
			time.Date(2026, 6, 20, 23, 59, 59, 999000000, time.UTC), // Saturday
			time.Date(2026, 6, 23, 23, 59, 59, 999000000, time.UTC), // Tuesday
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deadline(tt.end)
			assert.Equal(t, tt.want, got)
			wd := got.Weekday()
			assert.NotEqual(t, time.Saturday, wd)
			assert.NotEqual(t, time.Sunday, wd)
		})
	}
}

func TestPeriodBoundsForMonthTilesExactly(t *testing.T) {
	months := []struct {
		year  int
		month time.Month
	}{
		{2026, time.January},
		{2026, time.February},
		{2028, time.February},
		{2026, time.April},
		{2026, time.December},
	}

	for _, m := range months {
		bounds := PeriodBoundsForMonth(m.year, m.month)

		assert.Equal(t, 1, bounds[0].Number)
		assert.Equal(t, 2, bounds[1].Number)
		assert.Equal(t, 3, bounds[2].Number)

		// Windows are adjacent: each start is exactly 1ms after the prior end.
		assert.Equal(t, bounds[0].End.Add(time.Millisecond), bounds[1].Start)
		assert.Equal(t, bounds[1].End.Add(time.Millisecond), bounds[2].Start)

		// First instant of the month and last instant of the month.
		assert.Equal(t, time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC), bounds[0].Start)
		firstOfNext := time.Date(m.year, m.month+1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, firstOfNext.Add(-time.Millisecond), bounds[2].End)
	}
}

func TestPeriodForDateMatchesMonthBounds(t *testing.T) {
	// Every day of a month maps into exactly the window that contains it.
	year, month := 2026, time.May
	bounds := PeriodBoundsForMonth(year, month)

	for day := 1; day <= 31; day++ {
		date := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
		derived := PeriodForDate(date)

		window := bounds[derived.Number-1]
		assert.Equal(t, window.Start, derived.Start, "day %d", day)
		assert.Equal(t, window.End, derived.End, "day %d", day)
		assert.False(t, date.Before(window.Start), "day %d", day)
		assert.False(t, date.After(window.End), "day %d", day)
	}
}
