package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeForDay(t *testing.T) {
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"hours and minutes", "14:30", time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)},
		{"hours only", "15", time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)},
		{"empty defaults to midnight", "", day},
		{"ignores time on anchor day", "09:05", time.Date(2025, 1, 15, 9, 5, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTimeForDay(day.Add(7*time.Hour), tt.input))
		})
	}
}

func TestIsDateWithinRange(t *testing.T) {
	assert.True(t, IsDateWithinRange("2025-01-10", "2025-01-10", "2025-01-12"))
	assert.True(t, IsDateWithinRange("2025-01-11", "2025-01-10", "2025-01-12"))
	assert.True(t, IsDateWithinRange("2025-01-12", "2025-01-10", "2025-01-12"))
	assert.False(t, IsDateWithinRange("2025-01-13", "2025-01-10", "2025-01-12"))
	assert.False(t, IsDateWithinRange("2025-01-09", "2025-01-10", "2025-01-12"))
}

func TestWeekBounds(t *testing.T) {
	// Wednesday
	start, end := WeekBounds(time.Date(2025, 1, 15, 16, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC), end)

	// Sunday belongs to the week that started the previous Monday
	start, _ = WeekBounds(time.Date(2025, 1, 19, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), start)
}

func TestWeekDays(t *testing.T) {
	days := WeekDays(time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC))

	assert.Len(t, days, 5)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Friday, days[4].Weekday())
	assert.Equal(t, "2025-01-13", DateKey(days[0]))
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 5, ISOWeekday(time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 7, ISOWeekday(time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC)))
}

func TestDefaultDayIndex(t *testing.T) {
	assert.Equal(t, 2, DefaultDayIndex(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DefaultDayIndex(time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC)))
}

func TestClockHelpers(t *testing.T) {
	assert.Equal(t, 14*60+30, ClockMinutes("14:30"))
	assert.Equal(t, "14:30", FormatClock(14*60+30))
	assert.Equal(t, 19*60, MinutesFromMidnight(time.Date(2025, 1, 15, 19, 0, 0, 0, time.UTC)))
}
