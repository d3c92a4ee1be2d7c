package timeutil

import (
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// WorkingDays is the number of operating days per week (Monday to Friday)
const WorkingDays = 5

// StartOfDay truncates t to midnight, keeping its location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseTimeForDay anchors an "HH:MM" time-of-day onto day.
// Missing or unparseable components default to zero, so "15" is 15:00 and "" is midnight.
func ParseTimeForDay(day time.Time, hhmm string) time.Time {
	hours, minutes := splitClock(hhmm)
	return time.Date(day.Year(), day.Month(), day.Day(), hours, minutes, 0, 0, day.Location())
}

// ClockMinutes converts "HH:MM" into minutes from midnight
func ClockMinutes(hhmm string) int {
	hours, minutes := splitClock(hhmm)
	return hours*60 + minutes
}

// FormatClock renders minutes from midnight as "HH:MM"
func FormatClock(minutes int) string {
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format("15:04")
}

func splitClock(hhmm string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	hours, _ := strconv.Atoi(parts[0])
	minutes := 0
	if len(parts) > 1 {
		minutes, _ = strconv.Atoi(parts[1])
	}
	return hours, minutes
}

// MinutesFromMidnight returns the wall-clock minute of t
func MinutesFromMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DateKey formats t as an ISO calendar date (yyyy-MM-dd)
func DateKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

// IsDateWithinRange reports whether dayKey lies in the inclusive [startDate, endDate] range.
// All three are ISO dates, so lexical order is calendar order.
func IsDateWithinRange(dayKey, startDate, endDate string) bool {
	return dayKey >= startDate && dayKey <= endDate
}

// ISOWeekday returns 1 for Monday through 7 for Sunday
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekBounds returns the Monday and Sunday (both at midnight) of the week containing t
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day := StartOfDay(t)
	monday := day.AddDate(0, 0, -(ISOWeekday(day) - 1))
	return monday, monday.AddDate(0, 0, 6)
}

// WeekDays returns the operating days (Monday to Friday) of the week containing t
func WeekDays(t time.Time) []time.Time {
	monday, _ := WeekBounds(t)
	days := make([]time.Time, WorkingDays)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// DefaultDayIndex picks the weekday column to show first: today when it is a
// weekday of the displayed week, Monday otherwise
func DefaultDayIndex(today time.Time) int {
	wd := ISOWeekday(today)
	if wd > WorkingDays {
		return 0
	}
	return wd - 1
}

// ParseDate parses an ISO calendar date into midnight UTC
func ParseDate(s string) (time.Time, error) {
	return time.Parse(model.DateLayout, s)
}
