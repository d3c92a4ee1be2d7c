package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

var weekdayNames = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// parseDay accepts an ISO date, "today", or a weekday name resolved within
// the week containing anchor
func parseDay(raw string, anchor, now time.Time) (time.Time, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "today" {
		return timeutil.StartOfDay(now), nil
	}
	if offset, ok := weekdayNames[raw]; ok {
		monday, _ := timeutil.WeekBounds(anchor)
		return monday.AddDate(0, 0, offset), nil
	}
	day, err := timeutil.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: use YYYY-MM-DD, today or a weekday name", raw)
	}
	return day, nil
}

// parseClock validates an "HH:MM" argument
func parseClock(raw string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid time %q: use HH:MM", raw)
	}
	return t.Format("15:04"), nil
}
