package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

var (
	stamp = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	dir   = Directory{
		Users:     []model.User{{ID: "1", FirstName: "Sarah", LastName: "Johnson"}},
		Locations: []model.Location{{ID: "1", Name: "North Location", Address: "123 North St, Spokane, WA"}},
		Positions: []model.Position{{ID: "1", Name: "Math Tutor"}},
	}
)

func at(day, clock string) time.Time {
	t, err := time.Parse(model.LocalTimeLayout, day+"T"+clock+":00")
	if err != nil {
		panic(err)
	}
	return t
}

func TestShiftsToCalendar(t *testing.T) {
	shifts := []model.Shift{
		{ID: "s1", UserID: "1", LocationID: "1", PositionID: "1", Start: at("2025-01-13", "14:00"), End: at("2025-01-13", "16:30"), Notes: "Student: Alex M. (Algebra)", Published: true},
		{ID: "s2", UserID: "9", LocationID: "7", PositionID: "1", Start: at("2025-01-14", "15:00"), End: at("2025-01-14", "17:00")},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ShiftsToCalendar("Week of Jan 13", shifts, dir, stamp)))
	out := buf.String()

	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Contains(t, out, "UID:shift-s1@swiftshift")
	assert.Contains(t, out, "DTSTART:20250113T140000\r\n")
	assert.Contains(t, out, "DTEND:20250113T163000\r\n")
	assert.Contains(t, out, "SUMMARY:Sarah Johnson - Math Tutor")
	assert.Contains(t, out, "North Location")
	assert.Contains(t, out, "SUMMARY:9 - Math Tutor")
	assert.Equal(t, 1, strings.Count(out, "STATUS:TENTATIVE"))

	cal, err := ical.NewDecoder(strings.NewReader(out)).Decode()
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 2)
}

func TestAvailabilityRoundTrip(t *testing.T) {
	events := []model.AvailabilityEvent{
		{ID: "a1", UserID: "1", DayOfWeek: 3, StartTime: "14:00", EndTime: "17:00", Preference: model.PreferenceAvailable, Notes: "Prefers Valley"},
		{ID: "a2", UserID: "1", DayOfWeek: 5, StartTime: "15:00", EndTime: "16:00", Preference: model.PreferenceUnavailable},
	}
	cal, err := AvailabilityToCalendar("Sarah", events, dir, at("2025-01-15", "09:00"), stamp)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, cal))
	assert.Contains(t, buf.String(), "RRULE:FREQ=WEEKLY;BYDAY=WE")
	assert.Contains(t, buf.String(), "DTSTART:20250115T140000")

	n := 0
	imported, err := ImportAvailability(&buf, "1", func() string { n++; return "new" + string(rune('0'+n)) })
	require.NoError(t, err)
	require.Len(t, imported, 2)

	assert.Equal(t, model.AvailabilityEvent{
		ID: "new1", UserID: "1", DayOfWeek: 3, StartTime: "14:00", EndTime: "17:00",
		Preference: model.PreferenceAvailable, Notes: "Prefers Valley",
	}, imported[0])
	assert.Equal(t, 5, imported[1].DayOfWeek)
	assert.Equal(t, model.PreferenceUnavailable, imported[1].Preference)
}

func TestAvailabilityToCalendar_RejectsInvertedTimes(t *testing.T) {
	events := []model.AvailabilityEvent{{ID: "a1", UserID: "1", DayOfWeek: 1, StartTime: "17:00", EndTime: "14:00", Preference: model.PreferenceAvailable}}
	_, err := AvailabilityToCalendar("", events, dir, stamp, stamp)
	assert.Error(t, err)
}

func TestImportAvailability_Malformed(t *testing.T) {
	_, err := ImportAvailability(strings.NewReader("not a calendar"), "1", func() string { return "x" })
	assert.Error(t, err)
}

func TestClosures(t *testing.T) {
	closures, err := ParseClosures([]ClosureRule{
		{Name: "Staff training", RRule: "FREQ=MONTHLY;BYDAY=1MO", Start: "2025-01-01"},
	})
	require.NoError(t, err)

	name, closed := closures.ClosedOn(at("2025-02-03", "15:00"))
	assert.True(t, closed)
	assert.Equal(t, "Staff training", name)

	_, closed = closures.ClosedOn(at("2025-02-10", "15:00"))
	assert.False(t, closed)

	days := []time.Time{at("2025-02-03", "00:00"), at("2025-02-04", "00:00")}
	assert.Equal(t, days[1:], closures.OpenDays(days))

	shifts := []model.Shift{{ID: "a", Start: at("2025-02-03", "14:00")}, {ID: "b", Start: at("2025-02-04", "14:00")}}
	closedShifts := closures.ClosedShifts(shifts)
	require.Len(t, closedShifts, 1)
	assert.Equal(t, "a", closedShifts[0].ID)
}

func TestParseClosures_Invalid(t *testing.T) {
	_, err := ParseClosures([]ClosureRule{{RRule: "FREQ=NEVER", Start: "2025-01-01"}})
	assert.Error(t, err)

	_, err = ParseClosures([]ClosureRule{{RRule: "FREQ=WEEKLY", Start: "01/01/2025"}})
	assert.Error(t, err)
}

func TestOccurrences_SkipsClosedDays(t *testing.T) {
	closures, err := ParseClosures([]ClosureRule{{Name: "Holiday", RRule: "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=20", Start: "2025-01-01"}})
	require.NoError(t, err)

	event := ical.NewComponent(ical.CompEvent)
	setFloating(event, ical.PropDateTimeStart, at("2025-01-06", "14:00"))
	event.Props.SetText(ical.PropRecurrenceRule, "FREQ=WEEKLY;BYDAY=MO")

	got, err := closures.Occurrences(event, at("2025-01-01", "00:00"), at("2025-01-31", "23:59"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		at("2025-01-06", "14:00"),
		at("2025-01-13", "14:00"),
		at("2025-01-27", "14:00"),
	}, got)
}

func TestOccurrences_SingleEvent(t *testing.T) {
	event := ical.NewComponent(ical.CompEvent)
	setFloating(event, ical.PropDateTimeStart, at("2025-01-06", "14:00"))

	got, err := Closures{}.Occurrences(event, at("2025-01-01", "00:00"), at("2025-01-31", "00:00"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at("2025-01-06", "14:00")}, got)

	got, err = Closures{}.Occurrences(event, at("2025-02-01", "00:00"), at("2025-02-28", "00:00"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
