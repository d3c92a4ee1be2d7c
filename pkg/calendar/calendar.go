// Package calendar exports shifts and availability as iCalendar data and
// expands recurring closures.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

const (
	ProductID = "-//SwiftShift//Schedule Export//EN"
	uidDomain = "swiftshift"

	// floatingLayout writes DATE-TIME values without a zone so calendar
	// clients show them at the same wall-clock time
	floatingLayout = "20060102T150405"
)

// Directory resolves ids to display names
type Directory struct {
	Users     []model.User
	Locations []model.Location
	Positions []model.Position
}

func (d Directory) userName(id string) string {
	for _, u := range d.Users {
		if u.ID == id {
			return u.FullName()
		}
	}
	return id
}

func (d Directory) location(id string) (model.Location, bool) {
	for _, l := range d.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return model.Location{}, false
}

func (d Directory) positionName(id string) string {
	for _, p := range d.Positions {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// NewCalendar creates an empty VCALENDAR
func NewCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	if name != "" {
		cal.Props.SetText(ical.PropName, name)
	}
	return cal
}

// ShiftsToCalendar creates one VEVENT per shift
func ShiftsToCalendar(name string, shifts []model.Shift, dir Directory, stamp time.Time) *ical.Calendar {
	cal := NewCalendar(name)
	for _, s := range shifts {
		cal.Children = append(cal.Children, shiftEvent(s, dir, stamp))
	}
	return cal
}

func shiftEvent(s model.Shift, dir Directory, stamp time.Time) *ical.Component {
	event := ical.NewComponent(ical.CompEvent)
	event.Props.SetText(ical.PropUID, fmt.Sprintf("shift-%s@%s", s.ID, uidDomain))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	setFloating(event, ical.PropDateTimeStart, s.Start)
	setFloating(event, ical.PropDateTimeEnd, s.End)

	summary := dir.userName(s.UserID)
	if position := dir.positionName(s.PositionID); position != "" {
		summary += " - " + position
	}
	event.Props.SetText(ical.PropSummary, summary)

	if loc, ok := dir.location(s.LocationID); ok {
		where := loc.Name
		if loc.Address != "" {
			where += ", " + loc.Address
		}
		event.Props.SetText(ical.PropLocation, where)
	}
	if s.Notes != "" {
		event.Props.SetText(ical.PropDescription, s.Notes)
	}
	if !s.Published {
		event.Props.SetText(ical.PropStatus, "TENTATIVE")
	}
	return event
}

// AvailabilityToCalendar creates a weekly recurring VEVENT per availability
// event, first occurring in the week of anchor
func AvailabilityToCalendar(name string, events []model.AvailabilityEvent, dir Directory, anchor, stamp time.Time) (*ical.Calendar, error) {
	cal := NewCalendar(name)
	monday, _ := timeutil.WeekBounds(anchor)

	for _, e := range events {
		day := monday.AddDate(0, 0, e.DayOfWeek-1)
		start := timeutil.ParseTimeForDay(day, e.StartTime)
		end := timeutil.ParseTimeForDay(day, e.EndTime)
		if !end.After(start) {
			return nil, fmt.Errorf("availability %s ends before it starts", e.ID)
		}

		event := ical.NewComponent(ical.CompEvent)
		event.Props.SetText(ical.PropUID, fmt.Sprintf("availability-%s@%s", e.ID, uidDomain))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		setFloating(event, ical.PropDateTimeStart, start)
		setFloating(event, ical.PropDateTimeEnd, end)
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s (%s)", dir.userName(e.UserID), e.Preference))
		if e.Notes != "" {
			event.Props.SetText(ical.PropDescription, e.Notes)
		}
		if e.Preference == model.PreferenceUnavailable {
			event.Props.SetText(ical.PropTransparency, "OPAQUE")
		} else {
			event.Props.SetText(ical.PropTransparency, "TRANSPARENT")
		}

		weekly := rrule.ROption{Freq: rrule.WEEKLY, Byweekday: []rrule.Weekday{isoWeekday(e.DayOfWeek)}}
		event.Props.SetText(ical.PropRecurrenceRule, weekly.RRuleString())

		cal.Children = append(cal.Children, event)
	}
	return cal, nil
}

// Encode writes cal as an .ics stream
func Encode(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func setFloating(comp *ical.Component, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Value = t.Format(floatingLayout)
	comp.Props.Set(prop)
}

func isoWeekday(day int) rrule.Weekday {
	return []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}[day-1]
}
