package calendar

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// ClosureRule is an unparsed recurring closure
type ClosureRule struct {
	Name  string
	RRule string
	Start string // YYYY-MM-DD
}

type closure struct {
	name string
	rule *rrule.RRule
}

// Closures are days the centre is shut
type Closures []closure

// ParseClosures parses each rule anchored at its start date
func ParseClosures(rules []ClosureRule) (Closures, error) {
	out := make(Closures, 0, len(rules))
	for i, r := range rules {
		start, err := timeutil.ParseDate(r.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid start for closure %d: %w", i, err)
		}
		opt, err := rrule.StrToROption(r.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for closure %d: %w", i, err)
		}
		opt.Dtstart = start
		rule, err := rrule.NewRRule(*opt)
		if err != nil {
			return nil, fmt.Errorf("failed to build rrule for closure %d: %w", i, err)
		}
		out = append(out, closure{name: r.Name, rule: rule})
	}
	return out, nil
}

// ClosedOn reports whether any closure falls on day, with its name
func (c Closures) ClosedOn(day time.Time) (string, bool) {
	from := timeutil.StartOfDay(day)
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	for _, cl := range c {
		if len(cl.rule.Between(from, to, true)) > 0 {
			return cl.name, true
		}
	}
	return "", false
}

// OpenDays drops the closed days from days
func (c Closures) OpenDays(days []time.Time) []time.Time {
	var out []time.Time
	for _, d := range days {
		if _, closed := c.ClosedOn(d); !closed {
			out = append(out, d)
		}
	}
	return out
}

// Occurrences expands a VEVENT into its start instants within [from, to],
// skipping closed days. An event without RRULE yields its DTSTART when in range.
func (c Closures) Occurrences(event *ical.Component, from, to time.Time) ([]time.Time, error) {
	start, err := event.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to read DTSTART: %w", err)
	}

	var starts []time.Time
	prop := event.Props.Get(ical.PropRecurrenceRule)
	if prop == nil || prop.Value == "" {
		if !start.Before(from) && !start.After(to) {
			starts = []time.Time{start}
		}
	} else {
		opt, err := rrule.StrToROption(prop.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule: %w", err)
		}
		opt.Dtstart = start
		rule, err := rrule.NewRRule(*opt)
		if err != nil {
			return nil, fmt.Errorf("failed to build rrule: %w", err)
		}
		starts = rule.Between(from, to, true)
	}

	out := starts[:0]
	for _, s := range starts {
		if _, closed := c.ClosedOn(s); !closed {
			out = append(out, s)
		}
	}
	return out, nil
}

// ClosedShifts returns the shifts that start on a closed day
func (c Closures) ClosedShifts(shifts []model.Shift) []model.Shift {
	var out []model.Shift
	for _, s := range shifts {
		if _, closed := c.ClosedOn(s.Start); closed {
			out = append(out, s)
		}
	}
	return out
}
