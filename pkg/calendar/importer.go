package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// ImportAvailability reads weekly availability from an .ics stream. Each
// VEVENT contributes its weekday and clock times; events whose summary or
// transparency marks them busy become "unavailable".
func ImportAvailability(r io.Reader, userID string, newID func() string) ([]model.AvailabilityEvent, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}

	var out []model.AvailabilityEvent
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		start, err := child.Props.DateTime(ical.PropDateTimeStart, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to read DTSTART: %w", err)
		}
		end, err := child.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to read DTEND: %w", err)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("event at %s ends before it starts", start.Format(model.LocalTimeLayout))
		}

		event := model.AvailabilityEvent{
			ID:         newID(),
			UserID:     userID,
			DayOfWeek:  timeutil.ISOWeekday(start),
			StartTime:  start.Format("15:04"),
			EndTime:    end.Format("15:04"),
			Preference: preferenceOf(child),
		}
		if desc, err := child.Props.Text(ical.PropDescription); err == nil {
			event.Notes = desc
		}
		out = append(out, event)
	}
	return out, nil
}

func preferenceOf(comp *ical.Component) model.AvailabilityPreference {
	summary, _ := comp.Props.Text(ical.PropSummary)
	if strings.Contains(strings.ToLower(summary), string(model.PreferenceUnavailable)) {
		return model.PreferenceUnavailable
	}
	if transp, _ := comp.Props.Text(ical.PropTransparency); transp == "OPAQUE" {
		return model.PreferenceUnavailable
	}
	return model.PreferenceAvailable
}
