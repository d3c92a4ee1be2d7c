package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/calendar"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/store"
)

// ExportWeekCalendar writes the week's shifts visible to filter as .ics.
// Shifts on closed days are left out.
func ExportWeekCalendar(w io.Writer, week *Week, filter schedule.Filter, closures calendar.Closures, now time.Time, logger *zap.Logger) (int, error) {
	visible := filter.Apply(week.Shifts())
	closed := closures.ClosedShifts(visible)

	var shifts []model.Shift
	for _, s := range visible {
		if !containsShift(closed, s.ID) {
			shifts = append(shifts, s)
		}
	}

	name := "SwiftShift week of " + week.Monday.Format("Jan 2 2006")
	if err := calendar.Encode(w, calendar.ShiftsToCalendar(name, shifts, week.Directory(), now)); err != nil {
		return 0, err
	}
	logger.Debug("Exported week calendar", zap.Int("shifts", len(shifts)), zap.Int("skipped_closed", len(closed)))
	return len(shifts), nil
}

// ExportAvailabilityCalendar writes userID's availability as weekly
// recurring events
func ExportAvailabilityCalendar(ctx context.Context, w io.Writer, events *store.AvailabilityStore, week *Week, userID string, now time.Time) (int, error) {
	mine, err := events.ForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list availability: %w", err)
	}
	cal, err := calendar.AvailabilityToCalendar("SwiftShift availability", mine, week.Directory(), week.Monday, now)
	if err != nil {
		return 0, err
	}
	if err := calendar.Encode(w, cal); err != nil {
		return 0, err
	}
	return len(mine), nil
}

// ImportAvailabilityCalendar adds every event of an .ics stream as userID's
// availability
func ImportAvailabilityCalendar(ctx context.Context, r io.Reader, events *store.AvailabilityStore, userID string, newID func() string, logger *zap.Logger) ([]model.AvailabilityEvent, error) {
	imported, err := calendar.ImportAvailability(r, userID, newID)
	if err != nil {
		return nil, err
	}
	for _, e := range imported {
		if _, err := events.Create(ctx, e); err != nil {
			return nil, err
		}
	}
	logger.Info("Imported availability", zap.String("user_id", userID), zap.Int("count", len(imported)))
	return imported, nil
}

func containsShift(shifts []model.Shift, id string) bool {
	for _, s := range shifts {
		if s.ID == id {
			return true
		}
	}
	return false
}
