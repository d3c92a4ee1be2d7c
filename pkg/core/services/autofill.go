package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/allocator"
	"github.com/jakechorley/swiftshift/pkg/core/allocator/criteria"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// AutofillNote marks shifts suggested by the week filler
const AutofillNote = "Auto-filled from availability"

// AutofillOptions tunes how a week is filled
type AutofillOptions struct {
	PerLocation     int // tutors wanted per location per open day
	MaxDaysPerTutor int
	Hours           schedule.HoursPolicy
	NewID           func() string
}

// Suggestion is the proposed set of draft shifts for a week
type Suggestion struct {
	Shifts      []model.Shift
	Underfilled []UnderfilledSession
}

// UnderfilledSession is a location and day left short of tutors
type UnderfilledSession struct {
	Date       string
	LocationID string
	Have       int
	Want       int
}

// SuggestWeek proposes draft shifts that staff every open day at every
// location from the tutors' weekly availability. Tutors already working a
// day are left alone, approved time off hides availability, and each
// suggested shift spans the tutor's longest available window inside opening
// hours.
func SuggestWeek(week *Week, events []model.AvailabilityEvent, requests []model.TimeOffRequest, opts AutofillOptions, logger *zap.Logger) (*Suggestion, error) {
	if opts.PerLocation <= 0 {
		return nil, fmt.Errorf("tutors per location must be positive, got %d", opts.PerLocation)
	}

	shifts := week.Shifts()
	byDay := schedule.GroupByDay(shifts, week.Days)

	var sessions []allocator.SessionSpec
	for day, date := range week.Days {
		_, closed := week.Closed[timeutil.DateKey(date)]
		dayShifts := byDay[day].Shifts
		for _, loc := range week.Locations {
			sessions = append(sessions, allocator.SessionSpec{
				Day:        day,
				Date:       date,
				LocationID: loc.ID,
				Size:       opts.PerLocation,
				Existing:   tutorsAt(dayShifts, loc.ID),
				Closed:     closed,
			})
		}
	}

	var candidates []allocator.CandidateSpec
	for _, user := range week.Users {
		spec := allocator.CandidateSpec{User: user, Windows: make(map[int]allocator.Window)}
		for day, date := range week.Days {
			if len(schedule.ShiftsForUser(byDay[day].Shifts, user.ID)) > 0 {
				spec.ScheduledDays = append(spec.ScheduledDays, day)
				continue
			}
			if w, ok := longestWindow(schedule.VisibleAvailability(events, requests, user.ID, date), date, opts.Hours); ok {
				spec.Windows[day] = w
			}
		}
		candidates = append(candidates, spec)
	}

	outcome, err := allocator.Allocate(allocator.Config{
		Criteria:        criteria.Default(),
		Sessions:        sessions,
		Candidates:      candidates,
		MaxDaysPerTutor: opts.MaxDaysPerTutor,
		DayCount:        len(week.Days),
		WeightUrgency:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fill week: %w", err)
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	suggestion := &Suggestion{}
	for _, p := range outcome.Placements {
		suggestion.Shifts = append(suggestion.Shifts, model.Shift{
			ID:         newID(),
			UserID:     p.Candidate.User.ID,
			LocationID: p.Session.LocationID,
			PositionID: schedule.ResolvePosition(p.Candidate.User, week.Positions),
			Start:      p.Window.Start,
			End:        p.Window.End,
			Notes:      AutofillNote,
		})
	}
	for _, s := range outcome.Underfilled {
		suggestion.Underfilled = append(suggestion.Underfilled, UnderfilledSession{
			Date:       timeutil.DateKey(s.Date),
			LocationID: s.LocationID,
			Have:       s.CurrentSize(),
			Want:       s.Size,
		})
	}

	logger.Info("Week filled",
		zap.String("week", timeutil.DateKey(week.Monday)),
		zap.Int("suggested", len(suggestion.Shifts)),
		zap.Int("underfilled", len(suggestion.Underfilled)))
	return suggestion, nil
}

// ApplySuggestion adds the suggested shifts as drafts. Shifts that would now
// overlap one of the tutor's shifts at the same location are skipped.
func ApplySuggestion(ctx context.Context, drafts DraftAdder, week *Week, suggestion *Suggestion, logger *zap.Logger) ([]model.Shift, error) {
	validator := schedule.Validator{Locations: week.Locations}
	existing := week.Shifts()

	var added []model.Shift
	for _, shift := range suggestion.Shifts {
		candidate := schedule.Candidate{UserID: shift.UserID, LocationID: shift.LocationID, Start: shift.Start, End: shift.End}
		if err := validator.FindConflict(candidate, existing); err != nil {
			logger.Warn("Skipping suggested shift", zap.String("user_id", shift.UserID), zap.Error(err))
			continue
		}
		if err := drafts.Add(ctx, shift); err != nil {
			return added, fmt.Errorf("failed to add draft shift: %w", err)
		}
		existing = append(existing, shift)
		added = append(added, shift)
	}
	return added, nil
}

// DraftAdder stores new draft shifts
type DraftAdder interface {
	Add(ctx context.Context, shift model.Shift) error
}

func tutorsAt(dayShifts []model.Shift, locationID string) int {
	var users []string
	for _, s := range dayShifts {
		if s.LocationID == locationID && !slices.Contains(users, s.UserID) {
			users = append(users, s.UserID)
		}
	}
	return len(users)
}

// longestWindow clamps each availability event to opening hours and keeps
// the longest
func longestWindow(events []model.AvailabilityEvent, day time.Time, hours schedule.HoursPolicy) (allocator.Window, bool) {
	open, close := hours.Window(day)

	var best allocator.Window
	for _, e := range events {
		start := timeutil.ParseTimeForDay(day, e.StartTime)
		end := timeutil.ParseTimeForDay(day, e.EndTime)
		if start.Before(open) {
			start = open
		}
		if end.After(close) {
			end = close
		}
		w := allocator.Window{Start: start, End: end}
		if w.Duration() > best.Duration() {
			best = w
		}
	}
	return best, best.Duration() > 0
}
