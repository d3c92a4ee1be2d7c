package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/calendar"
	"github.com/jakechorley/swiftshift/pkg/core/editor"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
	"github.com/jakechorley/swiftshift/pkg/db"
)

// DraftLister lists locally held draft shifts
type DraftLister interface {
	List(ctx context.Context) ([]model.Shift, error)
}

// Week is everything needed to render and edit one Mon-Fri week
type Week struct {
	Monday    time.Time
	Days      []time.Time
	Locations []model.Location
	Positions []model.Position
	Users     []model.User
	Committed []model.Shift
	Drafts    []model.Shift
	Closed    map[string]string // date key -> closure name
}

// WeekRange returns the inclusive ISO date range (Monday to Sunday) of the
// week containing anchor
func WeekRange(anchor time.Time) (string, string) {
	monday, sunday := timeutil.WeekBounds(anchor)
	return timeutil.DateKey(monday), timeutil.DateKey(sunday)
}

// Shifts returns committed shifts followed by the drafts falling in the week
func (w *Week) Shifts() []model.Shift {
	start, end := WeekRange(w.Monday)
	out := slices.Clone(w.Committed)
	for _, d := range w.Drafts {
		if timeutil.IsDateWithinRange(timeutil.DateKey(d.Start), start, end) {
			out = append(out, d)
		}
	}
	return out
}

// IsDraft reports whether id belongs to a draft shift
func (w *Week) IsDraft(id string) bool {
	return slices.ContainsFunc(w.Drafts, func(s model.Shift) bool { return s.ID == id })
}

// Reference returns the roster for the editor
func (w *Week) Reference() editor.ReferenceData {
	return editor.ReferenceData{Users: w.Users, Locations: w.Locations, Positions: w.Positions}
}

// Directory returns the roster for calendar export
func (w *Week) Directory() calendar.Directory {
	return calendar.Directory{Users: w.Users, Locations: w.Locations, Positions: w.Positions}
}

// LoadWeek fetches reference data and the week's shifts concurrently and
// unions in the local drafts. Any fetch failure fails the whole load so
// callers never render a partially loaded week.
func LoadWeek(
	ctx context.Context,
	source db.ScheduleSource,
	drafts DraftLister,
	closures calendar.Closures,
	anchor time.Time,
	logger *zap.Logger,
) (*Week, error) {
	monday, _ := timeutil.WeekBounds(anchor)
	start, end := WeekRange(monday)
	logger.Debug("Loading week", zap.String("start", start), zap.String("end", end))

	week := &Week{
		Monday: monday,
		Days:   timeutil.WeekDays(monday),
		Closed: make(map[string]string),
	}

	fetches := map[string]func() error{
		"locations": func() (err error) { week.Locations, err = source.FetchLocations(ctx); return },
		"positions": func() (err error) { week.Positions, err = source.FetchPositions(ctx); return },
		"users":     func() (err error) { week.Users, err = source.FetchUsers(ctx); return },
		"shifts":    func() (err error) { week.Committed, err = source.FetchShifts(ctx, start, end); return },
		"drafts":    func() (err error) { week.Drafts, err = drafts.List(ctx); return },
	}

	type fetchResult struct {
		name string
		err  error
	}
	results := make(chan fetchResult, len(fetches))
	var wg sync.WaitGroup
	for name, fetch := range fetches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- fetchResult{name: name, err: fetch()}
		}()
	}
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", r.name, r.err)
		}
	}

	for _, day := range week.Days {
		if name, closed := closures.ClosedOn(day); closed {
			week.Closed[timeutil.DateKey(day)] = name
		}
	}

	logger.Debug("Week loaded",
		zap.Int("users", len(week.Users)),
		zap.Int("shifts", len(week.Committed)),
		zap.Int("drafts", len(week.Drafts)),
		zap.Int("closed_days", len(week.Closed)))

	return week, nil
}
