// Package mockdata is an in-memory schedule database seeded with a demo
// roster and randomly generated, reproducible weeks of shifts.
package mockdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
	"github.com/jakechorley/swiftshift/pkg/db"
)

var Locations = []model.Location{
	{ID: "1", Name: "North Location", Address: "123 North St, Spokane, WA"},
	{ID: "2", Name: "South Location", Address: "456 South Ave, Spokane, WA"},
	{ID: "3", Name: "Valley Location", Address: "789 Sullivan St, Spokane, WA"},
}

var Positions = []model.Position{
	{ID: "1", Name: "Math Tutor", Color: "#3b82f6"},
	{ID: "2", Name: "Littles Tutor", Color: "#10b981"},
	{ID: "3", Name: "HS Tutor", Color: "#8b5cf6"},
	{ID: "4", Name: "MS Tutor", Color: "#f59e0b"},
	{ID: "5", Name: "Admin", Color: "#6b7280"},
}

var Users = []model.User{
	{ID: "1", FirstName: "Sarah", LastName: "Johnson", Email: "sarah@tutorcenter.com", PhoneNumber: "555-0101", Positions: []string{"1", "2"}, Locations: []string{"1", "2"}},
	{ID: "2", FirstName: "Mike", LastName: "Chen", Email: "mike@tutorcenter.com", PhoneNumber: "555-0102", Positions: []string{"3"}, Locations: []string{"1", "3"}},
	{ID: "3", FirstName: "Emily", LastName: "Rodriguez", Email: "emily@tutorcenter.com", PhoneNumber: "555-0103", Positions: []string{"1"}, Locations: []string{"2", "3"}},
	{ID: "4", FirstName: "James", LastName: "Williams", Email: "james@tutorcenter.com", PhoneNumber: "555-0104", Positions: []string{"2", "4"}, Locations: []string{"1"}},
	{ID: "5", FirstName: "Lisa", LastName: "Brown", Email: "lisa@tutorcenter.com", PhoneNumber: "555-0105", Positions: []string{"3", "1"}, Locations: []string{"2", "3"}},
	{ID: "6", FirstName: "David", LastName: "Martinez", Email: "david@tutorcenter.com", PhoneNumber: "555-0106", Positions: []string{"4"}, Locations: []string{"1", "2", "3"}},
	{ID: "7", FirstName: "Amanda", LastName: "Taylor", Email: "amanda@tutorcenter.com", PhoneNumber: "555-0107", Positions: []string{"2"}, Locations: []string{"3"}},
	{ID: "8", FirstName: "Chris", LastName: "Anderson", Email: "chris@tutorcenter.com", PhoneNumber: "555-0108", Positions: []string{"1", "3"}, Locations: []string{"1", "2"}},
	{ID: "9", FirstName: "Jessica", LastName: "Lee", Email: "jessica@tutorcenter.com", PhoneNumber: "555-0109", Positions: []string{"5"}, Locations: []string{"1", "2", "3"}},
	{ID: "10", FirstName: "Ryan", LastName: "Harris", Email: "ryan@tutorcenter.com", PhoneNumber: "555-0110", Positions: []string{"3", "4"}, Locations: []string{"2"}},
}

var (
	students = []string{"Alex M.", "Jamie L.", "Taylor K.", "Jordan P.", "Casey R."}
	subjects = []string{"Algebra", "Geometry", "Calculus", "Trigonometry", "Pre-Calculus", "Algebra 2", "Calculus 2", "Trigonometry 2"}
)

// Source is a db.Database held in memory. Each week is generated the first
// time it is fetched; the same seed always yields the same week.
type Source struct {
	seed  uint64
	hours schedule.HoursPolicy

	mu        sync.Mutex
	generated map[string]bool
	shifts    map[string]model.Shift
}

var _ db.Database = (*Source)(nil)

// NewSource creates a mock source generating weeks under hours
func NewSource(seed int64, hours schedule.HoursPolicy) *Source {
	return &Source{
		seed:      uint64(seed),
		hours:     hours,
		generated: make(map[string]bool),
		shifts:    make(map[string]model.Shift),
	}
}

func (s *Source) FetchLocations(context.Context) ([]model.Location, error) {
	return slices.Clone(Locations), nil
}

func (s *Source) FetchPositions(context.Context) ([]model.Position, error) {
	return slices.Clone(Positions), nil
}

func (s *Source) FetchUsers(context.Context) ([]model.User, error) {
	return slices.Clone(Users), nil
}

// FetchShifts generates any untouched week overlapping the range, then
// returns the shifts starting within it
func (s *Source) FetchShifts(_ context.Context, startDate, endDate string) ([]model.Shift, error) {
	start, err := timeutil.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := timeutil.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for monday, _ := timeutil.WeekBounds(start); !monday.After(end); monday = monday.AddDate(0, 0, 7) {
		s.generateWeek(monday)
	}

	var result []model.Shift
	for _, shift := range s.shifts {
		if timeutil.IsDateWithinRange(timeutil.DateKey(shift.Start), startDate, endDate) {
			result = append(result, shift)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// generateWeek fills Mon-Fri with 4 to 7 tutors a day, one continuous
// 2 to 4 hour shift each, trimmed to closing time
func (s *Source) generateWeek(monday time.Time) {
	key := timeutil.DateKey(monday)
	if s.generated[key] {
		return
	}
	s.generated[key] = true

	rng := rand.New(rand.NewPCG(s.seed, uint64(monday.Unix())))
	n := 1
	for _, day := range timeutil.WeekDays(monday) {
		openMin, closeMin := s.hours.Bounds(day)
		openHour, closeHour := openMin/60, closeMin/60
		latestStart := max(openHour, closeHour-1)

		roster := slices.Clone(Users)
		rng.Shuffle(len(roster), func(i, j int) { roster[i], roster[j] = roster[j], roster[i] })

		for _, user := range roster[:4+rng.IntN(4)] {
			startHour := openHour + rng.IntN(latestStart-openHour+1)
			endHour := min(startHour+2+rng.IntN(3), closeHour)
			if endHour <= startHour {
				continue
			}

			shift := model.Shift{
				ID:         fmt.Sprintf("%s-%d", key, n),
				UserID:     user.ID,
				LocationID: user.Locations[rng.IntN(len(user.Locations))],
				PositionID: user.Positions[rng.IntN(len(user.Positions))],
				Start:      day.Add(time.Duration(startHour) * time.Hour),
				End:        day.Add(time.Duration(endHour) * time.Hour),
				Published:  true,
			}
			if rng.Float64() > 0.3 {
				shift.Notes = fmt.Sprintf("Student: %s (%s)", students[rng.IntN(len(students))], subjects[rng.IntN(len(subjects))])
			}
			s.shifts[shift.ID] = shift
			n++
		}
	}
}

func (s *Source) InsertShifts(_ context.Context, shifts []model.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shift := range shifts {
		s.shifts[shift.ID] = shift
	}
	return nil
}

func (s *Source) UpdateShift(_ context.Context, shift model.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[shift.ID]; !ok {
		return fmt.Errorf("%w: %s", db.ErrShiftNotFound, shift.ID)
	}
	s.shifts[shift.ID] = shift
	return nil
}

func (s *Source) DeleteShift(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[id]; !ok {
		return fmt.Errorf("%w: %s", db.ErrShiftNotFound, id)
	}
	delete(s.shifts, id)
	return nil
}
