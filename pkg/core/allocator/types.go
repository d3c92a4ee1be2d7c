package allocator

import (
	"slices"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// Window is the stretch of a day a tutor could cover
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// State is the working state of a week being filled
type State struct {
	// Sessions are the (day, location) pairs being staffed, ordered by day
	Sessions []*Session

	// Candidates still eligible for allocation, highest ranked first
	Candidates []*Candidate

	// Exhausted candidates have no valid session left or reached MaxDaysPerTutor
	Exhausted map[*Candidate]bool

	// MaxDaysPerTutor caps how many days in the week a tutor works, counting
	// days they were already scheduled
	MaxDaysPerTutor int

	// DayCount is the number of days in the week, used to normalise distances
	DayCount int

	WeightUrgency float64
}

// Session is one location on one day that needs tutors
type Session struct {
	Index      int
	Day        int // 0 = first day of the week
	Date       time.Time
	LocationID string

	// Size is the target number of tutors
	Size int

	// Existing is the number of tutors already scheduled here before filling
	Existing int

	Assigned  []*Candidate
	Available []*Candidate

	// Closed sessions stay empty
	Closed bool
}

// CurrentSize returns the number of tutors scheduled or assigned
func (s *Session) CurrentSize() int {
	return s.Existing + len(s.Assigned)
}

// IsFull reports whether the session reached its size
func (s *Session) IsFull() bool {
	return s.CurrentSize() >= s.Size
}

// RemainingCapacity returns how many more tutors the session wants
func (s *Session) RemainingCapacity() int {
	return max(s.Size-s.CurrentSize(), 0)
}

// RemainingAvailable counts candidates that could still be placed here:
// available, not exhausted, not yet assigned here and free that day
func (s *Session) RemainingAvailable(state *State) int {
	count := 0
	for _, c := range s.Available {
		if state.Exhausted[c] || slices.Contains(s.Assigned, c) || c.WorksOn(state, s.Day) {
			continue
		}
		count++
	}
	return count
}

// Candidate is a tutor who can be placed on sessions
type Candidate struct {
	User model.User

	// Windows holds the coverable window for each session index the tutor is available for
	Windows map[int]Window

	// AvailableSessions lists session indices the tutor is available for
	AvailableSessions []int

	// AllocatedSessions lists session indices the tutor was placed on
	AllocatedSessions []int

	// ScheduledDays are days the tutor already has shifts on
	ScheduledDays []int
}

// IsAvailable reports whether the tutor can cover the session
func (c *Candidate) IsAvailable(sessionIndex int) bool {
	return slices.Contains(c.AvailableSessions, sessionIndex)
}

// IsAllocated reports whether the tutor was placed on the session
func (c *Candidate) IsAllocated(sessionIndex int) bool {
	return slices.Contains(c.AllocatedSessions, sessionIndex)
}

// WorksOn reports whether the tutor is already working on day, either from
// an existing shift or an allocation
func (c *Candidate) WorksOn(state *State, day int) bool {
	if slices.Contains(c.ScheduledDays, day) {
		return true
	}
	for _, idx := range c.AllocatedSessions {
		if state.Sessions[idx].Day == day {
			return true
		}
	}
	return false
}

// DaysWorked counts scheduled and allocated days
func (c *Candidate) DaysWorked() int {
	return len(c.ScheduledDays) + len(c.AllocatedSessions)
}

// RemainingDays returns how many more days the tutor may be given
func (c *Candidate) RemainingDays(maxDays int) int {
	return max(maxDays-c.DaysWorked(), 0)
}

// WorkedDays returns every day index the tutor works, sorted
func (c *Candidate) WorkedDays(state *State) []int {
	days := slices.Clone(c.ScheduledDays)
	for _, idx := range c.AllocatedSessions {
		days = append(days, state.Sessions[idx].Day)
	}
	slices.Sort(days)
	return days
}
