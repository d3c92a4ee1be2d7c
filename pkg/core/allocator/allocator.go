package allocator

import (
	"fmt"
	"slices"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
)

// Allocator fills a week's sessions with available tutors using
// configurable criteria
type Allocator struct {
	criteria []Criterion
	state    *State
}

// SessionSpec describes a session to staff
type SessionSpec struct {
	Day        int
	Date       time.Time
	LocationID string
	Size       int
	Existing   int
	Closed     bool
}

// CandidateSpec describes a tutor's availability for the week
type CandidateSpec struct {
	User model.User

	// Windows maps a day index to the window the tutor could cover that day
	Windows map[int]Window

	// ScheduledDays are day indices the tutor already has shifts on
	ScheduledDays []int
}

// Config is the input to Allocate
type Config struct {
	Criteria   []Criterion
	Sessions   []SessionSpec
	Candidates []CandidateSpec

	// MaxDaysPerTutor caps working days per tutor in the week
	MaxDaysPerTutor int

	// DayCount is the number of days in the week
	DayCount int

	// WeightUrgency ranks tutors with few remaining options first
	WeightUrgency float64
}

// Placement is one tutor placed on one session
type Placement struct {
	Session   *Session
	Candidate *Candidate
	Window    Window
}

// Outcome is the result of a fill
type Outcome struct {
	State            *State
	Placements       []Placement
	Underfilled      []*Session
	ValidationErrors []ValidationError

	// Complete is true when every open session reached its size
	Complete bool
}

// Allocate runs the main allocation loop
func Allocate(config Config) (*Outcome, error) {
	a, err := newAllocator(config)
	if err != nil {
		return nil, err
	}

	rankCandidates(a.state, a.criteria)

	for len(a.state.Candidates) > 0 {
		candidate := a.state.Candidates[0]
		a.state.Candidates = a.state.Candidates[1:]

		best := a.findBestSession(candidate)
		if best == nil {
			a.state.Exhausted[candidate] = true
			continue
		}

		if exhausted := a.place(candidate, best); !exhausted {
			a.reinsert(candidate)
		}

		if a.allSessionsFull() {
			break
		}
	}

	return a.buildOutcome(), nil
}

func newAllocator(config Config) (*Allocator, error) {
	if config.MaxDaysPerTutor <= 0 {
		return nil, fmt.Errorf("max days per tutor must be positive, got %d", config.MaxDaysPerTutor)
	}
	dayCount := config.DayCount
	if dayCount <= 0 {
		dayCount = 1
	}

	state := &State{
		Exhausted:       make(map[*Candidate]bool),
		MaxDaysPerTutor: config.MaxDaysPerTutor,
		DayCount:        dayCount,
		WeightUrgency:   config.WeightUrgency,
	}

	for i, spec := range config.Sessions {
		if spec.Size < 0 {
			return nil, fmt.Errorf("session %s/%s has negative size", spec.Date.Format(model.DateLayout), spec.LocationID)
		}
		state.Sessions = append(state.Sessions, &Session{
			Index:      i,
			Day:        spec.Day,
			Date:       spec.Date,
			LocationID: spec.LocationID,
			Size:       spec.Size,
			Existing:   spec.Existing,
			Closed:     spec.Closed,
		})
	}

	for _, spec := range config.Candidates {
		candidate := &Candidate{
			User:          spec.User,
			Windows:       make(map[int]Window),
			ScheduledDays: slices.Clone(spec.ScheduledDays),
		}
		for _, session := range state.Sessions {
			if session.Closed || slices.Contains(candidate.ScheduledDays, session.Day) {
				continue
			}
			window, ok := spec.Windows[session.Day]
			if !ok || window.Duration() <= 0 || !eligibleFor(spec.User, session.LocationID) {
				continue
			}
			candidate.Windows[session.Index] = window
			candidate.AvailableSessions = append(candidate.AvailableSessions, session.Index)
			session.Available = append(session.Available, candidate)
		}

		// Tutors with no availability never enter the loop
		if len(candidate.AvailableSessions) == 0 {
			continue
		}
		if candidate.RemainingDays(state.MaxDaysPerTutor) == 0 {
			state.Exhausted[candidate] = true
			continue
		}
		state.Candidates = append(state.Candidates, candidate)
	}

	return &Allocator{criteria: config.Criteria, state: state}, nil
}

// eligibleFor reports whether the user may work at location. Users with no
// listed locations may work anywhere.
func eligibleFor(user model.User, locationID string) bool {
	return len(user.Locations) == 0 || slices.Contains(user.Locations, locationID)
}

// IsSessionValid applies the core constraints and every criterion's veto
func IsSessionValid(state *State, candidate *Candidate, session *Session, criteria []Criterion) bool {
	if session.Closed || session.IsFull() {
		return false
	}
	if !candidate.IsAvailable(session.Index) || candidate.IsAllocated(session.Index) {
		return false
	}
	if candidate.WorksOn(state, session.Day) {
		return false
	}
	for _, c := range criteria {
		if !c.IsSessionValid(state, candidate, session) {
			return false
		}
	}
	return true
}

// SessionAffinity sums weighted criterion affinities, or 0 for invalid sessions
func SessionAffinity(state *State, candidate *Candidate, session *Session, criteria []Criterion) float64 {
	if !IsSessionValid(state, candidate, session, criteria) {
		return 0
	}
	total := 0.0
	for _, c := range criteria {
		total += c.SessionAffinity(state, candidate, session) * c.AffinityWeight()
	}
	return total
}

func (a *Allocator) findBestSession(candidate *Candidate) *Session {
	var best *Session
	var bestAffinity float64

	for _, idx := range candidate.AvailableSessions {
		session := a.state.Sessions[idx]
		affinity := SessionAffinity(a.state, candidate, session, a.criteria)
		if affinity > bestAffinity {
			bestAffinity = affinity
			best = session
		}
	}
	return best
}

// place assigns candidate to session and reports whether the candidate is
// now exhausted
func (a *Allocator) place(candidate *Candidate, session *Session) bool {
	session.Assigned = append(session.Assigned, candidate)
	candidate.AllocatedSessions = append(candidate.AllocatedSessions, session.Index)

	if candidate.RemainingDays(a.state.MaxDaysPerTutor) == 0 {
		a.state.Exhausted[candidate] = true
		return true
	}
	return false
}

func (a *Allocator) allSessionsFull() bool {
	for _, s := range a.state.Sessions {
		if !s.Closed && !s.IsFull() {
			return false
		}
	}
	return true
}

func (a *Allocator) reinsert(candidate *Candidate) {
	score := rankingScore(a.state, candidate, a.criteria)

	insertIdx := len(a.state.Candidates)
	for i, other := range a.state.Candidates {
		if outranks(score, candidate, rankingScore(a.state, other, a.criteria), other) {
			insertIdx = i
			break
		}
	}
	a.state.Candidates = slices.Insert(a.state.Candidates, insertIdx, candidate)
}

// rankCandidates orders state.Candidates by ranking score, ties by user id
func rankCandidates(state *State, criteria []Criterion) {
	scores := make(map[*Candidate]float64, len(state.Candidates))
	for _, c := range state.Candidates {
		scores[c] = rankingScore(state, c, criteria)
	}
	slices.SortStableFunc(state.Candidates, func(x, y *Candidate) int {
		switch {
		case outranks(scores[x], x, scores[y], y):
			return -1
		case outranks(scores[y], y, scores[x], x):
			return 1
		}
		return 0
	})
}

func outranks(score float64, c *Candidate, otherScore float64, other *Candidate) bool {
	if score != otherScore {
		return score > otherScore
	}
	return schedule.CompareIDs(c.User.ID, other.User.ID) < 0
}

// rankingScore favours tutors whose remaining options are scarce relative
// to the days they could still work
func rankingScore(state *State, candidate *Candidate, criteria []Criterion) float64 {
	score := 0.0

	optionDays := make(map[int]bool)
	for _, idx := range candidate.AvailableSessions {
		session := state.Sessions[idx]
		if !session.IsFull() && !candidate.WorksOn(state, session.Day) {
			optionDays[session.Day] = true
		}
	}
	if len(optionDays) > 0 {
		urgency := float64(candidate.RemainingDays(state.MaxDaysPerTutor)) / float64(len(optionDays))
		score += min(urgency, 1) * state.WeightUrgency
	}

	for _, c := range criteria {
		score += c.PromoteCandidate(state, candidate) * c.CandidateWeight()
	}
	return score
}

func (a *Allocator) buildOutcome() *Outcome {
	outcome := &Outcome{
		State:            a.state,
		Placements:       []Placement{},
		Underfilled:      []*Session{},
		ValidationErrors: []ValidationError{},
	}

	for _, session := range a.state.Sessions {
		for _, candidate := range session.Assigned {
			outcome.Placements = append(outcome.Placements, Placement{
				Session:   session,
				Candidate: candidate,
				Window:    candidate.Windows[session.Index],
			})
		}
		if !session.Closed && !session.IsFull() {
			outcome.Underfilled = append(outcome.Underfilled, session)
		}
	}

	outcome.ValidationErrors = Validate(a.state, a.criteria)
	outcome.Complete = len(outcome.Underfilled) == 0
	return outcome
}

// Validate checks the core invariants and every criterion
func Validate(state *State, criteria []Criterion) []ValidationError {
	var errs []ValidationError

	for _, session := range state.Sessions {
		fail := func(description string) {
			errs = append(errs, ValidationError{
				SessionIndex:  session.Index,
				Date:          session.Date.Format(model.DateLayout),
				LocationID:    session.LocationID,
				CriterionName: "Core",
				Description:   description,
			})
		}

		if session.Closed && len(session.Assigned) > 0 {
			fail("closed session has tutors assigned")
		}
		if session.CurrentSize() > session.Size && len(session.Assigned) > 0 {
			fail(fmt.Sprintf("session is overfilled: has %d tutors but size is %d", session.CurrentSize(), session.Size))
		}
		for _, candidate := range session.Assigned {
			if !candidate.IsAvailable(session.Index) {
				fail(fmt.Sprintf("tutor %s is not available", candidate.User.ID))
			}
			if !candidate.IsAllocated(session.Index) {
				fail(fmt.Sprintf("tutor %s is assigned but does not list the session", candidate.User.ID))
			}
		}
	}

	seen := make(map[*Candidate]bool)
	for _, session := range state.Sessions {
		for _, candidate := range session.Assigned {
			if seen[candidate] {
				continue
			}
			seen[candidate] = true
			days := candidate.WorkedDays(state)
			for i := 1; i < len(days); i++ {
				if days[i] == days[i-1] {
					errs = append(errs, ValidationError{
						SessionIndex:  session.Index,
						Date:          session.Date.Format(model.DateLayout),
						LocationID:    session.LocationID,
						CriterionName: "Core",
						Description:   fmt.Sprintf("tutor %s works twice on one day", candidate.User.ID),
					})
				}
			}
		}
	}

	for _, c := range criteria {
		errs = append(errs, c.Validate(state)...)
	}
	return errs
}
