package criteria

import (
	"fmt"

	"github.com/jakechorley/swiftshift/pkg/core/allocator"
)

// CoverageCriterion favours the sessions hardest to staff.
//
// Affinity is the session's remaining capacity divided by the tutors still
// able to take it, clamped to [0, 1]. A session needing 2 tutors with only 2
// candidates left scores 1; one needing 1 with 10 candidates scores 0.1.
//
// Validation reports sessions left below their size.
type CoverageCriterion struct {
	affinityWeight float64
}

func NewCoverageCriterion(affinityWeight float64) *CoverageCriterion {
	return &CoverageCriterion{affinityWeight: affinityWeight}
}

func (c *CoverageCriterion) Name() string {
	return "Coverage"
}

func (c *CoverageCriterion) PromoteCandidate(*allocator.State, *allocator.Candidate) float64 {
	return 0
}

func (c *CoverageCriterion) IsSessionValid(_ *allocator.State, _ *allocator.Candidate, session *allocator.Session) bool {
	return session.RemainingCapacity() > 0
}

func (c *CoverageCriterion) SessionAffinity(state *allocator.State, _ *allocator.Candidate, session *allocator.Session) float64 {
	remaining := session.RemainingAvailable(state)
	if remaining == 0 {
		return 0
	}
	urgency := float64(session.RemainingCapacity()) / float64(remaining)
	return min(max(urgency, 0), 1)
}

func (c *CoverageCriterion) Validate(state *allocator.State) []allocator.ValidationError {
	var errs []allocator.ValidationError
	for _, session := range state.Sessions {
		if session.Closed || session.IsFull() {
			continue
		}
		errs = append(errs, allocator.ValidationError{
			SessionIndex:  session.Index,
			Date:          session.Date.Format("2006-01-02"),
			LocationID:    session.LocationID,
			CriterionName: c.Name(),
			Description:   fmt.Sprintf("session is underfilled: has %d tutors but size is %d", session.CurrentSize(), session.Size),
		})
	}
	return errs
}

func (c *CoverageCriterion) CandidateWeight() float64 {
	return 0
}

func (c *CoverageCriterion) AffinityWeight() float64 {
	return c.affinityWeight
}
