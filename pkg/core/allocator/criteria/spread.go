package criteria

import (
	"github.com/jakechorley/swiftshift/pkg/core/allocator"
)

// SpreadCriterion favours days far from the days a tutor already works, so
// a tutor's shifts spread across the week instead of bunching together.
// Affinity is the distance in days to the nearest worked day over the
// largest possible distance.
type SpreadCriterion struct {
	affinityWeight float64
}

func NewSpreadCriterion(affinityWeight float64) *SpreadCriterion {
	return &SpreadCriterion{affinityWeight: affinityWeight}
}

func (c *SpreadCriterion) Name() string {
	return "Spread"
}

func (c *SpreadCriterion) PromoteCandidate(*allocator.State, *allocator.Candidate) float64 {
	return 0
}

func (c *SpreadCriterion) IsSessionValid(*allocator.State, *allocator.Candidate, *allocator.Session) bool {
	return true
}

func (c *SpreadCriterion) SessionAffinity(state *allocator.State, candidate *allocator.Candidate, session *allocator.Session) float64 {
	maxDistance := state.DayCount - 1
	if maxDistance <= 0 {
		return 0.5
	}

	minDistance := maxDistance
	for _, day := range candidate.WorkedDays(state) {
		distance := session.Day - day
		if distance < 0 {
			distance = -distance
		}
		minDistance = min(minDistance, distance)
	}
	return float64(minDistance) / float64(maxDistance)
}

func (c *SpreadCriterion) Validate(*allocator.State) []allocator.ValidationError {
	return nil
}

func (c *SpreadCriterion) CandidateWeight() float64 {
	return 0
}

func (c *SpreadCriterion) AffinityWeight() float64 {
	return c.affinityWeight
}
