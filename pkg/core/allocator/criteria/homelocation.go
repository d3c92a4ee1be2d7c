package criteria

import (
	"slices"

	"github.com/jakechorley/swiftshift/pkg/core/allocator"
)

// HomeLocationCriterion prefers a tutor's first listed location, the same
// one quick-add picks by default. Other eligible locations score half.
type HomeLocationCriterion struct {
	affinityWeight float64
}

func NewHomeLocationCriterion(affinityWeight float64) *HomeLocationCriterion {
	return &HomeLocationCriterion{affinityWeight: affinityWeight}
}

func (c *HomeLocationCriterion) Name() string {
	return "HomeLocation"
}

func (c *HomeLocationCriterion) PromoteCandidate(*allocator.State, *allocator.Candidate) float64 {
	return 0
}

func (c *HomeLocationCriterion) IsSessionValid(*allocator.State, *allocator.Candidate, *allocator.Session) bool {
	return true
}

func (c *HomeLocationCriterion) SessionAffinity(_ *allocator.State, candidate *allocator.Candidate, session *allocator.Session) float64 {
	locations := candidate.User.Locations
	switch {
	case len(locations) > 0 && locations[0] == session.LocationID:
		return 1
	case len(locations) == 0 || slices.Contains(locations, session.LocationID):
		return 0.5
	}
	return 0
}

func (c *HomeLocationCriterion) Validate(*allocator.State) []allocator.ValidationError {
	return nil
}

func (c *HomeLocationCriterion) CandidateWeight() float64 {
	return 0
}

func (c *HomeLocationCriterion) AffinityWeight() float64 {
	return c.affinityWeight
}

// Default returns the criteria used to fill a week
func Default() []allocator.Criterion {
	return []allocator.Criterion{
		NewCoverageCriterion(3),
		NewSpreadCriterion(1),
		NewHomeLocationCriterion(1),
	}
}
