package allocator

// ValidationError describes a session that breaks a criterion after filling
type ValidationError struct {
	SessionIndex  int
	Date          string
	LocationID    string
	CriterionName string
	Description   string
}

// Criterion steers allocation. Criteria rank candidates, veto sessions and
// score how well a session suits a candidate.
type Criterion interface {
	Name() string

	// PromoteCandidate returns a score in [-1, 1], multiplied by CandidateWeight.
	// Positive values place the candidate earlier.
	PromoteCandidate(state *State, candidate *Candidate) float64

	// IsSessionValid vetoes a placement when it returns false
	IsSessionValid(state *State, candidate *Candidate, session *Session) bool

	// SessionAffinity returns a score in [0, 1], multiplied by AffinityWeight.
	// The session with the highest total is chosen.
	SessionAffinity(state *State, candidate *Candidate, session *Session) float64

	// Validate checks the finished state
	Validate(state *State) []ValidationError

	CandidateWeight() float64
	AffinityWeight() float64
}
