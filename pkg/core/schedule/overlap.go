package schedule

import (
	"fmt"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// Candidate is a proposed shift placement checked before any state changes.
// ShiftID is set when the candidate replaces an existing shift so that the
// shift does not conflict with itself.
type Candidate struct {
	ShiftID    string
	UserID     string
	LocationID string
	Start      time.Time
	End        time.Time
}

// ConflictError describes the existing shift a candidate collides with
type ConflictError struct {
	Candidate    Candidate
	Existing     model.Shift
	LocationName string
}

func (e *ConflictError) Error() string {
	if e.LocationName != "" {
		return fmt.Sprintf("Already scheduled at %s during this time.", e.LocationName)
	}
	return "Already scheduled during this time."
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) strictly
// intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Validator checks candidates against existing shifts.
// By default only shifts for the same user at the same location conflict;
// StrictUserScope also rejects overlaps at other locations.
type Validator struct {
	Locations       []model.Location
	StrictUserScope bool
}

// HasConflict reports whether candidate collides with any existing shift
func (v Validator) HasConflict(candidate Candidate, existing []model.Shift) bool {
	_, found := v.firstConflict(candidate, existing)
	return found
}

// FindConflict returns a *ConflictError for the first colliding shift, or nil
func (v Validator) FindConflict(candidate Candidate, existing []model.Shift) error {
	shift, found := v.firstConflict(candidate, existing)
	if !found {
		return nil
	}
	return &ConflictError{
		Candidate:    candidate,
		Existing:     shift,
		LocationName: locationName(v.Locations, shift.LocationID),
	}
}

func (v Validator) firstConflict(candidate Candidate, existing []model.Shift) (model.Shift, bool) {
	for _, shift := range existing {
		if candidate.ShiftID != "" && shift.ID == candidate.ShiftID {
			continue
		}
		if shift.UserID != candidate.UserID {
			continue
		}
		if !v.StrictUserScope && shift.LocationID != candidate.LocationID {
			continue
		}
		if Overlaps(shift.Start, shift.End, candidate.Start, candidate.End) {
			return shift, true
		}
	}
	return model.Shift{}, false
}

// HasConflict checks candidate using the default (user, location) scope
func HasConflict(candidate Candidate, existing []model.Shift) bool {
	return Validator{}.HasConflict(candidate, existing)
}

func locationName(locations []model.Location, id string) string {
	for _, l := range locations {
		if l.ID == id {
			return l.Name
		}
	}
	return ""
}
