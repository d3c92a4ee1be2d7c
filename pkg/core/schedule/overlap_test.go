package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

func TestHasConflict(t *testing.T) {
	existing := []model.Shift{shift("a", "1", "1", 14, 0, 16, 0)}

	tests := []struct {
		name      string
		candidate Candidate
		expected  bool
	}{
		{"overlapping same location", Candidate{UserID: "u1", LocationID: "1", Start: at(15, 0), End: at(17, 0)}, true},
		{"contained", Candidate{UserID: "u1", LocationID: "1", Start: at(14, 30), End: at(15, 0)}, true},
		{"touching after", Candidate{UserID: "u1", LocationID: "1", Start: at(16, 0), End: at(17, 0)}, false},
		{"touching before", Candidate{UserID: "u1", LocationID: "1", Start: at(13, 0), End: at(14, 0)}, false},
		{"same time different location", Candidate{UserID: "u1", LocationID: "2", Start: at(14, 0), End: at(16, 0)}, false},
		{"different user", Candidate{UserID: "u2", LocationID: "1", Start: at(14, 0), End: at(16, 0)}, false},
		{"self when replacing", Candidate{ShiftID: "a", UserID: "u1", LocationID: "1", Start: at(14, 0), End: at(17, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasConflict(tt.candidate, existing))
		})
	}
}

func TestValidator_StrictUserScope(t *testing.T) {
	existing := []model.Shift{shift("a", "1", "1", 14, 0, 16, 0)}
	candidate := Candidate{UserID: "u1", LocationID: "2", Start: at(15, 0), End: at(17, 0)}

	assert.False(t, Validator{}.HasConflict(candidate, existing))
	assert.True(t, Validator{StrictUserScope: true}.HasConflict(candidate, existing))
}

func TestValidator_FindConflict(t *testing.T) {
	locations := []model.Location{{ID: "1", Name: "Location 1"}, {ID: "2", Name: "Location 2"}}
	validator := Validator{Locations: locations}
	existing := []model.Shift{shift("a", "1", "1", 14, 0, 16, 0)}

	err := validator.FindConflict(Candidate{UserID: "u1", LocationID: "1", Start: at(15, 0), End: at(17, 0)}, existing)
	require.Error(t, err)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "a", conflict.Existing.ID)
	assert.Equal(t, "Already scheduled at Location 1 during this time.", err.Error())

	assert.NoError(t, validator.FindConflict(Candidate{UserID: "u1", LocationID: "2", Start: at(15, 0), End: at(17, 0)}, existing))
}

func TestConflictError_UnknownLocation(t *testing.T) {
	err := Validator{}.FindConflict(
		Candidate{UserID: "u1", LocationID: "1", Start: at(15, 0), End: at(17, 0)},
		[]model.Shift{shift("a", "1", "1", 14, 0, 16, 0)},
	)
	require.Error(t, err)
	assert.Equal(t, "Already scheduled during this time.", err.Error())
}
