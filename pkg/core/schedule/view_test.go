package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

func userShift(id, user, location string, day time.Time, startH, endH int) model.Shift {
	return model.Shift{
		ID:         id,
		UserID:     user,
		LocationID: location,
		PositionID: "1",
		Start:      day.Add(time.Duration(startH) * time.Hour),
		End:        day.Add(time.Duration(endH) * time.Hour),
	}
}

func TestFilter_Apply(t *testing.T) {
	shifts := []model.Shift{
		userShift("a", "u1", "1", testDay, 14, 15),
		userShift("b", "u1", "2", testDay, 16, 17),
		userShift("c", "u2", "1", testDay, 14, 16),
	}
	tutor := &model.AuthUser{ID: "u1", Role: model.RoleTutor}
	admin := &model.AuthUser{ID: "admin", Role: model.RoleAdmin}

	ids := func(shifts []model.Shift) []string {
		var out []string
		for _, s := range shifts {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter{Scope: ScopeUser, LocationID: AllLocations, Viewer: admin}.Apply(shifts)))
	assert.Equal(t, []string{"a", "c"}, ids(Filter{Scope: ScopeLocation, LocationID: "1", Viewer: admin}.Apply(shifts)))
	// Tutors see all their own shifts regardless of the location filter
	assert.Equal(t, []string{"a", "b"}, ids(Filter{Scope: ScopeUser, LocationID: "1", Viewer: tutor}.Apply(shifts)))
	assert.Equal(t, []string{"a", "c"}, ids(Filter{Scope: ScopeLocation, LocationID: "1", Viewer: tutor}.Apply(shifts)))
}

func TestGroupByDay(t *testing.T) {
	thursday := testDay.AddDate(0, 0, 1)
	shifts := []model.Shift{
		userShift("late", "u1", "1", testDay, 17, 18),
		userShift("thu", "u1", "1", thursday, 14, 15),
		userShift("early", "u1", "1", testDay, 14, 15),
	}

	grouped := GroupByDay(shifts, []time.Time{testDay, thursday})

	require.Len(t, grouped, 2)
	require.Len(t, grouped[0].Shifts, 2)
	assert.Equal(t, "early", grouped[0].Shifts[0].ID)
	assert.Equal(t, "late", grouped[0].Shifts[1].ID)
	assert.Equal(t, "thu", grouped[1].Shifts[0].ID)
}

func TestTutorsForDay_LocationScopeOrdersByLocation(t *testing.T) {
	users := []model.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}
	shifts := []model.Shift{
		userShift("a", "u1", "10", testDay, 14, 15),
		userShift("b", "u2", "2", testDay, 14, 15),
	}

	tutors := TutorsForDay(users, shifts, Filter{Scope: ScopeLocation, LocationID: AllLocations})
	require.Len(t, tutors, 2)
	assert.Equal(t, "u2", tutors[0].ID)
	assert.Equal(t, "u1", tutors[1].ID)

	tutors = TutorsForDay(users, shifts, Filter{Scope: ScopeUser, LocationID: AllLocations})
	assert.Equal(t, "u1", tutors[0].ID)
}

func TestTutorLocationForDay(t *testing.T) {
	users := []model.User{{ID: "u1", Locations: []string{"3"}}, {ID: "u2"}}
	locations := []model.Location{{ID: "1"}}
	shifts := []model.Shift{userShift("a", "u1", "2", testDay, 14, 15)}

	assert.Equal(t, "2", TutorLocationForDay("u1", testDay, shifts, users, locations))
	assert.Equal(t, "3", TutorLocationForDay("u1", testDay.AddDate(0, 0, 1), shifts, users, locations))
	assert.Equal(t, "1", TutorLocationForDay("u2", testDay, shifts, users, locations))
	assert.Equal(t, "", TutorLocationForDay("u2", testDay, nil, users, nil))
}

func TestBuildDayGrid(t *testing.T) {
	users := []model.User{{ID: "u1"}, {ID: "u2"}}
	shifts := []model.Shift{
		userShift("a", "u1", "1", testDay, 14, 15),
		userShift("b", "u1", "1", testDay, 15, 16),
		userShift("c", "u2", "1", testDay, 10, 12), // before opening
		userShift("d", "u2", "1", testDay, 18, 20),
	}

	grid := BuildDayGrid(testDay, users, shifts, Filter{Scope: ScopeUser, LocationID: AllLocations}, DefaultHours, DefaultSlotMinutes, nil)

	assert.Len(t, grid.SlotStarts, 10)
	require.Len(t, grid.Rows, 2)

	require.Len(t, grid.Rows[0].Blocks, 1)
	assert.Equal(t, SlotSpan{0, 4}, grid.Rows[0].Blocks[0].Span)
	assert.Equal(t, "", grid.Rows[0].Blocks[0].EditableShiftID())

	require.Len(t, grid.Rows[1].Blocks, 1, "invisible block is skipped")
	assert.Equal(t, SlotSpan{8, 10}, grid.Rows[1].Blocks[0].Span)
	assert.Equal(t, "d", grid.Rows[1].Blocks[0].EditableShiftID())
}

func TestVisibleAvailability_SuppressedByApprovedTimeOff(t *testing.T) {
	jan11 := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC) // Saturday
	jan13 := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC) // Monday

	events := []model.AvailabilityEvent{
		{ID: "e1", UserID: "u1", DayOfWeek: 6, StartTime: "14:00", EndTime: "16:00", Preference: model.PreferenceAvailable},
		{ID: "e2", UserID: "u1", DayOfWeek: 1, StartTime: "14:00", EndTime: "16:00", Preference: model.PreferenceAvailable},
		{ID: "e3", UserID: "u1", DayOfWeek: 1, StartTime: "17:00", EndTime: "18:00", Preference: model.PreferenceUnavailable},
	}
	requests := []model.TimeOffRequest{{
		ID: "t1", UserID: "u1", Type: model.TimeOffHoliday,
		StartDate: "2025-01-10", EndDate: "2025-01-12", AllDay: true, Status: model.StatusApproved,
	}}

	assert.True(t, HasApprovedTimeOff(requests, "u1", jan11))
	assert.Empty(t, VisibleAvailability(events, requests, "u1", jan11))

	assert.False(t, HasApprovedTimeOff(requests, "u1", jan13))
	visible := VisibleAvailability(events, requests, "u1", jan13)
	require.Len(t, visible, 1)
	assert.Equal(t, "e2", visible[0].ID)
}

func TestHasApprovedTimeOff_IgnoresPending(t *testing.T) {
	requests := []model.TimeOffRequest{{
		UserID: "u1", StartDate: "2025-01-10", EndDate: "2025-01-12", Status: model.StatusPending,
	}}
	assert.False(t, HasApprovedTimeOff(requests, "u1", time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)))
}

func TestVisibleUsers(t *testing.T) {
	users := []model.User{{ID: "u1"}, {ID: "u2"}}

	assert.Len(t, VisibleUsers(users, nil), 2)
	assert.Len(t, VisibleUsers(users, &model.AuthUser{ID: "x", Role: model.RoleAdmin}), 2)
	assert.Equal(t, []model.User{{ID: "u2"}}, VisibleUsers(users, &model.AuthUser{ID: "u2", Role: model.RoleTutor}))
}

func TestCompareIDs(t *testing.T) {
	assert.Equal(t, -1, CompareIDs("2", "10"))
	assert.Equal(t, 1, CompareIDs("b", "a"))
	assert.Equal(t, 0, CompareIDs("3", "3"))
}
