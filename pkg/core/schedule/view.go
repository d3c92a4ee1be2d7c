package schedule

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// Scope selects how the grid groups rows
type Scope string

const (
	ScopeUser     Scope = "user"
	ScopeLocation Scope = "location"
)

// AllLocations disables the location filter
const AllLocations = "all"

// Filter narrows the shifts shown on the grid
type Filter struct {
	Scope      Scope
	LocationID string // AllLocations or a location id
	Viewer     *model.AuthUser
}

// Apply returns the shifts visible under the filter.
// Tutors looking at their own schedule ignore the location filter and only
// see their own shifts.
func (f Filter) Apply(shifts []model.Shift) []model.Shift {
	isTutor := f.Viewer != nil && f.Viewer.Role == model.RoleTutor
	ignoreLocation := isTutor && f.Scope == ScopeUser

	out := make([]model.Shift, 0, len(shifts))
	for _, shift := range shifts {
		if !ignoreLocation && f.LocationID != "" && f.LocationID != AllLocations && shift.LocationID != f.LocationID {
			continue
		}
		if f.Scope == ScopeUser && isTutor && shift.UserID != f.Viewer.ID {
			continue
		}
		out = append(out, shift)
	}
	return out
}

// DayShifts holds the shifts starting on one day, ordered by start
type DayShifts struct {
	Day    time.Time
	Shifts []model.Shift
}

// GroupByDay buckets shifts onto days by their start date
func GroupByDay(shifts []model.Shift, days []time.Time) []DayShifts {
	grouped := make([]DayShifts, len(days))
	for i, day := range days {
		key := timeutil.DateKey(day)
		var dayShifts []model.Shift
		for _, shift := range shifts {
			if timeutil.DateKey(shift.Start) == key {
				dayShifts = append(dayShifts, shift)
			}
		}
		slices.SortStableFunc(dayShifts, func(a, b model.Shift) int {
			return a.Start.Compare(b.Start)
		})
		grouped[i] = DayShifts{Day: day, Shifts: dayShifts}
	}
	return grouped
}

// ShiftsForUser keeps the shifts owned by userID
func ShiftsForUser(shifts []model.Shift, userID string) []model.Shift {
	var out []model.Shift
	for _, shift := range shifts {
		if shift.UserID == userID {
			out = append(out, shift)
		}
	}
	return out
}

// TutorsForDay lists the users with at least one shift on the day. With the
// location scope and no location filter they are ordered by the location of
// their first shift.
func TutorsForDay(users []model.User, dayShifts []model.Shift, filter Filter) []model.User {
	firstLocation := make(map[string]string)
	for _, shift := range dayShifts {
		if _, ok := firstLocation[shift.UserID]; !ok {
			firstLocation[shift.UserID] = shift.LocationID
		}
	}

	var tutors []model.User
	for _, user := range users {
		if _, ok := firstLocation[user.ID]; ok {
			tutors = append(tutors, user)
		}
	}

	if filter.Scope == ScopeLocation && (filter.LocationID == "" || filter.LocationID == AllLocations) {
		slices.SortStableFunc(tutors, func(a, b model.User) int {
			return CompareIDs(firstLocation[a.ID], firstLocation[b.ID])
		})
	}
	return tutors
}

// TutorLocationForDay picks the location a tutor should see in the location
// scope: where they work that day, else their default location, else the
// first location
func TutorLocationForDay(userID string, day time.Time, shifts []model.Shift, users []model.User, locations []model.Location) string {
	key := timeutil.DateKey(day)
	for _, shift := range shifts {
		if shift.UserID == userID && timeutil.DateKey(shift.Start) == key {
			return shift.LocationID
		}
	}
	for _, user := range users {
		if user.ID == userID && len(user.Locations) > 0 {
			return user.Locations[0]
		}
	}
	if len(locations) > 0 {
		return locations[0].ID
	}
	return ""
}

// Block is a merged interval placed on the slot grid
type Block struct {
	Interval model.MergedInterval
	Span     SlotSpan
}

// EditableShiftID returns the shift a resize would act on, or "" for blocks
// backed by several shifts
func (b Block) EditableShiftID() string {
	return b.Interval.EditableShiftID()
}

// Row is one tutor's visible blocks for a day
type Row struct {
	User   model.User
	Blocks []Block
}

// Grid is the projected schedule for one day
type Grid struct {
	Day        time.Time
	Open       int
	Close      int
	SlotStarts []int
	Rows       []Row
}

// BuildDayGrid merges and projects each tutor's shifts for the day.
// Blocks that fall entirely outside opening hours are dropped.
func BuildDayGrid(day time.Time, users []model.User, dayShifts []model.Shift, filter Filter, hours HoursPolicy, slotMinutes int, overrides map[string]TimeOverride) Grid {
	open, close := hours.Bounds(day)
	grid := Grid{
		Day:        day,
		Open:       open,
		Close:      close,
		SlotStarts: SlotStarts(open, close, slotMinutes),
	}

	for _, user := range TutorsForDay(users, dayShifts, filter) {
		row := Row{User: user}
		for _, interval := range MergeShiftsWithOverrides(ShiftsForUser(dayShifts, user.ID), overrides) {
			span := ProjectInterval(interval.Start, interval.End, day, hours, slotMinutes)
			if !span.Visible() {
				continue
			}
			row.Blocks = append(row.Blocks, Block{Interval: interval, Span: span})
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// HasApprovedTimeOff reports whether any approved request for userID covers day
func HasApprovedTimeOff(requests []model.TimeOffRequest, userID string, day time.Time) bool {
	key := timeutil.DateKey(day)
	for _, r := range requests {
		if r.UserID == userID && r.Status == model.StatusApproved && timeutil.IsDateWithinRange(key, r.StartDate, r.EndDate) {
			return true
		}
	}
	return false
}

// VisibleAvailability returns the user's "available" events for day's
// weekday, or nothing when approved time off covers the day
func VisibleAvailability(events []model.AvailabilityEvent, requests []model.TimeOffRequest, userID string, day time.Time) []model.AvailabilityEvent {
	if HasApprovedTimeOff(requests, userID, day) {
		return nil
	}
	weekday := timeutil.ISOWeekday(day)
	var out []model.AvailabilityEvent
	for _, e := range events {
		if e.UserID == userID && e.DayOfWeek == weekday && e.Preference == model.PreferenceAvailable {
			out = append(out, e)
		}
	}
	return out
}

// VisibleUsers limits the roster to the viewer when the viewer is a tutor
func VisibleUsers(users []model.User, viewer *model.AuthUser) []model.User {
	if viewer == nil || viewer.Role != model.RoleTutor {
		return users
	}
	var out []model.User
	for _, u := range users {
		if u.ID == viewer.ID {
			out = append(out, u)
		}
	}
	return out
}

// CompareIDs orders numeric ids numerically and everything else lexically
func CompareIDs(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}
