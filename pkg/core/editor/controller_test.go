package editor

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
)

var wednesday = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return wednesday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// memoryShifts is an in-memory ShiftCollection
type memoryShifts struct {
	shifts   []model.Shift
	drafts   []string
	replaced []model.Shift
	failAll  error
}

func (m *memoryShifts) All(context.Context) ([]model.Shift, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	return slices.Clone(m.shifts), nil
}

func (m *memoryShifts) AddDraft(_ context.Context, shift model.Shift) error {
	m.shifts = append([]model.Shift{shift}, m.shifts...)
	m.drafts = append(m.drafts, shift.ID)
	return nil
}

func (m *memoryShifts) Replace(_ context.Context, shift model.Shift) error {
	for i := range m.shifts {
		if m.shifts[i].ID == shift.ID {
			m.shifts[i] = shift
			m.replaced = append(m.replaced, shift)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memoryShifts) Remove(_ context.Context, id string) error {
	m.shifts = slices.DeleteFunc(m.shifts, func(s model.Shift) bool { return s.ID == id })
	return nil
}

var (
	adminUser = &model.AuthUser{ID: "admin", Name: "Admin", Role: model.RoleAdmin}
	tutorA    = model.User{ID: "a", FirstName: "Tutor", LastName: "A", Locations: []string{"1", "2"}, Positions: []string{"2"}}
	tutorB    = model.User{ID: "b", FirstName: "Tutor", LastName: "B"}
	reference = ReferenceData{
		Users:     []model.User{tutorA, tutorB},
		Locations: []model.Location{{ID: "1", Name: "Location 1"}, {ID: "2", Name: "Location 2"}},
		Positions: []model.Position{{ID: "1", Name: "Math Tutor"}, {ID: "2", Name: "HS Tutor"}},
	}
)

func newController(t *testing.T, shifts *memoryShifts, viewer *model.AuthUser) (*Controller, *MemorySurface) {
	t.Helper()
	surface := &MemorySurface{Current: Chrome{Cursor: "default", UserSelect: "auto"}}
	counter := 0
	c := NewController(shifts, reference, viewer, Options{
		Surface: surface,
		NewID: func() string {
			counter++
			return "new-" + string(rune('0'+counter))
		},
	}, zap.NewNop())
	return c, surface
}

func existingShift(id string, startH, endH int) model.Shift {
	return model.Shift{
		ID:         id,
		UserID:     "a",
		LocationID: "1",
		PositionID: "1",
		Start:      at(startH, 0),
		End:        at(endH, 0),
	}
}

func TestQuickAdd_ConflictScenario(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16)}}
	c, _ := newController(t, shifts, adminUser)

	form := QuickAddForm{UserID: "a", Day: wednesday, StartTime: "15:00", EndTime: "17:00", Location: mo.Some("1")}
	require.NoError(t, c.OpenQuickAdd(form))

	_, err := c.SubmitQuickAdd(ctx, form)
	var conflict *schedule.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Already scheduled at Location 1 during this time.", c.Banner())
	_, open := c.QuickAdd()
	assert.True(t, open, "form stays open after a conflict")
	assert.Len(t, shifts.shifts, 1)

	form.Location = mo.Some("2")
	shift, err := c.SubmitQuickAdd(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "2", shift.LocationID)
	assert.Equal(t, "2", shift.PositionID)
	assert.Equal(t, at(15, 0), shift.Start)
	assert.Equal(t, at(17, 0), shift.End)
	assert.Equal(t, QuickAddNote, shift.Notes)
	assert.False(t, shift.Published)
	assert.Equal(t, []string{shift.ID}, shifts.drafts)

	_, open = c.QuickAdd()
	assert.False(t, open, "form closes on success")

	c.DismissBanner()
	assert.Empty(t, c.Banner())
}

func TestQuickAdd_InvalidRangeIsRefusedSilently(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{}
	c, _ := newController(t, shifts, adminUser)

	form := QuickAddForm{UserID: "a", Day: wednesday, StartTime: "16:00", EndTime: "16:00"}
	require.NoError(t, c.OpenQuickAdd(form))

	_, err := c.SubmitQuickAdd(ctx, form)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
	assert.Empty(t, shifts.shifts)
	assert.Empty(t, c.Banner())
	_, open := c.QuickAdd()
	assert.True(t, open)
}

func TestQuickAdd_DefaultsAndAutoLocation(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{}
	c, _ := newController(t, shifts, adminUser)

	require.NoError(t, c.OpenQuickAdd(QuickAddForm{UserID: "b", Day: wednesday}))
	form, ok := c.QuickAdd()
	require.True(t, ok)
	assert.Equal(t, "14:00", form.StartTime)
	assert.Equal(t, "16:00", form.EndTime)

	shift, err := c.SubmitQuickAdd(ctx, form)
	require.NoError(t, err)
	// Tutor B has no eligible lists so the global defaults apply
	assert.Equal(t, "1", shift.LocationID)
	assert.Equal(t, "1", shift.PositionID)
}

func TestQuickAdd_UnknownUserAndClosedForm(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, &memoryShifts{}, adminUser)

	_, err := c.SubmitQuickAdd(ctx, QuickAddForm{UserID: "a"})
	assert.ErrorIs(t, err, ErrNoGesture)

	require.NoError(t, c.OpenQuickAdd(QuickAddForm{UserID: "zzz", Day: wednesday}))
	_, err = c.SubmitQuickAdd(ctx, QuickAddForm{UserID: "zzz", Day: wednesday, StartTime: "14:00", EndTime: "15:00"})
	assert.ErrorIs(t, err, ErrUnknownUser)

	c.CloseQuickAdd()
	_, open := c.QuickAdd()
	assert.False(t, open)
}

func TestQuickAdd_TutorGates(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{}
	c, _ := newController(t, shifts, &model.AuthUser{ID: "a", Role: model.RoleTutor})

	assert.ErrorIs(t, c.OpenQuickAdd(QuickAddForm{UserID: "b"}), auth.ErrForbidden)

	require.NoError(t, c.OpenQuickAdd(QuickAddForm{Day: wednesday, Location: mo.Some("2")}))
	form, _ := c.QuickAdd()
	assert.Equal(t, "a", form.UserID)
	assert.True(t, form.Location.IsAbsent(), "tutors never pick a location")

	shift, err := c.SubmitQuickAdd(ctx, QuickAddForm{Day: wednesday, StartTime: "14:00", EndTime: "15:00", Location: mo.Some("2")})
	require.NoError(t, err)
	assert.Equal(t, "a", shift.UserID)
	assert.Equal(t, "1", shift.LocationID)
}

func TestDrop_CreatesShiftFromAvailability(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{}
	c, _ := newController(t, shifts, adminUser)

	raw, err := EncodeDragPayload(model.AvailabilityEvent{UserID: "a", StartTime: "15:00", EndTime: "17:30"})
	require.NoError(t, err)

	require.NoError(t, c.BeginDrop(raw, wednesday.Add(9*time.Hour)))
	pending, ok := c.PendingDrop()
	require.True(t, ok)
	assert.Equal(t, wednesday, pending.Day)

	shift, err := c.ConfirmDrop(ctx, mo.None[string]())
	require.NoError(t, err)
	assert.Equal(t, at(15, 0), shift.Start)
	assert.Equal(t, at(17, 30), shift.End)
	assert.Equal(t, "1", shift.LocationID)
	assert.Equal(t, AvailabilityNote, shift.Notes)

	_, ok = c.PendingDrop()
	assert.False(t, ok)
}

func TestDrop_EndBeforeStartIsPushedOneHour(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, &memoryShifts{}, adminUser)

	require.NoError(t, c.BeginDrop(`{"user_id": "a", "start_time": "16:00", "end_time": "15:00"}`, wednesday))
	shift, err := c.ConfirmDrop(ctx, mo.Some("2"))
	require.NoError(t, err)
	assert.Equal(t, at(16, 0), shift.Start)
	assert.Equal(t, at(17, 0), shift.End)
	assert.Equal(t, "2", shift.LocationID)
}

func TestDrop_ConflictClosesConfirmation(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16)}}
	c, _ := newController(t, shifts, adminUser)

	require.NoError(t, c.BeginDrop(`{"user_id": "a", "start_time": "15:00", "end_time": "16:00"}`, wednesday))
	_, err := c.ConfirmDrop(ctx, mo.None[string]())

	var conflict *schedule.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.NotEmpty(t, c.Banner())
	_, ok := c.PendingDrop()
	assert.False(t, ok)
	assert.Len(t, shifts.shifts, 1)
}

func TestDrop_MalformedPayloadsAreIgnored(t *testing.T) {
	c, _ := newController(t, &memoryShifts{}, adminUser)

	for _, raw := range []string{
		"",
		"{not json",
		`{"start_time": "14:00"}`,
		`{"user_id": 0}`,
		`{"user_id": "a"}`,
		`{"user_id": "a", "start_time": "14:00", "end_time": ""}`,
		`{"user_id": "a", "start_time": "2pm", "end_time": "15:00"}`,
		`{"user_id": 1.5, "start_time": "15:00", "end_time": "16:00"}`,
		`{"user_id": -3, "start_time": "15:00", "end_time": "16:00"}`,
	} {
		assert.ErrorIs(t, c.BeginDrop(raw, wednesday), ErrMalformedPayload, raw)
		_, ok := c.PendingDrop()
		assert.False(t, ok)
	}

	_, err := c.ConfirmDrop(context.Background(), mo.None[string]())
	assert.ErrorIs(t, err, ErrNoGesture)

	payload, err := ParseDragPayload(`{"user_id": 7, "start_time": "14:00", "end_time": "15:00"}`)
	require.NoError(t, err)
	assert.Equal(t, "7", payload.UserID)
}

func TestDrop_TutorsCannotDrop(t *testing.T) {
	c, _ := newController(t, &memoryShifts{}, &model.AuthUser{ID: "a", Role: model.RoleTutor})
	assert.ErrorIs(t, c.BeginDrop(`{"user_id": "a"}`, wednesday), auth.ErrForbidden)
}

func TestDrop_CancelDiscards(t *testing.T) {
	shifts := &memoryShifts{}
	c, _ := newController(t, shifts, adminUser)

	require.NoError(t, c.BeginDrop(`{"user_id": "a", "start_time": "14:00", "end_time": "15:00"}`, wednesday))
	assert.ErrorIs(t, c.OpenQuickAdd(QuickAddForm{}), ErrGestureActive)
	c.CancelDrop()

	_, err := c.ConfirmDrop(context.Background(), mo.None[string]())
	assert.ErrorIs(t, err, ErrNoGesture)
	assert.Empty(t, shifts.shifts)
}

func TestResize_ExtendsEndThenClamps(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16)}}
	c, surface := newController(t, shifts, adminUser)

	require.NoError(t, c.PointerDown(ctx, "s1", EdgeEnd, 100))
	assert.Equal(t, Chrome{Cursor: "col-resize", UserSelect: "none"}, surface.Current)
	assert.Equal(t, Dragging{Edge: EdgeEnd, ShiftID: "s1", AnchorX: 100}, c.DragState())

	// Two 80px steps move the end by exactly one hour
	require.NoError(t, c.PointerMove(ctx, 260))
	assert.Equal(t, at(17, 0), c.Overrides()["s1"].End)
	assert.Equal(t, at(16, 0), shifts.shifts[0].End, "record untouched during the drag")

	require.NoError(t, c.PointerMove(ctx, 740))
	assert.Equal(t, at(19, 0), c.Overrides()["s1"].End, "clamped to close")

	shift, changed, err := c.PointerUp(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, at(19, 0), shift.End)
	assert.Equal(t, at(19, 0), shifts.shifts[0].End)
	assert.Empty(t, c.Overrides())
	assert.Equal(t, Idle{}, c.DragState())
	assert.Equal(t, Chrome{Cursor: "default", UserSelect: "auto"}, surface.Current)
}

func TestResize_FridayClosesEarlier(t *testing.T) {
	ctx := context.Background()
	friday := wednesday.AddDate(0, 0, 2)
	shift := model.Shift{ID: "s1", UserID: "a", LocationID: "1", PositionID: "1", Start: friday.Add(16 * time.Hour), End: friday.Add(17 * time.Hour)}
	c, _ := newController(t, &memoryShifts{shifts: []model.Shift{shift}}, adminUser)

	require.NoError(t, c.PointerDown(ctx, "s1", EdgeEnd, 0))
	require.NoError(t, c.PointerMove(ctx, 400))
	assert.Equal(t, friday.Add(18*time.Hour), c.Overrides()["s1"].End)
}

func TestResize_CannotCrossOppositeEdge(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 15)}}
	c, _ := newController(t, shifts, adminUser)

	require.NoError(t, c.PointerDown(ctx, "s1", EdgeEnd, 0))

	require.NoError(t, c.PointerMove(ctx, -80))
	assert.Equal(t, at(14, 30), c.Overrides()["s1"].End)

	// A second step would reach the start and is rejected
	require.NoError(t, c.PointerMove(ctx, -160))
	assert.Equal(t, at(14, 30), c.Overrides()["s1"].End)
	assert.Equal(t, -2, c.DragState().(Dragging).StepsSoFar)

	require.NoError(t, c.PointerMove(ctx, -80))
	assert.Equal(t, at(15, 0), c.Overrides()["s1"].End)

	override := c.Overrides()["s1"]
	assert.True(t, override.End.After(override.Start))
}

func TestResize_StartClampedToOpen(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16)}}
	c, _ := newController(t, shifts, adminUser)

	require.NoError(t, c.PointerDown(ctx, "s1", EdgeStart, 300))
	require.NoError(t, c.PointerMove(ctx, 140))
	assert.Equal(t, at(14, 0), c.Overrides()["s1"].Start)

	_, changed, err := c.PointerUp(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, shifts.replaced)
}

func TestResize_UsesMeasuredStepWidth(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 15, 16)}}
	c, _ := newController(t, shifts, adminUser)

	// 10 slots over 1220px minus a 220px label column
	c.ResizeViewport(1220, 10)
	assert.Equal(t, 100.0, c.StepWidth())

	require.NoError(t, c.PointerDown(ctx, "s1", EdgeStart, 0))
	require.NoError(t, c.PointerMove(ctx, -100))
	assert.Equal(t, at(14, 30), c.Overrides()["s1"].Start)
}

func TestResize_ConflictOnReleaseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 15), existingShift("s2", 16, 17)}}
	c, _ := newController(t, shifts, adminUser)

	require.NoError(t, c.PointerDown(ctx, "s1", EdgeEnd, 0))
	require.NoError(t, c.PointerMove(ctx, 240))
	assert.Equal(t, at(16, 30), c.Overrides()["s1"].End)

	_, changed, err := c.PointerUp(ctx)
	var conflict *schedule.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.False(t, changed)
	assert.Equal(t, at(15, 0), shifts.shifts[0].End)
	assert.Empty(t, c.Overrides())
	assert.Equal(t, "Already scheduled at Location 1 during this time.", c.Banner())
}

func TestResize_GestureExclusivity(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16), existingShift("s2", 17, 18)}}
	c, surface := newController(t, shifts, adminUser)

	assert.ErrorIs(t, c.PointerMove(ctx, 10), ErrNoGesture)
	_, _, err := c.PointerUp(ctx)
	assert.ErrorIs(t, err, ErrNoGesture)

	require.NoError(t, c.PointerDown(ctx, "s1", EdgeEnd, 0))
	assert.ErrorIs(t, c.PointerDown(ctx, "s2", EdgeEnd, 0), ErrGestureActive)
	assert.ErrorIs(t, c.OpenQuickAdd(QuickAddForm{}), ErrGestureActive)
	assert.ErrorIs(t, c.RequestRemoval(ctx, "s2"), ErrGestureActive)

	require.NoError(t, c.PointerMove(ctx, 80))
	c.CancelGesture()
	assert.Empty(t, c.Overrides())
	assert.Equal(t, Idle{}, c.DragState())
	assert.Equal(t, "default", surface.Current.Cursor)
	assert.Equal(t, at(16, 0), shifts.shifts[0].End)
}

func TestResize_Guards(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16)}}

	tutor, _ := newController(t, shifts, &model.AuthUser{ID: "a", Role: model.RoleTutor})
	assert.ErrorIs(t, tutor.PointerDown(ctx, "s1", EdgeEnd, 0), auth.ErrForbidden)

	c, _ := newController(t, shifts, adminUser)
	assert.ErrorIs(t, c.PointerDown(ctx, "missing", EdgeEnd, 0), ErrUnknownShift)
	assert.Error(t, c.PointerDown(ctx, "s1", Edge("middle"), 0))
	assert.Equal(t, Idle{}, c.DragState())
}

func TestParseEdge(t *testing.T) {
	edge, err := ParseEdge("left")
	require.NoError(t, err)
	assert.Equal(t, EdgeStart, edge)

	edge, err = ParseEdge("end")
	require.NoError(t, err)
	assert.Equal(t, EdgeEnd, edge)

	_, err = ParseEdge("top")
	assert.Error(t, err)
}

func TestRemoval(t *testing.T) {
	ctx := context.Background()
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16)}}
	c, _ := newController(t, shifts, adminUser)

	assert.ErrorIs(t, c.ConfirmRemoval(ctx, true), ErrNoGesture)

	require.NoError(t, c.RequestRemoval(ctx, "s1"))
	id, pending := c.PendingRemoval()
	assert.True(t, pending)
	assert.Equal(t, "s1", id)

	assert.ErrorIs(t, c.ConfirmRemoval(ctx, false), ErrNotConfirmed)
	assert.Len(t, shifts.shifts, 1)
	_, pending = c.PendingRemoval()
	assert.False(t, pending)

	require.NoError(t, c.RequestRemoval(ctx, "s1"))
	require.NoError(t, c.ConfirmRemoval(ctx, true))
	assert.Empty(t, shifts.shifts)
}

func TestRemoval_TutorsCannotRemove(t *testing.T) {
	shifts := &memoryShifts{shifts: []model.Shift{existingShift("s1", 14, 16)}}
	c, _ := newController(t, shifts, &model.AuthUser{ID: "a", Role: model.RoleTutor})
	assert.ErrorIs(t, c.RequestRemoval(context.Background(), "s1"), auth.ErrForbidden)
}

func TestLoadFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	c, _ := newController(t, &memoryShifts{failAll: boom}, adminUser)

	require.NoError(t, c.OpenQuickAdd(QuickAddForm{UserID: "a", Day: wednesday}))
	_, err := c.SubmitQuickAdd(ctx, QuickAddForm{UserID: "a", Day: wednesday, StartTime: "14:00", EndTime: "15:00"})
	assert.ErrorIs(t, err, boom)
}
