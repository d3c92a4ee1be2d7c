package editor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
)

var (
	// ErrInvalidTimeRange means the submission was refused because end <= start
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	// ErrMalformedPayload means a drop carried an unreadable payload and was ignored
	ErrMalformedPayload = errors.New("malformed drag payload")
	// ErrGestureActive means another gesture or modal already owns the editor
	ErrGestureActive = errors.New("another gesture is in progress")
	// ErrNoGesture means there is nothing open to act on
	ErrNoGesture = errors.New("no gesture in progress")
	// ErrNotConfirmed means a removal was declined
	ErrNotConfirmed = errors.New("removal not confirmed")
	// ErrUnknownUser means the tutor is not in the roster
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnknownShift means the shift is not in the collection
	ErrUnknownShift = errors.New("unknown shift")
)

const (
	// QuickAddNote marks shifts created from the quick-add form
	QuickAddNote = "Quick add"
	// AvailabilityNote marks shifts dropped from an availability chip
	AvailabilityNote = "Added from availability"
	// DefaultStepMinutes is how far one resize step moves an edge
	DefaultStepMinutes = 30
)

// ShiftCollection is the union of draft and committed shifts the editor
// reads from and writes to
type ShiftCollection interface {
	All(ctx context.Context) ([]model.Shift, error)
	AddDraft(ctx context.Context, shift model.Shift) error
	Replace(ctx context.Context, shift model.Shift) error
	Remove(ctx context.Context, id string) error
}

// ReferenceData is the roster the editor resolves defaults against
type ReferenceData struct {
	Users     []model.User
	Locations []model.Location
	Positions []model.Position
}

func (r ReferenceData) user(id string) (model.User, bool) {
	for _, u := range r.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Options tune the editor; zero values fall back to the defaults
type Options struct {
	Hours           schedule.HoursPolicy
	StepMinutes     int
	LabelWidth      float64
	MinStepWidth    float64
	StrictUserScope bool
	Surface         Surface
	NewID           func() string
}

// Controller owns all transient editing state: the open quick-add form, the
// pending drop, the resize gesture with its time overrides, the pending
// removal and the conflict banner. It is not safe for concurrent use.
type Controller struct {
	shifts ShiftCollection
	ref    ReferenceData
	viewer *model.AuthUser
	opts   Options
	logger *zap.Logger

	quickAdd       *QuickAddForm
	drop           *PendingDrop
	drag           DragState
	overrides      map[string]schedule.TimeOverride
	savedChrome    *Chrome
	pendingRemoval string
	banner         string
	stepWidth      float64
}

// NewController creates an editor acting as viewer
func NewController(shifts ShiftCollection, ref ReferenceData, viewer *model.AuthUser, opts Options, logger *zap.Logger) *Controller {
	if opts.Hours == (schedule.HoursPolicy{}) {
		opts.Hours = schedule.DefaultHours
	}
	if opts.StepMinutes <= 0 {
		opts.StepMinutes = DefaultStepMinutes
	}
	if opts.LabelWidth <= 0 {
		opts.LabelWidth = schedule.DefaultLabelWidth
	}
	if opts.MinStepWidth <= 0 {
		opts.MinStepWidth = schedule.MinStepWidth
	}
	if opts.Surface == nil {
		opts.Surface = &MemorySurface{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &Controller{
		shifts:    shifts,
		ref:       ref,
		viewer:    viewer,
		opts:      opts,
		logger:    logger,
		drag:      Idle{},
		overrides: make(map[string]schedule.TimeOverride),
		stepWidth: schedule.DefaultStepWidth,
	}
}

// Banner returns the conflict message currently shown, if any
func (c *Controller) Banner() string {
	return c.banner
}

// DismissBanner clears the conflict message
func (c *Controller) DismissBanner() {
	c.banner = ""
}

// Overrides returns the pending time overrides for rendering
func (c *Controller) Overrides() map[string]schedule.TimeOverride {
	return maps.Clone(c.overrides)
}

// busy reports whether a gesture or modal is already open
// GestureActive reports whether a form, drop, drag or removal is open
func (c *Controller) GestureActive() bool {
	return c.busy()
}

func (c *Controller) busy() bool {
	_, dragging := c.drag.(Dragging)
	return dragging || c.quickAdd != nil || c.drop != nil || c.pendingRemoval != ""
}

func (c *Controller) requireAdmin() error {
	return auth.RequireAdmin(c.viewer)
}

func (c *Controller) validator() schedule.Validator {
	return schedule.Validator{Locations: c.ref.Locations, StrictUserScope: c.opts.StrictUserScope}
}

// checkConflict validates candidate against the current collection and sets
// the banner on conflict
func (c *Controller) checkConflict(ctx context.Context, candidate schedule.Candidate) error {
	existing, err := c.shifts.All(ctx)
	if err != nil {
		return err
	}
	if err := c.validator().FindConflict(candidate, c.withOverrides(existing)); err != nil {
		c.banner = err.Error()
		c.logger.Info("Shift conflict",
			zap.String("user_id", candidate.UserID),
			zap.String("location_id", candidate.LocationID),
			zap.Time("start", candidate.Start),
			zap.Time("end", candidate.End))
		return err
	}
	return nil
}

// withOverrides applies pending overrides so validation sees what is rendered
func (c *Controller) withOverrides(shifts []model.Shift) []model.Shift {
	if len(c.overrides) == 0 {
		return shifts
	}
	out := make([]model.Shift, len(shifts))
	for i, s := range shifts {
		s.Start, s.End = schedule.EffectiveTimes(s, c.overrides)
		out[i] = s
	}
	return out
}

// createDraft resolves defaults, checks for conflicts and appends a draft.
// Nothing is written when validation fails.
func (c *Controller) createDraft(ctx context.Context, user model.User, choice mo.Option[string], start, end time.Time, note string) (model.Shift, error) {
	locationID := schedule.ResolveLocation(user, choice, c.ref.Locations)
	positionID := schedule.ResolvePosition(user, c.ref.Positions)

	candidate := schedule.Candidate{UserID: user.ID, LocationID: locationID, Start: start, End: end}
	if err := c.checkConflict(ctx, candidate); err != nil {
		return model.Shift{}, err
	}

	shift := model.Shift{
		ID:         c.opts.NewID(),
		UserID:     user.ID,
		LocationID: locationID,
		PositionID: positionID,
		Start:      start,
		End:        end,
		Notes:      note,
		Published:  false,
	}
	if err := c.shifts.AddDraft(ctx, shift); err != nil {
		return model.Shift{}, fmt.Errorf("failed to add draft shift: %w", err)
	}

	c.logger.Info("Draft shift added",
		zap.String("shift_id", shift.ID),
		zap.String("user_id", shift.UserID),
		zap.String("location_id", shift.LocationID),
		zap.String("note", note))
	return shift, nil
}
