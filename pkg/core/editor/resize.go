package editor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
)

// Edge is the shift boundary being dragged
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// ParseEdge accepts "start"/"left" and "end"/"right"
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "start", "left":
		return EdgeStart, nil
	case "end", "right":
		return EdgeEnd, nil
	}
	return "", fmt.Errorf("unknown edge %q", s)
}

// DragState is either Idle or Dragging
type DragState interface {
	isDragState()
}

// Idle means no resize is in progress
type Idle struct{}

// Dragging is an in-progress resize of one shift edge
type Dragging struct {
	Edge       Edge
	ShiftID    string
	AnchorX    float64
	StepsSoFar int
}

func (Idle) isDragState()     {}
func (Dragging) isDragState() {}

// Chrome is the global pointer presentation overridden during a drag
type Chrome struct {
	Cursor     string
	UserSelect string
}

// dragChrome is applied for the duration of a resize
var dragChrome = Chrome{Cursor: "col-resize", UserSelect: "none"}

// Surface exposes the host's global pointer presentation
type Surface interface {
	Chrome() Chrome
	SetChrome(Chrome)
}

// MemorySurface is a Surface that only records the current chrome
type MemorySurface struct {
	Current Chrome
}

func (s *MemorySurface) Chrome() Chrome      { return s.Current }
func (s *MemorySurface) SetChrome(ch Chrome) { s.Current = ch }

// DragState returns the current gesture state
func (c *Controller) DragState() DragState {
	return c.drag
}

// StepWidth returns the measured pixel width of one step
func (c *Controller) StepWidth() float64 {
	return c.stepWidth
}

// ResizeViewport re-measures the step width from the rendered grid width
func (c *Controller) ResizeViewport(renderedWidth float64, totalSlots int) {
	c.stepWidth = schedule.StepWidth(renderedWidth, c.opts.LabelWidth, totalSlots, c.opts.MinStepWidth)
}

// PointerDown grabs edge of shiftID at horizontal position x
func (c *Controller) PointerDown(ctx context.Context, shiftID string, edge Edge, x float64) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if c.busy() {
		return ErrGestureActive
	}
	if edge != EdgeStart && edge != EdgeEnd {
		return fmt.Errorf("unknown edge %q", edge)
	}
	if _, err := c.findShift(ctx, shiftID); err != nil {
		return err
	}

	saved := c.opts.Surface.Chrome()
	c.savedChrome = &saved
	c.opts.Surface.SetChrome(dragChrome)

	c.drag = Dragging{Edge: edge, ShiftID: shiftID, AnchorX: x}
	return nil
}

// PointerMove converts the distance from the anchor into whole steps and
// moves the grasped edge by the steps not yet applied. The edge is clamped to
// opening hours; a step that would leave end <= start is dropped and the
// last valid times are kept.
func (c *Controller) PointerMove(ctx context.Context, x float64) error {
	drag, ok := c.drag.(Dragging)
	if !ok {
		return ErrNoGesture
	}

	steps := schedule.StepsForDelta(x-drag.AnchorX, c.stepWidth)
	if steps == drag.StepsSoFar {
		return nil
	}
	stepDelta := steps - drag.StepsSoFar
	drag.StepsSoFar = steps
	c.drag = drag

	shift, err := c.findShift(ctx, drag.ShiftID)
	if err != nil {
		return err
	}
	c.applyStep(shift, drag.Edge, time.Duration(stepDelta*c.opts.StepMinutes)*time.Minute)
	return nil
}

func (c *Controller) applyStep(shift model.Shift, edge Edge, delta time.Duration) {
	start, end := schedule.EffectiveTimes(shift, c.overrides)
	open, close := c.opts.Hours.Window(start)

	switch edge {
	case EdgeStart:
		start = clampTime(start.Add(delta), open, close)
	case EdgeEnd:
		end = clampTime(end.Add(delta), open, close)
	}

	if !end.After(start) {
		c.logger.Debug("Ignoring resize step past opposite edge", zap.String("shift_id", shift.ID))
		return
	}
	c.overrides[shift.ID] = schedule.TimeOverride{Start: start, End: end}
}

// PointerUp ends the gesture, restores the pointer chrome and commits the
// override as a full replacement of the shift. A commit that would collide
// with another shift is discarded and reported through the banner. The
// returned bool reports whether anything was written.
func (c *Controller) PointerUp(ctx context.Context) (model.Shift, bool, error) {
	drag, ok := c.drag.(Dragging)
	if !ok {
		return model.Shift{}, false, ErrNoGesture
	}
	c.drag = Idle{}
	c.restoreChrome()

	override, ok := c.overrides[drag.ShiftID]
	if !ok {
		return model.Shift{}, false, nil
	}
	delete(c.overrides, drag.ShiftID)

	shift, err := c.findShift(ctx, drag.ShiftID)
	if err != nil {
		return model.Shift{}, false, err
	}
	if shift.Start.Equal(override.Start) && shift.End.Equal(override.End) {
		return shift, false, nil
	}

	candidate := schedule.Candidate{
		ShiftID:    shift.ID,
		UserID:     shift.UserID,
		LocationID: shift.LocationID,
		Start:      override.Start,
		End:        override.End,
	}
	if err := c.checkConflict(ctx, candidate); err != nil {
		return model.Shift{}, false, err
	}

	shift.Start = override.Start
	shift.End = override.End
	if err := c.shifts.Replace(ctx, shift); err != nil {
		return model.Shift{}, false, fmt.Errorf("failed to update shift: %w", err)
	}

	c.logger.Info("Shift resized",
		zap.String("shift_id", shift.ID),
		zap.Time("start", shift.Start),
		zap.Time("end", shift.End))
	return shift, true, nil
}

// CancelGesture abandons a resize without writing anything
func (c *Controller) CancelGesture() {
	if drag, ok := c.drag.(Dragging); ok {
		delete(c.overrides, drag.ShiftID)
	}
	c.drag = Idle{}
	c.restoreChrome()
}

func (c *Controller) restoreChrome() {
	if c.savedChrome == nil {
		return
	}
	c.opts.Surface.SetChrome(*c.savedChrome)
	c.savedChrome = nil
}

func (c *Controller) findShift(ctx context.Context, id string) (model.Shift, error) {
	shifts, err := c.shifts.All(ctx)
	if err != nil {
		return model.Shift{}, err
	}
	for _, s := range shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Shift{}, fmt.Errorf("%w: %s", ErrUnknownShift, id)
}

func clampTime(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
