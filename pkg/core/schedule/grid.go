package schedule

import (
	"math"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

const (
	// DefaultSlotMinutes is the resolution of the day grid
	DefaultSlotMinutes = 30
	// DefaultStepWidth is used until a viewport has been measured
	DefaultStepWidth = 80.0
	// DefaultLabelWidth is the width of the tutor name column
	DefaultLabelWidth = 220.0
	// MinStepWidth keeps handles usable on narrow viewports
	MinStepWidth = 40.0
)

// HoursPolicy defines the operating window of each weekday.
// Opening hours are policy, not data.
type HoursPolicy struct {
	OpenHour         int
	CloseHour        int
	LastDayCloseHour int
	LastWeekday      time.Weekday
}

// DefaultHours opens at 14:00 and closes at 19:00, or 18:00 on Fridays
var DefaultHours = HoursPolicy{
	OpenHour:         14,
	CloseHour:        19,
	LastDayCloseHour: 18,
	LastWeekday:      time.Friday,
}

// Bounds returns the open and close of day in minutes from midnight
func (p HoursPolicy) Bounds(day time.Time) (int, int) {
	closeHour := p.CloseHour
	if day.Weekday() == p.LastWeekday {
		closeHour = p.LastDayCloseHour
	}
	return p.OpenHour * 60, closeHour * 60
}

// Window returns the open and close instants of day
func (p HoursPolicy) Window(day time.Time) (time.Time, time.Time) {
	open, close := p.Bounds(day)
	midnight := timeutil.StartOfDay(day)
	return midnight.Add(time.Duration(open) * time.Minute), midnight.Add(time.Duration(close) * time.Minute)
}

// SlotSpan is a half-open range of slot indexes [Start, End)
type SlotSpan struct {
	Start int
	End   int
}

// Visible reports whether the span covers at least one slot.
// Invisible spans are skipped by renderers, they are not errors.
func (s SlotSpan) Visible() bool {
	return s.End > s.Start
}

// Width returns the number of slots covered
func (s SlotSpan) Width() int {
	return max(s.End-s.Start, 0)
}

// ProjectToSlots maps an interval given in minutes from midnight onto slot
// indexes of the [open, close] window. The interval is clamped to the window
// first; the start rounds down and the end rounds up.
func ProjectToSlots(startMinutes, endMinutes, open, close, slotMinutes int) SlotSpan {
	if slotMinutes <= 0 || close <= open {
		return SlotSpan{}
	}

	gridStart := clamp(startMinutes, open, close) - open
	gridEnd := clamp(endMinutes, open, close) - open

	return SlotSpan{
		Start: gridStart / slotMinutes,
		End:   (gridEnd + slotMinutes - 1) / slotMinutes,
	}
}

// ProjectInterval projects instants on day using the day's operating window
func ProjectInterval(start, end, day time.Time, hours HoursPolicy, slotMinutes int) SlotSpan {
	open, close := hours.Bounds(day)
	midnight := timeutil.StartOfDay(day)
	return ProjectToSlots(
		int(start.Sub(midnight).Minutes()),
		int(end.Sub(midnight).Minutes()),
		open, close, slotMinutes,
	)
}

// TotalSlots returns how many slots fit in the window
func TotalSlots(open, close, slotMinutes int) int {
	if slotMinutes <= 0 || close <= open {
		return 0
	}
	return (close - open) / slotMinutes
}

// SlotStarts lists the start minute of every slot in the window
func SlotStarts(open, close, slotMinutes int) []int {
	total := TotalSlots(open, close, slotMinutes)
	starts := make([]int, total)
	for i := range starts {
		starts[i] = open + i*slotMinutes
	}
	return starts
}

// StepWidth derives the pixel width of one slot step from the rendered grid.
// It is recomputed whenever the viewport resizes.
func StepWidth(renderedWidth, labelWidth float64, totalSlots int, minWidth float64) float64 {
	if totalSlots <= 0 {
		return DefaultStepWidth
	}
	gridWidth := math.Max(renderedWidth-labelWidth, 0)
	return math.Max(minWidth, gridWidth/float64(totalSlots))
}

// StepsForDelta converts a horizontal pointer delta into whole slot steps,
// rounding halves towards positive infinity
func StepsForDelta(deltaPx, stepWidth float64) int {
	if stepWidth <= 0 {
		stepWidth = DefaultStepWidth
	}
	return int(math.Floor(deltaPx/stepWidth + 0.5))
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
