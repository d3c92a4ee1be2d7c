package schedule

import (
	"slices"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// MultiplePositionsLabel is shown instead of a position name when a merged
// interval spans shifts with different positions
const MultiplePositionsLabel = "Multiple positions"

// TimeOverride replaces a shift's boundaries while a resize is in progress
type TimeOverride struct {
	Start time.Time
	End   time.Time
}

// EffectiveTimes returns the shift's boundaries with any pending override applied
func EffectiveTimes(shift model.Shift, overrides map[string]TimeOverride) (time.Time, time.Time) {
	if o, ok := overrides[shift.ID]; ok {
		return o.Start, o.End
	}
	return shift.Start, shift.End
}

type mergeEntry struct {
	shift model.Shift
	start time.Time
	end   time.Time
}

// MergeShifts combines one tutor's shifts for one day into the minimal set of
// non-overlapping, location-homogeneous intervals, ordered by start.
// Callers must pre-filter the input to a single (user, day) scope.
func MergeShifts(shifts []model.Shift) []model.MergedInterval {
	return MergeShiftsWithOverrides(shifts, nil)
}

// MergeShiftsWithOverrides is MergeShifts using the effective (possibly
// overridden) boundaries of each shift
func MergeShiftsWithOverrides(shifts []model.Shift, overrides map[string]TimeOverride) []model.MergedInterval {
	entries := make([]mergeEntry, 0, len(shifts))
	for _, shift := range shifts {
		start, end := EffectiveTimes(shift, overrides)
		entries = append(entries, mergeEntry{shift: shift, start: start, end: end})
	}

	// Stable so that shifts starting together keep their input order
	slices.SortStableFunc(entries, func(a, b mergeEntry) int {
		return a.start.Compare(b.start)
	})

	merged := make([]model.MergedInterval, 0, len(entries))
	for _, entry := range entries {
		if n := len(merged); n > 0 {
			current := &merged[n-1]
			touches := !entry.start.After(current.End)
			sameLocation := current.LocationID == "" || current.LocationID == entry.shift.LocationID
			if touches && sameLocation {
				if entry.end.After(current.End) {
					current.End = entry.end
				}
				current.Shifts = append(current.Shifts, entry.shift)
				if !slices.Contains(current.PositionIDs, entry.shift.PositionID) {
					current.PositionIDs = append(current.PositionIDs, entry.shift.PositionID)
				}
				continue
			}
		}

		merged = append(merged, model.MergedInterval{
			Start:       entry.start,
			End:         entry.end,
			Shifts:      []model.Shift{entry.shift},
			LocationID:  entry.shift.LocationID,
			PositionIDs: []string{entry.shift.PositionID},
		})
	}

	return merged
}

// PositionLabel names the position of a merged interval, or
// MultiplePositionsLabel when its shifts disagree
func PositionLabel(interval model.MergedInterval, positions []model.Position) string {
	if interval.HasMultiplePositions() {
		return MultiplePositionsLabel
	}
	if len(interval.PositionIDs) == 0 {
		return ""
	}
	for _, p := range positions {
		if p.ID == interval.PositionIDs[0] {
			return p.Name
		}
	}
	return ""
}
