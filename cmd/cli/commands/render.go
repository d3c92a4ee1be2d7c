package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"

	labelWidth = 20
	slotWidth  = 6

	committedFill = '#'
	draftFill     = '+'
)

// gridStyle carries what the renderer needs besides the grid itself
type gridStyle struct {
	Names     map[string]string
	Locations []model.Location
	Positions []model.Position
	IsDraft   func(id string) bool
	Closed    string // closure name, "" when open
	Color     bool
}

func (s gridStyle) paint(color, text string) string {
	if !s.Color {
		return text
	}
	return color + text + colorReset
}

// renderDayGrid draws one day: a header of slot times, a row of filled
// slots per tutor, then the blocks behind each row with the ids commands
// take as arguments
func renderDayGrid(w io.Writer, grid schedule.Grid, style gridStyle) {
	fmt.Fprintf(w, "%s\n", grid.Day.Format("Monday 02 Jan 2006"))
	if style.Closed != "" {
		fmt.Fprintf(w, "  %s\n\n", style.paint(colorRed, "Closed: "+style.Closed))
		return
	}

	fmt.Fprintf(w, "%-*s", labelWidth, "")
	for _, start := range grid.SlotStarts {
		fmt.Fprintf(w, "%-*s", slotWidth, timeutil.FormatClock(start))
	}
	fmt.Fprintln(w)

	if len(grid.Rows) == 0 {
		fmt.Fprintf(w, "  %s\n\n", style.paint(colorDim, "No shifts"))
		return
	}

	for _, row := range grid.Rows {
		fmt.Fprintf(w, "%-*s%s\n", labelWidth, truncate(style.name(row.User), labelWidth-1), style.slotLine(row, len(grid.SlotStarts)))
	}
	fmt.Fprintln(w)

	for _, row := range grid.Rows {
		for _, block := range row.Blocks {
			fmt.Fprintf(w, "  %s %s\n", style.name(row.User), style.describeBlock(block))
		}
	}
	fmt.Fprintln(w)
}

func (s gridStyle) name(u model.User) string {
	if name, ok := s.Names[u.ID]; ok {
		return name
	}
	return u.FullName()
}

func (s gridStyle) slotLine(row schedule.Row, total int) string {
	cells := make([]rune, total*slotWidth)
	for i := range cells {
		cells[i] = ' '
		if i%slotWidth == 0 {
			cells[i] = '.'
		}
	}
	for _, block := range row.Blocks {
		fill := committedFill
		if s.blockIsDraft(block) {
			fill = draftFill
		}
		for i := block.Span.Start * slotWidth; i < block.Span.End*slotWidth && i < len(cells); i++ {
			cells[i] = fill
		}
	}

	line := string(cells)
	if !s.Color {
		return line
	}
	line = strings.ReplaceAll(line, string(committedFill), colorGreen+string(committedFill)+colorReset)
	return strings.ReplaceAll(line, string(draftFill), colorYellow+string(draftFill)+colorReset)
}

func (s gridStyle) blockIsDraft(block schedule.Block) bool {
	if s.IsDraft == nil {
		return false
	}
	for _, shift := range block.Interval.Shifts {
		if s.IsDraft(shift.ID) {
			return true
		}
	}
	return false
}

// describeBlock renders "14:00-16:00 North Location, Math Tutor [id]"
func (s gridStyle) describeBlock(block schedule.Block) string {
	interval := block.Interval
	text := fmt.Sprintf("%s-%s", interval.Start.Format("15:04"), interval.End.Format("15:04"))
	for _, l := range s.Locations {
		if l.ID == interval.LocationID {
			text += " " + l.Name
			break
		}
	}
	if label := schedule.PositionLabel(interval, s.Positions); label != "" {
		text += ", " + label
	}

	if id := block.EditableShiftID(); id != "" {
		text += " [" + id + "]"
	} else {
		ids := make([]string, len(interval.Shifts))
		for i, shift := range interval.Shifts {
			ids[i] = shift.ID
		}
		text += fmt.Sprintf(" [%s] (merged, not resizable)", strings.Join(ids, ", "))
	}
	if s.blockIsDraft(block) {
		text += " " + s.paint(colorYellow, "draft")
	}
	return text
}

// renderAvailability lists the availability chips for a day
func renderAvailability(w io.Writer, chips map[string][]model.AvailabilityEvent, users []model.User, style gridStyle) {
	if len(chips) == 0 {
		return
	}
	fmt.Fprintln(w, "  Available:")
	for _, u := range users {
		for _, e := range chips[u.ID] {
			fmt.Fprintf(w, "    %s %s-%s [%s]\n", style.name(u), e.StartTime, e.EndTime, e.ID)
		}
	}
	fmt.Fprintln(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
