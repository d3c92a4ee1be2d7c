package sheetsclient

import (
	"fmt"
	"slices"
	"time"
)

// PublishedRow is one tutor's line of a published week. Cells holds one
// entry per day, empty when the tutor is off.
type PublishedRow struct {
	Tutor string
	Cells []string
}

// PublishedWeek is the read-only schedule shared with tutors
type PublishedWeek struct {
	Days []time.Time
	Rows []PublishedRow
}

// WeekTabTitle names the tab for the week starting weekStart, e.g.
// "Week of Mon Jan 13 2025"
func WeekTabTitle(weekStart time.Time) string {
	return "Week of " + weekStart.Format("Mon Jan 02 2006")
}

// PublishWeek writes week to its own tab, creating the tab on first publish
// and replacing its contents afterwards
func (c *Client) PublishWeek(spreadsheetID string, week *PublishedWeek) error {
	if len(week.Days) == 0 {
		return fmt.Errorf("published week has no days")
	}
	title := WeekTabTitle(week.Days[0])

	tabs, err := c.ListSheets(spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	if slices.Contains(tabs, title) {
		if err := c.ClearValues(spreadsheetID, title); err != nil {
			return fmt.Errorf("failed to clear tab %s: %w", title, err)
		}
	} else if _, err := c.CreateSheet(spreadsheetID, title); err != nil {
		return fmt.Errorf("failed to create tab: %w", err)
	}

	if err := c.UpdateValues(spreadsheetID, fmt.Sprintf("%s!A1", title), publishedValues(week)); err != nil {
		return fmt.Errorf("failed to write week: %w", err)
	}
	return nil
}

// publishedValues lays the week out with a 2-row gap above the header
func publishedValues(week *PublishedWeek) [][]interface{} {
	header := []interface{}{"Tutor"}
	for _, day := range week.Days {
		header = append(header, day.Format("Mon 02 Jan"))
	}

	values := [][]interface{}{{}, {}, header}
	for _, row := range week.Rows {
		line := []interface{}{row.Tutor}
		for i := range week.Days {
			cell := ""
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			line = append(line, cell)
		}
		values = append(values, line)
	}
	return values
}
