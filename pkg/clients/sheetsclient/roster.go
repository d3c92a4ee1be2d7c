package sheetsclient

import (
	"fmt"
	"strings"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// Roster sheet columns. Positions and Locations hold comma separated ids;
// the first location is the tutor's default.
var rosterFields = []string{
	"ID",
	"First name",
	"Last name",
	"Email",
	"Phone",
	"Positions",
	"Locations",
}

// ListRoster reads the tutor roster maintained by hand in a spreadsheet tab
func (c *Client) ListRoster(spreadsheetID, tab string) ([]model.User, error) {
	values, err := c.GetValues(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster data: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("roster sheet is empty")
	}

	users, err := ParseRoster(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	return users, nil
}

// ParseRoster converts raw roster rows into users. Columns are found by
// header, rows without a first name are skipped.
func ParseRoster(raw [][]interface{}) ([]model.User, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	index := make(map[string]int, len(rosterFields))
	for _, field := range rosterFields {
		idx := findColumnIndex(raw[0], field)
		if idx == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		index[field] = idx
	}

	cell := func(field string, row []interface{}) string {
		idx := index[field]
		if idx >= len(row) {
			return ""
		}
		s, _ := row[idx].(string)
		return strings.TrimSpace(s)
	}

	users := make([]model.User, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		firstName := cell("First name", row)
		if firstName == "" {
			continue
		}
		id := cell("ID", row)
		if id == "" {
			return nil, fmt.Errorf("missing ID for %s in row %d", firstName, i+1)
		}

		users = append(users, model.User{
			ID:          id,
			FirstName:   firstName,
			LastName:    cell("Last name", row),
			Email:       cell("Email", row),
			PhoneNumber: cell("Phone", row),
			Positions:   splitIDs(cell("Positions", row)),
			Locations:   splitIDs(cell("Locations", row)),
		})
	}

	return users, nil
}

func splitIDs(s string) []string {
	ids := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// findColumnIndex finds the index of a column by its header name
func findColumnIndex(header []interface{}, columnName string) int {
	for i, cell := range header {
		if str, ok := cell.(string); ok && strings.TrimSpace(str) == columnName {
			return i
		}
	}
	return -1
}
