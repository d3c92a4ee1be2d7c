package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/sheetssql"
)

// memorySheets is an in-memory spreadsheet keyed by tab name
type memorySheets struct {
	tabs map[string][][]interface{}
}

func (m *memorySheets) GetValues(_, sheetRange string) ([][]interface{}, error) {
	tab, _, _ := strings.Cut(sheetRange, "!")
	return m.tabs[tab], nil
}

func (m *memorySheets) AppendRows(_, tab string, values [][]interface{}) error {
	m.tabs[tab] = append(m.tabs[tab], values...)
	return nil
}

func (m *memorySheets) CreateSheet(_, title string) (int64, error) {
	m.tabs[title] = nil
	return int64(len(m.tabs)), nil
}

func (m *memorySheets) ListSheets(string) ([]string, error) {
	var names []string
	for name := range m.tabs {
		names = append(names, name)
	}
	return names, nil
}

type fakeRoster struct {
	users []model.User
}

func (f fakeRoster) ListRoster(_, _ string) ([]model.User, error) {
	return f.users, nil
}

func newTestDB(t *testing.T, opts ...Option) (*DB, *memorySheets) {
	t.Helper()
	sheets := &memorySheets{tabs: map[string][][]interface{}{}}
	schema, err := sheetssql.SchemaFromModels(Models()...)
	require.NoError(t, err)
	ssql, err := sheetssql.NewDB(sheets, "db", schema)
	require.NoError(t, err)
	opts = append([]Option{WithClock(func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) })}, opts...)
	return NewDB(ssql, zap.NewNop(), opts...), sheets
}

func at(day, hour int) time.Time {
	return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC)
}

func TestDB_SchemaTables(t *testing.T) {
	_, sheets := newTestDB(t)
	for _, name := range []string{"location", "position", "user", "shift_revision"} {
		assert.Len(t, sheets.tabs[name], 2, name)
	}
}

func TestDB_ReferenceData(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedReference(ctx,
		[]model.Location{{ID: "1", Name: "North Campus", Address: "123 North St"}},
		[]model.Position{{ID: "1", Name: "Math Tutor", Color: "#3B82F6"}},
		[]model.User{{ID: "1", FirstName: "Alex", LastName: "Johnson", Positions: []string{"1", "2"}, Locations: []string{"1"}}},
	))

	locations, err := db.FetchLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Location{{ID: "1", Name: "North Campus", Address: "123 North St"}}, locations)

	positions, err := db.FetchPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#3B82F6", positions[0].Color)

	users, err := db.FetchUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"1", "2"}, users[0].Positions)
	assert.Equal(t, []string{"1"}, users[0].Locations)
}

func TestDB_FetchUsersFromRoster(t *testing.T) {
	roster := fakeRoster{users: []model.User{{ID: "9", FirstName: "Robin"}}}
	db, _ := newTestDB(t, WithRoster(roster, "roster", "Tutors"))

	users, err := db.FetchUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roster.users, users)
}

func TestDB_ShiftRevisions(t *testing.T) {
	db, sheets := newTestDB(t)
	ctx := context.Background()

	a := model.Shift{ID: "a", UserID: "1", LocationID: "1", PositionID: "1", Start: at(13, 14), End: at(13, 16)}
	b := model.Shift{ID: "b", UserID: "2", LocationID: "2", PositionID: "3", Start: at(14, 15), End: at(14, 17), Published: true}
	c := model.Shift{ID: "c", UserID: "3", LocationID: "1", PositionID: "1", Start: at(20, 14), End: at(20, 15)}
	require.NoError(t, db.InsertShifts(ctx, []model.Shift{b, a, c}))

	shifts, err := db.FetchShifts(ctx, "2025-01-13", "2025-01-17")
	require.NoError(t, err)
	assert.Equal(t, []model.Shift{a, b}, shifts)

	a.End = at(13, 17)
	require.NoError(t, db.UpdateShift(ctx, a))
	require.NoError(t, db.DeleteShift(ctx, "b"))

	shifts, err = db.FetchShifts(ctx, "2025-01-13", "2025-01-17")
	require.NoError(t, err)
	assert.Equal(t, []model.Shift{a}, shifts)

	// 2 header rows, 3 inserts, 1 update, 1 tombstone
	assert.Len(t, sheets.tabs["shift_revision"], 7)

	assert.ErrorIs(t, db.UpdateShift(ctx, b), ErrShiftNotFound)
	assert.ErrorIs(t, db.DeleteShift(ctx, "missing"), ErrShiftNotFound)
}

func TestDB_SkipsUnreadableRevisions(t *testing.T) {
	db, sheets := newTestDB(t)
	sheets.tabs["shift_revision"] = append(sheets.tabs["shift_revision"],
		[]interface{}{"x", "1", "1", "1", "yesterday", "2025-01-13T16:00:00", "", "false", "false", ""})

	shifts, err := db.FetchShifts(context.Background(), "2025-01-13", "2025-01-17")
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestLatestRevisions(t *testing.T) {
	tests := []struct {
		name      string
		revisions []ShiftRevision
		want      []ShiftRevision
	}{
		{
			name:      "no duplicates",
			revisions: []ShiftRevision{{ID: "1"}, {ID: "2"}, {ID: "3"}},
			want:      []ShiftRevision{{ID: "1"}, {ID: "2"}, {ID: "3"}},
		},
		{
			name:      "later row wins",
			revisions: []ShiftRevision{{ID: "1", Notes: "old"}, {ID: "2"}, {ID: "1", Notes: "new"}},
			want:      []ShiftRevision{{ID: "1", Notes: "new"}, {ID: "2"}},
		},
		{
			name:      "tombstone drops",
			revisions: []ShiftRevision{{ID: "1"}, {ID: "2"}, {ID: "1", Deleted: true}},
			want:      []ShiftRevision{{ID: "2"}},
		},
		{
			name:      "revived after tombstone",
			revisions: []ShiftRevision{{ID: "1"}, {ID: "1", Deleted: true}, {ID: "1", Notes: "back"}},
			want:      []ShiftRevision{{ID: "1", Notes: "back"}},
		},
		{
			name:      "blank ids ignored",
			revisions: []ShiftRevision{{ID: ""}, {ID: "1"}},
			want:      []ShiftRevision{{ID: "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, latestRevisions(tt.revisions))
		})
	}
}
