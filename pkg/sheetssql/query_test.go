package sheetssql

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, models ...interface{}) (*DB, *fakeSheets) {
	t.Helper()
	client := newFakeSheets()
	schema, err := SchemaFromModels(models...)
	require.NoError(t, err)
	db, err := NewDB(client, "sheet", schema)
	require.NoError(t, err)
	return db, client
}

func TestInsertAndGetTableAs_RoundTrip(t *testing.T) {
	db, client := openTestDB(t, TestShiftRevision{})

	rows := []TestShiftRevision{
		{ID: "a", Start: "2025-01-13 14:00", Positions: []string{"1", "2"}, Revision: 1},
		{ID: "a", Start: "2025-01-13 15:00", Positions: []string{}, Deleted: true, Revision: 2},
	}
	require.NoError(t, InsertModels(db, rows))

	assert.Equal(t, []interface{}{"a", "2025-01-13 14:00", "1,2", false, 1}, client.tabs["test_shift_revision"][2])

	got, err := GetTableAs[TestShiftRevision](db)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestGetTableAs_EmptyTable(t *testing.T) {
	db, _ := openTestDB(t, TestLocation{})

	got, err := GetTableAs[TestLocation](db)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetTableAs_ColumnsMatchedByHeader(t *testing.T) {
	db, client := openTestDB(t, TestLocation{})
	client.tabs["test_location"] = [][]interface{}{
		{"name", "extra", "id"},
		{"text", "text", "text"},
		{"North Campus", "ignored", "1"},
		{"South Campus"},
	}

	got, err := GetTableAs[TestLocation](db)
	require.NoError(t, err)
	assert.Equal(t, []TestLocation{{ID: "1", Name: "North Campus"}, {Name: "South Campus"}}, got)
}

func TestGetTableAs_BadCellReportsRow(t *testing.T) {
	db, client := openTestDB(t, TestShiftRevision{})
	client.tabs["test_shift_revision"] = append(client.tabs["test_shift_revision"],
		[]interface{}{"a", "", "", "false", "two"})

	_, err := GetTableAs[TestShiftRevision](db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3, column revision")
}

func TestSetFieldValue(t *testing.T) {
	type row struct {
		Name   string
		Count  int
		Ratio  float64
		Active bool
		Tags   []string
	}

	tests := []struct {
		name  string
		field int
		cell  interface{}
		want  interface{}
	}{
		{"string trimmed", 0, "  Alex ", "Alex"},
		{"int", 1, "42", 42},
		{"empty int", 1, "", 0},
		{"numeric cell", 1, float64(7), 7},
		{"float", 2, "0.5", 0.5},
		{"bool upper", 3, "TRUE", true},
		{"list", 4, "1, 2,,3", []string{"1", "2", "3"}},
		{"empty list", 4, "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r row
			field := reflect.ValueOf(&r).Elem().Field(tt.field)
			require.NoError(t, setFieldValue(field, tt.cell))
			assert.Equal(t, tt.want, field.Interface())
		})
	}
}

func TestSetFieldValue_InvalidInt(t *testing.T) {
	var r struct{ Count int }
	err := setFieldValue(reflect.ValueOf(&r).Elem().Field(0), "not a number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse int")
}
