package sheetssql

import (
	"fmt"
)

// SheetsClient is the subset of the Sheets API the database needs
type SheetsClient interface {
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	AppendRows(spreadsheetID, sheetRange string, values [][]interface{}) error
	CreateSheet(spreadsheetID, sheetTitle string) (int64, error)
	ListSheets(spreadsheetID string) ([]string, error)
}

// Column types understood by the row codec
const (
	TypeText = "text"
	TypeUUID = "uuid"
	TypeDate = "date"
	TypeTime = "datetime"
	TypeInt  = "int"
	TypeBool = "bool"
	TypeList = "list"
)

// ListSeparator joins list cells
const ListSeparator = ","

// Column is a named, typed sheet column
type Column struct {
	Name string
	Type string
}

// TableSchema is one sheet tab: a header row and a type row, then data
type TableSchema struct {
	Name    string
	Columns []Column
}

// Schema is the set of tabs a spreadsheet must contain
type Schema struct {
	Tables []TableSchema
}

// Table returns the named table
func (s *Schema) Table(name string) (TableSchema, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSchema{}, false
}

// DB treats one spreadsheet as an append-only database
type DB struct {
	client        SheetsClient
	spreadsheetID string
	schema        *Schema
}

// NewDB opens the spreadsheet and creates or verifies every table in schema
func NewDB(client SheetsClient, spreadsheetID string, schema *Schema) (*DB, error) {
	db := &DB{
		client:        client,
		spreadsheetID: spreadsheetID,
		schema:        schema,
	}

	if err := db.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// SpreadsheetID returns the database spreadsheet ID
func (db *DB) SpreadsheetID() string {
	return db.spreadsheetID
}

// Schema returns the schema the database was opened with
func (db *DB) Schema() *Schema {
	return db.schema
}

// InsertRows appends rows to the named table
func (db *DB) InsertRows(tableName string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.client.AppendRows(db.spreadsheetID, tableName, rows); err != nil {
		return fmt.Errorf("failed to append to %s: %w", tableName, err)
	}
	return nil
}
