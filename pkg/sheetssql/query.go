package sheetssql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TableName returns the table a model type is stored in
func TableName[T any]() string {
	var model T
	return toSnakeCase(reflect.TypeOf(model).Name())
}

// GetTableAs reads every data row of T's table into structs. Columns are
// matched by header, so extra sheet columns are ignored and missing cells
// leave the zero value.
func GetTableAs[T any](db *DB) ([]T, error) {
	tableName := TableName[T]()

	values, err := db.client.GetValues(db.spreadsheetID, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", tableName, err)
	}
	if len(values) < 3 {
		return []T{}, nil
	}

	var model T
	t := reflect.TypeOf(model)

	fields := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		if header := t.Field(i).Tag.Get("ssql_header"); header != "" {
			fields[header] = i
		}
	}

	columns := make(map[int]int)
	for col, header := range values[0] {
		if name, ok := header.(string); ok {
			if fieldIdx, ok := fields[name]; ok {
				columns[col] = fieldIdx
			}
		}
	}

	results := make([]T, 0, len(values)-2)
	for rowIdx, row := range values[2:] {
		result := reflect.New(t).Elem()
		for col, fieldIdx := range columns {
			if col >= len(row) || row[col] == nil {
				continue
			}
			if err := setFieldValue(result.Field(fieldIdx), row[col]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+3, t.Field(fieldIdx).Tag.Get("ssql_header"), err)
			}
		}
		results = append(results, result.Interface().(T))
	}

	return results, nil
}

// setFieldValue converts a cell to the field's Go type
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	var cell string
	switch v := cellValue.(type) {
	case string:
		cell = strings.TrimSpace(v)
	case float64, int, int64, bool:
		cell = fmt.Sprint(v)
	default:
		return fmt.Errorf("cell value is not a string")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cell)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cell == "" {
			field.SetInt(0)
			return nil
		}
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		field.SetInt(n)

	case reflect.Float32, reflect.Float64:
		if cell == "" {
			field.SetFloat(0)
			return nil
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		if cell == "" {
			field.SetBool(false)
			return nil
		}
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return fmt.Errorf("failed to parse bool: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		field.Set(reflect.ValueOf(splitList(cell)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

func splitList(cell string) []string {
	if cell == "" {
		return []string{}
	}
	parts := strings.Split(cell, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// modelRow flattens a tagged struct into a sheet row
func modelRow(v reflect.Value) []interface{} {
	t := v.Type()
	row := make([]interface{}, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("ssql_header") == "" {
			continue
		}
		field := v.Field(i)
		if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
			row = append(row, strings.Join(field.Interface().([]string), ListSeparator))
			continue
		}
		row = append(row, field.Interface())
	}
	return row
}

// InsertModel appends one struct to its table
func InsertModel[T any](db *DB, model T) error {
	return InsertModels(db, []T{model})
}

// InsertModels appends structs to their table in one request
func InsertModels[T any](db *DB, models []T) error {
	if len(models) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(models))
	for _, model := range models {
		rows = append(rows, modelRow(reflect.ValueOf(model)))
	}

	return db.InsertRows(TableName[T](), rows)
}
