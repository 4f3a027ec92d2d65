// Package pipeline builds the player reference tables from a bootstrap
// snapshot and derives the squad, history, and aggregate views from them.
//
// Tables are column-ordered collections of generic rows. Cells hold float64,
// string, bool, int, or nil — nil is an explicit null, used when a reference
// lookup misses. The column list is the schema contract with the output sinks.
package pipeline

import "strconv"

// Row is one table row, keyed by column name.
type Row map[string]any

// Table is an ordered set of columns over generic rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Float normalizes a cell to float64.
//
// The FPL API serves several numeric stats as strings ("3.5"), others as
// numbers. This handles both, returning ok=false for nil and non-numeric
// values.
func Float(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Int normalizes a cell to int. JSON numbers decode as float64, so whole
// floats are accepted.
func Int(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val == float64(int(val)) {
			return int(val), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// String returns a cell as a string, ok=false for nil or non-string cells.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
