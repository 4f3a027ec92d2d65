package pipeline

import (
	"fmt"
	"log/slog"
)

// numericTextColumns are the stats the API serves as strings but the
// aggregates need as floats.
var numericTextColumns = map[string]bool{
	"form":            true,
	"points_per_game": true,
	"value_season":    true,
	"ict_index":       true,
}

// BuildMainTable projects the raw player list onto the configured column
// subset, swaps the numeric team and element_type codes for their names, and
// coerces the numeric-as-text stats to float64.
//
// Order matters: selection happens first and fixes the output schema, then
// resolution, then coercion. A lookup miss leaves a null cell and logs a
// warning — one bad reference must not abort the whole table. A coercion
// failure is fatal and names the offending column.
func BuildMainTable(ref *Reference, columns []string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table := &Table{Columns: append([]string(nil), columns...)}
	table.Rows = make([]Row, 0, len(ref.Elements))

	for _, el := range ref.Elements {
		row := make(Row, len(columns))
		for _, col := range columns {
			v, ok := el[col]
			if !ok {
				return nil, fmt.Errorf("select columns: unknown column %q", col)
			}
			row[col] = v
		}
		table.Rows = append(table.Rows, row)
	}

	resolveColumn(table, "team", ref.TeamNames, logger)
	resolveColumn(table, "element_type", ref.PositionNames, logger)

	for _, col := range columns {
		if !numericTextColumns[col] {
			continue
		}
		if err := coerceFloat(table, col); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// resolveColumn replaces numeric ids in one column with names from the
// resolver. Misses become explicit nulls.
func resolveColumn(t *Table, column string, names *Resolver[int, string], logger *slog.Logger) {
	if !hasColumn(t, column) {
		return
	}
	for _, row := range t.Rows {
		id, ok := Int(row[column])
		if !ok {
			row[column] = nil
			continue
		}
		name, found := names.Lookup(id)
		if !found {
			row[column] = nil
			logger.Warn("unresolved reference", "error", &UnresolvedReferenceError{Column: column, ID: id})
			continue
		}
		row[column] = name
	}
}

// coerceFloat converts every cell in one column to float64. Nulls pass
// through; anything non-numeric is a DataTypeError.
func coerceFloat(t *Table, column string) error {
	for _, row := range t.Rows {
		v := row[column]
		if v == nil {
			continue
		}
		f, ok := Float(v)
		if !ok {
			return &DataTypeError{Column: column, Value: v}
		}
		row[column] = f
	}
	return nil
}

func hasColumn(t *Table, column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}
