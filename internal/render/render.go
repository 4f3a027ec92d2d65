// Package render writes pipeline tables to an output sink as a pretty table,
// JSON, or CSV.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/example/fplstats/internal/pipeline"
)

// Render writes tbl to w in the requested format: "table" (default), "json",
// or "csv".
func Render(w io.Writer, tbl *pipeline.Table, format string) error {
	switch format {
	case "json":
		return renderJSON(w, tbl)
	case "csv":
		return renderCSV(w, tbl)
	case "", "table":
		return renderTable(w, tbl)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, tbl *pipeline.Table) error {
	if len(tbl.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(tbl.Columns))
	for i, col := range tbl.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range tbl.Rows {
		out := make(table.Row, len(tbl.Columns))
		for i, col := range tbl.Columns {
			out[i] = formatValue(row[col])
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(tbl.Rows))
	return nil
}

func renderJSON(w io.Writer, tbl *pipeline.Table) error {
	data, err := JSONBytes(tbl)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// JSONBytes encodes the table as an indented JSON array of row objects.
// Rows are projected onto the column list so the output schema matches the
// table schema even if a row carries extras.
func JSONBytes(tbl *pipeline.Table) ([]byte, error) {
	out := make([]map[string]any, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		m := make(map[string]any, len(tbl.Columns))
		for _, col := range tbl.Columns {
			m[col] = row[col]
		}
		out = append(out, m)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func renderCSV(w io.Writer, tbl *pipeline.Table) error {
	_, _ = fmt.Fprintln(w, strings.Join(tbl.Columns, ","))
	for _, row := range tbl.Rows {
		values := make([]string, len(tbl.Columns))
		for i, col := range tbl.Columns {
			values[i] = escapeCSV(formatValue(row[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
