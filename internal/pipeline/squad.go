package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/example/fplstats/internal/fpl"
)

// squadPickColumns lead the resolved squad schema, ahead of the joined
// reference columns. element stays the numeric id; the display name gets its
// own player column so the id remains available downstream.
var squadPickColumns = []string{"element", "player", "position", "multiplier", "is_captain", "is_vice_captain"}

// ResolveSquad left-joins the squad picks with the built player table.
//
// Squad membership is authoritative: a pick whose player is missing from the
// reference table keeps its row with null reference cells, it is never
// dropped. position is the playing position resolved from the reference
// table, not the squad slot number.
func ResolveSquad(picks []fpl.Pick, table *Table, ref *Reference, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !hasColumn(table, "id") {
		return nil, fmt.Errorf("resolve squad: reference table has no id column")
	}

	// One id-keyed index over the table, built once for all picks.
	byID := NewResolver[int, Row]()
	for _, row := range table.Rows {
		if id, ok := Int(row["id"]); ok {
			byID.Put(id, row)
		}
	}

	out := &Table{Columns: append([]string(nil), squadPickColumns...)}
	for _, col := range table.Columns {
		out.Columns = append(out.Columns, col)
	}

	for _, pick := range picks {
		row := Row{
			"element":         pick.Element,
			"player":          nil,
			"position":        nil,
			"multiplier":      pick.Multiplier,
			"is_captain":      pick.IsCaptain,
			"is_vice_captain": pick.IsViceCaptain,
		}

		if name, ok := ref.PlayerNames.Lookup(pick.Element); ok {
			row["player"] = name
		}

		refRow, found := byID.Lookup(pick.Element)
		if !found {
			logger.Warn("unresolved reference", "error", &UnresolvedReferenceError{Column: "element", ID: pick.Element})
			for _, col := range table.Columns {
				row[col] = nil
			}
			out.Rows = append(out.Rows, row)
			continue
		}

		for _, col := range table.Columns {
			row[col] = refRow[col]
		}
		if pos, ok := refRow["element_type"]; ok {
			row["position"] = pos
		}
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}
