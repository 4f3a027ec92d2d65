package pipeline

import (
	"log/slog"
	"math"
	"sort"
)

// PositionSummary is the per-position mean view of the player table.
type PositionSummary struct {
	Position    string
	ValueSeason float64
	TotalPoints float64
	Players     int
}

// PlayerSummary is the per-player view of the combined history table.
type PlayerSummary struct {
	Player       string
	Rounds       int
	MeanPoints   float64
	StdDevPoints float64
}

// AggregateByPosition groups the player table by resolved position name and
// computes the mean value_season and total_points per group, rounded to two
// decimals. Output is sorted descending by value_season mean; ties keep the
// groups' first-appearance order. Rows whose position is null are skipped —
// an unresolvable category has no meaningful mean.
func AggregateByPosition(table *Table, logger *slog.Logger) []PositionSummary {
	if logger == nil {
		logger = slog.Default()
	}

	type acc struct {
		value  meanAcc
		points meanAcc
		count  int
	}
	groups := make(map[string]*acc)
	var order []string

	for _, row := range table.Rows {
		pos, ok := String(row["element_type"])
		if !ok {
			logger.Warn("skipping row with unresolved position in position summary")
			continue
		}
		g, exists := groups[pos]
		if !exists {
			g = &acc{}
			groups[pos] = g
			order = append(order, pos)
		}
		g.count++
		if v, ok := Float(row["value_season"]); ok {
			g.value.add(v)
		}
		if v, ok := Float(row["total_points"]); ok {
			g.points.add(v)
		}
	}

	summaries := make([]PositionSummary, 0, len(order))
	for _, pos := range order {
		g := groups[pos]
		summaries = append(summaries, PositionSummary{
			Position:    pos,
			ValueSeason: round2(g.value.mean()),
			TotalPoints: round2(g.points.mean()),
			Players:     g.count,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ValueSeason > summaries[j].ValueSeason
	})
	return summaries
}

// AggregateHistory groups the combined history table by player display name
// and computes the mean and population standard deviation of weekly points,
// rounded to two decimals. A single-round player has stddev 0. Groups keep
// first-appearance order.
func AggregateHistory(table *Table, logger *slog.Logger) []PlayerSummary {
	if logger == nil {
		logger = slog.Default()
	}

	groups := make(map[string][]float64)
	var order []string

	for _, row := range table.Rows {
		player, ok := String(row["player"])
		if !ok {
			logger.Warn("skipping history row with unresolved player in player summary")
			continue
		}
		if _, exists := groups[player]; !exists {
			order = append(order, player)
		}
		if pts, ok := Float(row["total_points"]); ok {
			groups[player] = append(groups[player], pts)
		}
	}

	summaries := make([]PlayerSummary, 0, len(order))
	for _, player := range order {
		points := groups[player]
		mean := meanOf(points)
		summaries = append(summaries, PlayerSummary{
			Player:       player,
			Rounds:       len(points),
			MeanPoints:   round2(mean),
			StdDevPoints: round2(popStdDev(points, mean)),
		})
	}
	return summaries
}

// PositionSummaryTable converts position summaries to the Table shape the
// output sinks consume.
func PositionSummaryTable(summaries []PositionSummary) *Table {
	t := &Table{Columns: []string{"element_type", "value_season", "total_points", "players"}}
	for _, s := range summaries {
		t.Rows = append(t.Rows, Row{
			"element_type": s.Position,
			"value_season": s.ValueSeason,
			"total_points": s.TotalPoints,
			"players":      s.Players,
		})
	}
	return t
}

// PlayerSummaryTable converts player summaries to the Table shape.
func PlayerSummaryTable(summaries []PlayerSummary) *Table {
	t := &Table{Columns: []string{"player", "rounds", "mean_points", "stddev_points"}}
	for _, s := range summaries {
		t.Rows = append(t.Rows, Row{
			"player":        s.Player,
			"rounds":        s.Rounds,
			"mean_points":   s.MeanPoints,
			"stddev_points": s.StdDevPoints,
		})
	}
	return t
}

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.n++
}

func (a *meanAcc) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// popStdDev is the population standard deviation: zero for a single sample.
func popStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
