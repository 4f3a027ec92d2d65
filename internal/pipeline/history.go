package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/fplstats/internal/fpl"
)

// historyColumns is the combined history table schema.
var historyColumns = []string{
	"element", "player", "round", "opponent", "was_home",
	"total_points", "minutes", "goals_scored", "assists", "bonus", "value",
}

// HistoryFetchFunc fetches one player's per-gameweek history.
type HistoryFetchFunc func(ctx context.Context, elementID int) ([]fpl.HistoryEntry, error)

// HistoryOptions controls the history fan-out.
type HistoryOptions struct {
	// Workers bounds the concurrent fetches. Defaults to 4.
	Workers int
	// Retries is the number of extra attempts after a transient failure.
	// Defaults to 2. Non-transient failures are never retried.
	Retries int
	// SkipOnError drops a player whose fetch keeps failing instead of
	// aborting the whole collection. Off by default.
	SkipOnError bool
	// backoff before the first retry, doubling per attempt. Test hook.
	Backoff time.Duration
}

// CollectHistory fetches the weekly history for each id and assembles one
// combined table.
//
// Fetches fan out across a bounded worker pool, but results land in a buffer
// indexed by input position and are flattened in input order: every row for
// ids[0] appears before any row for ids[1]. Rows are annotated with the
// player's display name and the opponent's short name.
func CollectHistory(ctx context.Context, ids []int, ref *Reference, fetch HistoryFetchFunc, opts HistoryOptions, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 4
	}
	if workers > len(ids) {
		workers = len(ids)
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	results := make([][]fpl.HistoryEntry, len(ids))
	errs := make([]error, len(ids))

	ch := make(chan int, len(ids))
	for i := range ids {
		ch <- i
	}
	close(ch)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				results[i], errs[i] = fetchWithRetry(ctx, ids[i], fetch, retries, backoff, logger)
			}
		}()
	}
	wg.Wait()

	table := &Table{Columns: append([]string(nil), historyColumns...)}
	for i, id := range ids {
		if errs[i] != nil {
			if opts.SkipOnError {
				logger.Warn("skipping player history", "element", id, "error", errs[i])
				continue
			}
			return nil, fmt.Errorf("collect history for element %d: %w", id, errs[i])
		}
		for _, entry := range results[i] {
			table.Rows = append(table.Rows, annotateHistory(entry, ref, logger))
		}
	}

	return table, nil
}

// fetchWithRetry retries transient failures with doubling backoff.
func fetchWithRetry(ctx context.Context, id int, fetch HistoryFetchFunc, retries int, backoff time.Duration, logger *slog.Logger) ([]fpl.HistoryEntry, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying history fetch", "element", id, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff << (attempt - 1)):
			}
		}
		entries, err := fetch(ctx, id)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		var transient *fpl.TransientError
		if !errors.As(err, &transient) {
			return nil, err
		}
	}
	return nil, lastErr
}

// annotateHistory maps one wire entry to a table row, resolving the player
// display name and the opponent short name.
func annotateHistory(entry fpl.HistoryEntry, ref *Reference, logger *slog.Logger) Row {
	row := Row{
		"element":      entry.Element,
		"player":       nil,
		"round":        entry.Round,
		"opponent":     nil,
		"was_home":     entry.WasHome,
		"total_points": entry.TotalPoints,
		"minutes":      entry.Minutes,
		"goals_scored": entry.GoalsScored,
		"assists":      entry.Assists,
		"bonus":        entry.Bonus,
		"value":        entry.Value,
	}
	if name, ok := ref.PlayerNames.Lookup(entry.Element); ok {
		row["player"] = name
	} else {
		logger.Warn("unresolved reference", "error", &UnresolvedReferenceError{Column: "element", ID: entry.Element})
	}
	if short, ok := ref.TeamShort.Lookup(entry.OpponentTeam); ok {
		row["opponent"] = short
	} else {
		logger.Warn("unresolved reference", "error", &UnresolvedReferenceError{Column: "opponent_team", ID: entry.OpponentTeam})
	}
	return row
}
