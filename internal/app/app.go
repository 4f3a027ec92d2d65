// Package app wires the snapshot store, the FPL client, and the pipeline
// into the operations the CLI commands and the serve handlers share.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/fplstats/internal/config"
	"github.com/example/fplstats/internal/filters"
	"github.com/example/fplstats/internal/fpl"
	"github.com/example/fplstats/internal/pipeline"
	"github.com/example/fplstats/internal/snapshot"
)

// App holds the shared dependencies for one process.
type App struct {
	Cfg     *config.Config
	Client  *fpl.Client
	Store   *snapshot.Store
	Filters filters.Filters
	Logger  *slog.Logger

	mu        sync.Mutex
	refDay    string
	reference *pipeline.Reference
}

// New builds the process dependencies from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := filters.Load(cfg.FiltersPath)
	if err != nil {
		return nil, err
	}
	return &App{
		Cfg:     cfg,
		Client:  fpl.NewClient(cfg.FPLBaseURL, cfg.RequestsPerMinute, logger),
		Store:   snapshot.NewStore(cfg.StatePath, cfg.SnapshotPath, logger),
		Filters: f,
		Logger:  logger,
	}, nil
}

// Reference returns the reference tables for today, fetching or loading the
// snapshot as needed. The result is memoized until the day rolls over, so a
// long-running serve process crosses the daily refresh boundary correctly.
func (a *App) Reference(ctx context.Context, force bool) (*pipeline.Reference, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	day := time.Now().Format(snapshot.DateLayout)
	if !force && a.reference != nil && a.refDay == day {
		return a.reference, nil
	}

	raw, err := a.Store.FetchOrLoad(ctx, time.Now(), force, a.Client.Bootstrap)
	if err != nil {
		return nil, err
	}
	ref, err := pipeline.BuildReference(raw)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("Reference tables built",
		"players", len(ref.Elements), "teams", len(ref.Teams), "positions", len(ref.Positions))

	a.reference = ref
	a.refDay = day
	return ref, nil
}

// MainTable builds the player table for a named column filter.
func (a *App) MainTable(ctx context.Context, filterName string, force bool) (*pipeline.Table, error) {
	ref, err := a.Reference(ctx, force)
	if err != nil {
		return nil, err
	}
	columns, err := a.Filters.Get(filterName)
	if err != nil {
		return nil, err
	}
	return pipeline.BuildMainTable(ref, columns, a.Logger)
}

// Squad fetches the entry's picks for a gameweek and resolves them against
// the player table.
func (a *App) Squad(ctx context.Context, entryID, gameweek int, force bool) (*pipeline.Table, error) {
	if entryID == 0 {
		return nil, fmt.Errorf("an entry id is required (flag --entry or FPL_ENTRY_ID)")
	}
	ref, err := a.Reference(ctx, force)
	if err != nil {
		return nil, err
	}
	columns, err := a.Filters.Get(filters.PlayerFilter)
	if err != nil {
		return nil, err
	}
	table, err := pipeline.BuildMainTable(ref, columns, a.Logger)
	if err != nil {
		return nil, err
	}
	picks, err := a.Client.EntryPicks(ctx, entryID, gameweek)
	if err != nil {
		return nil, fmt.Errorf("fetch picks: %w", err)
	}
	return pipeline.ResolveSquad(picks, table, ref, a.Logger)
}

// History collects the combined per-gameweek history table for a set of
// player ids. An empty id list defaults to the configured entry's squad.
func (a *App) History(ctx context.Context, ids []int, force bool) (*pipeline.Table, error) {
	ref, err := a.Reference(ctx, force)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if a.Cfg.EntryID == 0 {
			return nil, fmt.Errorf("either player ids or an entry id (FPL_ENTRY_ID) is required")
		}
		picks, err := a.Client.EntryPicks(ctx, a.Cfg.EntryID, a.Cfg.Gameweek)
		if err != nil {
			return nil, fmt.Errorf("fetch picks for history ids: %w", err)
		}
		for _, p := range picks {
			ids = append(ids, p.Element)
		}
	}
	opts := pipeline.HistoryOptions{
		Workers:     a.Cfg.HistoryWorkers,
		Retries:     a.Cfg.HistoryRetries,
		SkipOnError: a.Cfg.HistorySkipOnError,
	}
	return pipeline.CollectHistory(ctx, ids, ref, a.Client.ElementSummary, opts, a.Logger)
}
