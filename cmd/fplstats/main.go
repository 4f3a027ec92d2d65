// Command fplstats fetches Fantasy Premier League data (with a daily snapshot
// cache), joins it against the reference tables, and prints or serves the
// resulting views.
//
// Usage:
//
//	fplstats table --filter player_filter_short
//	fplstats positions
//	fplstats squad --entry 123456 --gameweek 7
//	fplstats history --ids 233,355 --summary
//	fplstats serve
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/fplstats/internal/api"
	"github.com/example/fplstats/internal/app"
	"github.com/example/fplstats/internal/cache"
	"github.com/example/fplstats/internal/config"
	"github.com/example/fplstats/internal/filters"
	"github.com/example/fplstats/internal/pipeline"
	"github.com/example/fplstats/internal/render"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")
	slog.SetDefault(logger)

	var forceRefresh bool

	root := &cobra.Command{
		Use:   "fplstats",
		Short: "FPL player statistics pipeline",
	}
	root.PersistentFlags().BoolVar(&forceRefresh, "force-refresh", false, "Refetch the snapshot even if it is fresh")

	root.AddCommand(tableCmd(&forceRefresh))
	root.AddCommand(positionsCmd(&forceRefresh))
	root.AddCommand(squadCmd(&forceRefresh))
	root.AddCommand(historyCmd(&forceRefresh))
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// table command
// --------------------------------------------------------------------------

func tableCmd(force *bool) *cobra.Command {
	var filterName, format string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the player table for a named column filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				table, err := a.MainTable(ctx, filterName, *force)
				if err != nil {
					return err
				}
				return render.Render(cmd.OutOrStdout(), table, format)
			})
		},
	}
	cmd.Flags().StringVar(&filterName, "filter", filters.PlayerFilterShort, "Column filter name from the filters file")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, csv)")
	return cmd
}

// --------------------------------------------------------------------------
// positions command
// --------------------------------------------------------------------------

func positionsCmd(force *bool) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Print per-position mean value and points",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				table, err := a.MainTable(ctx, filters.PlayerFilter, *force)
				if err != nil {
					return err
				}
				summary := pipeline.AggregateByPosition(table, a.Logger)
				return render.Render(cmd.OutOrStdout(), pipeline.PositionSummaryTable(summary), format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, csv)")
	return cmd
}

// --------------------------------------------------------------------------
// squad command
// --------------------------------------------------------------------------

func squadCmd(force *bool) *cobra.Command {
	var entryID, gameweek int
	var format string
	cmd := &cobra.Command{
		Use:   "squad",
		Short: "Print the resolved squad for an entry and gameweek",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				if entryID == 0 {
					entryID = a.Cfg.EntryID
				}
				if gameweek == 0 {
					gameweek = a.Cfg.Gameweek
				}
				table, err := a.Squad(ctx, entryID, gameweek, *force)
				if err != nil {
					return err
				}
				return render.Render(cmd.OutOrStdout(), table, format)
			})
		},
	}
	cmd.Flags().IntVar(&entryID, "entry", 0, "FPL entry (team) id; defaults to FPL_ENTRY_ID")
	cmd.Flags().IntVar(&gameweek, "gameweek", 0, "Gameweek number; defaults to FPL_GAMEWEEK")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, csv)")
	return cmd
}

// --------------------------------------------------------------------------
// history command
// --------------------------------------------------------------------------

func historyCmd(force *bool) *cobra.Command {
	var idsFlag, format string
	var summary bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print combined weekly history for a set of players (default: the configured squad)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(idsFlag)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app.App) error {
				start := time.Now()
				table, err := a.History(ctx, ids, *force)
				if err != nil {
					return err
				}
				a.Logger.Info("History collected", "rows", len(table.Rows), "duration", time.Since(start).Round(time.Millisecond))
				if summary {
					players := pipeline.AggregateHistory(table, a.Logger)
					return render.Render(cmd.OutOrStdout(), pipeline.PlayerSummaryTable(players), format)
				}
				return render.Render(cmd.OutOrStdout(), table, format)
			})
		},
	}
	cmd.Flags().StringVar(&idsFlag, "ids", "", "Comma-separated player ids (empty = current squad)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print per-player mean and stddev of weekly points instead of raw rows")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, csv)")
	return cmd
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the computed tables as a local JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				appCache := cache.New(a.Cfg.CacheEnabled)
				router := api.NewRouter(a, appCache, a.Cfg)

				addr := fmt.Sprintf("%s:%d", a.Cfg.APIHost, a.Cfg.APIPort)
				srv := &http.Server{
					Addr:              addr,
					Handler:           router,
					ReadHeaderTimeout: 10 * time.Second,
				}

				errCh := make(chan error, 1)
				go func() {
					logger.Info("Serving", "addr", addr)
					errCh <- srv.ListenAndServe()
				}()

				select {
				case <-ctx.Done():
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				case err := <-errCh:
					return err
				}
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, dependency wiring, and context cancellation.
func run(fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := config.Load()
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	return fn(ctx, a)
}

func parseIDs(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid player id %q", p)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
