package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fplstats/internal/config"
	"github.com/example/fplstats/internal/snapshot"
)

const testPayload = `{
	"elements": [
		{"id": 1, "web_name": "Raya", "team": 1, "element_type": 1, "form": "3.0", "points_per_game": "4.2", "value_season": "9.8", "ict_index": "4.1", "total_points": 49, "minutes": 990, "goals_scored": 0, "assists": 0}
	],
	"element_types": [{"id": 1, "singular_name": "Goalkeeper"}],
	"teams": [{"id": 1, "name": "Arsenal", "short_name": "ARS"}]
}`

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	statePath := filepath.Join(dir, "state.json")
	snapshotPath := filepath.Join(dir, "bootstrap.json")
	filtersPath := filepath.Join(dir, "filters.yaml")

	today := time.Now().Format(snapshot.DateLayout)
	require.NoError(t, os.WriteFile(statePath, []byte(fmt.Sprintf(`{"last_refreshed": %q}`, today)), 0o644))
	require.NoError(t, os.WriteFile(snapshotPath, []byte(testPayload), 0o644))
	require.NoError(t, os.WriteFile(filtersPath, []byte("player_filter: [id, web_name, team, element_type, form, value_season, total_points]\nplayer_filter_short: [web_name]\n"), 0o644))

	cfg := config.Load()
	cfg.StatePath = statePath
	cfg.SnapshotPath = snapshotPath
	cfg.FiltersPath = filtersPath
	cfg.EntryID = 0

	a, err := New(cfg, nil)
	require.NoError(t, err)
	return a
}

func TestReference_MemoizedWithinDay(t *testing.T) {
	a := newTestApp(t)

	ref1, err := a.Reference(context.Background(), false)
	require.NoError(t, err)
	ref2, err := a.Reference(context.Background(), false)
	require.NoError(t, err)

	assert.Same(t, ref1, ref2)
}

func TestMainTable_BuildsFromSnapshot(t *testing.T) {
	a := newTestApp(t)

	table, err := a.MainTable(context.Background(), "player_filter", false)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Arsenal", table.Rows[0]["team"])
	assert.Equal(t, 3.0, table.Rows[0]["form"])
}

func TestMainTable_UnknownFilter(t *testing.T) {
	a := newTestApp(t)

	_, err := a.MainTable(context.Background(), "bogus", false)
	require.Error(t, err)
}

func TestSquad_RequiresEntryID(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Squad(context.Background(), 0, 1, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry id")
}

func TestNew_MissingFiltersFile(t *testing.T) {
	cfg := config.Load()
	cfg.FiltersPath = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := New(cfg, nil)
	require.Error(t, err)
}
