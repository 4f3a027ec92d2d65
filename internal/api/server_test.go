package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fplstats/internal/app"
	"github.com/example/fplstats/internal/cache"
	"github.com/example/fplstats/internal/config"
	"github.com/example/fplstats/internal/snapshot"
)

const testPayload = `{
	"elements": [
		{"id": 1, "web_name": "Raya", "team": 1, "element_type": 1, "form": "3.0", "points_per_game": "4.2", "value_season": "9.8", "ict_index": "4.1", "total_points": 49, "minutes": 990, "goals_scored": 0, "assists": 0},
		{"id": 2, "web_name": "Saka", "team": 1, "element_type": 3, "form": "6.5", "points_per_game": "6.8", "value_season": "11.2", "ict_index": "12.7", "total_points": 74, "minutes": 870, "goals_scored": 6, "assists": 5}
	],
	"element_types": [
		{"id": 1, "singular_name": "Goalkeeper"},
		{"id": 3, "singular_name": "Midfielder"}
	],
	"teams": [
		{"id": 1, "name": "Arsenal", "short_name": "ARS"}
	]
}`

const testFilters = `
player_filter:
  - id
  - web_name
  - team
  - element_type
  - form
  - value_season
  - total_points
player_filter_short:
  - web_name
  - total_points
`

// newTestRouter builds a router over a warm snapshot so the handlers never
// hit the network.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()

	statePath := filepath.Join(dir, "state.json")
	snapshotPath := filepath.Join(dir, "bootstrap.json")
	filtersPath := filepath.Join(dir, "filters.yaml")

	today := time.Now().Format(snapshot.DateLayout)
	require.NoError(t, os.WriteFile(statePath, []byte(fmt.Sprintf(`{"last_refreshed": %q}`, today)), 0o644))
	require.NoError(t, os.WriteFile(snapshotPath, []byte(testPayload), 0o644))
	require.NoError(t, os.WriteFile(filtersPath, []byte(testFilters), 0o644))

	cfg := config.Load()
	cfg.StatePath = statePath
	cfg.SnapshotPath = snapshotPath
	cfg.FiltersPath = filtersPath
	cfg.EntryID = 0
	cfg.RateLimitEnabled = false
	cfg.CacheEnabled = true
	cfg.CacheTTL = time.Minute

	a, err := app.New(cfg, nil)
	require.NoError(t, err)

	return NewRouter(a, cache.New(cfg.CacheEnabled), cfg)
}

func TestGetPlayers(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Arsenal", rows[0]["team"])
	assert.Equal(t, "Goalkeeper", rows[0]["element_type"])
}

func TestGetPlayers_ETagRevalidation(t *testing.T) {
	router := newTestRouter(t)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/players", nil))
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)

	assert.Equal(t, http.StatusNotModified, second.Code)
}

func TestGetPlayers_UnknownFilter(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players?filter=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPositions(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/positions", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	// Midfielder first: higher value_season mean (11.2 vs 9.8).
	assert.Equal(t, "Midfielder", rows[0]["element_type"])
	assert.Equal(t, 11.2, rows[0]["value_season"])
}

func TestGetSquad_MissingEntry(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/squad", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlayerHistory_InvalidID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players/abc/history", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndRoot(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/", "/health", "/health/cache"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}
