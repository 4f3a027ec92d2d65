package filters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFilters(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndGet(t *testing.T) {
	path := writeFilters(t, `
player_filter:
  - id
  - web_name
  - team
player_filter_short:
  - web_name
`)

	f, err := Load(path)
	require.NoError(t, err)

	cols, err := f.Get("player_filter")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "web_name", "team"}, cols)

	short, err := f.Get(PlayerFilterShort)
	require.NoError(t, err)
	assert.Equal(t, []string{"web_name"}, short)
}

func TestGet_UnknownFilter(t *testing.T) {
	path := writeFilters(t, "player_filter: [id]\n")
	f, err := Load(path)
	require.NoError(t, err)

	_, err = f.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestGet_EmptyFilter(t *testing.T) {
	path := writeFilters(t, "empty: []\n")
	f, err := Load(path)
	require.NoError(t, err)

	_, err = f.Get("empty")
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFilters(t, "player_filter: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
}
