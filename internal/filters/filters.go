// Package filters loads the named column-filter configuration. The pipeline
// treats it as an opaque name → column-list lookup.
package filters

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default filter names shipped in filters.yaml.
const (
	PlayerFilter      = "player_filter"
	PlayerFilterShort = "player_filter_short"
)

// Filters maps a logical filter name to the columns it selects.
type Filters map[string][]string

// Load reads a filter configuration from a YAML file.
func Load(path string) (Filters, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filters %s: %w", path, err)
	}
	var f Filters
	if err := yaml.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("parse filters %s: %w", path, err)
	}
	return f, nil
}

// Get returns the column list for a filter name.
func (f Filters) Get(name string) ([]string, error) {
	cols, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter %q", name)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("filter %q selects no columns", name)
	}
	return cols, nil
}
