// Package snapshot persists the bootstrap payload to disk and decides, once
// per day, whether to refetch it. The refresh date lives in its own small
// state document next to the snapshot; both are passed around as explicit
// values, never read from ambient globals.
//
// Staleness is never silent: a fresh state with a missing snapshot is an
// error, and a failed refresh never falls back to yesterday's data.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DateLayout is the resolution of the refresh boundary — one calendar day.
const DateLayout = "2006-01-02"

// State records when the snapshot was last refreshed.
type State struct {
	LastRefreshed string `json:"last_refreshed"`
}

// InconsistentStateError reports a state document that claims freshness while
// the snapshot it points at is absent or unreadable.
type InconsistentStateError struct {
	SnapshotPath string
	Err          error
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("state says snapshot is fresh but %s is unusable: %v", e.SnapshotPath, e.Err)
}

func (e *InconsistentStateError) Unwrap() error { return e.Err }

// FetchFunc retrieves the full-dataset payload from the remote API.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Store manages the snapshot file and its refresh-state file.
type Store struct {
	statePath    string
	snapshotPath string
	logger       *slog.Logger
}

// NewStore creates a Store for the given file pair.
func NewStore(statePath, snapshotPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{statePath: statePath, snapshotPath: snapshotPath, logger: logger}
}

// FetchOrLoad returns the bootstrap payload for today.
//
// If the persisted state says the snapshot was refreshed today, the snapshot
// is read back and no network call happens. Otherwise fetch is called exactly
// once and, on success, the snapshot and then the state are written — snapshot
// first, so an interrupted run can never leave a fresh date pointing at
// nothing. A fetch failure propagates with nothing written.
//
// force skips the freshness check and always refetches.
func (s *Store) FetchOrLoad(ctx context.Context, today time.Time, force bool, fetch FetchFunc) ([]byte, error) {
	day := today.Format(DateLayout)

	state, err := s.readState()
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", s.statePath, err)
	}

	if !force && state.LastRefreshed == day {
		body, err := os.ReadFile(s.snapshotPath)
		if err != nil {
			return nil, &InconsistentStateError{SnapshotPath: s.snapshotPath, Err: err}
		}
		if !json.Valid(body) {
			return nil, &InconsistentStateError{
				SnapshotPath: s.snapshotPath,
				Err:          fmt.Errorf("snapshot is not valid JSON"),
			}
		}
		s.logger.Info("Snapshot is fresh, skipping fetch", "date", day, "path", s.snapshotPath)
		return body, nil
	}

	s.logger.Info("Snapshot is stale, fetching", "last_refreshed", state.LastRefreshed, "today", day)
	body, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh snapshot: %w", err)
	}

	if err := s.writeFile(s.snapshotPath, body); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	stateBody, err := json.Marshal(State{LastRefreshed: day})
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	if err := s.writeFile(s.statePath, stateBody); err != nil {
		return nil, fmt.Errorf("write state: %w", err)
	}

	s.logger.Info("Snapshot refreshed", "date", day, "bytes", len(body))
	return body, nil
}

// readState returns the persisted state, or the zero State if none exists yet.
func (s *Store) readState() (State, error) {
	var state State
	body, err := os.ReadFile(s.statePath)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(body, &state); err != nil {
		return state, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

func (s *Store) writeFile(path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, body, 0o644)
}
