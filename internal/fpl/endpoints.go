package fpl

import (
	"context"
	"encoding/json"
	"fmt"
)

// Bootstrap fetches the full-dataset payload (/bootstrap-static) and returns
// the raw bytes. The caller persists and decodes it — the snapshot on disk
// mirrors the response wholesale.
func (c *Client) Bootstrap(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/bootstrap-static/")
}

// EntryPicks fetches a user's squad picks for one gameweek.
func (c *Client) EntryPicks(ctx context.Context, entryID, gameweek int) ([]Pick, error) {
	body, err := c.get(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gameweek))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Picks []Pick `json:"picks"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode picks for entry %d gw %d: %w", entryID, gameweek, err)
	}
	return payload.Picks, nil
}

// ElementSummary fetches one player's per-gameweek history.
func (c *Client) ElementSummary(ctx context.Context, elementID int) ([]HistoryEntry, error) {
	body, err := c.get(ctx, fmt.Sprintf("/element-summary/%d/", elementID))
	if err != nil {
		return nil, err
	}
	var payload struct {
		History []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode history for element %d: %w", elementID, err)
	}
	return payload.History, nil
}
