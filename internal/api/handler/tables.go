package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/fplstats/internal/api/respond"
	"github.com/example/fplstats/internal/filters"
	"github.com/example/fplstats/internal/pipeline"
)

// GetPlayers returns the player table for a named column filter
// (?filter=player_filter).
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	filterName := r.URL.Query().Get("filter")
	if filterName == "" {
		filterName = filters.PlayerFilter
	}
	if _, err := h.app.Filters.Get(filterName); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_FILTER", err.Error())
		return
	}

	h.serveTable(w, r, "players:"+filterName, func() (*pipeline.Table, error) {
		return h.app.MainTable(r.Context(), filterName, false)
	})
}

// GetPositions returns the per-position summary of the player table.
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, "positions", func() (*pipeline.Table, error) {
		table, err := h.app.MainTable(r.Context(), filters.PlayerFilter, false)
		if err != nil {
			return nil, err
		}
		return pipeline.PositionSummaryTable(pipeline.AggregateByPosition(table, h.app.Logger)), nil
	})
}

// GetSquad returns the resolved squad for an entry and gameweek
// (?entry=N&gameweek=N, defaulting to the configured values).
func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	entryID := h.cfg.EntryID
	gameweek := h.cfg.Gameweek
	var err error

	if v := r.URL.Query().Get("entry"); v != "" {
		if entryID, err = strconv.Atoi(v); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_ENTRY", "entry must be an integer")
			return
		}
	}
	if v := r.URL.Query().Get("gameweek"); v != "" {
		if gameweek, err = strconv.Atoi(v); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_GAMEWEEK", "gameweek must be an integer")
			return
		}
	}
	if entryID == 0 {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_ENTRY", "entry query parameter or FPL_ENTRY_ID is required")
		return
	}

	cacheKey := fmt.Sprintf("squad:%d:%d", entryID, gameweek)
	h.serveTable(w, r, cacheKey, func() (*pipeline.Table, error) {
		return h.app.Squad(r.Context(), entryID, gameweek, false)
	})
}

// GetPlayerHistory returns one player's per-gameweek history rows.
func (h *Handler) GetPlayerHistory(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "elementID")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "element id must be an integer")
		return
	}

	h.serveTable(w, r, fmt.Sprintf("history:%d", id), func() (*pipeline.Table, error) {
		return h.app.History(r.Context(), []int{id}, false)
	})
}
