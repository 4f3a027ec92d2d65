// Package handler provides HTTP handlers for the serve surface. Handlers run
// the pipeline over the warm snapshot and pass rendered JSON through, with an
// in-memory TTL cache and ETag revalidation in front.
package handler

import (
	"net/http"
	"time"

	"github.com/example/fplstats/internal/api/respond"
	"github.com/example/fplstats/internal/app"
	"github.com/example/fplstats/internal/cache"
	"github.com/example/fplstats/internal/config"
	"github.com/example/fplstats/internal/pipeline"
	"github.com/example/fplstats/internal/render"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	app   *app.App
	cache *cache.Cache
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(a *app.App, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{app: a, cache: c, cfg: cfg}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "fplstats API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": []string{
			"/api/v1/players",
			"/api/v1/positions",
			"/api/v1/squad",
			"/api/v1/players/{elementID}/history",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// serveTable renders a table as JSON through the TTL+ETag cache.
func (h *Handler) serveTable(w http.ResponseWriter, r *http.Request, cacheKey string, build func() (*pipeline.Table, error)) {
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, h.cfg.CacheTTL, true)
		return
	}

	table, err := build()
	if err != nil {
		respond.WriteError(w, http.StatusBadGateway, "PIPELINE_FAILED", err.Error())
		return
	}
	data, err := render.JSONBytes(table)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error())
		return
	}

	etag := h.cache.Set(cacheKey, data, h.cfg.CacheTTL)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, h.cfg.CacheTTL, false)
}
