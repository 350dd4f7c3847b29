package handlers

import (
	"log/slog"
	"net/http"

	"tournament-nav/internal/history"
	"tournament-nav/internal/navigation"
	"tournament-nav/internal/session"
	"tournament-nav/internal/view"
)

// Handler wires HTTP routes to sessions and the stateless resolver.
type Handler struct {
	sessions *session.Registry
	composer *view.Composer
	resolver navigation.Resolver
	logger   *slog.Logger
	statusFn func() session.Status
}

// NewHandler constructs a Handler. statusFn may be nil, in which case the
// service always reports ready.
func NewHandler(sessions *session.Registry, composer *view.Composer, resolver navigation.Resolver, logger *slog.Logger, statusFn func() session.Status) *Handler {
	return &Handler{
		sessions: sessions,
		composer: composer,
		resolver: resolver,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil || h.statusFn().IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	writeError(w, r, http.StatusServiceUnavailable, "session sweeper not running", h.logger)
}

type resolveResponse struct {
	Path       string     `json:"path"`
	Route      view.Route `json:"route"`
	Redirect   string     `json:"redirect,omitempty"`
	Tournament string     `json:"tournament"`
	Stage      string     `json:"stage"`
	Season     int        `json:"season"`
}

// Resolve reports what a path means without creating a session: the
// segments, the season it resolves to and any redirect it triggers.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	loc := history.ParsePath(r.URL.Query().Get("path"))
	route, redirect := h.composer.Resolve(loc.Pathname)

	writeJSON(w, http.StatusOK, resolveResponse{
		Path:       loc.Path(),
		Route:      route,
		Redirect:   redirect,
		Tournament: loc.Segment(1),
		Stage:      loc.Segment(2),
		Season:     h.resolver.Resolve(loc),
	}, h.logger)
}

// NotFound answers unknown routes with a JSON error.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}
