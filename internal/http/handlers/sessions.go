package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tournament-nav/internal/logging"
	"tournament-nav/internal/session"
)

type createSessionRequest struct {
	Path string `json:"path"`
}

// CreateSession starts a session at the requested path and returns its
// settled snapshot.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	s := h.sessions.Create(req.Path)
	writeJSON(w, http.StatusCreated, sessionResponse{Snapshot: s.Snapshot()}, h.logger)
}

// GetSession returns the session snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Snapshot: s.Snapshot()}, h.logger)
}

// DeleteSession closes and forgets the session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(s.ID()); err != nil {
		writeError(w, r, http.StatusNotFound, "session not found", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Command applies the command named in the path to the session.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	cmd := mux.Vars(r)["command"]
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	_, payload, err := apply(s, cmd, body)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, errInvalidCommand):
			status = http.StatusBadRequest
		case errors.Is(err, session.ErrClosed):
			status = http.StatusGone
		}
		writeError(w, r, status, err.Error(), h.logger)
		return
	}
	if logger := loggerFromContext(r, h.logger); logger != nil {
		logger.Debug("session command applied",
			slog.String(logging.FieldSession, s.ID()),
			slog.String(logging.FieldAction, cmd),
		)
	}
	writeJSON(w, http.StatusOK, payload, h.logger)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid session id", h.logger)
		return nil, false
	}
	s, err := h.sessions.Get(id.String())
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "session not found", h.logger)
		return nil, false
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "session lookup failed", h.logger)
		return nil, false
	}
	return s, true
}
