package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"tournament-nav/internal/logging"
	"tournament-nav/internal/session"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type wsOut struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type wsError struct {
	Message string `json:"message"`
}

// Live upgrades to a websocket bound to a fresh session. The session lives as
// long as the connection.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if logger != nil {
			logger.Warn("websocket upgrade failed", "error", err)
		}
		return
	}

	s := h.sessions.CreateLive(r.URL.Query().Get("path"))
	if logger != nil {
		logger = logger.With(slog.String(logging.FieldSession, s.ID()))
	}
	defer func() {
		_ = conn.Close()
		if err := h.sessions.Delete(s.ID()); err != nil && !errors.Is(err, session.ErrNotFound) && logger != nil {
			logger.Warn("failed to release session", "error", err)
		}
	}()

	if err := conn.WriteJSON(wsOut{Type: msgView, Data: sessionResponse{Snapshot: s.Snapshot()}}); err != nil {
		return
	}
	h.readLoop(conn, s, logger)
}

func (h *Handler) readLoop(conn *websocket.Conn, s *session.Session, logger *slog.Logger) {
	for {
		var in wsIn
		if err := conn.ReadJSON(&in); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if err := conn.WriteJSON(wsOut{Type: msgError, Data: wsError{Message: "malformed message"}}); err != nil {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && logger != nil {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var out wsOut
		kind, payload, err := apply(s, in.Type, rawOrNil(in.Data))
		if err != nil {
			out = wsOut{Type: msgError, Data: wsError{Message: err.Error()}}
		} else {
			out = wsOut{Type: kind, Data: payload}
		}
		if logger != nil {
			logger.Debug("websocket message handled",
				slog.String(logging.FieldAction, in.Type),
				slog.String("reply", out.Type),
			)
		}
		if err := conn.WriteJSON(out); err != nil {
			if logger != nil {
				logger.Warn("websocket write failed", "error", err)
			}
			return
		}
		if errors.Is(err, session.ErrClosed) {
			return
		}
	}
}
