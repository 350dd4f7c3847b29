package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"tournament-nav/internal/session"
	"tournament-nav/internal/view"
)

// Commands accepted both as POST /sessions/{id}/{command} and as websocket
// message types.
const (
	cmdNavigate  = "navigate"
	cmdBack      = "back"
	cmdForward   = "forward"
	cmdRefresh   = "refresh"
	cmdSeason    = "season"
	cmdReady     = "ready"
	cmdPopup     = "popup"
	cmdLoadError = "load-error"
)

// Outbound message types.
const (
	msgView  = "view"
	msgPopup = "popup"
	msgError = "error"
)

var errInvalidCommand = errors.New("invalid command")

type navigateRequest struct {
	Path string `json:"path"`
}

type seasonRequest struct {
	Tournament string `json:"tournament"`
	Stage      string `json:"stage"`
	Season     int    `json:"season"`
}

type loadErrorRequest struct {
	Message string `json:"message"`
}

// sessionResponse is a session snapshot; Moved is set for back and forward.
type sessionResponse struct {
	session.Snapshot
	Moved *bool `json:"moved,omitempty"`
}

// apply runs one command against s and returns the outbound message type and
// payload. Errors wrap errInvalidCommand when the request itself is at fault
// and are session.ErrClosed once the session has been closed.
func apply(s *session.Session, cmd string, data []byte) (string, any, error) {
	if s.Closed() {
		return "", nil, session.ErrClosed
	}
	switch cmd {
	case cmdNavigate:
		var req navigateRequest
		if err := decodeJSON(bytes.NewReader(data), &req); err != nil {
			return "", nil, fmt.Errorf("%w: %w", errInvalidCommand, err)
		}
		if req.Path == "" {
			return "", nil, fmt.Errorf("%w: path is required", errInvalidCommand)
		}
		s.Navigate(req.Path)
	case cmdBack, cmdForward:
		var moved bool
		if cmd == cmdBack {
			_, moved = s.Back()
		} else {
			_, moved = s.Forward()
		}
		return msgView, sessionResponse{Snapshot: s.Snapshot(), Moved: &moved}, nil
	case cmdRefresh:
		s.RequestRefresh()
	case cmdSeason:
		var req seasonRequest
		if err := decodeJSON(bytes.NewReader(data), &req); err != nil {
			return "", nil, fmt.Errorf("%w: %w", errInvalidCommand, err)
		}
		if req.Tournament == "" {
			return "", nil, fmt.Errorf("%w: tournament is required", errInvalidCommand)
		}
		s.RequestSeasonChange(req.Tournament, req.Stage, req.Season)
	case cmdReady:
		s.MarkReady()
	case cmdPopup:
		var req view.Popup
		if err := decodeJSON(bytes.NewReader(data), &req); err != nil {
			return "", nil, fmt.Errorf("%w: %w", errInvalidCommand, err)
		}
		s.SetPopup(req)
		return msgPopup, s.Popup(), nil
	case cmdLoadError:
		var req loadErrorRequest
		if err := decodeJSON(bytes.NewReader(data), &req); err != nil {
			return "", nil, fmt.Errorf("%w: %w", errInvalidCommand, err)
		}
		if req.Message == "" {
			return "", nil, fmt.Errorf("%w: message is required", errInvalidCommand)
		}
		s.ReportLoadError(errors.New(req.Message))
	default:
		return "", nil, fmt.Errorf("%w: unknown command %q", errInvalidCommand, cmd)
	}
	return msgView, sessionResponse{Snapshot: s.Snapshot()}, nil
}

func rawOrNil(data json.RawMessage) []byte {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return data
}
