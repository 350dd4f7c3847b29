// Package session hosts navigation controllers for remote clients. A Session
// plays the browser: it owns the history, serializes events into the
// controller and follows redirects the view asks for.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"tournament-nav/internal/history"
	"tournament-nav/internal/logging"
	"tournament-nav/internal/metrics"
	"tournament-nav/internal/navigation"
	"tournament-nav/internal/timeutil"
	"tournament-nav/internal/view"
)

// maxRedirects bounds redirect chains; / -> /wc -> /wc/groups needs two.
const maxRedirects = 4

// Options are shared by every session a Registry creates.
type Options struct {
	Composer *view.Composer
	Resolver navigation.Resolver
	Logger   *slog.Logger
	Recorder *metrics.Recorder
	NewKey   func() string
	Now      timeutil.Clock
}

// Session is one address bar with its navigation state. All methods are safe
// for concurrent use; they are applied to the controller one at a time.
type Session struct {
	id       string
	history  *history.Memory
	ctrl     *navigation.Controller
	composer *view.Composer
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      timeutil.Clock

	mu        sync.Mutex
	initial   bool
	popup     view.Popup
	loadError error
	lastSeen  time.Time
	closed    bool

	// live sessions belong to an open connection and are never evicted.
	live bool
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID           string           `json:"id"`
	State        navigation.State `json:"state"`
	View         view.View        `json:"view"`
	Popup        view.Popup       `json:"popup"`
	LoadError    string           `json:"loadError,omitempty"`
	Initial      bool             `json:"initial"`
	HistoryLen   int              `json:"historyLength"`
	HistoryIndex int              `json:"historyIndex"`
}

// New starts a session at path.
func New(id, path string, opts Options) *Session {
	return NewWithHistory(id, history.NewMemory(path), opts)
}

// NewWithHistory starts a session on an existing history.
func NewWithHistory(id string, h *history.Memory, opts Options) *Session {
	if opts.Composer == nil {
		panic("session: Options.Composer is required")
	}
	if opts.Resolver == nil {
		panic("session: Options.Resolver is required")
	}
	logger := opts.Logger
	if logger != nil {
		logger = logger.With(slog.String(logging.FieldSession, id))
	}

	s := &Session{
		id:       id,
		history:  h,
		composer: opts.Composer,
		logger:   logger,
		metrics:  opts.Recorder,
		now:      opts.Now,
		initial:  true,
	}
	s.ctrl = navigation.New(h, opts.Resolver, navigation.Options{
		NewKey:   opts.NewKey,
		Logger:   logger,
		Recorder: opts.Recorder,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleLocked()
	s.lastSeen = s.now.Now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// View composes the current state, following any pending redirect.
func (s *Session) View() view.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.settleLocked()
}

// Snapshot returns the session's state and composed view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Navigate pushes path, as a link click would.
func (s *Session) Navigate(path string) view.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if !s.closed {
		s.history.Push(path)
	}
	return s.settleLocked()
}

// Back moves one entry back. It reports false at the first entry.
func (s *Session) Back() (view.View, bool) {
	return s.move(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (s *Session) Forward() (view.View, bool) {
	return s.move(1)
}

func (s *Session) move(delta int) (view.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.closed {
		return s.settleLocked(), false
	}
	moved := s.history.Go(delta)
	return s.settleLocked(), moved
}

// RequestRefresh forces the content area to be rebuilt.
func (s *Session) RequestRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.ctrl.RequestRefresh()
}

// RequestSeasonChange navigates to the given tournament, stage and season.
func (s *Session) RequestSeasonChange(tournament, stage string, season int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.closed {
		return
	}
	s.ctrl.RequestSeasonChange(tournament, stage, season)
	s.settleLocked()
}

// MarkReady ends the initial paint so the navbar is rendered.
func (s *Session) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.initial = false
}

// SetPopup merges the non-nil fields of p into the session popup.
func (s *Session) SetPopup(p view.Popup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if p.Waiting != nil {
		s.popup.Waiting = view.BoolPtr(*p.Waiting)
	}
	if p.Error != nil {
		s.popup.Error = view.StringPtr(*p.Error)
	}
}

// Popup returns the current popup.
func (s *Session) Popup() view.Popup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popup
}

// ReportLoadError records an error from the content area as-is.
func (s *Session) ReportLoadError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.loadError = err
	if s.metrics != nil {
		s.metrics.RecordLoadError()
	}
	logging.Warn(s.logger, "content load failed", "error", err)
}

// LoadError returns the last error reported by the content area.
func (s *Session) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadError
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Closed reports whether the session was closed. A closed session no longer
// moves its history.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Live reports whether the session is bound to an open connection.
func (s *Session) Live() bool { return s.live }

// Close tears the controller down. Further calls are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ctrl.Close()
}

func (s *Session) host() view.Host {
	return view.Host{
		SetPopup:    s.SetPopup,
		OnLoadError: s.ReportLoadError,
	}
}

func (s *Session) composeLocked() view.View {
	return s.composer.Compose(s.ctrl.State(), s.initial, s, s.host())
}

// settleLocked composes and replaces the location while the view asks for a
// redirect, like a router <Redirect> would.
func (s *Session) settleLocked() view.View {
	v := s.composeLocked()
	if s.closed {
		return v
	}
	for hops := 0; v.Redirect != "" && hops < maxRedirects; hops++ {
		if s.metrics != nil {
			s.metrics.RecordRedirect(string(v.Route))
		}
		if s.logger != nil {
			s.logger.Debug("redirecting",
				slog.String(logging.FieldPath, s.history.Current().Pathname),
				slog.String(logging.FieldRedirect, v.Redirect),
			)
		}
		s.history.Replace(v.Redirect)
		v = s.composeLocked()
	}
	if v.Redirect != "" {
		logging.Warn(s.logger, "redirect chain did not settle", slog.String(logging.FieldRedirect, v.Redirect))
	}
	return v
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		State:        s.ctrl.State(),
		View:         s.composeLocked(),
		Popup:        s.popup,
		Initial:      s.initial,
		HistoryLen:   s.history.Len(),
		HistoryIndex: s.history.Index(),
	}
	if s.loadError != nil {
		snap.LoadError = s.loadError.Error()
	}
	return snap
}

func (s *Session) touchLocked() {
	s.lastSeen = s.now.Now()
}

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
	// ErrClosed is returned for commands sent to a closed session.
	ErrClosed = errors.New("session closed")
)
