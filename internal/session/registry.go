package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tournament-nav/internal/logging"
)

// Registry keeps a thread-safe set of sessions in memory.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
	newID    func() string
}

// NewRegistry constructs an empty Registry creating sessions with opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		newID:    uuid.NewString,
	}
}

// Create starts a session at path and registers it. It is evicted once idle
// for longer than the sweeper's TTL.
func (r *Registry) Create(path string) *Session {
	return r.create(path, false)
}

// CreateLive starts a session owned by an open connection. EvictIdle skips
// it; the owner deletes it when the connection ends.
func (r *Registry) CreateLive(path string) *Session {
	return r.create(path, true)
}

func (r *Registry) create(path string, live bool) *Session {
	s := New(r.newID(), path, r.opts)
	s.live = live

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	if r.opts.Recorder != nil {
		r.opts.Recorder.RecordSessionOpened()
	}
	logging.Info(r.opts.Logger, "session created",
		slog.String(logging.FieldSession, s.ID()),
		slog.String(logging.FieldPath, path),
		slog.Bool("live", live),
	)
	return s
}

// Get retrieves a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	r.closeSession(s, "session closed")
	return nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle closes sessions last seen before cutoff and returns how many
// were removed. Live sessions are kept.
func (r *Registry) EvictIdle(cutoff time.Time) int {
	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if !s.live && s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		r.closeSession(s, "session evicted")
	}
	return len(idle)
}

// CloseAll closes every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		r.closeSession(s, "session closed")
	}
}

func (r *Registry) closeSession(s *Session, msg string) {
	s.Close()
	if r.opts.Recorder != nil {
		r.opts.Recorder.RecordSessionClosed()
	}
	logging.Info(r.opts.Logger, msg, slog.String(logging.FieldSession, s.ID()))
}
