package metrics

import (
	"sync"
	"time"
)

// ActionInit labels the navigation counted when no transition type was given.
const ActionInit = "NONE"

type navStats struct {
	navigations    map[string]int
	redirects      map[string]int
	refreshes      int
	seasonChanges  int
	loadErrors     int
	sessionsOpened int
	sessionsClosed int
	sweeps         int
	evicted        int
	lastSweep      time.Duration
}

// Recorder captures lightweight, in-memory metrics about navigation and
// forwards them to OpenTelemetry instruments when configured. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	mu    sync.Mutex
	stats navStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: navStats{
			navigations: make(map[string]int),
			redirects:   make(map[string]int),
		},
		otel: otel,
	}
}

// RecordNavigation counts a location change by transition type.
func (r *Recorder) RecordNavigation(action string) {
	if r == nil {
		return
	}
	if action == "" {
		action = ActionInit
	}
	r.mu.Lock()
	r.stats.navigations[action]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordNavigation(action)
	}
}

// RecordRedirect counts a redirect issued by the view composer. kind is
// "tournament" for bare codes and "default" for the fallback.
func (r *Recorder) RecordRedirect(kind string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.redirects[kind]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordRedirect(kind)
	}
}

// RecordRefresh counts a forced remount.
func (r *Recorder) RecordRefresh() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.refreshes++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.refreshes, 1)
	}
}

// RecordSeasonChange counts a season change request.
func (r *Recorder) RecordSeasonChange() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.seasonChanges++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.seasonChanges, 1)
	}
}

// RecordLoadError counts an error reported by the content area.
func (r *Recorder) RecordLoadError() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.loadErrors++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.loadErrors, 1)
	}
}

// RecordSessionOpened tracks a new navigation session.
func (r *Recorder) RecordSessionOpened() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.sessionsOpened++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordActiveSessions(1)
	}
}

// RecordSessionClosed tracks a session being torn down.
func (r *Recorder) RecordSessionClosed() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.sessionsClosed++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordActiveSessions(-1)
	}
}

// RecordSweep tracks an idle-session sweep.
func (r *Recorder) RecordSweep(duration time.Duration, evicted int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.sweeps++
	r.stats.evicted += evicted
	r.stats.lastSweep = duration
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSweep(duration, evicted)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot is a copy of the in-memory counters.
type Snapshot struct {
	Navigations    map[string]int
	Redirects      map[string]int
	Refreshes      int
	SeasonChanges  int
	LoadErrors     int
	SessionsOpened int
	SessionsClosed int
	Sweeps         int
	Evicted        int
	LastSweep      time.Duration
}

// ActiveSessions returns opened minus closed sessions.
func (s Snapshot) ActiveSessions() int {
	return s.SessionsOpened - s.SessionsClosed
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{Navigations: map[string]int{}, Redirects: map[string]int{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Navigations:    make(map[string]int, len(r.stats.navigations)),
		Redirects:      make(map[string]int, len(r.stats.redirects)),
		Refreshes:      r.stats.refreshes,
		SeasonChanges:  r.stats.seasonChanges,
		LoadErrors:     r.stats.loadErrors,
		SessionsOpened: r.stats.sessionsOpened,
		SessionsClosed: r.stats.sessionsClosed,
		Sweeps:         r.stats.sweeps,
		Evicted:        r.stats.evicted,
		LastSweep:      r.stats.lastSweep,
	}
	for k, v := range r.stats.navigations {
		snap.Navigations[k] = v
	}
	for k, v := range r.stats.redirects {
		snap.Redirects[k] = v
	}
	return snap
}
