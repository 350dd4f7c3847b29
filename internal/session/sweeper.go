package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tournament-nav/internal/logging"
	"tournament-nav/internal/metrics"
)

const defaultSweepInterval = time.Minute

// Evicter drops sessions idle since before cutoff.
type Evicter interface {
	EvictIdle(cutoff time.Time) int
}

// Sweeper evicts idle sessions on an interval.
type Sweeper struct {
	sessions Evicter
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent activity of the sweep loop.
type Status struct {
	Running     bool
	Sweeps      int
	LastSweep   time.Time
	LastEvicted int
}

// IsReady reports whether the sweep loop is running.
func (s Status) IsReady() bool {
	return s.Running
}

// NewSweeper constructs a Sweeper evicting sessions idle longer than ttl.
func NewSweeper(sessions Evicter, ttl time.Duration, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins sweeping until the context is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.ticker = time.NewTicker(s.interval)
	s.startMu.Unlock()

	s.setRunning(true)

	go func() {
		defer s.setRunning(false)
		logging.Info(s.logger, "session sweeper started", slog.Int64(logging.FieldDurationMS, s.interval.Milliseconds()))

		for {
			select {
			case <-ctx.Done():
				s.stopTicker()
				logging.Info(s.logger, "session sweeper stopped")
				return
			case <-s.done:
				s.stopTicker()
				logging.Info(s.logger, "session sweeper stopped")
				return
			case <-s.ticker.C:
				s.SweepOnce()
			}
		}
	}()
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop(ctx context.Context) error {
	_ = ctx
	s.stopOnce.Do(func() {
		close(s.done)
		s.stopTicker()
	})
	return nil
}

// SweepOnce evicts idle sessions now and returns how many were removed.
func (s *Sweeper) SweepOnce() int {
	start := time.Now()
	now := s.now()
	evicted := s.sessions.EvictIdle(now.Add(-s.ttl))
	duration := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordSweep(duration, evicted)
	}
	s.statusMu.Lock()
	s.status.Sweeps++
	s.status.LastSweep = now
	s.status.LastEvicted = evicted
	s.statusMu.Unlock()

	if evicted > 0 {
		logging.Info(s.logger, "evicted idle sessions",
			logging.FieldCount, evicted,
			logging.FieldDurationMS, duration.Milliseconds(),
		)
	}
	return evicted
}

func (s *Sweeper) stopTicker() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.ticker != nil {
		s.ticker.Stop()
	}
}

func (s *Sweeper) setRunning(running bool) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = running
}

// Status returns a snapshot of the sweeper's recent activity.
func (s *Sweeper) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}
