// Package navigation keeps the displayed tournament, stage and season in step
// with the address bar.
package navigation

import (
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"tournament-nav/internal/history"
	"tournament-nav/internal/logging"
	"tournament-nav/internal/metrics"
)

// Resolver infers the season for a location.
type Resolver interface {
	Resolve(loc history.Location) int
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(loc history.Location) int

// Resolve calls f.
func (f ResolverFunc) Resolve(loc history.Location) int { return f(loc) }

// State is what the view renders from. Tournament, Stage and Season always
// come from the same Location. Key only changes on RequestRefresh.
type State struct {
	Key        string           `json:"key"`
	Tournament string           `json:"tournament,omitempty"`
	Stage      string           `json:"stage,omitempty"`
	Season     int              `json:"season"`
	Location   history.Location `json:"location"`
}

// Options carries optional collaborators. The zero value is usable.
type Options struct {
	NewKey   func() string
	Logger   *slog.Logger
	Recorder *metrics.Recorder
}

// Controller owns a State and reconciles it with a history.Store. It is not
// safe for concurrent use: events are expected one at a time, in order.
type Controller struct {
	store    history.Store
	resolver Resolver
	newKey   func() string
	logger   *slog.Logger
	metrics  *metrics.Recorder

	state    State
	unlisten func()
}

// New subscribes to store and seeds the state from its current location.
func New(store history.Store, resolver Resolver, opts Options) *Controller {
	c := &Controller{
		store:    store,
		resolver: resolver,
		newKey:   opts.NewKey,
		logger:   opts.Logger,
		metrics:  opts.Recorder,
	}
	if c.newKey == nil {
		c.newKey = uuid.NewString
	}

	c.unlisten = store.Subscribe(c.OnLocationChanged)
	c.state.Key = c.newKey()
	c.apply(store.Current())
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// OnLocationChanged derives tournament, stage and season from loc. The key
// is left alone, so applying the same location twice is a no-op.
func (c *Controller) OnLocationChanged(loc history.Location, action history.Action) {
	c.apply(loc)
	if c.metrics != nil {
		c.metrics.RecordNavigation(string(action))
	}
	if c.logger != nil {
		c.logger.Debug("location changed",
			slog.String(logging.FieldPath, loc.Pathname),
			slog.String(logging.FieldAction, string(action)),
			slog.String(logging.FieldTournament, c.state.Tournament),
			slog.String(logging.FieldStage, c.state.Stage),
			slog.Int(logging.FieldSeason, c.state.Season),
		)
	}
}

// RequestSeasonChange navigates to /{tournament}/{stage}[/{season}]. A zero
// season leaves the segment out, so the next state infers the season again.
// State is updated by the resulting location event, not here.
func (c *Controller) RequestSeasonChange(tournament, stage string, season int) {
	path := SeasonPath(tournament, stage, season)
	if c.metrics != nil {
		c.metrics.RecordSeasonChange()
	}
	logging.Info(c.logger, "season change requested", slog.String(logging.FieldPath, path))
	c.store.Push(path)
}

// RequestRefresh issues a new key without touching anything else.
func (c *Controller) RequestRefresh() {
	c.state.Key = c.newKey()
	if c.metrics != nil {
		c.metrics.RecordRefresh()
	}
	if c.logger != nil {
		c.logger.Debug("refresh requested", slog.String(logging.FieldKey, c.state.Key))
	}
}

// Close releases the store subscription. It is safe to call more than once
// and on a nil controller.
func (c *Controller) Close() {
	if c == nil || c.unlisten == nil {
		return
	}
	c.unlisten()
	c.unlisten = nil
}

func (c *Controller) apply(loc history.Location) {
	season := c.resolver.Resolve(loc)
	c.state = State{
		Key:        c.state.Key,
		Tournament: loc.Segment(1),
		Stage:      loc.Segment(2),
		Season:     season,
		Location:   loc,
	}
}

// SeasonPath builds the path a season change navigates to.
func SeasonPath(tournament, stage string, season int) string {
	path := "/" + tournament + "/" + stage
	if season != 0 {
		path += "/" + strconv.Itoa(season)
	}
	return path
}
