// Package season infers which competition season a location refers to.
package season

import (
	"regexp"
	"strconv"
	"time"

	"tournament-nav/internal/history"
	"tournament-nav/internal/timeutil"
)

// segmentIndex is the position of the season in /{tournament}/{stage}/{season}
// once the pathname is split on "/".
const segmentIndex = 3

var numeric = regexp.MustCompile(`^[0-9]+$`)

// Resolver maps a location to a season year. A season runs from
// BoundaryMonth of year Y up to the same month of Y+1 and is named Y.
type Resolver struct {
	BoundaryMonth time.Month
	Now           timeutil.Clock
}

// New returns a Resolver for the given boundary month and clock.
func New(boundary time.Month, now timeutil.Clock) Resolver {
	return Resolver{BoundaryMonth: boundary, Now: now}
}

// Resolve returns the season in the path when it is a positive integer,
// verbatim, and the season containing Now otherwise.
func (r Resolver) Resolve(loc history.Location) int {
	if season, ok := FromPath(loc); ok {
		return season
	}
	return r.Current()
}

// Current returns the season the clock falls in.
func (r Resolver) Current() int {
	return At(r.Now.Now(), r.BoundaryMonth)
}

// FromPath extracts an explicit season from the location.
func FromPath(loc history.Location) (int, bool) {
	raw := loc.Segment(segmentIndex)
	if !numeric.MatchString(raw) {
		return 0, false
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season <= 0 {
		return 0, false
	}
	return season, true
}

// At returns the season containing t. Boundaries outside January..December
// are treated as January, which makes seasons match calendar years.
func At(t time.Time, boundary time.Month) int {
	if boundary < time.January || boundary > time.December {
		boundary = time.January
	}
	if t.Month() >= boundary {
		return t.Year()
	}
	return t.Year() - 1
}
