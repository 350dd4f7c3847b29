// Package view turns navigation state into a render description: which
// chrome to show, what the content area receives, or where to redirect.
package view

import "tournament-nav/internal/history"

// Popup is the loading/error chrome the content area asks the caller to
// show. Nil fields are left as they are.
type Popup struct {
	Waiting *bool   `json:"waiting,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// PopupFunc receives popup updates from the content area.
type PopupFunc func(Popup)

// LoadErrorFunc receives unrecoverable load failures from the content area.
type LoadErrorFunc func(err error)

// SeasonChangeFunc requests navigation to a tournament, stage and season.
// A zero season means "no season segment".
type SeasonChangeFunc func(tournament, stage string, season int)

// Actions is what the navbar and the content area can ask the controller for.
type Actions interface {
	RequestRefresh()
	RequestSeasonChange(tournament, stage string, season int)
}

// Host holds the callbacks the caller supplies for the content area.
type Host struct {
	SetPopup    PopupFunc
	OnLoadError LoadErrorFunc
}

// NavbarProps is what the navbar collaborator receives.
type NavbarProps struct {
	Location       history.Location `json:"location"`
	Refresh        func()           `json:"-"`
	OnSeasonChange SeasonChangeFunc `json:"-"`
}

// PagesProps is what the content collaborator receives. The content area is
// rebuilt from scratch whenever DummyKey changes.
type PagesProps struct {
	DummyKey       string           `json:"dummyKey"`
	Tournament     string           `json:"tournament"`
	Stage          string           `json:"stage"`
	Season         int              `json:"season"`
	SetPopup       PopupFunc        `json:"-"`
	OnLoadError    LoadErrorFunc    `json:"-"`
	OnSeasonChange SeasonChangeFunc `json:"-"`
}

// Route names the intent a path matched.
type Route string

const (
	RoutePages              Route = "pages"
	RouteTournamentRedirect Route = "tournament-redirect"
	RouteDefaultRedirect    Route = "default-redirect"
)

// View is the composed output. Navbar and Pages are nil when not rendered;
// Redirect is set when the path must be replaced before anything renders.
type View struct {
	Route    Route        `json:"route"`
	Redirect string       `json:"redirect,omitempty"`
	Navbar   *NavbarProps `json:"navbar,omitempty"`
	Pages    *PagesProps  `json:"pages,omitempty"`
}

// BoolPtr and StringPtr help build Popup values.
func BoolPtr(v bool) *bool { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
