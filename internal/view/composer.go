package view

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"tournament-nav/internal/navigation"
)

const (
	routeGeneric       = "generic"
	routeGenericSeason = "generic-season"
	routeTournament    = "tournament"
)

// Routes configures redirects: bare tournament codes gain DefaultStage and
// everything unmatched goes to DefaultTournament.
type Routes struct {
	DefaultTournament string
	DefaultStage      string
	Tournaments       []string
}

// Composer builds Views. It holds no navigation state and is safe to share.
type Composer struct {
	routes Routes
	router *mux.Router
}

// NewComposer registers the path scheme in precedence order:
// /{tournament}/{stage}[/{season}], then bare tournament codes.
func NewComposer(routes Routes) *Composer {
	r := mux.NewRouter()
	r.Path("/{tournament}/{stage}").Name(routeGeneric)
	r.Path("/{tournament}/{stage}/{season}").Name(routeGenericSeason)

	codes := make([]string, 0, len(routes.Tournaments))
	for _, code := range routes.Tournaments {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, regexp.QuoteMeta(code))
		}
	}
	if len(codes) > 0 {
		r.Path("/{code:(?:" + strings.Join(codes, "|") + ")}").Name(routeTournament)
	}

	return &Composer{routes: routes, router: r}
}

// Compose renders state. The navbar is left out on the initial paint; the
// content area only renders when the path matched /{tournament}/{stage} and
// both are known.
func (c *Composer) Compose(state navigation.State, initial bool, actions Actions, host Host) View {
	route, redirect := c.Resolve(state.Location.Pathname)
	v := View{Route: route, Redirect: redirect}

	var refresh func()
	var onSeasonChange SeasonChangeFunc
	if actions != nil {
		refresh = actions.RequestRefresh
		onSeasonChange = actions.RequestSeasonChange
	}

	if !initial {
		v.Navbar = &NavbarProps{
			Location:       state.Location,
			Refresh:        refresh,
			OnSeasonChange: onSeasonChange,
		}
	}

	if route == RoutePages && state.Tournament != "" && state.Stage != "" {
		v.Pages = &PagesProps{
			DummyKey:       state.Key,
			Tournament:     state.Tournament,
			Stage:          state.Stage,
			Season:         state.Season,
			SetPopup:       host.SetPopup,
			OnLoadError:    host.OnLoadError,
			OnSeasonChange: onSeasonChange,
		}
	}
	return v
}

// Resolve reports which intent pathname matches and, for redirects, the
// target path.
func (c *Composer) Resolve(pathname string) (Route, string) {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: normalize(pathname)}}

	var match mux.RouteMatch
	if c.router.Match(req, &match) && match.Route != nil {
		switch match.Route.GetName() {
		case routeGeneric, routeGenericSeason:
			return RoutePages, ""
		case routeTournament:
			return RouteTournamentRedirect, "/" + match.Vars["code"] + "/" + c.routes.DefaultStage
		}
	}
	return RouteDefaultRedirect, "/" + c.routes.DefaultTournament
}

// normalize ignores one trailing slash so /wc/groups/ behaves like /wc/groups.
func normalize(pathname string) string {
	if pathname == "" {
		return "/"
	}
	if len(pathname) > 1 && strings.HasSuffix(pathname, "/") {
		return pathname[:len(pathname)-1]
	}
	return pathname
}
