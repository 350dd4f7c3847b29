package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"tournament-nav/internal/metrics"
	"tournament-nav/internal/season"
	"tournament-nav/internal/session"
	"tournament-nav/internal/testutil"
	"tournament-nav/internal/view"
)

type fixture struct {
	handler  *Handler
	router   *mux.Router
	sessions *session.Registry
	recorder *metrics.Recorder
}

func newFixture(t *testing.T, statusFn func() session.Status) fixture {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	composer := view.NewComposer(view.Routes{
		DefaultTournament: "wc",
		DefaultStage:      "groups",
		Tournaments:       []string{"wc", "el", "cl"},
	})
	// Clock sits in March 2026, so the inferred season is 2025.
	resolver := season.New(time.July, testutil.NowAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	reg := session.NewRegistry(session.Options{
		Composer: composer,
		Resolver: resolver,
		Logger:   logger,
		Recorder: rec,
		NewKey:   testutil.SequentialKeys(),
	})
	h := NewHandler(reg, composer, resolver, logger, statusFn)
	r := mux.NewRouter()
	h.Register(r)
	t.Cleanup(reg.CloseAll)
	return fixture{handler: h, router: r, sessions: reg, recorder: rec}
}

func (f fixture) create(t *testing.T, path string) sessionResponse {
	t.Helper()
	rr := testutil.ServeJSON(t, f.router, http.MethodPost, "/sessions", map[string]string{"path": path})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	var resp sessionResponse
	testutil.DecodeJSON(t, rr, &resp)
	return resp
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	rr := testutil.Serve(f.router, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)
	rr := testutil.ServeRequest(http.HandlerFunc(f.handler.Health), req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestReady(t *testing.T) {
	f := newFixture(t, nil)
	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodGet, "/ready", nil), http.StatusOK)

	f = newFixture(t, func() session.Status { return session.Status{Running: true} })
	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodGet, "/ready", nil), http.StatusOK)
}

func TestReadyNotReady(t *testing.T) {
	f := newFixture(t, func() session.Status { return session.Status{} })

	rr := testutil.Serve(f.router, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] == "" {
		t.Fatalf("expected error message when not ready")
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		query string
		want  resolveResponse
	}{
		{"/resolve?path=/el/playoffs/2019", resolveResponse{Path: "/el/playoffs/2019", Route: view.RoutePages, Tournament: "el", Stage: "playoffs", Season: 2019}},
		{"/resolve?path=/cl/final/latest", resolveResponse{Path: "/cl/final/latest", Route: view.RoutePages, Tournament: "cl", Stage: "final", Season: 2025}},
		{"/resolve?path=/wc", resolveResponse{Path: "/wc", Route: view.RouteTournamentRedirect, Redirect: "/wc/groups", Tournament: "wc", Season: 2025}},
		{"/resolve", resolveResponse{Path: "/", Route: view.RouteDefaultRedirect, Redirect: "/wc", Season: 2025}},
	}

	for _, tt := range tests {
		rr := testutil.Serve(f.router, http.MethodGet, tt.query, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var got resolveResponse
		testutil.DecodeJSON(t, rr, &got)
		if got != tt.want {
			t.Fatalf("%s: got %+v, want %+v", tt.query, got, tt.want)
		}
	}
	if f.sessions.Len() != 0 {
		t.Fatalf("expected resolve to leave no sessions behind")
	}
}

func TestCreateSessionSettlesRedirects(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.create(t, "/")

	if resp.ID == "" {
		t.Fatalf("expected session id")
	}
	if resp.State.Location.Pathname != "/wc/groups" {
		t.Fatalf("expected settled location, got %q", resp.State.Location.Pathname)
	}
	if resp.View.Pages == nil || resp.View.Pages.Season != 2025 {
		t.Fatalf("expected pages with inferred season, got %+v", resp.View.Pages)
	}
	if !resp.Initial || resp.View.Navbar != nil {
		t.Fatalf("expected initial paint without navbar")
	}
	if f.recorder.Snapshot().ActiveSessions() != 1 {
		t.Fatalf("expected one active session")
	}
}

func TestCreateSessionRejectsBadBody(t *testing.T) {
	f := newFixture(t, nil)

	rr := testutil.Serve(f.router, http.MethodPost, "/sessions", strings.NewReader("{"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestGetAndDeleteSession(t *testing.T) {
	f := newFixture(t, nil)
	created := f.create(t, "/cl/final/2024")

	rr := testutil.Serve(f.router, http.MethodGet, "/sessions/"+created.ID, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var got sessionResponse
	testutil.DecodeJSON(t, rr, &got)
	if got.State.Season != 2024 {
		t.Fatalf("expected season 2024, got %d", got.State.Season)
	}

	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodDelete, "/sessions/"+created.ID, nil), http.StatusNoContent)
	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodGet, "/sessions/"+created.ID, nil), http.StatusNotFound)
}

func TestSessionLookupErrors(t *testing.T) {
	f := newFixture(t, nil)

	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodGet, "/sessions/not-a-uuid", nil), http.StatusBadRequest)
	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodGet, "/sessions/00000000-0000-0000-0000-000000000000", nil), http.StatusNotFound)
	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodPost, "/sessions/00000000-0000-0000-0000-000000000000/refresh", nil), http.StatusNotFound)
}

func TestSessionCommands(t *testing.T) {
	f := newFixture(t, nil)
	id := f.create(t, "/wc/groups/2022").ID
	base := "/sessions/" + id + "/"

	rr := testutil.ServeJSON(t, f.router, http.MethodPost, base+"navigate", map[string]string{"path": "/el/playoffs"})
	testutil.AssertStatus(t, rr, http.StatusOK)
	var nav sessionResponse
	testutil.DecodeJSON(t, rr, &nav)
	if nav.State.Tournament != "el" || nav.State.Season != 2025 {
		t.Fatalf("unexpected state after navigate %+v", nav.State)
	}

	rr = testutil.Serve(f.router, http.MethodPost, base+"back", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var back sessionResponse
	testutil.DecodeJSON(t, rr, &back)
	if back.Moved == nil || !*back.Moved || back.State.Season != 2022 {
		t.Fatalf("expected back to /wc/groups/2022, got %+v moved=%v", back.State, back.Moved)
	}

	rr = testutil.Serve(f.router, http.MethodPost, base+"back", nil)
	var stuck sessionResponse
	testutil.DecodeJSON(t, rr, &stuck)
	if stuck.Moved == nil || *stuck.Moved {
		t.Fatalf("expected back at the first entry to report moved=false")
	}

	rr = testutil.Serve(f.router, http.MethodPost, base+"forward", nil)
	var fwd sessionResponse
	testutil.DecodeJSON(t, rr, &fwd)
	if fwd.State.Tournament != "el" {
		t.Fatalf("expected forward to el, got %+v", fwd.State)
	}

	before := fwd.View.Pages.DummyKey
	rr = testutil.Serve(f.router, http.MethodPost, base+"refresh", nil)
	var refreshed sessionResponse
	testutil.DecodeJSON(t, rr, &refreshed)
	if refreshed.View.Pages.DummyKey == before {
		t.Fatalf("expected refresh to change the dummy key")
	}

	rr = testutil.ServeJSON(t, f.router, http.MethodPost, base+"season", seasonRequest{Tournament: "el", Stage: "playoffs", Season: 2017})
	var changed sessionResponse
	testutil.DecodeJSON(t, rr, &changed)
	if changed.State.Location.Pathname != "/el/playoffs/2017" {
		t.Fatalf("expected season change to navigate, got %q", changed.State.Location.Pathname)
	}

	rr = testutil.Serve(f.router, http.MethodPost, base+"ready", nil)
	var ready sessionResponse
	testutil.DecodeJSON(t, rr, &ready)
	if ready.Initial || ready.View.Navbar == nil {
		t.Fatalf("expected navbar after ready")
	}
}

func TestSessionPopupAndLoadError(t *testing.T) {
	f := newFixture(t, nil)
	base := "/sessions/" + f.create(t, "/wc/groups").ID + "/"

	rr := testutil.ServeJSON(t, f.router, http.MethodPost, base+"popup", map[string]any{"waiting": true})
	testutil.AssertStatus(t, rr, http.StatusOK)
	rr = testutil.ServeJSON(t, f.router, http.MethodPost, base+"popup", map[string]any{"error": "offline"})
	var popup view.Popup
	testutil.DecodeJSON(t, rr, &popup)
	if popup.Waiting == nil || !*popup.Waiting || popup.Error == nil || *popup.Error != "offline" {
		t.Fatalf("expected merged popup, got %+v", popup)
	}

	rr = testutil.ServeJSON(t, f.router, http.MethodPost, base+"load-error", loadErrorRequest{Message: "fixtures missing"})
	var resp sessionResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.LoadError != "fixtures missing" {
		t.Fatalf("expected load error in snapshot, got %q", resp.LoadError)
	}
	if f.recorder.Snapshot().LoadErrors != 1 {
		t.Fatalf("expected load error recorded")
	}
}

func TestSessionCommandValidation(t *testing.T) {
	f := newFixture(t, nil)
	base := "/sessions/" + f.create(t, "/wc/groups").ID + "/"

	cases := []struct {
		command string
		body    string
	}{
		{"navigate", `{}`},
		{"navigate", `{"path":`},
		{"season", `{"stage":"groups"}`},
		{"load-error", `{}`},
		{"popup", `{"waiting":"yes"}`},
		{"teleport", ``},
	}
	for _, tc := range cases {
		rr := testutil.Serve(f.router, http.MethodPost, base+tc.command, strings.NewReader(tc.body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d", tc.command, tc.body, rr.Code)
		}
	}
}

func TestSessionCommandOnClosedSession(t *testing.T) {
	f := newFixture(t, nil)
	created := f.create(t, "/wc/groups")
	s, err := f.sessions.Get(created.ID)
	if err != nil {
		t.Fatalf("expected session registered, got %v", err)
	}
	s.Close()

	rr := testutil.ServeJSON(t, f.router, http.MethodPost, "/sessions/"+created.ID+"/navigate", navigateRequest{Path: "/cl/final"})

	testutil.AssertStatus(t, rr, http.StatusGone)
	if s.Snapshot().HistoryLen != 1 {
		t.Fatalf("expected closed session history untouched, got %d entries", s.Snapshot().HistoryLen)
	}
}

func TestUnknownRoutesAndMethods(t *testing.T) {
	f := newFixture(t, nil)

	rr := testutil.Serve(f.router, http.MethodGet, "/nope", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "not found" {
		t.Fatalf("expected json not found error, got %v", resp)
	}

	testutil.AssertStatus(t, testutil.Serve(f.router, http.MethodPut, "/sessions", nil), http.StatusMethodNotAllowed)
}
