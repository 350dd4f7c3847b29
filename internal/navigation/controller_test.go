package navigation

import (
	"testing"
	"time"

	"tournament-nav/internal/history"
	"tournament-nav/internal/metrics"
	"tournament-nav/internal/season"
	"tournament-nav/internal/testutil"
)

// fakeStore records pushes without delivering them, like a host that
// notifies asynchronously.
type fakeStore struct {
	current      history.Location
	listeners    []history.Listener
	pushes       []string
	unsubscribes int
}

func (f *fakeStore) Current() history.Location { return f.current }

func (f *fakeStore) Subscribe(l history.Listener) func() {
	f.listeners = append(f.listeners, l)
	return func() { f.unsubscribes++ }
}

func (f *fakeStore) Push(path string) { f.pushes = append(f.pushes, path) }

func (f *fakeStore) emit(path string, action history.Action) {
	f.current = history.ParsePath(path)
	for _, l := range f.listeners {
		l(f.current, action)
	}
}

// Clock sits in March 2026, so the inferred season is 2025.
func testResolver() season.Resolver {
	return season.New(time.July, testutil.NowAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNewSeedsStateFromCurrentLocation(t *testing.T) {
	store := history.NewMemory("/el/playoffs/2023")
	c := New(store, testResolver(), Options{NewKey: testutil.SequentialKeys()})
	defer c.Close()

	st := c.State()
	if st.Key != "key-1" {
		t.Fatalf("expected fresh key, got %q", st.Key)
	}
	if st.Tournament != "el" || st.Stage != "playoffs" || st.Season != 2023 {
		t.Fatalf("unexpected initial state %+v", st)
	}
	if st.Location != store.Current() {
		t.Fatalf("expected state location to match store")
	}
}

func TestNewSubscribesToStore(t *testing.T) {
	store := &fakeStore{current: history.ParsePath("/")}
	c := New(store, testResolver(), Options{})
	defer c.Close()

	if len(store.listeners) != 1 {
		t.Fatalf("expected controller to subscribe once, got %d", len(store.listeners))
	}
	if c.State().Key == "" {
		t.Fatalf("expected default key generator to produce a key")
	}
}

func TestLocationChangeRecomputesSeason(t *testing.T) {
	store := history.NewMemory("/el/playoffs/2023")
	c := New(store, testResolver(), Options{NewKey: testutil.SequentialKeys()})
	defer c.Close()

	store.Push("/el/playoffs")

	st := c.State()
	if st.Season != 2025 {
		t.Fatalf("expected inferred season 2025 after dropping the segment, got %d", st.Season)
	}
	if st.Tournament != "el" || st.Stage != "playoffs" {
		t.Fatalf("unexpected tournament/stage %+v", st)
	}
	if st.Key != "key-1" {
		t.Fatalf("expected key to survive navigation, got %q", st.Key)
	}
}

func TestOnLocationChangedIsIdempotent(t *testing.T) {
	store := &fakeStore{current: history.ParsePath("/")}
	c := New(store, testResolver(), Options{NewKey: testutil.SequentialKeys()})
	defer c.Close()

	loc := history.ParsePath("/wc/knockout/2022")
	c.OnLocationChanged(loc, history.ActionPop)
	first := c.State()
	c.OnLocationChanged(loc, history.ActionPop)
	second := c.State()

	if first != second {
		t.Fatalf("expected identical state, got %+v then %+v", first, second)
	}
	if second.Tournament != "wc" || second.Stage != "knockout" || second.Season != 2022 {
		t.Fatalf("unexpected state %+v", second)
	}
}

func TestMissingSegmentsLeaveFieldsEmpty(t *testing.T) {
	store := &fakeStore{current: history.ParsePath("/wc")}
	c := New(store, testResolver(), Options{})
	defer c.Close()

	st := c.State()
	if st.Tournament != "wc" || st.Stage != "" {
		t.Fatalf("expected only tournament, got %+v", st)
	}

	store.emit("/", history.ActionReplace)
	st = c.State()
	if st.Tournament != "" || st.Stage != "" {
		t.Fatalf("expected root to clear tournament and stage, got %+v", st)
	}
}

func TestRequestRefreshChangesOnlyKey(t *testing.T) {
	store := history.NewMemory("/wc/groups/2026")
	c := New(store, testResolver(), Options{NewKey: testutil.SequentialKeys()})
	defer c.Close()

	before := c.State()
	c.RequestRefresh()
	after := c.State()

	if after.Key == before.Key {
		t.Fatalf("expected key to change")
	}
	after.Key = before.Key
	if after != before {
		t.Fatalf("expected everything but key unchanged, before %+v after %+v", before, after)
	}
	if store.Len() != 1 {
		t.Fatalf("expected refresh to leave history alone")
	}
}

func TestRequestSeasonChangePushesPath(t *testing.T) {
	tests := []struct {
		tournament string
		stage      string
		season     int
		want       string
	}{
		{"wc", "groups", 2026, "/wc/groups/2026"},
		{"wc", "groups", 0, "/wc/groups"},
		{"el", "playoffs", -1, "/el/playoffs/-1"},
	}

	for _, tt := range tests {
		store := &fakeStore{current: history.ParsePath("/cl/groups")}
		c := New(store, testResolver(), Options{})
		before := c.State()

		c.RequestSeasonChange(tt.tournament, tt.stage, tt.season)

		if len(store.pushes) != 1 || store.pushes[0] != tt.want {
			t.Fatalf("expected push %q, got %v", tt.want, store.pushes)
		}
		if c.State() != before {
			t.Fatalf("expected state to wait for the location event")
		}
		c.Close()
	}
}

func TestRequestSeasonChangeRoundTrip(t *testing.T) {
	store := history.NewMemory("/wc/groups")
	c := New(store, testResolver(), Options{})
	defer c.Close()

	c.RequestSeasonChange("wc", "groups", 2018)

	st := c.State()
	if st.Season != 2018 || st.Location.Pathname != "/wc/groups/2018" {
		t.Fatalf("expected season 2018 after round trip, got %+v", st)
	}
}

func TestZeroSeasonIsReinferred(t *testing.T) {
	store := history.NewMemory("/wc/groups/2010")
	c := New(store, testResolver(), Options{})
	defer c.Close()

	c.RequestSeasonChange("wc", "groups", 0)

	if got := c.State().Season; got != 2025 {
		t.Fatalf("expected inferred season, got %d", got)
	}
}

func TestEventsProcessedInArrivalOrder(t *testing.T) {
	store := &fakeStore{current: history.ParsePath("/")}
	c := New(store, testResolver(), Options{})
	defer c.Close()

	store.emit("/wc/groups/2014", history.ActionPush)
	store.emit("/el/playoffs/2019", history.ActionPush)
	store.emit("/cl/final/2021", history.ActionPop)

	st := c.State()
	if st.Tournament != "cl" || st.Stage != "final" || st.Season != 2021 {
		t.Fatalf("expected last event to win, got %+v", st)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	store := &fakeStore{current: history.ParsePath("/")}
	c := New(store, testResolver(), Options{})

	c.Close()
	c.Close()

	if store.unsubscribes != 1 {
		t.Fatalf("expected exactly one unsubscribe, got %d", store.unsubscribes)
	}

	var nilController *Controller
	nilController.Close()
	(&Controller{}).Close()
}

func TestCloseStopsUpdates(t *testing.T) {
	store := history.NewMemory("/wc/groups")
	c := New(store, testResolver(), Options{})
	c.Close()

	store.Push("/el/playoffs")

	if c.State().Tournament != "wc" {
		t.Fatalf("expected closed controller to ignore navigation")
	}
}

func TestControllerRecordsMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	store := history.NewMemory("/wc/groups")
	c := New(store, testResolver(), Options{Recorder: rec})
	defer c.Close()

	c.RequestSeasonChange("wc", "groups", 2022)
	c.RequestRefresh()

	snap := rec.Snapshot()
	if snap.Navigations[string(history.ActionPush)] != 1 {
		t.Fatalf("expected one push navigation, got %+v", snap.Navigations)
	}
	if snap.SeasonChanges != 1 || snap.Refreshes != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestResolverFunc(t *testing.T) {
	store := &fakeStore{current: history.ParsePath("/wc/groups")}
	c := New(store, ResolverFunc(func(history.Location) int { return 1930 }), Options{})
	defer c.Close()

	if got := c.State().Season; got != 1930 {
		t.Fatalf("expected resolver func to be used, got %d", got)
	}
}

func TestSeasonPath(t *testing.T) {
	if got := SeasonPath("wc", "groups", 2026); got != "/wc/groups/2026" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := SeasonPath("wc", "groups", 0); got != "/wc/groups" {
		t.Fatalf("unexpected path %q", got)
	}
}
