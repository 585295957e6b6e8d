package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/propdash/internal/apperr"
	"github.com/dgnsrekt/propdash/internal/events"
	"github.com/dgnsrekt/propdash/internal/router"
	"github.com/dgnsrekt/propdash/internal/web"
)

type staticFetcher map[string]string

func (f staticFetcher) Fetch(_ context.Context, ref string) (string, error) {
	body, ok := f[ref]
	if !ok {
		return "", apperr.New(apperr.CodeFetchStatus, "HTTP error! status: 404", nil)
	}
	return body, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Shell == "" {
		opts.Shell = web.Shell()
	}
	m, err := NewManager(opts)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestNewManagerRejectsShellWithoutContentRegion(t *testing.T) {
	if _, err := NewManager(Options{Shell: "<html><body><nav></nav></body></html>"}); err == nil {
		t.Fatal("NewManager() = nil error; want missing content region")
	}
}

func TestSessionsHaveIndependentPages(t *testing.T) {
	m := newManager(t, Options{Fetcher: staticFetcher{"tenants.html": "<h2>Tenants</h2>"}})
	a, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	b, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("duplicate session id %q", a.ID)
	}

	load, err := a.Router.Activate("tenants")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := load.Wait(ctx)
	if err != nil || out.State != router.StateLoaded {
		t.Fatalf("Wait() = %+v, %v; want loaded", out, err)
	}
	if got := b.Page.ActiveTabs(); len(got) != 1 || got[0] != "dashboard" {
		t.Fatalf("other session ActiveTabs() = %v; want [dashboard]", got)
	}
	if !b.Page.HasCanvas("revenueChart") {
		t.Fatal("other session lost its dashboard content")
	}
}

func TestEnsureSetsAndReusesCookie(t *testing.T) {
	m := newManager(t, Options{})

	rec := httptest.NewRecorder()
	s, created, err := m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || !created {
		t.Fatalf("Ensure() = %v, %v; want new session", created, err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != s.ID || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	again, created, err := m.Ensure(rec, req)
	if err != nil || created || again.ID != s.ID {
		t.Fatalf("Ensure(with cookie) = %v, %v, %v; want existing session", again, created, err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("Ensure() reset cookie for existing session")
	}
}

func TestEnsureReplacesUnknownSession(t *testing.T) {
	m := newManager(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "gone"})
	rec := httptest.NewRecorder()
	s, created, err := m.Ensure(rec, req)
	if err != nil || !created || s.ID == "gone" {
		t.Fatalf("Ensure() = %v, %v, %v", s, created, err)
	}
}

func TestLookupErrors(t *testing.T) {
	m := newManager(t, Options{})
	for _, id := range []string{"", "missing"} {
		_, err := m.Lookup(id)
		if apperr.Code(err) != apperr.CodeSessionNotFound {
			t.Fatalf("Lookup(%q) code = %q; want %q", id, apperr.Code(err), apperr.CodeSessionNotFound)
		}
	}
}

func TestNavigationEventsPublished(t *testing.T) {
	broker := events.NewBroker()
	m := newManager(t, Options{Broker: broker, Fetcher: staticFetcher{}})
	s, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	subID, ch := broker.Subscribe(s.ID)
	defer broker.Unsubscribe(subID)

	load, err := s.Router.Activate("leases")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	<-load.Done()

	var states []router.State
	for len(ch) > 0 {
		evt := <-ch
		if evt.Kind != EventNavigation || evt.Session != s.ID {
			t.Fatalf("event = %+v", evt)
		}
		var re router.Event
		if err := json.Unmarshal(evt.Payload, &re); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		states = append(states, re.State)
	}
	want := []router.State{router.StateActivating, router.StateLoading, router.StateFailed}
	if len(states) != len(want) {
		t.Fatalf("states = %v; want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v; want %v", states, want)
		}
	}
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(t, Options{now: c.Now})
	old, _ := m.Create()
	c.Advance(30 * time.Minute)
	fresh, _ := m.Create()
	c.Advance(40 * time.Minute)

	if n := m.Sweep(time.Hour); n != 1 {
		t.Fatalf("Sweep() = %d; want 1", n)
	}
	if _, ok := m.Get(old.ID); ok {
		t.Fatal("idle session survived sweep")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Fatal("recent session was swept")
	}
}

func TestCreateEvictsLeastRecentlySeen(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(t, Options{MaxSessions: 2, now: c.Now})
	first, _ := m.Create()
	c.Advance(time.Minute)
	second, _ := m.Create()
	c.Advance(time.Minute)
	m.Get(first.ID)
	c.Advance(time.Minute)
	if _, err := m.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if m.Count() != 2 {
		t.Fatalf("Count() = %d; want 2", m.Count())
	}
	if _, ok := m.Get(second.ID); ok {
		t.Fatal("least recently seen session was not evicted")
	}
	if _, ok := m.Get(first.ID); !ok {
		t.Fatal("recently seen session was evicted")
	}
}

func TestResolver(t *testing.T) {
	m := newManager(t, Options{})
	s, _ := m.Create()
	resolve := m.Resolver()

	req := httptest.NewRequest(http.MethodGet, "/ws/navigation", nil)
	if _, ok := resolve(req); ok {
		t.Fatal("resolve() without cookie = ok")
	}
	req.AddCookie(m.Cookie(s.ID))
	if id, ok := resolve(req); !ok || id != s.ID {
		t.Fatalf("resolve() = %q, %v; want %q", id, ok, s.ID)
	}
	if !m.Delete(s.ID) || m.Delete(s.ID) {
		t.Fatal("Delete() did not report removal exactly once")
	}
}
