// Package session keeps one page and tab router per browser session.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/propdash/internal/apperr"
	"github.com/dgnsrekt/propdash/internal/chart"
	"github.com/dgnsrekt/propdash/internal/dom"
	"github.com/dgnsrekt/propdash/internal/events"
	"github.com/dgnsrekt/propdash/internal/router"
)

const (
	CookieName = "propdash_session"

	// EventNavigation is the broker kind for router transitions.
	EventNavigation = "navigation"

	defaultMaxSessions = 1000
)

// Session is one browser's page, router and chart registry.
type Session struct {
	ID      string
	Created time.Time
	Page    *dom.Document
	Router  *router.Router
	Charts  *chart.Renderer

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns when the session was last resolved.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Options configures a Manager.
type Options struct {
	Shell        string
	Registry     *router.Registry
	Fetcher      router.Fetcher
	Broker       *events.Broker
	NewLibrary   func() chart.Library
	MaxSessions  int
	SecureCookie bool

	now func() time.Time
}

// Manager maps session ids to sessions.
type Manager struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager validates the shell page once so session creation cannot fail on it.
func NewManager(opts Options) (*Manager, error) {
	if _, err := dom.Parse(opts.Shell); err != nil {
		return nil, fmt.Errorf("parse shell page: %w", err)
	}
	if opts.Registry == nil {
		opts.Registry = router.DefaultRegistry()
	}
	if opts.NewLibrary == nil {
		opts.NewLibrary = func() chart.Library { return chart.NewRecorder() }
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Manager{opts: opts, sessions: make(map[string]*Session)}, nil
}

// Create builds a fresh page from the shell and a router bound to it.
func (m *Manager) Create() (*Session, error) {
	page, err := dom.Parse(m.opts.Shell)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "parse shell page", err)
	}
	id := uuid.NewString()
	now := m.opts.now()
	charts := chart.NewRenderer(m.opts.NewLibrary())
	s := &Session{
		ID:       id,
		Created:  now,
		Page:     page,
		Charts:   charts,
		lastSeen: now,
	}
	s.Router = router.New(page, router.Options{
		Registry: m.opts.Registry,
		Fetcher:  m.opts.Fetcher,
		Charts:   charts,
		Observer: m.observer(id),
	})

	m.mu.Lock()
	m.sessions[id] = s
	evicted := m.evictLocked()
	count := len(m.sessions)
	m.mu.Unlock()

	if evicted > 0 {
		slog.Info("evicted idle sessions over cap", "evicted", evicted, "max", m.opts.MaxSessions)
	}
	slog.Debug("session created", "session", id, "sessions", count)
	return s, nil
}

func (m *Manager) observer(id string) router.Observer {
	broker := m.opts.Broker
	if broker == nil {
		return nil
	}
	return func(evt router.Event) {
		broker.PublishJSON(id, EventNavigation, evt)
	}
}

// evictLocked drops the least recently seen sessions above the cap.
func (m *Manager) evictLocked() int {
	over := len(m.sessions) - m.opts.MaxSessions
	if over <= 0 {
		return 0
	}
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastSeen().Before(all[j].LastSeen()) })
	for _, s := range all[:over] {
		delete(m.sessions, s.ID)
	}
	return over
}

// Registry returns the tab registry shared by every session.
func (m *Manager) Registry() *router.Registry { return m.opts.Registry }

// Get returns the session and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.opts.now())
	}
	return s, ok
}

// Lookup is Get with a SESSION_NOT_FOUND error.
func (m *Manager) Lookup(id string) (*Session, error) {
	if id == "" {
		return nil, apperr.New(apperr.CodeSessionNotFound, "no session cookie", nil)
	}
	s, ok := m.Get(id)
	if !ok {
		return nil, apperr.New(apperr.CodeSessionNotFound, fmt.Sprintf("session %q not found", id), nil)
	}
	return s, nil
}

func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions not seen within maxIdle.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.opts.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps idle sessions every interval until ctx ends.
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				slog.Info("swept idle sessions", "removed", n, "remaining", m.Count())
			}
		}
	}
}

// CookieValue returns the session id carried by r, if any.
func CookieValue(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// FromRequest resolves the session named by the request cookie.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	return m.Lookup(CookieValue(r))
}

// Ensure returns the request's session, creating one and setting the cookie
// when the request has none or names an unknown session.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (*Session, bool, error) {
	if s, err := m.FromRequest(r); err == nil {
		return s, false, nil
	}
	s, err := m.Create()
	if err != nil {
		return nil, false, err
	}
	http.SetCookie(w, m.Cookie(s.ID))
	return s, true, nil
}

// Cookie builds the session cookie for id.
func (m *Manager) Cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// Resolver adapts the manager for the event stream handlers.
func (m *Manager) Resolver() events.SessionResolver {
	return func(r *http.Request) (string, bool) {
		s, err := m.FromRequest(r)
		if err != nil {
			return "", false
		}
		return s.ID, true
	}
}
