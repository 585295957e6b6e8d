package router

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"

	"github.com/dgnsrekt/propdash/internal/apperr"
	"github.com/dgnsrekt/propdash/internal/chart"
	"github.com/dgnsrekt/propdash/internal/dom"
)

const (
	LoadingMarkup = `<div class="loading">Loading...</div>`
	MainFallback  = `<p class="error-message">Could not load content.</p>`
)

// State is a step of one activation cycle.
type State string

const (
	StateIdle           State = "idle"
	StateActivating     State = "activating"
	StateInlineRendered State = "inline_rendered"
	StateLoading        State = "loading"
	StateLoaded         State = "loaded"
	StateFailed         State = "failed"
	// StateStale marks a fetch that resolved after a newer activation; its
	// result never reaches the content region.
	StateStale State = "stale"
)

// Terminal reports whether s ends an activation cycle.
func (s State) Terminal() bool {
	switch s {
	case StateInlineRendered, StateLoaded, StateFailed, StateStale:
		return true
	}
	return false
}

// Page is the document the router drives.
type Page interface {
	SetActive(tabID string) bool
	SetContent(markup string) error
	RestoreSnapshot()
	Content() string
	chart.Surface
}

// Event is a state transition published to the Observer.
type Event struct {
	Seq   uint64 `json:"seq"`
	Tab   string `json:"tab"`
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

// Observer receives every transition. It must not block.
type Observer func(Event)

// Outcome is the terminal result of one activation.
type Outcome struct {
	Seq     uint64           `json:"seq"`
	Tab     string           `json:"tab"`
	State   State            `json:"state"`
	Content string           `json:"content"`
	Charts  []chart.Rendered `json:"charts"`
	Error   string           `json:"error,omitempty"`
	Err     error            `json:"-"`
}

// Load tracks one activation until it reaches a terminal state.
type Load struct {
	Seq uint64
	Tab string

	done    chan struct{}
	outcome Outcome
}

func newLoad(seq uint64, tab string) *Load {
	return &Load{Seq: seq, Tab: tab, done: make(chan struct{})}
}

func (l *Load) finish(o Outcome) {
	l.outcome = o
	close(l.done)
}

// Done is closed once the activation reaches a terminal state.
func (l *Load) Done() <-chan struct{} { return l.done }

// Result returns the outcome and whether it is available yet.
func (l *Load) Result() (Outcome, bool) {
	select {
	case <-l.done:
		return l.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the activation finishes or ctx ends.
func (l *Load) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-l.done:
		return l.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Options configures a Router.
type Options struct {
	Registry *Registry
	Fetcher  Fetcher
	Charts   *chart.Renderer
	Observer Observer
}

// Router owns navigation state for one page: the active tab, the activation
// sequence, and the content region lifecycle.
type Router struct {
	page     Page
	registry *Registry
	fetcher  Fetcher
	charts   *chart.Renderer
	observer Observer

	mu          sync.Mutex
	active      string
	state       State
	seq         uint64
	cancelFetch context.CancelFunc
}

func New(page Page, opts Options) *Router {
	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	charts := opts.Charts
	if charts == nil {
		charts = chart.NewRenderer(chart.NewRecorder())
	}
	return &Router{
		page:     page,
		registry: reg,
		fetcher:  opts.Fetcher,
		charts:   charts,
		observer: opts.Observer,
		state:    StateIdle,
	}
}

// Active returns the currently active tab id ("" before the first activation).
func (r *Router) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// State returns the state of the latest activation.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Registry returns the tab registry.
func (r *Router) Registry() *Registry { return r.registry }

// Activate switches to tabID. The active marker and navigation state change
// before any content load starts. Remote fragments load in the background;
// use the returned Load to wait for the outcome.
func (r *Router) Activate(tabID string) (*Load, error) {
	desc, ok := r.registry.Get(tabID)
	if !ok {
		return nil, apperr.New(apperr.CodeUnknownTab, fmt.Sprintf("unknown tab %q", tabID), nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	seq := r.seq
	load := newLoad(seq, tabID)

	if r.cancelFetch != nil {
		r.cancelFetch()
		r.cancelFetch = nil
	}

	r.transitionLocked(seq, tabID, StateActivating, nil)
	if !r.page.SetActive(tabID) {
		slog.Debug("no navigation element for tab", "tab", tabID)
	}
	r.active = tabID

	if desc.Inline {
		r.page.RestoreSnapshot()
		rendered := r.runCallbackLocked(desc)
		r.transitionLocked(seq, tabID, StateInlineRendered, nil)
		load.finish(Outcome{Seq: seq, Tab: tabID, State: StateInlineRendered, Content: r.page.Content(), Charts: rendered})
		return load, nil
	}

	if r.fetcher == nil {
		err := apperr.New(apperr.CodeFetchTransport, "no fragment fetcher configured", nil)
		r.failLocked(load, err)
		return load, nil
	}

	if err := r.page.SetContent(LoadingMarkup); err != nil {
		slog.Debug("set loading placeholder failed", "tab", tabID, "error", err)
	}
	r.transitionLocked(seq, tabID, StateLoading, nil)

	ctx, cancel := context.WithCancel(context.Background())
	r.cancelFetch = cancel
	go r.fetch(ctx, cancel, desc, load)
	return load, nil
}

func (r *Router) fetch(ctx context.Context, cancel context.CancelFunc, desc TabDescriptor, load *Load) {
	defer cancel()
	body, err := r.fetcher.Fetch(ctx, desc.Fragment)

	r.mu.Lock()
	defer r.mu.Unlock()

	if load.Seq != r.seq {
		slog.Debug("discarding stale fragment", "tab", desc.ID, "seq", load.Seq, "latest", r.seq)
		r.notifyLocked(Event{Seq: load.Seq, Tab: desc.ID, State: StateStale})
		load.finish(Outcome{Seq: load.Seq, Tab: desc.ID, State: StateStale})
		return
	}
	r.cancelFetch = nil

	if err != nil {
		slog.Warn("fragment fetch failed", "tab", desc.ID, "fragment", desc.Fragment, "seq", load.Seq, "error", err)
		r.failLocked(load, err)
		return
	}

	markup := body
	if desc.Extract == ExtractMain {
		if inner, ok := dom.ExtractMain(body); ok {
			markup = inner
		} else {
			slog.Debug("fragment has no main landmark", "tab", desc.ID, "fragment", desc.Fragment)
			markup = MainFallback
		}
	}
	if err := r.page.SetContent(markup); err != nil {
		r.failLocked(load, apperr.New(apperr.CodeInternal, "inject fragment", err))
		return
	}

	rendered := r.runCallbackLocked(desc)
	r.transitionLocked(load.Seq, desc.ID, StateLoaded, nil)
	load.finish(Outcome{Seq: load.Seq, Tab: desc.ID, State: StateLoaded, Content: r.page.Content(), Charts: rendered})
}

// runCallbackLocked runs after the content commit: it disposes charts whose
// canvases were replaced and renders the tab's chart set.
func (r *Router) runCallbackLocked(desc TabDescriptor) []chart.Rendered {
	r.charts.Prune(r.page)
	if desc.Charts == chart.SetNone {
		return nil
	}
	return r.charts.Render(desc.Charts, r.page)
}

func (r *Router) failLocked(load *Load, err error) {
	reason := apperr.Reason(err)
	markup := `<div class="error-message">Error loading content: ` + html.EscapeString(reason) + `</div>`
	if setErr := r.page.SetContent(markup); setErr != nil {
		slog.Debug("set error message failed", "tab", load.Tab, "error", setErr)
	}
	r.charts.Prune(r.page)
	r.transitionLocked(load.Seq, load.Tab, StateFailed, err)
	load.finish(Outcome{Seq: load.Seq, Tab: load.Tab, State: StateFailed, Content: r.page.Content(), Error: reason, Err: err})
}

func (r *Router) transitionLocked(seq uint64, tab string, state State, err error) {
	r.state = state
	evt := Event{Seq: seq, Tab: tab, State: state}
	if err != nil {
		evt.Error = apperr.Reason(err)
	}
	r.notifyLocked(evt)
}

func (r *Router) notifyLocked(evt Event) {
	if r.observer != nil {
		r.observer(evt)
	}
}
