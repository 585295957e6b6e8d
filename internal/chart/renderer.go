package chart

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Set names a group of charts rendered together after a tab loads.
type Set string

const (
	SetNone      Set = ""
	SetDashboard Set = "dashboard"
	SetReports   Set = "reports"
	SetUtilities Set = "utilities"
)

// ParseSet validates a chart set name.
func ParseSet(name string) (Set, error) {
	switch s := Set(name); s {
	case SetNone, SetDashboard, SetReports, SetUtilities:
		return s, nil
	default:
		return SetNone, fmt.Errorf("unknown chart set %q", name)
	}
}

// Specs returns the chart definitions of a set.
func (s Set) Specs() []Spec {
	switch s {
	case SetDashboard:
		return DashboardSpecs()
	case SetReports:
		return ReportsSpecs()
	case SetUtilities:
		return UtilitiesSpecs()
	default:
		return nil
	}
}

// Surface locates rendering targets in the currently loaded content.
type Surface interface {
	HasCanvas(id string) bool
}

// Handle is a live chart instance owned by the charting library.
type Handle interface {
	Destroy()
}

// Library is the charting capability. New binds a configuration to a target.
type Library interface {
	New(target string, cfg Config) (Handle, error)
}

// Rendered describes one chart constructed by a render call.
type Rendered struct {
	Target string `json:"target"`
	Config Config `json:"config"`
}

// Renderer constructs charts for targets present on a surface and keeps one
// live handle per target.
type Renderer struct {
	lib Library

	mu   sync.Mutex
	live map[string]Handle
}

func NewRenderer(lib Library) *Renderer {
	return &Renderer{lib: lib, live: make(map[string]Handle)}
}

// RenderDashboard renders revenue, occupancy and utility charts.
func (r *Renderer) RenderDashboard(s Surface) []Rendered {
	return r.render(s, DashboardSpecs())
}

// RenderReports renders revenue, occupancy trend and payment status charts.
func (r *Renderer) RenderReports(s Surface) []Rendered {
	return r.render(s, ReportsSpecs())
}

// RenderUtilities renders the water usage chart.
func (r *Renderer) RenderUtilities(s Surface) []Rendered {
	return r.render(s, UtilitiesSpecs())
}

// Render renders a named set. SetNone renders nothing.
func (r *Renderer) Render(set Set, s Surface) []Rendered {
	switch set {
	case SetDashboard:
		return r.RenderDashboard(s)
	case SetReports:
		return r.RenderReports(s)
	case SetUtilities:
		return r.RenderUtilities(s)
	default:
		return nil
	}
}

func (r *Renderer) render(s Surface, specs []Spec) []Rendered {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Rendered, 0, len(specs))
	for _, spec := range specs {
		if !s.HasCanvas(spec.Target) {
			slog.Debug("chart target absent, skipping", "target", spec.Target)
			continue
		}
		if prev, ok := r.live[spec.Target]; ok {
			prev.Destroy()
			delete(r.live, spec.Target)
		}
		cfg := spec.Config()
		h, err := r.lib.New(spec.Target, cfg)
		if err != nil {
			slog.Warn("chart construction failed", "target", spec.Target, "error", err)
			continue
		}
		r.live[spec.Target] = h
		out = append(out, Rendered{Target: spec.Target, Config: cfg})
	}
	return out
}

// Prune destroys live charts whose targets are no longer on the surface.
func (r *Renderer) Prune(s Surface) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for target, h := range r.live {
		if s.HasCanvas(target) {
			continue
		}
		h.Destroy()
		delete(r.live, target)
		n++
	}
	return n
}

// Live lists targets with a live chart, sorted.
func (r *Renderer) Live() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.live))
	for target := range r.live {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}
