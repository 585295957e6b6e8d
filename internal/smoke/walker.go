// Package smoke drives the dashboard in a real browser and checks that every
// navigation tab activates, settles, and draws its charts.
package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PageState is what the walker observes in the page after a tab settles.
type PageState struct {
	Active   []string `json:"active"`
	Loading  bool     `json:"loading"`
	Canvases int      `json:"canvases"`
	Charts   int      `json:"charts"`
	ChartLib bool     `json:"chartLib"`
	Error    string   `json:"error"`
	// Console holds browser console errors logged during the step.
	Console []string `json:"console,omitempty"`
	// LateLoading is set when settled content was swapped back to the
	// loading placeholder shortly afterwards.
	LateLoading bool `json:"late_loading,omitempty"`
}

// TabCheck is the result of clicking one tab.
type TabCheck struct {
	Tab        string    `json:"tab"`
	State      PageState `json:"state"`
	DurationMS int64     `json:"duration_ms"`
	Problems   []string  `json:"problems,omitempty"`
}

// OK reports whether the tab passed every check.
func (c TabCheck) OK() bool { return len(c.Problems) == 0 }

// Report summarizes one walk over the dashboard.
type Report struct {
	DashboardURL string     `json:"dashboard_url"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      time.Time  `json:"ended_at"`
	Tabs         []TabCheck `json:"tabs"`
	Passed       int        `json:"passed"`
	Failed       int        `json:"failed"`
}

// stepRunner clicks a tab and returns the settled page state.
type stepRunner func(ctx context.Context, tab string) (PageState, error)

func check(tab string, state PageState) []string {
	var problems []string
	if state.LateLoading {
		problems = append(problems, "settled content replaced by loading placeholder")
	} else if state.Loading {
		problems = append(problems, "content still loading")
	}
	if len(state.Active) != 1 || state.Active[0] != tab {
		problems = append(problems, fmt.Sprintf("active nav items = %v; want [%s]", state.Active, tab))
	}
	if state.Error != "" {
		problems = append(problems, "error shown: "+state.Error)
	}
	if state.ChartLib && state.Charts != state.Canvases {
		problems = append(problems, fmt.Sprintf("charts = %d; want one per canvas (%d)", state.Charts, state.Canvases))
	}
	for _, entry := range state.Console {
		problems = append(problems, entry)
	}
	return problems
}

// walk clicks every tab in order and checks the page after each one.
func walk(ctx context.Context, logger *slog.Logger, dashboardURL string, tabs []string, runner stepRunner) (Report, error) {
	report := Report{DashboardURL: dashboardURL, StartedAt: time.Now().UTC()}
	for _, tab := range tabs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := time.Now()
		state, err := runner(ctx, tab)
		tc := TabCheck{Tab: tab, State: state, DurationMS: time.Since(start).Milliseconds()}
		if err != nil {
			tc.Problems = []string{err.Error()}
		} else {
			tc.Problems = check(tab, state)
		}
		report.Tabs = append(report.Tabs, tc)

		if tc.OK() {
			report.Passed++
			logger.Info("Smoke tab passed", "tab", tab, "canvases", state.Canvases, "charts", state.Charts, "duration_ms", tc.DurationMS)
			continue
		}
		report.Failed++
		logger.Warn("Smoke tab failed", "tab", tab, "problems", tc.Problems)
	}
	report.EndedAt = time.Now().UTC()
	return report, nil
}

// WriteReport stores the report as indented JSON, creating parent dirs.
func WriteReport(path string, report Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
