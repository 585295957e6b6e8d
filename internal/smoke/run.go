package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/dgnsrekt/propdash/internal/browser"
	"github.com/dgnsrekt/propdash/internal/config"
)

const (
	pollInterval = 100 * time.Millisecond
	lingerDelay  = 300 * time.Millisecond
)

const settledJS = `(function () {
  return !!(window.propdash && !window.propdash.pending());
})();`

const tabsJS = `Array.from(document.querySelectorAll("[data-tab]")).map(function (el) { return el.dataset.tab; });`

const stateJS = `(function () {
  const content = document.getElementById("main-content");
  const err = content ? content.querySelector(".error-message") : null;
  return {
    active: Array.from(document.querySelectorAll("[data-tab].active")).map(function (el) { return el.dataset.tab; }),
    loading: !!(content && content.querySelector(".loading")),
    canvases: content ? content.querySelectorAll("canvas").length : 0,
    charts: window.propdash ? window.propdash.charts.size : 0,
    chartLib: typeof Chart !== "undefined",
    error: err ? err.textContent.trim() : ""
  };
})();`

func clickJS(tab string) string {
	quoted, _ := json.Marshal(`[data-tab="` + tab + `"]`)
	return fmt.Sprintf(`(function () {
  const el = document.querySelector(%s);
  if (!el) { return false; }
  el.click();
  return true;
})();`, quoted)
}

// Run walks the configured dashboard and returns the report.
func Run(ctx context.Context, cfg *config.SmokeConfig, logger *slog.Logger) (Report, error) {
	if cfg.Launch {
		launcher := browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			ExecPath:   cfg.ChromiumPath,
			Headless:   cfg.Headless,
		})
		if err := launcher.Launch(ctx); err != nil {
			return Report{}, fmt.Errorf("launch browser: %w", err)
		}
		defer launcher.Stop()
	}

	cdpURL := cfg.CDPURL()
	logger.Info("Smoke walk start", "cdp_url", cdpURL, "dashboard_url", cfg.DashboardURL)

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, cdpURL)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	if err := chromedp.Run(tabCtx); err != nil {
		return Report{}, fmt.Errorf("connect to browser: %w", err)
	}
	console := &consoleLog{}
	chromedp.ListenTarget(tabCtx, console.handle)

	loadCtx, loadCancel := context.WithTimeout(tabCtx, cfg.StepTimeout())
	defer loadCancel()
	if err := chromedp.Run(loadCtx, chromedp.Navigate(cfg.DashboardURL)); err != nil {
		return Report{}, fmt.Errorf("open dashboard: %w", err)
	}
	if err := waitSettled(loadCtx); err != nil {
		return Report{}, fmt.Errorf("initial load: %w", err)
	}

	tabs := cfg.Tabs
	if len(tabs) == 0 {
		if err := chromedp.Run(loadCtx, chromedp.Evaluate(tabsJS, &tabs)); err != nil {
			return Report{}, fmt.Errorf("discover tabs: %w", err)
		}
	}
	if len(tabs) == 0 {
		return Report{}, fmt.Errorf("no navigation tabs found at %s", cfg.DashboardURL)
	}
	logger.Info("Smoke tabs discovered", "count", len(tabs), "tabs", tabs)
	if initial := console.drain(); len(initial) > 0 {
		logger.Warn("Console errors during initial load", "entries", initial)
	}

	return walk(ctx, logger, cfg.DashboardURL, tabs, makeCDPRunner(tabCtx, cfg.StepTimeout(), console))
}

func makeCDPRunner(tabCtx context.Context, timeout time.Duration, console *consoleLog) stepRunner {
	return func(_ context.Context, tab string) (PageState, error) {
		stepCtx, cancel := context.WithTimeout(tabCtx, timeout)
		defer cancel()

		var clicked bool
		if err := chromedp.Run(stepCtx, chromedp.Evaluate(clickJS(tab), &clicked)); err != nil {
			return PageState{}, fmt.Errorf("click tab: %w", err)
		}
		if !clicked {
			return PageState{}, fmt.Errorf("nav item for %q not found", tab)
		}
		if err := waitSettled(stepCtx); err != nil {
			return PageState{}, fmt.Errorf("wait for content: %w", err)
		}

		var first, state PageState
		if err := chromedp.Run(stepCtx, chromedp.Evaluate(stateJS, &first)); err != nil {
			return PageState{}, fmt.Errorf("read page state: %w", err)
		}
		// Late navigation events must not replace settled content.
		if err := chromedp.Run(stepCtx, chromedp.Sleep(lingerDelay), chromedp.Evaluate(stateJS, &state)); err != nil {
			return PageState{}, fmt.Errorf("re-read page state: %w", err)
		}
		state.LateLoading = !first.Loading && state.Loading
		state.Console = console.drain()
		return state, nil
	}
}

func waitSettled(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		var settled bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(settledJS, &settled)); err != nil {
			return err
		}
		if settled {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
