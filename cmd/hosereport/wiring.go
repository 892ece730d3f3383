package main

import (
	"context"

	"hosereport/internal/browser"
	"hosereport/internal/config"
	"hosereport/internal/logging"
	"hosereport/internal/metrics"
	"hosereport/internal/report"
	"hosereport/internal/store"
)

// newGenerator builds the generator for the configured engine. The
// returned cleanup shuts the browser down when one was started.
func newGenerator(cfg *config.Config, onPage func(page, total int)) (*report.Generator, func()) {
	opts := report.Options{
		PageSize:       cfg.Report.PageSize,
		SurfaceOptions: report.SurfaceOptions{WidthPx: report.PageWidthPx, Scale: cfg.Report.Scale},
		OnPage:         onPage,
	}
	cleanup := func() {}

	if cfg.Report.Engine == config.EngineChrome {
		r := browser.New(browser.Config{
			DebuggerURL:   cfg.Browser.DebuggerURL,
			Launch:        cfg.Browser.Launch,
			Headless:      cfg.Browser.Headless,
			RenderTimeout: cfg.GetRenderTimeout(),
		})
		opts.Surfaces = r
		cleanup = func() {
			if err := r.Shutdown(context.Background()); err != nil {
				logging.BrowserWarn("browser shutdown: %v", err)
			}
		}
	}
	return report.NewGenerator(opts), cleanup
}

// openHistory opens the export history, or returns nil when it is disabled
// or unavailable. History problems never block an export.
func openHistory(cfg *config.Config) *store.Store {
	if !cfg.IsHistoryEnabled() {
		return nil
	}
	st, err := store.NewStore(cfg.Store.DatabasePath)
	if err != nil {
		logging.StoreWarn("export history disabled: %v", err)
		return nil
	}
	return st
}

func newMetrics() *metrics.Metrics {
	m, err := metrics.New()
	if err != nil {
		logging.BootWarn("metrics disabled: %v", err)
		return nil
	}
	return m
}
