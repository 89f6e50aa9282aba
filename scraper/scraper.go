// Package scraper drives the headless browser: it owns the off-screen
// surface used to fetch result pages and the pagination sessions that
// walk them.
package scraper

import (
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/use-agent/serptrack/config"
	"github.com/use-agent/serptrack/models"
)

// Scraper manages the global browser lifecycle and the single off-screen
// surface. At most one surface is alive at a time; starting a new fetch
// tears down any previous surface unconditionally.
type Scraper struct {
	browser    *rod.Browser
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	searchCfg  config.SearchConfig

	// fetchMu serializes surface usage: the off-screen surface handle is
	// exclusively owned, so fetches never overlap.
	fetchMu sync.Mutex

	mu        sync.Mutex
	incognito *rod.Browser // lazily created incognito context
	surface   *rod.Page    // current off-screen surface, nil when idle
}

// NewScraper launches a headless browser and connects to it.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, searchCfg config.SearchConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeSurfaceCreation,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeSurfaceCreation,
			"failed to connect to browser",
			err,
		)
	}

	return &Scraper{
		browser:    browser,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		searchCfg:  searchCfg,
	}, nil
}

// Connected reports whether the browser connection is still usable.
func (s *Scraper) Connected() bool {
	return s.browser != nil
}

// SurfaceActive reports whether an off-screen surface is currently open.
func (s *Scraper) SurfaceActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface != nil
}

// Close tears down any live surface and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: closing surface")
	s.closeSurface()
	slog.Info("scraper shutting down: closing browser")
	s.browser.MustClose()
	slog.Info("scraper shutdown complete")
}
