package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/serptrack/models"
)

// Fetcher is the seam between pagination sessions and the browser: one
// method per way of obtaining a rendered result page. Sessions only ever
// see HTML, so tests can substitute a fake.
type Fetcher interface {
	// FetchSERP opens an off-screen surface on the query's result page
	// and returns its rendered HTML and final URL.
	FetchSERP(ctx context.Context, query string, pageNum int) (html, finalURL string, err error)

	// FetchTarget reads the rendered HTML of an already-open browser
	// target (tab) without navigating it.
	FetchTarget(ctx context.Context, targetID string) (html, finalURL string, err error)
}

// BuildSearchURL assembles the result-page URL for a query and page.
func (s *Scraper) BuildSearchURL(query string, pageNum int) string {
	u, err := url.Parse(s.searchCfg.BaseURL)
	if err != nil {
		u, _ = url.Parse("https://www.google.com/search")
	}

	q := u.Query()
	q.Set("q", query)
	if pageNum > 1 {
		q.Set("start", strconv.Itoa((pageNum-1)*s.searchCfg.ResultsPerPage))
	}
	if s.searchCfg.Language != "" {
		q.Set("hl", s.searchCfg.Language)
	}
	if s.searchCfg.Region != "" {
		q.Set("gl", s.searchCfg.Region)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchSERP performs one off-screen page fetch:
//
//  1. Tear down any previous surface unconditionally.
//  2. Create a hidden surface (incognito context when configured, with a
//     single retry in the default context on failure).
//  3. Inject stealth JS and mount the resource-blocking hijack before
//     navigation — neither takes effect for navigations that precede it.
//  4. Navigate, await load-complete bounded by the load timeout, then
//     wait the fixed settle delay for client-side DOM mutation.
//  5. Read the rendered HTML and tear the surface down.
//
// Any failure mid-sequence still tears down the partial surface before
// the error propagates.
func (s *Scraper) FetchSERP(ctx context.Context, query string, pageNum int) (string, string, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.closeSurface()

	slog.Debug("opening surface", "query", query, "page", pageNum)
	page, err := s.newSurface()
	if err != nil {
		return "", "", err
	}

	s.mu.Lock()
	s.surface = page
	s.mu.Unlock()
	defer s.closeSurface()

	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	if len(s.searchCfg.Language) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{
				"Accept-Language": gson.New(s.searchCfg.Language),
			},
		}.Call(page)
	}

	router := setupHijack(page, s.scraperCfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	ctx, cancel := context.WithTimeout(ctx, s.scraperCfg.LoadTimeout)
	defer cancel()
	p := page.Context(ctx)

	searchURL := s.BuildSearchURL(query, pageNum)
	if err := p.Navigate(searchURL); err != nil {
		return "", "", categorizeLoadError(err, "navigation to result page failed")
	}

	slog.Debug("awaiting load", "url", searchURL)
	if err := p.WaitLoad(); err != nil {
		return "", "", categorizeLoadError(err, "result page did not finish loading")
	}

	// Pages routinely finish network load before finishing DOM mutation;
	// the settle delay compensates.
	select {
	case <-time.After(s.scraperCfg.SettleDelay):
	case <-ctx.Done():
		return "", "", categorizeLoadError(ctx.Err(), "result page did not settle")
	}

	slog.Debug("extracting surface HTML")
	html, err := p.HTML()
	if err != nil {
		return "", "", models.NewScrapeError(
			models.ErrCodeMessaging,
			"failed to read rendered page",
			err,
		)
	}
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = searchURL
	}

	return html, finalURL, nil
}

// FetchTarget reads an already-open target without navigating it, waiting
// only for the DOM to stabilize.
func (s *Scraper) FetchTarget(ctx context.Context, targetID string) (string, string, error) {
	page, err := s.browser.PageFromTarget(proto.TargetTargetID(targetID))
	if err != nil {
		return "", "", models.NewScrapeError(
			models.ErrCodeMessaging,
			"target not found: "+targetID,
			err,
		)
	}

	ctx, cancel := context.WithTimeout(ctx, s.scraperCfg.LoadTimeout)
	defer cancel()
	p := page.Context(ctx)

	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", stableErr)
	}

	html, err := p.HTML()
	if err != nil {
		return "", "", models.NewScrapeError(
			models.ErrCodeMessaging,
			"failed to read target page",
			err,
		)
	}
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	return html, finalURL, nil
}

// newSurface creates the hidden browsing surface. When incognito is
// configured the surface is requested in an incognito context first; on
// failure the request is retried once in the default context rather than
// failing outright.
func (s *Scraper) newSurface() (*rod.Page, error) {
	target := proto.TargetCreateTarget{URL: "about:blank", Background: true}

	if s.browserCfg.Incognito {
		inc, err := s.incognitoContext()
		if err == nil {
			page, pageErr := inc.Page(target)
			if pageErr == nil {
				return page, nil
			}
			slog.Warn("incognito surface creation failed, retrying in default context", "error", pageErr)
		} else {
			slog.Warn("incognito context unavailable, retrying in default context", "error", err)
		}
	}

	page, err := s.browser.Page(target)
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeSurfaceCreation,
			"failed to create off-screen surface",
			err,
		)
	}
	return page, nil
}

func (s *Scraper) incognitoContext() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incognito != nil {
		return s.incognito, nil
	}
	inc, err := s.browser.Incognito()
	if err != nil {
		return nil, err
	}
	s.incognito = inc
	return inc, nil
}

// closeSurface tears down the current surface, if any. Best-effort: a
// surface that already died is fine.
func (s *Scraper) closeSurface() {
	s.mu.Lock()
	page := s.surface
	s.surface = nil
	s.mu.Unlock()

	if page == nil {
		return
	}
	slog.Debug("closing surface")
	if err := page.Close(); err != nil {
		slog.Debug("surface already closed", "error", err)
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string
// result, swallowing any errors (used for optional metadata).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeLoadError wraps raw errors into typed ScrapeErrors so the API
// layer can map them to appropriate HTTP status codes.
func categorizeLoadError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodePageLoadTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodePageLoadTimeout, "fetch canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeMessaging, msg, err)
	}
}
