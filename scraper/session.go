package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/serptrack/models"
	"github.com/use-agent/serptrack/serp"
)

// ResultStore is the slice of the persistence layer a session needs:
// appending processed batches and the per-query keyword cache.
type ResultStore interface {
	Append(ctx context.Context, batch []models.RawResult, query string) ([]models.Result, error)
	Keywords(ctx context.Context, query string) (string, error)
	SetKeywords(ctx context.Context, query, keywords string) error
}

// Session runs page extractions against a Fetcher and feeds the results
// into the store. One session serves all API requests; the underlying
// fetcher already serializes surface usage.
type Session struct {
	fetcher   Fetcher
	store     ResultStore
	extractor *serp.Extractor

	aborted atomic.Bool
}

// NewSession wires a fetcher, store and extractor into a session.
func NewSession(fetcher Fetcher, store ResultStore, extractor *serp.Extractor) *Session {
	return &Session{fetcher: fetcher, store: store, extractor: extractor}
}

// ExtractPage fetches and processes a single result page. When targetID
// is non-empty the page is read from that already-open browser target
// instead of an off-screen fetch.
func (s *Session) ExtractPage(ctx context.Context, query string, pageNum int, targetID string) ([]models.Result, error) {
	var (
		html     string
		finalURL string
		err      error
	)
	if targetID != "" {
		html, finalURL, err = s.fetcher.FetchTarget(ctx, targetID)
	} else {
		html, finalURL, err = s.fetcher.FetchSERP(ctx, query, pageNum)
	}
	if err != nil {
		return nil, err
	}
	return s.processPage(ctx, html, finalURL, query, pageNum)
}

// ExtractOffScreen fetches and processes one result page on the
// off-screen surface.
func (s *Session) ExtractOffScreen(ctx context.Context, query string, pageNum int) ([]models.Result, error) {
	return s.ExtractPage(ctx, query, pageNum, "")
}

// AutoExtract walks result pages starting from page 1 until the
// accumulated batch reaches targetCount, a page yields nothing, the
// session is aborted, or a fetch fails. A final page that overshoots the
// target is kept whole. On fetch failure the results accumulated so far
// are returned alongside the error.
func (s *Session) AutoExtract(ctx context.Context, query string, targetCount int) ([]models.Result, error) {
	s.aborted.Store(false)

	var accumulated []models.Result
	for pageNum := 1; len(accumulated) < targetCount; pageNum++ {
		if s.aborted.Load() {
			slog.Info("auto extraction aborted", "query", query, "collected", len(accumulated))
			return accumulated, nil
		}
		if err := ctx.Err(); err != nil {
			return accumulated, categorizeLoadError(err, "auto extraction canceled")
		}

		batch, err := s.ExtractOffScreen(ctx, query, pageNum)
		if err != nil {
			return accumulated, err
		}
		if len(batch) == 0 {
			slog.Info("auto extraction exhausted results",
				"query", query, "page", pageNum, "collected", len(accumulated))
			return accumulated, nil
		}

		accumulated = append(accumulated, batch...)
		slog.Debug("auto extraction page done",
			"query", query, "page", pageNum, "batch", len(batch), "collected", len(accumulated))
	}
	return accumulated, nil
}

// Abort requests that a running auto extraction stop after the page it
// is currently on. Safe to call from any goroutine.
func (s *Session) Abort() {
	s.aborted.Store(true)
}

// processPage parses fetched HTML, resolves the keyword string for the
// page (extracted fresh on page 1, read from the cache afterwards),
// extracts raw results and appends them to the store.
func (s *Session) processPage(ctx context.Context, html, finalURL, query string, pageNum int) ([]models.Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to parse result page", err)
	}

	var pageURL *url.URL
	if finalURL != "" {
		if u, parseErr := url.Parse(finalURL); parseErr == nil {
			pageURL = u
		}
	}

	var keywords string
	if pageNum == 1 {
		keywords = s.extractor.RelatedSearches(doc, query)
		if err := s.store.SetKeywords(ctx, query, keywords); err != nil {
			slog.Warn("failed to cache related keywords", "query", query, "error", err)
		}
	} else {
		keywords, err = s.store.Keywords(ctx, query)
		if err != nil {
			slog.Warn("failed to read cached keywords", "query", query, "error", err)
			keywords = ""
		}
	}

	raw := s.extractor.Extract(doc, serp.Request{
		PageNum:  pageNum,
		Query:    query,
		PageURL:  pageURL,
		Keywords: keywords,
	})
	if len(raw) == 0 {
		return nil, nil
	}

	return s.store.Append(ctx, raw, query)
}
