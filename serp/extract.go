package serp

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/serptrack/models"
)

// maxResultsPerPage caps how many containers are read off a single page.
const maxResultsPerPage = 10

// Request is the extraction request sent across the scraper boundary for
// one page. The response is the raw result slice; extraction never panics
// across this boundary and per-container failures degrade to fewer results.
type Request struct {
	// PageNum is the 1-based result page number.
	PageNum int

	// Query is the search query the page was fetched for.
	Query string

	// PageURL is the final URL of the fetched page; its "start" and
	// "near" parameters refine rank numbering and location. May be nil.
	PageURL *url.URL

	// Keywords is the related-search keyword string stamped onto every
	// result of this page (extracted on page 1, cached for later pages).
	Keywords string
}

// matcher pairs a compiled selector with its source string for logging.
type matcher struct {
	src string
	sel cascadia.Selector
}

// Extractor locates and extracts organic results using configured
// selector strategies. Safe for concurrent use once constructed.
type Extractor struct {
	results     []matcher
	links       []matcher
	titles      []matcher
	snippets    []matcher
	suggestions []matcher
}

// NewExtractor compiles the selector lists. Selectors that fail to
// compile are skipped with a warning rather than rejected, so a partially
// broken override file still extracts.
func NewExtractor(sel Selectors) *Extractor {
	return &Extractor{
		results:     compileAll(sel.Results),
		links:       compileAll(sel.Links),
		titles:      compileAll(sel.Titles),
		snippets:    compileAll(sel.Snippets),
		suggestions: compileAll(sel.Suggestions),
	}
}

func compileAll(srcs []string) []matcher {
	out := make([]matcher, 0, len(srcs))
	for _, src := range srcs {
		sel, err := cascadia.Compile(src)
		if err != nil {
			slog.Warn("skipping invalid selector", "selector", src, "error", err)
			continue
		}
		out = append(out, matcher{src: src, sel: sel})
	}
	return out
}

// Extract scrapes up to 10 organic results from the document, in DOM
// order. A page with no valid containers yields an empty slice, which
// signals "no more pages" to the caller rather than an error.
func (e *Extractor) Extract(doc *goquery.Document, req Request) []models.RawResult {
	containers := e.findResults(doc)
	if len(containers) == 0 {
		return nil
	}

	startRank := startRankForPage(req.PageURL, req.PageNum)
	location := pageLocation(doc, req.PageURL)

	limit := len(containers)
	if limit > maxResultsPerPage {
		limit = maxResultsPerPage
	}

	results := make([]models.RawResult, 0, limit)
	for i := 0; i < limit; i++ {
		raw := e.extractOne(containers[i], startRank+i, req, location)
		if isValidRaw(raw) {
			results = append(results, raw)
		}
	}
	return results
}

// findResults tries each result strategy in order and returns the matches
// of the first strategy that yields at least one valid container.
func (e *Extractor) findResults(doc *goquery.Document) []*goquery.Selection {
	for _, m := range e.results {
		matched := doc.FindMatcher(m.sel)
		if matched.Length() == 0 {
			continue
		}

		var valid []*goquery.Selection
		matched.Each(func(_ int, s *goquery.Selection) {
			if !isUnwanted(s) && hasValidContent(s) {
				valid = append(valid, s)
			}
		})

		if len(valid) > 0 {
			slog.Debug("result strategy selected",
				"selector", m.src, "matched", matched.Length(), "valid", len(valid))
			return valid
		}
	}
	return nil
}

// extractOne reads one container's fields. Missing fields come back
// empty; the final validity check decides whether the record survives.
func (e *Extractor) extractOne(s *goquery.Selection, rank int, req Request, location string) models.RawResult {
	return models.RawResult{
		Rank:        rank,
		URL:         e.extractLink(s, req.PageURL),
		Title:       e.firstText(s, e.titles),
		Snippet:     e.firstText(s, e.snippets),
		Keywords:    req.Keywords,
		Query:       req.Query,
		Location:    location,
		ExtractedAt: time.Now().UTC(),
	}
}

// extractLink finds the first matching hyperlink and unwraps the search
// engine's internal "/url?" redirect back to the real destination.
func (e *Extractor) extractLink(s *goquery.Selection, pageURL *url.URL) string {
	var href string
	for _, m := range e.links {
		if h, ok := s.FindMatcher(m.sel).First().Attr("href"); ok && h != "" {
			href = h
			break
		}
	}
	if href == "" {
		return ""
	}

	// Relative "/url?..." links resolve against the page they sit on.
	if strings.HasPrefix(href, "/") && pageURL != nil {
		if resolved, err := pageURL.Parse(href); err == nil {
			href = resolved.String()
		}
	}

	if strings.Contains(href, "/url?") {
		if u, err := url.Parse(href); err == nil {
			q := u.Query()
			if dest := q.Get("url"); dest != "" {
				return dest
			}
			if dest := q.Get("q"); dest != "" {
				return dest
			}
		}
	}
	return href
}

func (e *Extractor) firstText(s *goquery.Selection, ms []matcher) string {
	for _, m := range ms {
		if text := strings.TrimSpace(s.FindMatcher(m.sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// unwantedMarkers flag non-organic blocks (verticals, PAA, related
// searches) by their visible text.
var unwantedMarkers = []string{
	"People also ask",
	"Related searches",
	"Videos",
	"Images",
	"Shopping",
	"Maps",
	"News",
}

// isUnwanted rejects ads, "people also ask" blocks, related-search blocks
// and other known non-organic container types.
func isUnwanted(s *goquery.Selection) bool {
	if s.Find(".related-question-pair, [data-text-ad], .commercial-unit-desktop-top").Length() > 0 {
		return true
	}
	for _, cls := range []string{"g-blk", "mnr-c", "ULSxyf"} {
		if s.HasClass(cls) {
			return true
		}
	}
	for _, anc := range []string{".ULSxyf", ".g-blk", ".mnr-c", ".cu-container"} {
		if s.Closest(anc).Length() > 0 {
			return true
		}
	}
	text := s.Text()
	for _, marker := range unwantedMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// hasValidContent requires both a qualifying hyperlink and a heading-like
// element before a container counts as an organic result.
func hasValidContent(s *goquery.Selection) bool {
	hasLink := s.Find(`a[href*="http"], a[href^="/url?"]`).Length() > 0
	hasTitle := s.Find(`h3, .LC20lb, [role="heading"]`).Length() > 0
	return hasLink && hasTitle
}

// isValidRaw is the final gate: the URL must look like an absolute
// HTTP(S) URL and the title must be non-empty.
func isValidRaw(r models.RawResult) bool {
	return r.URL != "" && r.Title != "" && strings.Contains(r.URL, "http")
}

// startRankForPage derives the first rank number on a page from the URL's
// "start" parameter when present, else from the page number.
func startRankForPage(pageURL *url.URL, pageNum int) int {
	if pageURL != nil {
		if start := pageURL.Query().Get("start"); start != "" {
			if n, err := strconv.Atoi(start); err == nil {
				return n + 1
			}
		}
	}
	return (pageNum-1)*maxResultsPerPage + 1
}
