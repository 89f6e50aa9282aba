package serp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture HTML: %v", err)
	}
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse URL %q: %v", raw, err)
	}
	return u
}

func organicBlock(href, title, snippet string) string {
	return `<div class="g">
		<div class="yuRUbf"><a href="` + href + `"><h3>` + title + `</h3></a></div>
		<div class="VwiC3b">` + snippet + `</div>
	</div>`
}

func TestExtract_BasicPage(t *testing.T) {
	html := `<html><body><div id="search">` +
		organicBlock("https://study4exam.com/az-900", "AZ-900 Practice Questions", "Free practice questions with detailed explanations.") +
		organicBlock("https://examtopics.net/az-900", "AZ-900 Braindumps", "Updated braindumps collection.") +
		`</div></body></html>`

	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, html), Request{PageNum: 1, Query: "az-900 dumps"})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Errorf("expected ranks 1,2 got %d,%d", results[0].Rank, results[1].Rank)
	}
	if results[0].URL != "https://study4exam.com/az-900" {
		t.Errorf("unexpected URL: %q", results[0].URL)
	}
	if results[0].Title != "AZ-900 Practice Questions" {
		t.Errorf("unexpected title: %q", results[0].Title)
	}
	if results[1].Snippet != "Updated braindumps collection." {
		t.Errorf("unexpected snippet: %q", results[1].Snippet)
	}
	if results[0].Location != "Desktop" {
		t.Errorf("expected default location Desktop, got %q", results[0].Location)
	}
	if results[0].Query != "az-900 dumps" {
		t.Errorf("query not carried through: %q", results[0].Query)
	}
}

func TestExtract_StrategyFallback(t *testing.T) {
	// No div.g or .MjjYud on the page: the .tF2Cxc strategy must win.
	html := `<html><body>
		<div class="tF2Cxc">
			<a href="https://justcerts.com/sy0-601"><h3>SY0-601 Exam Prep</h3></a>
			<div class="VwiC3b">Security certification preparation.</div>
		</div>
	</body></html>`

	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, html), Request{PageNum: 1, Query: "sy0-601"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result via fallback strategy, got %d", len(results))
	}
	if results[0].URL != "https://justcerts.com/sy0-601" {
		t.Errorf("unexpected URL: %q", results[0].URL)
	}
}

func TestExtract_RejectsAdsAndNonOrganicBlocks(t *testing.T) {
	html := `<html><body>
		<div class="g"><div data-text-ad="1"><a href="https://ads.example.com"><h3>Sponsored Prep</h3></a></div></div>
		<div class="g g-blk"><a href="https://blk.example.com"><h3>Block Unit</h3></a></div>
		<div class="g"><a href="https://paa.example.com"><h3>People also ask</h3></a></div>` +
		organicBlock("https://study4exam.com/real", "Real Organic Result", "The only keeper.") +
		`</body></html>`

	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, html), Request{PageNum: 1, Query: "exam"})

	if len(results) != 1 {
		t.Fatalf("expected only the organic result, got %d", len(results))
	}
	if results[0].Title != "Real Organic Result" {
		t.Errorf("kept the wrong container: %q", results[0].Title)
	}
}

func TestExtract_UnwrapsRedirectLinks(t *testing.T) {
	html := `<html><body>
		<div class="g">
			<a href="/url?q=https://certsfire.com/pl-300&sa=U&ved=abc"><h3>PL-300 Guide</h3></a>
			<div class="VwiC3b">Guide content.</div>
		</div>
	</body></html>`

	e := NewExtractor(DefaultSelectors())
	pageURL := mustURL(t, "https://www.google.com/search?q=pl-300")
	results := e.Extract(mustDoc(t, html), Request{PageNum: 1, Query: "pl-300", PageURL: pageURL})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].URL != "https://certsfire.com/pl-300" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
}

func TestExtract_StartRankFromURLParameter(t *testing.T) {
	html := `<html><body>` +
		organicBlock("https://a.example.com/1", "Result One", "s") +
		organicBlock("https://b.example.com/2", "Result Two", "s") +
		`</body></html>`

	e := NewExtractor(DefaultSelectors())
	pageURL := mustURL(t, "https://www.google.com/search?q=x&start=20")
	results := e.Extract(mustDoc(t, html), Request{PageNum: 3, Query: "x", PageURL: pageURL})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Rank != 21 || results[1].Rank != 22 {
		t.Errorf("expected ranks 21,22 got %d,%d", results[0].Rank, results[1].Rank)
	}
}

func TestExtract_StartRankFromPageNumber(t *testing.T) {
	html := `<html><body>` + organicBlock("https://a.example.com", "Only Result", "s") + `</body></html>`

	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, html), Request{PageNum: 4, Query: "x"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Rank != 31 {
		t.Errorf("expected rank 31 on page 4, got %d", results[0].Rank)
	}
}

func TestExtract_DropsTitlelessRecords(t *testing.T) {
	// The container passes the structural filter (h3 present) but the
	// heading is empty, so the final validity gate must drop it.
	html := `<html><body>
		<div class="g">
			<a href="https://empty.example.com"><h3>   </h3></a>
		</div>
	</body></html>`

	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, html), Request{PageNum: 1, Query: "x"})

	if len(results) != 0 {
		t.Fatalf("expected titleless record to be dropped, got %d results", len(results))
	}
}

func TestExtract_EmptyPageYieldsNoResults(t *testing.T) {
	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, `<html><body><p>nothing here</p></body></html>`), Request{PageNum: 1, Query: "x"})

	if len(results) != 0 {
		t.Fatalf("expected no results on an empty page, got %d", len(results))
	}
}

func TestExtract_CapsAtTenResults(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<html><body>`)
	for i := 0; i < 13; i++ {
		sb.WriteString(organicBlock("https://example.com/"+string(rune('a'+i)), "Result Item", "snippet"))
	}
	sb.WriteString(`</body></html>`)

	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, sb.String()), Request{PageNum: 1, Query: "x"})

	if len(results) != 10 {
		t.Fatalf("expected extraction capped at 10, got %d", len(results))
	}
	if results[9].Rank != 10 {
		t.Errorf("expected last rank 10, got %d", results[9].Rank)
	}
}

func TestExtract_KeywordsStampedOnEveryResult(t *testing.T) {
	html := `<html><body>` +
		organicBlock("https://a.example.com", "First Result", "s") +
		organicBlock("https://b.example.com", "Second Result", "s") +
		`</body></html>`

	e := NewExtractor(DefaultSelectors())
	results := e.Extract(mustDoc(t, html), Request{PageNum: 2, Query: "x", Keywords: "cached keyword set"})

	for i, r := range results {
		if r.Keywords != "cached keyword set" {
			t.Errorf("result %d missing keywords: %q", i, r.Keywords)
		}
	}
}

func TestLoadSelectors_MissingFileKeepsDefaults(t *testing.T) {
	sel, err := LoadSelectors("/nonexistent/selectors.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if len(sel.Results) == 0 {
		t.Error("defaults should survive a failed load")
	}
}
