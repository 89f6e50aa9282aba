package serp

import (
	"strings"
	"testing"
)

func suggestionSpan(text string) string {
	return `<div class="qR29te">` + text + `</div>`
}

func TestRelatedSearches_FiltersAndJoins(t *testing.T) {
	html := `<html><body>` +
		suggestionSpan("azure fundamentals practice test") +
		suggestionSpan("azure az-900 study guide") +
		suggestionSpan("3 days ago") + // time reference
		suggestionSpan("azure tutorial on YouTube") + // source marker
		suggestionSpan("az-900") + // too short
		suggestionSpan("something about certification entirely unrelated topic") + // no query term
		`</body></html>`

	e := NewExtractor(DefaultSelectors())
	got := e.RelatedSearches(mustDoc(t, html), "azure fundamentals az-900")

	want := "azure fundamentals practice test, azure az-900 study guide"
	if got != want {
		t.Errorf("RelatedSearches = %q, want %q", got, want)
	}
}

func TestRelatedSearches_Deduplicates(t *testing.T) {
	html := `<html><body>` +
		suggestionSpan("azure fundamentals practice test") +
		suggestionSpan("azure fundamentals practice test") +
		`</body></html>`

	e := NewExtractor(DefaultSelectors())
	got := e.RelatedSearches(mustDoc(t, html), "azure fundamentals")

	if got != "azure fundamentals practice test" {
		t.Errorf("duplicates not removed: %q", got)
	}
}

func TestRelatedSearches_CapsAtEight(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	phrases := []string{
		"azure exam one prep", "azure exam two prep", "azure exam three prep",
		"azure exam four prep", "azure exam five prep", "azure exam six prep",
		"azure exam seven prep", "azure exam eight prep", "azure exam nine prep",
		"azure exam ten prep",
	}
	for _, p := range phrases {
		sb.WriteString(suggestionSpan(p))
	}
	sb.WriteString("</body></html>")

	e := NewExtractor(DefaultSelectors())
	got := e.RelatedSearches(mustDoc(t, sb.String()), "azure exam")

	if n := len(strings.Split(got, ", ")); n != 8 {
		t.Errorf("expected 8 suggestions, got %d: %q", n, got)
	}
}

func TestRelatedSearches_EmptyQuery(t *testing.T) {
	e := NewExtractor(DefaultSelectors())
	if got := e.RelatedSearches(mustDoc(t, suggestionSpan("azure practice test")), "   "); got != "" {
		t.Errorf("expected empty result for blank query, got %q", got)
	}
}

func TestRelatedSearches_StopwordOnlyQuery(t *testing.T) {
	e := NewExtractor(DefaultSelectors())
	if got := e.RelatedSearches(mustDoc(t, suggestionSpan("the and for suggestions")), "the and of"); got != "" {
		t.Errorf("expected empty result when query has no significant terms, got %q", got)
	}
}

func TestIsSuggestion_Bounds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"valid phrase", "azure fundamentals practice test", true},
		{"one word", "azure", false},
		{"too short", "az 900", false},
		{"too long", strings.Repeat("word ", 13), false},
		{"pipe marker", "azure | fundamentals guide", false},
		{"url marker", "see https://example.com for more", false},
		{"ellipsis", "azure fundamentals exam guide...", false},
		{"date stamp", "azure notes 12-Jan-2025 update", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSuggestion(tt.text); got != tt.want {
				t.Errorf("isSuggestion(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPageLocation_BadgeSpan(t *testing.T) {
	html := `<html><body>
		<span style="background-color:#eee">Chicago Illinois</span>
	</body></html>`

	if got := pageLocation(mustDoc(t, html), nil); got != "Chicago Illinois" {
		t.Errorf("pageLocation = %q, want %q", got, "Chicago Illinois")
	}
}

func TestPageLocation_SkipsUIStrings(t *testing.T) {
	html := `<html><body>
		<span style="background:#fff">Based on your activity</span>
		<div class="fbar"><span>Privacy</span><span>Boston</span></div>
	</body></html>`

	if got := pageLocation(mustDoc(t, html), nil); got != "Boston" {
		t.Errorf("pageLocation = %q, want %q", got, "Boston")
	}
}

func TestPageLocation_NearParameter(t *testing.T) {
	pageURL := mustURL(t, "https://www.google.com/search?q=x&near=San+Jose,CA")

	if got := pageLocation(mustDoc(t, "<html><body></body></html>"), pageURL); got != "San JoseCA" {
		t.Errorf("pageLocation = %q, want %q", got, "San JoseCA")
	}
}

func TestPageLocation_Default(t *testing.T) {
	if got := pageLocation(mustDoc(t, "<html><body></body></html>"), nil); got != "Desktop" {
		t.Errorf("pageLocation = %q, want Desktop", got)
	}
}
