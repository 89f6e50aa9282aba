package serp

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Suggestion heuristics: bounds on what a related-search phrase looks
// like, and markers that identify timestamps, source names and other
// non-suggestion text found in the same containers.
const (
	suggestionMinChars = 10
	suggestionMaxChars = 60
	suggestionMinWords = 2
	suggestionMaxWords = 8
	maxSuggestions     = 8
)

var suggestionMarkers = []string{
	"|", "·", "YouTube", "Quora", "ago", "answers",
	"Part-", "EP", "Master", "http", "...",
}

var suggestionDateRe = regexp.MustCompile(`\d{2}-\w{3}-\d{4}`)

var queryStopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "for": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "of": {}, "with": {}, "by": {},
}

var nonWordRe = regexp.MustCompile(`[^\w\d]`)

// RelatedSearches extracts "related searches" suggestions for the query:
// scan the known suggestion containers, keep candidates that look like
// search phrases and share a significant term with the query, dedupe, cap
// at 8 and join. Extracted once on page 1 and cached for later pages.
func (e *Extractor) RelatedSearches(doc *goquery.Document, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ""
	}

	terms := keyTerms(q)
	if len(terms) == 0 {
		return ""
	}

	seen := make(map[string]struct{})
	var suggestions []string

	for _, m := range e.suggestions {
		doc.FindMatcher(m.sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if !isSuggestion(text) || !relatedToQuery(text, terms) {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}
			seen[text] = struct{}{}
			suggestions = append(suggestions, text)
		})
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return strings.Join(suggestions, ", ")
}

// keyTerms returns the query's significant terms: tokens longer than two
// characters, stopwords removed, stripped to word characters.
func keyTerms(query string) []string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := queryStopwords[tok]; stop {
			continue
		}
		if cleaned := nonWordRe.ReplaceAllString(tok, ""); cleaned != "" {
			terms = append(terms, cleaned)
		}
	}
	return terms
}

func isSuggestion(text string) bool {
	if text == "" {
		return false
	}
	words := strings.Fields(text)
	if len(words) < suggestionMinWords || len(words) > suggestionMaxWords {
		return false
	}
	if len(text) < suggestionMinChars || len(text) > suggestionMaxChars {
		return false
	}
	for _, marker := range suggestionMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	return !suggestionDateRe.MatchString(text)
}

func relatedToQuery(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
