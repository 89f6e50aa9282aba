package serp

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/serptrack/models"
)

// Location candidates are scanned out of page chrome, so each source gets
// a stopword filter rejecting UI strings that happen to sit in the same
// elements ("Help", "Privacy", "Based on your activity", ...).
var (
	badgeStopRe  = regexp.MustCompile(`(?i)\b(help|privacy|terms|google|search|update|based|activity|feedback|send|try|without)\b`)
	footerStopRe = regexp.MustCompile(`(?i)\b(help|privacy|terms|google|search|update|based|activity|feedback|send|try|without|results|personalised)\b`)
)

// pageLocation reads the search location off the page: styled badge
// spans first, then footer spans, then the URL's "near" parameter.
// Defaults to "Desktop" when nothing matches.
func pageLocation(doc *goquery.Document, pageURL *url.URL) string {
	if loc := scanSpans(doc, `span[style*="background"]`, badgeStopRe); loc != "" {
		return loc
	}
	if loc := scanSpans(doc, `.fbar span, .f span`, footerStopRe); loc != "" {
		return loc
	}

	if pageURL != nil {
		if near := pageURL.Query().Get("near"); near != "" {
			if cleaned := cleanLocation(near); len(cleaned) > 2 {
				return cleaned
			}
		}
	}

	return models.DefaultLocation
}

func scanSpans(doc *goquery.Document, selector string, stop *regexp.Regexp) string {
	var found string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 2 && !stop.MatchString(text) {
			found = cleanLocation(text)
			return false
		}
		return true
	})
	return found
}

// cleanLocation strips commas (they would collide with the CSV delimiter
// downstream) and collapses whitespace.
func cleanLocation(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.Join(strings.Fields(s), " ")
}
