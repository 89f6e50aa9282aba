// Package classify assigns categories to extracted search results.
// All functions are pure: they take (query, url, title) strings and
// perform no I/O, so every classification is fully unit-testable.
package classify

import (
	"sort"
	"strings"

	"github.com/use-agent/serptrack/models"
)

// ownedSites identifies properties the operator controls. A URL containing
// any of these substrings ranks as "Our Site".
var ownedSites = []string{
	"dumpsacademy.com", "dumpsschool.com", "certificationgenie.com",
	"killerdumps.com", "study4exam.com", "pass4future.com",
	"certboosters.com", "justcerts.com", "testschamp.com",
	"premiumdumps.com", "getcertifyhere.com", "certs2pass.com",
	"certstime.com", "pass4success.com", "certsfire.com",
	"p2pexams.com", "prepbolt.com", "testinsights.com",
	"certsmarket.com", "examshome.com", "trendycerts.com",
}

var socialDomains = []string{
	"facebook.com", "twitter.com", "linkedin.com",
	"instagram.com", "youtube.com", "tiktok.com",
}

var vendorDomains = []string{
	"microsoft.com", "amazon.com", "google.com",
	"apple.com", "oracle.com", "cisco.com",
}

var referralDomains = []string{
	"quora.com", "reddit.com", "github.com",
	"stackoverflow.com", "answers.com",
}

// variationKeywords are the query-modifier phrases that separate the exam
// code from the search intent. Sorted length-descending in init so longer
// phrases always win over their substrings ("exam questions" before "exam").
var variationKeywords = []string{
	"sample questions",
	"exam questions",
	"practice test",
	"practice exam",
	"certification",
	"study guide",
	"exam dumps",
	"braindumps",
	"questions",
	"dumps",
	"exam",
	"test",
	"pdf",
	"vce",
}

func init() {
	sort.SliceStable(variationKeywords, func(i, j int) bool {
		return len(variationKeywords[i]) > len(variationKeywords[j])
	})
}

// ResultType categorizes a result by its destination: social platform,
// vendor property, forum-style referral, or a plain main site.
func ResultType(url, title string) string {
	if url == "" {
		return models.ResultTypeMain
	}

	urlLower := strings.ToLower(url)
	titleLower := strings.ToLower(title)

	if containsAny(urlLower, socialDomains) {
		return models.ResultTypeSocial
	}
	if containsAny(urlLower, vendorDomains) {
		return models.ResultTypeVendor
	}
	if containsAny(urlLower, referralDomains) ||
		strings.Contains(titleLower, "forum") ||
		strings.Contains(titleLower, "discussion") {
		return models.ResultTypeReferral
	}

	return models.ResultTypeMain
}

// Ownership reports whether a result URL belongs to an owned property.
// An empty URL is a competitor.
func Ownership(url string) string {
	if url == "" {
		return models.RankTypeCompetitor
	}
	if containsAny(strings.ToLower(url), ownedSites) {
		return models.RankTypeOurSite
	}
	return models.RankTypeCompetitor
}

// Variation returns the variation keyword found in the query, or the
// "Null" sentinel when none of the known keywords occur. The keyword
// reported here is exactly the one ExamCode removes.
func Variation(query string) string {
	if kw, ok := matchVariation(query); ok {
		return kw
	}
	return models.VariationNone
}

// ExamCode returns the query with the matched variation keyword removed
// and whitespace collapsed. A query with no variation keyword is returned
// whole (lower-cased and trimmed, as scanned).
func ExamCode(query string) string {
	q := normalizeQuery(query)
	kw, ok := matchVariation(query)
	if !ok {
		return q
	}
	return collapseSpaces(strings.Replace(q, kw, " ", 1))
}

// matchVariation scans the normalized query against the keyword list and
// returns the first (longest) keyword that occurs.
func matchVariation(query string) (string, bool) {
	q := normalizeQuery(query)
	if q == "" {
		return "", false
	}
	for _, kw := range variationKeywords {
		if strings.Contains(q, kw) {
			return kw, true
		}
	}
	return "", false
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
