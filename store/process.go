package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/serptrack/classify"
	"github.com/use-agent/serptrack/models"
)

const timeLayout = time.RFC3339

// dateLayout renders "29 Aug 2026" style dates for the export.
const dateLayout = "02 Jan 2006"

var urlTailRe = regexp.MustCompile(`[?#].*$`)

// buildResult turns one raw scrape record into an immutable processed
// record with the given continuous rank.
func buildResult(raw models.RawResult, query string, rank int) models.Result {
	now := time.Now()

	location := raw.Location
	if location == "" {
		location = models.DefaultLocation
	}

	return models.Result{
		RankPositions: rank,
		ResultLink:    raw.URL,
		TargetURL:     extractDomain(raw.URL),
		ResultType:    classify.ResultType(raw.URL, raw.Title),
		RankType:      classify.Ownership(raw.URL),
		Date:          now.Format(dateLayout),
		ExamCode:      classify.ExamCode(query),
		Variation:     classify.Variation(query),
		Location:      location,
		Title:         raw.Title,
		Snippet:       raw.Snippet,
		Keywords:      raw.Keywords,
		Query:         query,
		ExtractedAt:   now.UTC(),
		ID:            newID(now),
		UniqueKey:     uniqueKey(raw.URL, query),
	}
}

// uniqueKey is the dedup key: the URL lower-cased with query string and
// fragment stripped, joined with the lower-cased trimmed query.
func uniqueKey(rawURL, query string) string {
	cleanURL := urlTailRe.ReplaceAllString(strings.ToLower(rawURL), "")
	cleanQuery := strings.ToLower(strings.TrimSpace(query))
	return cleanURL + "|" + cleanQuery
}

// extractDomain returns the URL's hostname with a leading "www." removed.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// newID derives a unique identifier from the timestamp plus a random
// suffix, both base36.
func newID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + strconv.FormatInt(rand.Int63(), 36)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (models.Result, error) {
	var p models.Result
	var extractedAt string
	err := row.Scan(
		&p.ID, &p.UniqueKey, &p.RankPositions, &p.ResultLink, &p.TargetURL,
		&p.ResultType, &p.RankType, &p.Date, &p.ExamCode, &p.Variation,
		&p.Location, &p.Title, &p.Snippet, &p.Keywords, &p.Query, &extractedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, err
		}
		return p, fmt.Errorf("failed to scan result row: %w", err)
	}
	if ts, parseErr := time.Parse(timeLayout, extractedAt); parseErr == nil {
		p.ExtractedAt = ts
	}
	return p, nil
}
