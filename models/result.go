package models

import "time"

// Result type classifications.
const (
	ResultTypeSocial   = "Social"
	ResultTypeVendor   = "Vendor Site"
	ResultTypeReferral = "Referral"
	ResultTypeMain     = "Main Site"
)

// Rank type classifications (ownership).
const (
	RankTypeOurSite    = "Our Site"
	RankTypeCompetitor = "Competitor"
)

// VariationNone is the sentinel reported when no variation keyword
// occurs in a query.
const VariationNone = "Null"

// DefaultLocation is used when no location can be read off a result page.
const DefaultLocation = "Desktop"

// RawResult is a single organic result as scraped off a page, before
// classification and rank assignment. It is never persisted as-is.
type RawResult struct {
	Rank        int       `json:"rank"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Keywords    string    `json:"keywords"`
	Query       string    `json:"query"`
	Location    string    `json:"location"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Result is a fully processed, persisted result record. Records are
// immutable once written; the only destructive operation is a clear-all.
type Result struct {
	// RankPositions is the continuous rank: globally unique, ascending,
	// assigned from the persisted maximum at append time and never
	// renumbered afterwards.
	RankPositions int `json:"rank_positions"`

	// ResultLink is the raw destination URL.
	ResultLink string `json:"result_link"`

	// TargetURL is the destination hostname with "www." stripped.
	TargetURL string `json:"target_url"`

	ResultType string `json:"result_type"`
	RankType   string `json:"rank_type"`

	// Date is the scrape date formatted "02 Jan 2006".
	Date string `json:"date"`

	ExamCode  string `json:"exam_code"`
	Variation string `json:"variation"`
	Location  string `json:"location"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Keywords  string `json:"keywords"`
	Query     string `json:"query"`

	ExtractedAt time.Time `json:"extracted_at"`

	// ID is a unique time+random derived identifier.
	ID string `json:"id"`

	// UniqueKey is the dedup key: normalized URL + "|" + normalized query.
	UniqueKey string `json:"unique_key"`
}
