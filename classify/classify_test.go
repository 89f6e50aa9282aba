package classify

import (
	"strings"
	"testing"

	"github.com/use-agent/serptrack/models"
)

func TestResultType(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		title string
		want  string
	}{
		{"youtube is social", "https://www.youtube.com/watch?v=abc", "AZ-900 walkthrough", models.ResultTypeSocial},
		{"linkedin is social", "https://linkedin.com/posts/123", "", models.ResultTypeSocial},
		{"microsoft is vendor", "https://learn.microsoft.com/certifications", "AZ-900", models.ResultTypeVendor},
		{"cisco is vendor", "https://www.cisco.com/c/en/us/training-events.html", "", models.ResultTypeVendor},
		{"reddit is referral", "https://www.reddit.com/r/AzureCertification", "passed!", models.ResultTypeReferral},
		{"forum title is referral", "https://examtopics.net/thread/42", "AZ-900 discussion forum", models.ResultTypeReferral},
		{"plain site is main", "https://study4exam.com/microsoft/az-900", "AZ-900 questions", models.ResultTypeMain},
		{"empty url is main", "", "anything", models.ResultTypeMain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultType(tt.url, tt.title); got != tt.want {
				t.Errorf("ResultType(%q, %q) = %q, want %q", tt.url, tt.title, got, tt.want)
			}
		})
	}
}

func TestOwnership(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"owned domain", "https://study4exam.com/comptia/sy0-601", models.RankTypeOurSite},
		{"owned domain uppercase", "https://WWW.JUSTCERTS.COM/cisco", models.RankTypeOurSite},
		{"competitor", "https://www.examtopics.com/exams/comptia", models.RankTypeCompetitor},
		{"empty url", "", models.RankTypeCompetitor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ownership(tt.url); got != tt.want {
				t.Errorf("Ownership(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestVariation_LongestPhraseWins(t *testing.T) {
	// "exam questions" must beat both "exam" and "questions".
	got := Variation("AZ-900 exam questions")
	if got != "exam questions" {
		t.Errorf("Variation = %q, want %q", got, "exam questions")
	}
}

func TestVariation_NoMatch(t *testing.T) {
	if got := Variation("comptia security plus"); got != models.VariationNone {
		t.Errorf("Variation = %q, want %q", got, models.VariationNone)
	}
	if got := Variation("   "); got != models.VariationNone {
		t.Errorf("Variation on blank query = %q, want %q", got, models.VariationNone)
	}
}

func TestExamCode_RemovesMatchedKeyword(t *testing.T) {
	tests := []struct {
		query    string
		wantCode string
	}{
		{"CompTIA SY0-601 exam dumps pdf", "comptia sy0-601 pdf"},
		{"AZ-900 exam questions", "az-900"},
		{"  SAA-C03 practice test  ", "saa-c03"},
		{"comptia security plus", "comptia security plus"},
	}

	for _, tt := range tests {
		if got := ExamCode(tt.query); got != tt.wantCode {
			t.Errorf("ExamCode(%q) = %q, want %q", tt.query, got, tt.wantCode)
		}
	}
}

func TestExamCodeAndVariation_AreAligned(t *testing.T) {
	// The keyword Variation reports must be exactly the phrase ExamCode
	// removed: code + keyword must reassemble the normalized query's words.
	queries := []string{
		"CompTIA SY0-601 exam dumps pdf",
		"AZ-900 exam questions",
		"200-301 braindumps",
		"PL-300 study guide",
	}

	for _, q := range queries {
		kw := Variation(q)
		if kw == models.VariationNone {
			t.Fatalf("expected a variation match for %q", q)
		}
		code := ExamCode(q)
		if strings.Contains(code, kw) {
			t.Errorf("ExamCode(%q) = %q still contains matched keyword %q", q, code, kw)
		}
		normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(q))), " ")
		if !strings.Contains(normalized, kw) {
			t.Errorf("Variation(%q) = %q does not occur in the query", q, kw)
		}
	}
}

func TestVariation_NeverShorterSubstringOfMatch(t *testing.T) {
	// "dumps" is a substring of "exam dumps"; the longer phrase must win.
	if got := Variation("CompTIA SY0-601 exam dumps"); got != "exam dumps" {
		t.Errorf("Variation = %q, want %q", got, "exam dumps")
	}
}
