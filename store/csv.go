package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/use-agent/serptrack/models"
)

// csvHeader is the exact export header; downstream spreadsheets key on
// these column names.
var csvHeader = []string{
	"Rank Positions", "Result Link", "Target URL", "Result Type",
	"Rank Type", "Date", "Exam Code", "Variation", "Location", "Keywords",
}

// ExportCSV renders the full persisted set, sorted ascending by rank, as
// UTF-8 comma-delimited CSV. Fields containing the delimiter, quotes or
// newlines are quoted with internal quotes doubled. An empty store is an
// explicit NO_DATA_TO_EXPORT error, never an empty file.
func (s *Store) ExportCSV(ctx context.Context) ([]byte, error) {
	results, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeNoData, "no data to export", nil)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range results {
		row := []string{
			strconv.Itoa(p.RankPositions),
			p.ResultLink,
			p.TargetURL,
			p.ResultType,
			p.RankType,
			p.Date,
			p.ExamCode,
			p.Variation,
			p.Location,
			p.Keywords,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
