package sheets

import (
	"context"
	"fmt"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// DefaultResultsRange is the tab batch results are appended to.
const DefaultResultsRange = "Results!A:J"

// ResultsSheet writes batch responses to a spreadsheet tab. The header row is
// written only when the tab is empty, so repeated runs accumulate below it.
type ResultsSheet struct {
	repo       Repository
	sheetRange string
}

// NewResultsSheet wraps repo. An empty sheetRange selects DefaultResultsRange.
func NewResultsSheet(repo Repository, sheetRange string) *ResultsSheet {
	if sheetRange == "" {
		sheetRange = DefaultResultsRange
	}
	return &ResultsSheet{repo: repo, sheetRange: sheetRange}
}

// WriteResults appends one row per response in order.
func (s *ResultsSheet) WriteResults(ctx context.Context, responses []models.Response) error {
	existing, err := s.repo.ReadRange(ctx, s.sheetRange)
	if err != nil {
		return fmt.Errorf("inspect results sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(responses)+1)
	if len(existing) == 0 {
		rows = append(rows, toRow(models.ResponseColumns))
	}
	for _, resp := range responses {
		rows = append(rows, toRow(resp.Record()))
	}

	return s.repo.AppendRows(ctx, s.sheetRange, rows)
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
