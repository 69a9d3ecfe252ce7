// Package batch runs ordered evaluation batches: requests are read from CSV,
// processed strictly in input order and written back as result rows.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// ErrMalformedRow marks input rows that cannot be turned into a request.
var ErrMalformedRow = errors.New("malformed request row")

var requiredColumns = []string{"request_id", "customer_name", "paper_type", "quantity", "max_budget"}

// RowError locates a malformed row. Line counts the header as line 1.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() []error { return []error{ErrMalformedRow, e.Err} }

// LoadRequests parses every row before returning, so a single bad row rejects
// the whole batch and nothing is processed. A blank needed_by defaults to today.
func LoadRequests(r io.Reader, today time.Time) ([]models.Request, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedRow)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, &RowError{Line: 1, Column: name, Err: errors.New("column missing from header")}
		}
	}

	defaultNeededBy := today.Format(models.DateLayout)
	var requests []models.Request
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Line: line, Column: "*", Err: err}
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		quantity, err := strconv.Atoi(field("quantity"))
		if err != nil {
			return nil, &RowError{Line: line, Column: "quantity", Err: err}
		}
		budget, err := strconv.ParseFloat(field("max_budget"), 64)
		if err != nil {
			return nil, &RowError{Line: line, Column: "max_budget", Err: err}
		}

		req := models.Request{
			RequestID:    field("request_id"),
			CustomerName: field("customer_name"),
			PaperType:    field("paper_type"),
			Quantity:     quantity,
			MaxBudget:    budget,
			NeededBy:     field("needed_by"),
		}
		if req.NeededBy == "" {
			req.NeededBy = defaultNeededBy
		}
		if err := req.Validate(); err != nil {
			return nil, &RowError{Line: line, Column: "*", Err: err}
		}

		requests = append(requests, req)
	}

	return requests, nil
}
