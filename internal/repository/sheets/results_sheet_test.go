package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

type fakeRepository struct {
	existing [][]interface{}
	readErr  error
	appended [][]interface{}
	ranges   []string
}

func (f *fakeRepository) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.ranges = append(f.ranges, sheetRange)
	f.appended = append(f.appended, rows...)
	return nil
}

func (f *fakeRepository) ReadRange(context.Context, string) ([][]interface{}, error) {
	return f.existing, f.readErr
}

var sampleResponse = models.Response{
	RequestID:        "r1",
	CustomerName:     "Acme",
	PaperType:        "matte_a4",
	Quantity:         40,
	QuoteTotal:       96,
	Status:           models.StatusFulfilled,
	Fulfilled:        true,
	Rationale:        "order fulfilled and inventory updated",
	CashBalanceAfter: -1195.5,
	Framework:        "native",
}

func TestWriteResultsAddsHeaderToEmptySheet(t *testing.T) {
	repo := &fakeRepository{}
	sink := NewResultsSheet(repo, "")

	require.NoError(t, sink.WriteResults(context.Background(), []models.Response{sampleResponse}))

	require.Len(t, repo.appended, 2)
	assert.Equal(t, []string{DefaultResultsRange}, repo.ranges)
	assert.Equal(t, "request_id", repo.appended[0][0])
	assert.Equal(t, []interface{}{"r1", "Acme", "matte_a4", "40", "96.00", "fulfilled", "true", "order fulfilled and inventory updated", "-1195.50", "native"}, repo.appended[1])
}

func TestWriteResultsSkipsHeaderWhenPresent(t *testing.T) {
	repo := &fakeRepository{existing: [][]interface{}{{"request_id"}}}
	sink := NewResultsSheet(repo, "Run2!A:J")

	require.NoError(t, sink.WriteResults(context.Background(), []models.Response{sampleResponse, sampleResponse}))

	assert.Len(t, repo.appended, 2)
	assert.Equal(t, "r1", repo.appended[0][0])
	assert.Equal(t, []string{"Run2!A:J"}, repo.ranges)
}

func TestWriteResultsReadFailure(t *testing.T) {
	repo := &fakeRepository{readErr: errors.New("quota")}
	sink := NewResultsSheet(repo, "")

	require.Error(t, sink.WriteResults(context.Background(), []models.Response{sampleResponse}))
	assert.Empty(t, repo.appended)
}
