package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

func TestMongoDBRepositoryRoundTrip(t *testing.T) {
	uri := os.Getenv("PAPERTRAIL_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("PAPERTRAIL_TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := NewMongoDBRepository(ctx, uri, "papertrail_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.collection().Drop(context.Background())
		_ = repo.Close(context.Background())
	})

	older := models.Snapshot{CashBalance: -1347.5, CreatedAt: time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)}
	newer := models.Snapshot{
		CashBalance:     -1195.5,
		FinancialReport: models.FinancialReport{FulfilledTransactions: 1, TotalRevenue: 96, ReportGeneratedOn: "2026-03-10"},
		CreatedAt:       time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SaveFinancialReport(ctx, older))
	require.NoError(t, repo.SaveFinancialReport(ctx, newer))

	got, err := repo.LatestReports(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, newer.CashBalance, got[0].CashBalance)
	assert.Equal(t, newer.FinancialReport, got[0].FinancialReport)
}
