// Package storetest holds the behavioral contract every ledger store backend must satisfy.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/catalog"
	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository"
)

// Factory builds a fresh, empty store that dates rows with now.
type Factory func(t *testing.T, now func() time.Time) repository.Store

// FixedNow is the clock handed to every store under test.
var FixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// Run executes the contract suite against stores produced by factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, ctx context.Context, store repository.Store)
	}{
		{"initialize is idempotent", testInitializeIdempotent},
		{"seed preserves existing stock", testSeedPreservesStock},
		{"snapshot ordered by paper type", testSnapshotOrdered},
		{"unknown paper types", testUnknownPaperType},
		{"append assigns ids and date", testAppendAssignsIDs},
		{"query newest first with filters", testQueryTransactions},
		{"query with oversized limit", testQueryOversizedLimit},
		{"cash balance and report", testCashBalanceAndReport},
		{"reset wipes both tables", testReset},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t, func() time.Time { return FixedNow })
			t.Cleanup(func() { _ = store.Close() })

			require.NoError(t, store.Initialize(ctx))
			tc.fn(t, ctx, store)
		})
	}
}

func seed(t *testing.T, ctx context.Context, store repository.Store) {
	t.Helper()
	require.NoError(t, store.SeedInventory(ctx, catalog.Default().Specs()))
}

func testInitializeIdempotent(t *testing.T, ctx context.Context, store repository.Store) {
	seed(t, ctx, store)
	_, err := store.AppendTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 1, Status: models.StatusDeclined})
	require.NoError(t, err)

	require.NoError(t, store.Initialize(ctx))

	snapshot, err := store.InventorySnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 4)

	history, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme"})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func testSeedPreservesStock(t *testing.T, ctx context.Context, store repository.Store) {
	seed(t, ctx, store)

	level, err := store.StockLevel(ctx, "matte_a4")
	require.NoError(t, err)
	assert.Equal(t, 200, level)

	require.NoError(t, store.SetStockLevel(ctx, "matte_a4", 37))
	seed(t, ctx, store)

	level, err = store.StockLevel(ctx, "matte_a4")
	require.NoError(t, err)
	assert.Equal(t, 37, level)
}

func testSnapshotOrdered(t *testing.T, ctx context.Context, store repository.Store) {
	seed(t, ctx, store)

	snapshot, err := store.InventorySnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 4)

	var names []string
	for _, rec := range snapshot {
		names = append(names, rec.PaperType)
	}
	assert.Equal(t, []string{"cardstock_a3", "glossy_a4", "matte_a4", "recycled_a4"}, names)

	glossy := snapshot[1]
	assert.Equal(t, 180, glossy.StockLevel)
	assert.InDelta(t, 1.85, glossy.UnitCost, 1e-9)
	assert.InDelta(t, 3.10, glossy.ListPrice, 1e-9)
	assert.Equal(t, 100, glossy.ReorderThreshold)
	assert.Equal(t, 7, glossy.SupplierLeadDays)
}

func testUnknownPaperType(t *testing.T, ctx context.Context, store repository.Store) {
	seed(t, ctx, store)

	level, err := store.StockLevel(ctx, "foo_unknown")
	require.NoError(t, err)
	assert.Zero(t, level)

	require.NoError(t, store.SetStockLevel(ctx, "foo_unknown", 10))

	snapshot, err := store.InventorySnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 4)
}

func testAppendAssignsIDs(t *testing.T, ctx context.Context, store repository.Store) {
	first, err := store.AppendTransaction(ctx, models.TransactionRecord{
		CustomerName: "Acme", PaperType: "foo_unknown", Quantity: 5, Status: models.StatusDeclined, Notes: "paper type not sold",
	})
	require.NoError(t, err)

	second, err := store.AppendTransaction(ctx, models.TransactionRecord{
		CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, UnitPrice: 2.40, TotalPrice: 96, Status: models.StatusFulfilled,
	})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	history, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme", Limit: 10})
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, second, history[0].ID)
	assert.Equal(t, "2026-03-10", history[0].CreatedAt.Format(models.DateLayout))
	assert.Equal(t, models.StatusFulfilled, history[0].Status)
	assert.InDelta(t, 96.0, history[0].TotalPrice, 1e-9)

	assert.Equal(t, first, history[1].ID)
	assert.Zero(t, history[1].TotalPrice)
	assert.Equal(t, "paper type not sold", history[1].Notes)
}

func testQueryTransactions(t *testing.T, ctx context.Context, store repository.Store) {
	for i := 1; i <= 7; i++ {
		_, err := store.AppendTransaction(ctx, models.TransactionRecord{
			CustomerName: "Acme", PaperType: "matte_a4", Quantity: i, Status: models.StatusFulfilled,
		})
		require.NoError(t, err)
	}
	_, err := store.AppendTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "glossy_a4", Quantity: 100, Status: models.StatusUnfulfilled})
	require.NoError(t, err)
	_, err = store.AppendTransaction(ctx, models.TransactionRecord{CustomerName: "Globex", PaperType: "matte_a4", Quantity: 200, Status: models.StatusFulfilled})
	require.NoError(t, err)

	defaults, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme", PaperType: "matte_a4"})
	require.NoError(t, err)
	require.Len(t, defaults, repository.DefaultHistoryLimit)
	assert.Equal(t, 7, defaults[0].Quantity)
	assert.Equal(t, 3, defaults[4].Quantity)

	all, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme", Limit: 3})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "glossy_a4", all[0].PaperType)
	assert.Equal(t, 7, all[1].Quantity)

	none, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Initech"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testQueryOversizedLimit(t *testing.T, ctx context.Context, store repository.Store) {
	for i := 1; i <= 3; i++ {
		_, err := store.AppendTransaction(ctx, models.TransactionRecord{
			CustomerName: "Acme", PaperType: "matte_a4", Quantity: i, Status: models.StatusFulfilled,
		})
		require.NoError(t, err)
	}

	got, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme", Limit: 1 << 40})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3, got[0].Quantity)
	assert.Equal(t, 1, got[2].Quantity)
}

func testCashBalanceAndReport(t *testing.T, ctx context.Context, store repository.Store) {
	seed(t, ctx, store)

	// 200*1.40 + 180*1.85 + 160*2.75 + 190*1.55
	const carrying = 1347.5

	balance, err := store.CashBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, -carrying, balance, 1e-6)

	require.NoError(t, store.SetStockLevel(ctx, "matte_a4", 160))
	_, err = store.AppendTransaction(ctx, models.TransactionRecord{
		CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, UnitPrice: 2.40, TotalPrice: 96, Status: models.StatusFulfilled,
	})
	require.NoError(t, err)
	_, err = store.AppendTransaction(ctx, models.TransactionRecord{
		CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, UnitPrice: 2.40, TotalPrice: 96, Status: models.StatusDeclined,
	})
	require.NoError(t, err)
	_, err = store.AppendTransaction(ctx, models.TransactionRecord{
		CustomerName: "Globex", PaperType: "glossy_a4", Quantity: 500, UnitPrice: 2.67, TotalPrice: 1335, Status: models.StatusUnfulfilled,
	})
	require.NoError(t, err)

	balance, err = store.CashBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 96-(carrying-40*1.40), balance, 1e-6)

	report, err := store.FinancialReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FulfilledTransactions)
	assert.Equal(t, 2, report.NonFulfilledTransactions)
	assert.InDelta(t, 96.0, report.TotalRevenue, 1e-9)
	assert.InDelta(t, -1195.5, report.CashBalance, 1e-9)
	assert.Equal(t, "2026-03-10", report.ReportGeneratedOn)
}

func testReset(t *testing.T, ctx context.Context, store repository.Store) {
	seed(t, ctx, store)
	_, err := store.AppendTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "matte_a4", Status: models.StatusDeclined})
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))
	require.NoError(t, store.Initialize(ctx))

	snapshot, err := store.InventorySnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	report, err := store.FinancialReport(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.FulfilledTransactions+report.NonFulfilledTransactions)

	id, err := store.AppendTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "matte_a4", Status: models.StatusDeclined})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}
