package fulfillment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository"
	"github.com/mamadbah2/papertrail/internal/service/tools/toolstest"
)

func TestFinalizeDeclinedRecordsQuoteReason(t *testing.T) {
	kit, store := toolstest.Seeded(t)
	resolver := NewResolver(kit, nil)
	ctx := context.Background()

	req := models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 10}
	quote := models.Quote{UnitPrice: 2.40, Total: 96, Reason: "quote exceeds stated budget ($10.00)"}
	assessment := models.InventoryAssessment{KnownItem: true, CanFulfillNow: true, Stock: 200}

	got, err := resolver.Finalize(ctx, req, quote, assessment)
	require.NoError(t, err)

	assert.False(t, got.Fulfilled)
	assert.Equal(t, models.StatusDeclined, got.Status)
	assert.Equal(t, int64(1), got.TransactionID)
	assert.Equal(t, quote.Reason, got.Message)

	stock, err := store.StockLevel(ctx, "matte_a4")
	require.NoError(t, err)
	assert.Equal(t, 200, stock)

	rows, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusDeclined, rows[0].Status)
	assert.Equal(t, quote.Reason, rows[0].Notes)
	assert.Equal(t, 96.0, rows[0].TotalPrice)
}

func TestFinalizeDeclinedWithoutReason(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	resolver := NewResolver(kit, nil)

	got, err := resolver.Finalize(context.Background(), models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 1}, models.Quote{}, models.InventoryAssessment{})
	require.NoError(t, err)
	assert.Equal(t, NotesDeclined, got.Message)
}

func TestFinalizeUnfulfilledLeavesStock(t *testing.T) {
	kit, store := toolstest.Seeded(t)
	resolver := NewResolver(kit, nil)
	ctx := context.Background()

	req := models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 450, MaxBudget: 5000}
	quote := models.Quote{Approved: true, UnitPrice: 2.06, Total: 927}
	assessment := models.InventoryAssessment{KnownItem: true, Stock: 200, ETA: "2026-03-18"}

	got, err := resolver.Finalize(ctx, req, quote, assessment)
	require.NoError(t, err)

	assert.False(t, got.Fulfilled)
	assert.Equal(t, models.StatusUnfulfilled, got.Status)
	assert.Equal(t, "insufficient stock now; next supplier ETA is 2026-03-18", got.Message)

	stock, err := store.StockLevel(ctx, "matte_a4")
	require.NoError(t, err)
	assert.Equal(t, 200, stock)

	rows, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "insufficient stock; earliest supplier ETA 2026-03-18", rows[0].Notes)
}

func TestFinalizeFulfilledDecrementsStock(t *testing.T) {
	kit, store := toolstest.Seeded(t)
	resolver := NewResolver(kit, nil)
	ctx := context.Background()

	req := models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 200}
	quote := models.Quote{Approved: true, UnitPrice: 2.40, Total: 96}
	assessment := models.InventoryAssessment{KnownItem: true, CanFulfillNow: true, Stock: 200}

	got, err := resolver.Finalize(ctx, req, quote, assessment)
	require.NoError(t, err)

	assert.True(t, got.Fulfilled)
	assert.Equal(t, models.StatusFulfilled, got.Status)
	assert.Equal(t, MessageFulfilled, got.Message)
	assert.Equal(t, int64(1), got.TransactionID)

	stock, err := store.StockLevel(ctx, "matte_a4")
	require.NoError(t, err)
	assert.Equal(t, 160, stock)

	report, err := store.FinancialReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FulfilledTransactions)
	assert.Equal(t, 96.0, report.TotalRevenue)
}

func TestFinalizeRejectsInconsistentAssessment(t *testing.T) {
	kit, store := toolstest.Seeded(t)
	resolver := NewResolver(kit, nil)
	ctx := context.Background()

	_, err := resolver.Finalize(ctx,
		models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40},
		models.Quote{Approved: true},
		models.InventoryAssessment{KnownItem: true, CanFulfillNow: true, Stock: 10})
	require.Error(t, err)

	rows, err := store.QueryTransactions(ctx, repository.TransactionQuery{CustomerName: "Acme"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
