package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository/memory"
	"github.com/mamadbah2/papertrail/internal/server/handlers"
	"github.com/mamadbah2/papertrail/internal/service/fulfillment"
	"github.com/mamadbah2/papertrail/internal/service/inventory"
	"github.com/mamadbah2/papertrail/internal/service/orchestrator"
	"github.com/mamadbah2/papertrail/internal/service/quote"
	"github.com/mamadbah2/papertrail/internal/service/reporting"
	"github.com/mamadbah2/papertrail/internal/service/tools/toolstest"
)

func newEngine(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	return newEngineWithArchive(t, nil)
}

func newEngineWithArchive(t *testing.T, archive handlers.ArchiveReader) (http.Handler, *memory.Store) {
	t.Helper()
	kit, store := toolstest.Seeded(t)
	reporter := reporting.NewService(kit, nil, nil).WithNow(func() time.Time { return toolstest.Today })
	orch := orchestrator.New(orchestrator.Stages{
		Assessor:  inventory.NewAssessor(kit, nil),
		Quotes:    quote.NewBuilder(kit, nil),
		Resolver:  fulfillment.NewResolver(kit, nil),
		Reporter:  reporter,
		Framework: kit.Framework(),
	}, nil)
	handler := handlers.NewRequestHandler(orch, store, reporter, nil)
	if archive != nil {
		handler.WithArchive(archive)
	}
	return New(handler, nil), store
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	engine, _ := newEngine(t)
	rec := do(t, engine, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSubmitRequest(t *testing.T) {
	engine, store := newEngine(t)

	rec := do(t, engine, http.MethodPost, "/requests", models.Request{
		RequestID: "r1", CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 200,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusFulfilled, resp.Status)
	assert.Equal(t, 96.0, resp.QuoteTotal)
	assert.Equal(t, "native", resp.Framework)

	stock, err := store.StockLevel(context.Background(), "matte_a4")
	require.NoError(t, err)
	assert.Equal(t, 160, stock)
}

func TestSubmitRejectsInvalidBody(t *testing.T) {
	engine, _ := newEngine(t)

	rec := do(t, engine, http.MethodPost, "/requests", map[string]any{"customer_name": "Acme", "paper_type": "matte_a4", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodPost, "/requests", map[string]any{"customer_name": "  ", "paper_type": "matte_a4", "quantity": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInventoryAndTransactions(t *testing.T) {
	engine, _ := newEngine(t)

	do(t, engine, http.MethodPost, "/requests", models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 10})

	rec := do(t, engine, http.MethodGet, "/inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inv struct {
		Inventory []models.InventoryRecord `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Len(t, inv.Inventory, 4)

	rec = do(t, engine, http.MethodGet, "/transactions?customer=Acme&limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txns struct {
		Transactions []models.TransactionRecord `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txns))
	require.Len(t, txns.Transactions, 1)
	assert.Equal(t, models.StatusDeclined, txns.Transactions[0].Status)

	assert.Equal(t, http.StatusBadRequest, do(t, engine, http.MethodGet, "/transactions", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, engine, http.MethodGet, "/transactions?customer=Acme&limit=x", nil).Code)
}

func TestTransactionsLimitBounds(t *testing.T) {
	engine, _ := newEngine(t)

	do(t, engine, http.MethodPost, "/requests", models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 10})

	rec := do(t, engine, http.MethodGet, "/transactions?customer=Acme&limit=100000000000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, engine, http.MethodGet, "/transactions?customer=Acme&limit=101", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, engine, http.MethodGet, "/transactions?customer=Acme&limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/transactions?customer=Acme&limit=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txns struct {
		Transactions []models.TransactionRecord `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txns))
	assert.Len(t, txns.Transactions, 1)
}

func TestFinancialReport(t *testing.T) {
	engine, _ := newEngine(t)

	rec := do(t, engine, http.MethodGet, "/reports/financial", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, -1347.5, snapshot.CashBalance)
	assert.Equal(t, "2026-03-10", snapshot.FinancialReport.ReportGeneratedOn)
}

type fakeArchive struct {
	reports []models.Snapshot
	err     error
	limit   int64
}

func (f *fakeArchive) LatestReports(_ context.Context, limit int64) ([]models.Snapshot, error) {
	f.limit = limit
	return f.reports, f.err
}

func TestArchivedReports(t *testing.T) {
	archive := &fakeArchive{reports: []models.Snapshot{
		{CashBalance: -6.3, FinancialReport: models.FinancialReport{ReportGeneratedOn: "2026-03-10"}},
		{CashBalance: -372.3, FinancialReport: models.FinancialReport{ReportGeneratedOn: "2026-03-09"}},
	}}
	engine, _ := newEngineWithArchive(t, archive)

	rec := do(t, engine, http.MethodGet, "/reports/archive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), archive.limit)

	var body struct {
		Reports []models.Snapshot `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reports, 2)
	assert.Equal(t, "2026-03-10", body.Reports[0].FinancialReport.ReportGeneratedOn)

	rec = do(t, engine, http.MethodGet, "/reports/archive?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), archive.limit)

	assert.Equal(t, http.StatusBadRequest, do(t, engine, http.MethodGet, "/reports/archive?limit=5000", nil).Code)

	archive.err = errors.New("mongo down")
	assert.Equal(t, http.StatusInternalServerError, do(t, engine, http.MethodGet, "/reports/archive", nil).Code)
}

func TestArchivedReportsWithoutArchive(t *testing.T) {
	engine, _ := newEngine(t)

	rec := do(t, engine, http.MethodGet, "/reports/archive", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"report archive not configured"}`, rec.Body.String())
}
