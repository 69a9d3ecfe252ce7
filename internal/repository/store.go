package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// SeedStockMargin is added to the reorder threshold to form the starting stock of a seeded item.
const SeedStockMargin = 80

// DefaultHistoryLimit bounds transaction queries that do not specify a limit.
const DefaultHistoryLimit = 5

// ErrStoreClosed is returned by stores used after Close.
var ErrStoreClosed = errors.New("ledger store is closed")

// TransactionQuery filters ledger history. PaperType is optional.
type TransactionQuery struct {
	CustomerName string
	PaperType    string
	Limit        int
}

// EffectiveLimit returns the limit to apply, defaulting when unset.
func (q TransactionQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultHistoryLimit
	}
	return q.Limit
}

// Matches reports whether rec satisfies the query filters.
func (q TransactionQuery) Matches(rec models.TransactionRecord) bool {
	if rec.CustomerName != q.CustomerName {
		return false
	}
	return q.PaperType == "" || rec.PaperType == q.PaperType
}

// Store owns the inventory table and the append-only transaction ledger.
// Each call is individually atomic; ordering across calls is the caller's concern.
type Store interface {
	// Initialize creates the schema if absent. It never destroys data.
	Initialize(ctx context.Context) error
	// SeedInventory inserts a row for every catalog entry that has none yet.
	SeedInventory(ctx context.Context, specs []models.PaperSpec) error
	// InventorySnapshot returns all inventory rows ordered by paper type.
	InventorySnapshot(ctx context.Context) ([]models.InventoryRecord, error)
	// StockLevel returns the stock of paperType, or zero when unknown.
	StockLevel(ctx context.Context, paperType string) (int, error)
	// SetStockLevel overwrites the stock of an existing paper type. Unknown types are ignored.
	SetStockLevel(ctx context.Context, paperType string, level int) error
	// AppendTransaction stores rec with a server-assigned id and the current date.
	AppendTransaction(ctx context.Context, rec models.TransactionRecord) (int64, error)
	// QueryTransactions returns matching rows, newest first, bounded by the query limit.
	QueryTransactions(ctx context.Context, q TransactionQuery) ([]models.TransactionRecord, error)
	// CashBalance is fulfilled revenue minus the cost of stock on hand.
	CashBalance(ctx context.Context) (float64, error)
	// FinancialReport summarizes the ledger.
	FinancialReport(ctx context.Context) (models.FinancialReport, error)
	// Reset wipes both tables. Used by evaluation runs only.
	Reset(ctx context.Context) error
	Close() error
}

// SeedRecord builds the initial inventory row for spec.
func SeedRecord(spec models.PaperSpec) models.InventoryRecord {
	return models.InventoryRecord{
		PaperType:        spec.PaperType,
		StockLevel:       spec.ReorderThreshold + SeedStockMargin,
		UnitCost:         spec.UnitCost,
		ListPrice:        spec.ListPrice,
		ReorderThreshold: spec.ReorderThreshold,
		SupplierLeadDays: spec.SupplierLeadDays,
	}
}

// Totals accumulates the aggregate figures behind CashBalance and FinancialReport
// for stores that cannot push the aggregation down to a query engine.
type Totals struct {
	Revenue      float64
	CarryingCost float64
	Fulfilled    int
	NonFulfilled int
}

// AddTransaction folds one ledger row into the totals.
func (t *Totals) AddTransaction(rec models.TransactionRecord) {
	if rec.Status == models.StatusFulfilled {
		t.Revenue += rec.TotalPrice
		t.Fulfilled++
		return
	}
	t.NonFulfilled++
}

// AddInventory folds one inventory row into the totals.
func (t *Totals) AddInventory(rec models.InventoryRecord) {
	t.CarryingCost += float64(rec.StockLevel) * rec.UnitCost
}

// CashBalance returns revenue minus carrying cost, unrounded.
func (t Totals) CashBalance() float64 {
	return t.Revenue - t.CarryingCost
}

// Report renders the totals as a financial report dated on now.
func (t Totals) Report(now time.Time) models.FinancialReport {
	return models.FinancialReport{
		CashBalance:              models.RoundMoney(t.CashBalance()),
		FulfilledTransactions:    t.Fulfilled,
		NonFulfilledTransactions: t.NonFulfilled,
		TotalRevenue:             models.RoundMoney(t.Revenue),
		ReportGeneratedOn:        now.Format(models.DateLayout),
	}
}
