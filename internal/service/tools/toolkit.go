// Package tools exposes the ledger and catalog to the pipeline stages as a
// small set of named operations. Agent-framework adapters can wrap a Toolkit
// without the stages noticing; only the Framework tag changes.
package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/catalog"
	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/events"
	"github.com/mamadbah2/papertrail/internal/repository"
)

// DefaultFramework tags responses produced without any external orchestration backend.
const DefaultFramework = "native"

// Toolkit is the capability surface of the pipeline.
type Toolkit interface {
	Framework() string
	PaperSpec(paperType string) (models.PaperSpec, bool)
	InventoryLookup(ctx context.Context, paperType string) (models.InventoryLookup, error)
	SupplierTimeline(ctx context.Context, paperType string, quantity int) string
	QuoteHistory(ctx context.Context, customerName, paperType string) ([]models.TransactionRecord, error)
	RecordTransaction(ctx context.Context, rec models.TransactionRecord) (int64, error)
	UpdateStock(ctx context.Context, paperType string, level int) error
	CashBalance(ctx context.Context) (float64, error)
	FinancialReport(ctx context.Context) (models.FinancialReport, error)
}

// StoreToolkit implements Toolkit on top of a ledger store and the static catalog.
type StoreToolkit struct {
	store     repository.Store
	catalog   *catalog.Catalog
	publisher events.Publisher
	framework string
	now       func() time.Time
	logger    *zap.Logger
}

// New wires a toolkit. A nil publisher disables outcome events.
func New(store repository.Store, cat *catalog.Catalog, publisher events.Publisher, framework string, logger *zap.Logger) *StoreToolkit {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if framework == "" {
		framework = DefaultFramework
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &StoreToolkit{
		store:     store,
		catalog:   cat,
		publisher: publisher,
		framework: framework,
		now:       time.Now,
		logger:    logger,
	}
}

// WithNow overrides the clock used for delivery estimates.
func (t *StoreToolkit) WithNow(now func() time.Time) *StoreToolkit {
	if now != nil {
		t.now = now
	}
	return t
}

func (t *StoreToolkit) Framework() string { return t.framework }

func (t *StoreToolkit) PaperSpec(paperType string) (models.PaperSpec, bool) {
	return t.catalog.Lookup(paperType)
}

// InventoryLookup probes the inventory snapshot for paperType and reads its live stock.
func (t *StoreToolkit) InventoryLookup(ctx context.Context, paperType string) (models.InventoryLookup, error) {
	snapshot, err := t.store.InventorySnapshot(ctx)
	if err != nil {
		return models.InventoryLookup{}, fmt.Errorf("inventory snapshot: %w", err)
	}

	lookup := models.InventoryLookup{PaperType: paperType}
	for _, rec := range snapshot {
		if rec.PaperType == paperType {
			lookup.KnownItem = true
			lookup.ReorderThreshold = rec.ReorderThreshold
			break
		}
	}

	lookup.StockLevel, err = t.store.StockLevel(ctx, paperType)
	if err != nil {
		return models.InventoryLookup{}, fmt.Errorf("stock level: %w", err)
	}
	return lookup, nil
}

// SupplierTimeline returns the estimated delivery date as an ISO date.
func (t *StoreToolkit) SupplierTimeline(_ context.Context, paperType string, quantity int) string {
	return t.catalog.DeliveryDate(paperType, quantity, t.now()).Format(models.DateLayout)
}

// QuoteHistory returns the customer's most recent rows for paperType.
func (t *StoreToolkit) QuoteHistory(ctx context.Context, customerName, paperType string) ([]models.TransactionRecord, error) {
	return t.store.QueryTransactions(ctx, repository.TransactionQuery{
		CustomerName: customerName,
		PaperType:    paperType,
		Limit:        repository.DefaultHistoryLimit,
	})
}

// RecordTransaction appends rec to the ledger and announces it. Publishing is
// best effort: the ledger row is the source of truth.
func (t *StoreToolkit) RecordTransaction(ctx context.Context, rec models.TransactionRecord) (int64, error) {
	id, err := t.store.AppendTransaction(ctx, rec)
	if err != nil {
		return 0, err
	}

	rec.ID = id
	rec.CreatedAt = models.DateOnly(t.now())
	if err := t.publisher.PublishTransaction(ctx, rec); err != nil {
		t.logger.Warn("transaction event not published", zap.Int64("txn_id", id), zap.Error(err))
	}
	return id, nil
}

func (t *StoreToolkit) UpdateStock(ctx context.Context, paperType string, level int) error {
	return t.store.SetStockLevel(ctx, paperType, level)
}

func (t *StoreToolkit) CashBalance(ctx context.Context) (float64, error) {
	return t.store.CashBalance(ctx)
}

func (t *StoreToolkit) FinancialReport(ctx context.Context) (models.FinancialReport, error) {
	return t.store.FinancialReport(ctx)
}
