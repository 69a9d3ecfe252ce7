package fulfillment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/service/tools"
)

const (
	NotesFulfilled   = "fulfilled from on-hand inventory"
	MessageFulfilled = "order fulfilled and inventory updated"
	NotesDeclined    = "declined"
)

// Resolver decides the terminal outcome of a request and records it.
type Resolver struct {
	tools  tools.Toolkit
	logger *zap.Logger
}

// NewResolver wires a resolver.
func NewResolver(toolkit tools.Toolkit, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{tools: toolkit, logger: logger}
}

// Finalize appends exactly one ledger row per call. On the fulfilled branch the
// stock write happens before the row is recorded.
func (r *Resolver) Finalize(ctx context.Context, req models.Request, quote models.Quote, assessment models.InventoryAssessment) (models.Fulfillment, error) {
	rec := models.TransactionRecord{
		CustomerName: req.CustomerName,
		PaperType:    req.PaperType,
		Quantity:     req.Quantity,
		UnitPrice:    quote.UnitPrice,
		TotalPrice:   quote.Total,
	}

	var out models.Fulfillment
	switch {
	case !quote.Approved:
		rec.Status = models.StatusDeclined
		rec.Notes = quote.Reason
		if rec.Notes == "" {
			rec.Notes = NotesDeclined
		}
		out = models.Fulfillment{Status: models.StatusDeclined, Message: rec.Notes}

	case !assessment.CanFulfillNow:
		rec.Status = models.StatusUnfulfilled
		rec.Notes = "insufficient stock; earliest supplier ETA " + assessment.ETA
		out = models.Fulfillment{
			Status:  models.StatusUnfulfilled,
			Message: "insufficient stock now; next supplier ETA is " + assessment.ETA,
		}

	default:
		remaining := assessment.Stock - req.Quantity
		if remaining < 0 {
			return models.Fulfillment{}, fmt.Errorf("fulfill %s: stock %d cannot cover %d", req.PaperType, assessment.Stock, req.Quantity)
		}
		if err := r.tools.UpdateStock(ctx, req.PaperType, remaining); err != nil {
			return models.Fulfillment{}, fmt.Errorf("update stock for %s: %w", req.PaperType, err)
		}
		rec.Status = models.StatusFulfilled
		rec.Notes = NotesFulfilled
		out = models.Fulfillment{Fulfilled: true, Status: models.StatusFulfilled, Message: MessageFulfilled}
	}

	id, err := r.tools.RecordTransaction(ctx, rec)
	if err != nil {
		return models.Fulfillment{}, fmt.Errorf("record %s transaction: %w", rec.Status, err)
	}
	out.TransactionID = id

	r.logger.Info("request resolved",
		zap.String("customer", req.CustomerName),
		zap.String("paper_type", req.PaperType),
		zap.String("status", string(out.Status)),
		zap.Int64("txn_id", id))
	return out, nil
}
