package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/service/tools"
)

// ReasonUnknownItem explains assessments of paper types missing from inventory.
const ReasonUnknownItem = "requested paper type is not available"

// Assessor reports whether stock can satisfy a request right now.
type Assessor struct {
	tools  tools.Toolkit
	logger *zap.Logger
}

// NewAssessor wires an assessor.
func NewAssessor(toolkit tools.Toolkit, logger *zap.Logger) *Assessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assessor{tools: toolkit, logger: logger}
}

// Assess never mutates state. The ETA is computed even when stock suffices so
// callers can quote backorder dates.
func (a *Assessor) Assess(ctx context.Context, req models.Request) (models.InventoryAssessment, error) {
	lookup, err := a.tools.InventoryLookup(ctx, req.PaperType)
	if err != nil {
		return models.InventoryAssessment{}, fmt.Errorf("assess inventory for %s: %w", req.PaperType, err)
	}

	if !lookup.KnownItem {
		a.logger.Debug("unknown paper type", zap.String("paper_type", req.PaperType))
		return models.InventoryAssessment{Reason: ReasonUnknownItem}, nil
	}

	assessment := models.InventoryAssessment{
		KnownItem:     true,
		CanFulfillNow: lookup.StockLevel >= req.Quantity,
		Stock:         lookup.StockLevel,
		NeedsReorder:  lookup.StockLevel < lookup.ReorderThreshold,
		ETA:           a.tools.SupplierTimeline(ctx, req.PaperType, req.Quantity),
	}

	a.logger.Debug("inventory assessed",
		zap.String("paper_type", req.PaperType),
		zap.Int("stock", assessment.Stock),
		zap.Bool("can_fulfill_now", assessment.CanFulfillNow))

	return assessment, nil
}
