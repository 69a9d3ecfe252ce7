package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/service/tools"
)

// Rejection and approval texts recorded in the ledger and echoed to customers.
const (
	ReasonNotSold  = "paper type not sold"
	ReasonApproved = "quote is within budget and includes bulk/loyalty discounts where eligible"
)

var (
	loyaltyRate = decimal.RequireFromString("0.02")
	discountCap = decimal.RequireFromString("0.20")
)

// bulkTiers is ordered from the largest threshold down.
var bulkTiers = []struct {
	minQuantity int
	rate        decimal.Decimal
}{
	{300, decimal.RequireFromString("0.14")},
	{200, decimal.RequireFromString("0.10")},
	{100, decimal.RequireFromString("0.06")},
}

// Builder prices requests against the catalog and the customer's history.
type Builder struct {
	tools  tools.Toolkit
	logger *zap.Logger
}

// NewBuilder wires a quote builder.
func NewBuilder(toolkit tools.Toolkit, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{tools: toolkit, logger: logger}
}

// BulkDiscount returns the rate of the highest quantity tier reached.
func BulkDiscount(quantity int) decimal.Decimal {
	for _, tier := range bulkTiers {
		if quantity >= tier.minQuantity {
			return tier.rate
		}
	}
	return decimal.Zero
}

// TotalDiscount stacks loyalty and bulk rates under the hard cap.
func TotalDiscount(loyal bool, quantity int) decimal.Decimal {
	rate := BulkDiscount(quantity)
	if loyal {
		rate = rate.Add(loyaltyRate)
	}
	return decimal.Min(discountCap, rate)
}

// Build computes the quote. Unit price and total are rounded to cents
// independently; a budget rejection still carries the computed prices.
func (b *Builder) Build(ctx context.Context, req models.Request) (models.Quote, error) {
	spec, ok := b.tools.PaperSpec(req.PaperType)
	if !ok {
		return models.Quote{Reason: ReasonNotSold}, nil
	}

	history, err := b.tools.QuoteHistory(ctx, req.CustomerName, req.PaperType)
	if err != nil {
		return models.Quote{}, fmt.Errorf("load quote history for %s: %w", req.CustomerName, err)
	}
	loyal := len(history) > 0
	bulk := BulkDiscount(req.Quantity)
	discount := TotalDiscount(loyal, req.Quantity)

	unitPrice := decimal.NewFromFloat(spec.ListPrice).Mul(decimal.NewFromInt(1).Sub(discount)).Round(2)
	total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)

	quote := models.Quote{
		UnitPrice:       unitPrice.InexactFloat64(),
		Total:           total.InexactFloat64(),
		DiscountApplied: discount.InexactFloat64(),
	}

	if total.GreaterThan(decimal.NewFromFloat(req.MaxBudget)) {
		quote.Reason = fmt.Sprintf("quote exceeds stated budget ($%.2f)", req.MaxBudget)
		b.logger.Debug("quote over budget",
			zap.String("customer", req.CustomerName),
			zap.String("total", total.StringFixed(2)),
			zap.Float64("budget", req.MaxBudget))
		return quote, nil
	}

	quote.Approved = true
	quote.Reason = fmt.Sprintf("%s (applied: %s)", ReasonApproved, describeDiscounts(bulk, loyal))
	return quote, nil
}

func describeDiscounts(bulk decimal.Decimal, loyal bool) string {
	var parts []string
	if bulk.IsPositive() {
		parts = append(parts, "bulk "+percent(bulk))
	}
	if loyal {
		parts = append(parts, "loyalty "+percent(loyaltyRate))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func percent(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}
