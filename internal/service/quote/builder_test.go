package quote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/service/tools/toolstest"
)

func TestBulkDiscountTiers(t *testing.T) {
	cases := []struct {
		quantity int
		want     string
	}{
		{1, "0"},
		{99, "0"},
		{100, "0.06"},
		{199, "0.06"},
		{200, "0.1"},
		{299, "0.1"},
		{300, "0.14"},
		{5000, "0.14"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BulkDiscount(tc.quantity).String(), "quantity %d", tc.quantity)
	}
}

func TestTotalDiscountIsCapped(t *testing.T) {
	assert.Equal(t, "0.16", TotalDiscount(true, 300).String())
	assert.Equal(t, "0.02", TotalDiscount(true, 10).String())
	assert.Equal(t, "0", TotalDiscount(false, 10).String())
	assert.True(t, TotalDiscount(true, 300).LessThanOrEqual(discountCap))
}

func TestBuildWithoutDiscounts(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)

	got, err := builder.Build(context.Background(), models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 200})
	require.NoError(t, err)

	assert.True(t, got.Approved)
	assert.Equal(t, 2.40, got.UnitPrice)
	assert.Equal(t, 96.00, got.Total)
	assert.Zero(t, got.DiscountApplied)
	assert.Equal(t, ReasonApproved+" (applied: none)", got.Reason)
}

func TestBuildBulkDiscount(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)

	got, err := builder.Build(context.Background(), models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 250, MaxBudget: 1000})
	require.NoError(t, err)

	assert.True(t, got.Approved)
	assert.Equal(t, 2.16, got.UnitPrice)
	assert.Equal(t, 540.00, got.Total)
	assert.Equal(t, 0.10, got.DiscountApplied)
	assert.Contains(t, got.Reason, "bulk 10%")
}

func TestBuildLoyaltyRequiresHistoryForSamePaperType(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)
	ctx := context.Background()

	_, err := kit.RecordTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "glossy_a4", Quantity: 1, Status: models.StatusDeclined})
	require.NoError(t, err)

	got, err := builder.Build(ctx, models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 100, MaxBudget: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0.06, got.DiscountApplied)

	_, err = kit.RecordTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 1, Status: models.StatusDeclined})
	require.NoError(t, err)

	got, err = builder.Build(ctx, models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 100, MaxBudget: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0.08, got.DiscountApplied)
	// 2.40 * 0.92 = 2.208 -> 2.21, total 221.00
	assert.Equal(t, 2.21, got.UnitPrice)
	assert.Equal(t, 221.00, got.Total)
	assert.Contains(t, got.Reason, "bulk 6%, loyalty 2%")
}

func TestBuildOverBudgetKeepsPrices(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)

	got, err := builder.Build(context.Background(), models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 10})
	require.NoError(t, err)

	assert.False(t, got.Approved)
	assert.Equal(t, "quote exceeds stated budget ($10.00)", got.Reason)
	assert.Equal(t, 2.40, got.UnitPrice)
	assert.Equal(t, 96.00, got.Total)
}

func TestBuildExactBudgetIsApproved(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)

	got, err := builder.Build(context.Background(), models.Request{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, MaxBudget: 96})
	require.NoError(t, err)
	assert.True(t, got.Approved)
}

func TestBuildUnknownPaperType(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)

	got, err := builder.Build(context.Background(), models.Request{CustomerName: "Acme", PaperType: "foo_unknown", Quantity: 40, MaxBudget: 1000})
	require.NoError(t, err)

	assert.False(t, got.Approved)
	assert.Equal(t, ReasonNotSold, got.Reason)
	assert.Zero(t, got.UnitPrice)
	assert.Zero(t, got.Total)
}

func TestUnitPriceMatchesRoundedFormula(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)

	// glossy 3.10 * 0.86 = 2.666 -> 2.67; 333 * 2.67 = 889.11
	got, err := builder.Build(context.Background(), models.Request{CustomerName: "Initech", PaperType: "glossy_a4", Quantity: 333, MaxBudget: 5000})
	require.NoError(t, err)
	assert.Equal(t, 2.67, got.UnitPrice)
	assert.Equal(t, 889.11, got.Total)
}

func TestUnitPriceRoundsExactHalfUp(t *testing.T) {
	kit, _ := toolstest.Seeded(t)
	builder := NewBuilder(kit, nil)

	// cardstock 4.35 * 0.90 = 3.915 exactly -> 3.92; 200 * 3.92 = 784.00
	got, err := builder.Build(context.Background(), models.Request{CustomerName: "Initech", PaperType: "cardstock_a3", Quantity: 200, MaxBudget: 1000})
	require.NoError(t, err)
	assert.True(t, got.Approved)
	assert.Equal(t, 0.10, got.DiscountApplied)
	assert.Equal(t, 3.92, got.UnitPrice)
	assert.Equal(t, 784.00, got.Total)
}
