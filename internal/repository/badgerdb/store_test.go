package badgerdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/catalog"
	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository"
	"github.com/mamadbah2/papertrail/internal/repository/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) repository.Store {
		store, err := Open("", nil)
		require.NoError(t, err)
		return store.WithNow(now)
	})
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.SeedInventory(ctx, catalog.Default().Specs()))
	require.NoError(t, store.SetStockLevel(ctx, "matte_a4", 160))
	first, err := store.AppendTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 40, Status: models.StatusFulfilled})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.Initialize(ctx))
	require.NoError(t, reopened.SeedInventory(ctx, catalog.Default().Specs()))

	level, err := reopened.StockLevel(ctx, "matte_a4")
	require.NoError(t, err)
	assert.Equal(t, 160, level)

	second, err := reopened.AppendTransaction(ctx, models.TransactionRecord{CustomerName: "Acme", PaperType: "matte_a4", Quantity: 1, Status: models.StatusDeclined})
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}
