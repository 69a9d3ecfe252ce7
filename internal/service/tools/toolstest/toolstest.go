// Package toolstest builds seeded toolkits for stage tests.
package toolstest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/catalog"
	"github.com/mamadbah2/papertrail/internal/repository/memory"
	"github.com/mamadbah2/papertrail/internal/service/tools"
)

// Today is the fixed clock shared by stage tests.
var Today = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

// Seeded returns a toolkit over a freshly seeded in-memory store with the default catalog.
func Seeded(t *testing.T) (*tools.StoreToolkit, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return Today }

	store := memory.NewStore(nil).WithNow(now)
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.SeedInventory(ctx, catalog.Default().Specs()))

	return tools.New(store, catalog.Default(), nil, "", nil).WithNow(now), store
}
