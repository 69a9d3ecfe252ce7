package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/papertrail/internal/repository"
	"github.com/mamadbah2/papertrail/internal/repository/storetest"
)

// Set PAPERTRAIL_TEST_POSTGRES_DSN to run the contract suite against a live database.
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("PAPERTRAIL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PAPERTRAIL_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T, now func() time.Time) repository.Store {
		ctx := context.Background()
		store, err := Open(ctx, dsn, nil)
		require.NoError(t, err)
		require.NoError(t, store.Initialize(ctx))
		require.NoError(t, store.Reset(ctx))
		return store.WithNow(now)
	})
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	require.Error(t, err)
}
