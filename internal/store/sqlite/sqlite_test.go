package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nooklet/nooklet/internal/store"
	"github.com/nooklet/nooklet/internal/store/storetest"
)

func TestSQLiteStoreCompliance(t *testing.T) {
	storetest.RunSuite(t, func(t *testing.T) store.Store {
		db, err := OpenMemory()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, EnsureSchema(context.Background(), db))
		return NewWithDB(db)
	})
}

func TestHealthPing(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewWithDB(db).(*sqStore)
	require.NoError(t, s.HealthPing(context.Background()))
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, db))
	require.NoError(t, EnsureSchema(ctx, db))
}
