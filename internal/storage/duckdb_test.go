package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDuckDB(t *testing.T) *DuckDBStore {
	t.Helper()

	s, err := NewDuckDBStore(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDuckDBAddresses(t *testing.T) {
	ctx := context.Background()
	s := newTestDuckDB(t)

	require.NoError(t, s.Save(ctx, "addr1..."))
	require.NoError(t, s.Save(ctx, "addr2..."))
	// duplicate save is a no-op
	require.NoError(t, s.Save(ctx, "addr1..."))

	addrs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, "addr1...", addrs[0].Address)

	err = s.Save(ctx, "")
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
}

func TestDuckDBHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestDuckDB(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snaps := []CheckSnapshot{
		{RequestID: "r1", Address: "addr1...", RecordCount: 1, TotalAmount: 2, UnitPrice: 2.5, TotalValue: 5, CheckedAt: base},
		{RequestID: "r2", Address: "addr1...", RecordCount: 2, TotalAmount: 4, UnitPrice: 2.5, TotalValue: 10, CheckedAt: base.Add(time.Hour)},
		{RequestID: "r3", Address: "addr2...", RecordCount: 1, TotalAmount: 1, UnitPrice: 0, TotalValue: 0, CheckedAt: base},
	}
	for _, snap := range snaps {
		require.NoError(t, s.Record(ctx, snap))
	}

	got, err := s.History(ctx, "addr1...")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest first
	assert.Equal(t, "r2", got[0].RequestID)
	assert.Equal(t, 10.0, got[0].TotalValue)
	assert.Equal(t, "r1", got[1].RequestID)

	none, err := s.History(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDuckDBInitializeIdempotent(t *testing.T) {
	s := newTestDuckDB(t)
	require.NoError(t, s.Initialize(context.Background()))
}
