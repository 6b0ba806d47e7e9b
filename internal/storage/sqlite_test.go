package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T, path string) *SQLiteStorage {
	t.Helper()
	st, err := NewSQLiteStorage(context.Background(), path, testLogger())
	require.NoError(t, err)
	return st
}

func TestSQLiteStorage_GetSetClear(t *testing.T) {
	st := newTestSQLite(t, filepath.Join(t.TempDir(), "casefile.db"))
	defer st.Close()
	ctx := context.Background()

	require.NoError(t, st.Ping(ctx))

	value, err := st.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, st.Set(ctx, "k", "v1"))
	require.NoError(t, st.Set(ctx, "k", "v2"))
	value, err = st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value, "second set overwrites")

	require.NoError(t, st.Clear(ctx, "k"))
	value, err = st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", value)
	assert.NoError(t, st.Clear(ctx, "k"))
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "casefile.db")
	ctx := context.Background()

	first := newTestSQLite(t, path)
	require.NoError(t, first.Set(ctx, "session:console", `{"case":"Case03"}`))
	require.NoError(t, first.Close())

	second := newTestSQLite(t, path)
	defer second.Close()
	value, err := second.Get(ctx, "session:console")
	require.NoError(t, err)
	assert.Equal(t, `{"case":"Case03"}`, value)
}

func TestSQLiteStorage_ClosedDatabase(t *testing.T) {
	st := newTestSQLite(t, filepath.Join(t.TempDir(), "casefile.db"))
	require.NoError(t, st.Close())

	ctx := context.Background()
	assert.Error(t, st.Ping(ctx))
	_, err := st.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, st.Set(ctx, "k", "v"))
	assert.Error(t, st.Clear(ctx, "k"))
}
