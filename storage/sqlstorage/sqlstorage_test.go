package sqlstorage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenzapen/tagcrawl/sqldb"
	"github.com/wenzapen/tagcrawl/storage"
)

func count(t *testing.T, path, table string) int {
	t.Helper()
	db, err := sqldb.New(sqldb.WithPath(path))
	require.NoError(t, err)
	defer db.Close()
	rows, err := db.Query(`SELECT COUNT(*) FROM "` + table + `"`)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	return n
}

func TestWriteBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	s := New(WithBatchCount(2))

	var list []any
	for i := 0; i < 5; i++ {
		list = append(list, map[string]any{"i": i, "tags": []any{"a"}})
	}
	require.NoError(t, s.Write(path, "items", list))
	require.NoError(t, s.Close())

	assert.Equal(t, 5, count(t, path, "items"))
}

func TestWriteReplacesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	s := New()
	defer s.Close()

	require.NoError(t, s.Write(path, "items", []any{map[string]any{"a": 1}, map[string]any{"a": 2}}))
	require.NoError(t, s.Write(path, "items", []any{map[string]any{"b": "x"}}))
	assert.Equal(t, 1, count(t, path, "items"))
}

func TestWriteScalarAndRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	s := New()
	defer s.Close()

	r := storage.NewRegistry()
	r.Register("sqlite", s)
	require.NoError(t, r.Write("sqlite", path, "title", "hello"))
	assert.Equal(t, 1, count(t, path, "title"))
}
