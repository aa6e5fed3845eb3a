package walog_test

import (
	"fmt"
	"os"
	"testing"

	"ferrodb/internal/file"
	"ferrodb/internal/walog"

	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) (*file.Manager, *walog.Manager) {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_walog_test_*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	t.Cleanup(func() { fm.Close() })

	lm, err := walog.NewManager(fm, "wal.log")
	require.NoError(t, err)
	return fm, lm
}

func TestManager_AppendAssignsIncreasingLSNs(t *testing.T) {
	_, lm := newTestLog(t)

	lsn1, err := lm.Append([]byte("record-1"))
	require.NoError(t, err)
	lsn2, err := lm.Append([]byte("record-2"))
	require.NoError(t, err)

	require.Equal(t, lsn1+1, lsn2)
}

func TestManager_IteratorReturnsRecordsNewestFirst(t *testing.T) {
	_, lm := newTestLog(t)

	records := []string{"alpha", "bravo", "charlie"}
	for _, r := range records {
		_, err := lm.Append([]byte(r))
		require.NoError(t, err)
	}

	it, err := lm.Iterator()
	require.NoError(t, err)

	var got []string
	for it.HasNext() {
		rec, err := it.Next()
		require.NoError(t, err)
		got = append(got, string(rec))
	}

	require.Equal(t, []string{"charlie", "bravo", "alpha"}, got)
}

func TestManager_IteratorSpansMultipleBlocks(t *testing.T) {
	_, lm := newTestLog(t)

	const n = 200
	for i := 0; i < n; i++ {
		_, err := lm.Append([]byte(fmt.Sprintf("record-%03d", i)))
		require.NoError(t, err)
	}

	it, err := lm.Iterator()
	require.NoError(t, err)

	count := 0
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		count++
	}
	require.Equal(t, n, count)
}
