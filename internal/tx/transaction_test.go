package tx_test

import (
	"os"
	"testing"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/tx"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	fm *file.Manager
	lm *walog.Manager
	bm *buffer.Manager
	lt *tx.LockTable
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_tx_test_*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	t.Cleanup(func() { fm.Close() })

	lm, err := walog.NewManager(fm, "testlog")
	require.NoError(t, err)

	bm := buffer.NewManager(fm, lm, 8, zerolog.Nop())

	return &testEnv{fm: fm, lm: lm, bm: bm, lt: tx.NewLockTable()}
}

func (e *testEnv) newTx(t *testing.T) *tx.Transaction {
	t.Helper()
	txn, err := tx.NewTransaction(e.fm, e.lm, e.bm, e.lt, zerolog.Nop())
	require.NoError(t, err)
	return txn
}

func TestTransaction_CommitPersistsChanges(t *testing.T) {
	env := newTestEnv(t)

	txn := env.newTx(t)
	blk, err := txn.Append("testfile")
	require.NoError(t, err)
	require.NoError(t, txn.Pin(blk))
	require.NoError(t, txn.SetInt(blk, 80, 1, true))
	require.NoError(t, txn.SetString(blk, 40, "hello", true))
	require.NoError(t, txn.Commit())

	txn2 := env.newTx(t)
	require.NoError(t, txn2.Pin(blk))
	v, err := txn2.GetInt(blk, 80)
	require.NoError(t, err)
	require.Equal(t, int32(1), v)
	s, err := txn2.GetString(blk, 40)
	require.NoError(t, err)
	require.Equal(t, "hello", s)
	require.NoError(t, txn2.Commit())
}

func TestTransaction_RollbackUndoesChanges(t *testing.T) {
	env := newTestEnv(t)

	setup := env.newTx(t)
	blk, err := setup.Append("testfile")
	require.NoError(t, err)
	require.NoError(t, setup.Pin(blk))
	require.NoError(t, setup.SetInt(blk, 80, 1, true))
	require.NoError(t, setup.Commit())

	txn := env.newTx(t)
	require.NoError(t, txn.Pin(blk))
	require.NoError(t, txn.SetInt(blk, 80, 999, true))
	require.NoError(t, txn.Rollback())

	verify := env.newTx(t)
	require.NoError(t, verify.Pin(blk))
	v, err := verify.GetInt(blk, 80)
	require.NoError(t, err)
	require.Equal(t, int32(1), v)
	require.NoError(t, verify.Commit())
}

func TestTransaction_AppendAllocatesDistinctBlocks(t *testing.T) {
	env := newTestEnv(t)
	txn := env.newTx(t)

	blk1, err := txn.Append("testfile")
	require.NoError(t, err)
	blk2, err := txn.Append("testfile")
	require.NoError(t, err)

	require.NotEqual(t, blk1, blk2)
	require.NoError(t, txn.Commit())
}

func TestTransaction_SizeReflectsAppends(t *testing.T) {
	env := newTestEnv(t)
	txn := env.newTx(t)

	for i := 0; i < 3; i++ {
		_, err := txn.Append("sized")
		require.NoError(t, err)
	}

	n, err := txn.Size("sized")
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, txn.Commit())
}
