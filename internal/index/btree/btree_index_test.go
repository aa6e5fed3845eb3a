package btree_test

import (
	"os"
	"testing"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/index/btree"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestTx(t *testing.T) *tx.Transaction {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_btree_test_*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	t.Cleanup(func() { fm.Close() })

	lm, err := walog.NewManager(fm, "testlog")
	require.NoError(t, err)

	bm := buffer.NewManager(fm, lm, 8, zerolog.Nop())
	lt := tx.NewLockTable()

	txn, err := tx.NewTransaction(fm, lm, bm, lt, zerolog.Nop())
	require.NoError(t, err)
	return txn
}

func leafLayout() *record.Layout {
	schema := record.NewSchema()
	schema.AddIntField("block")
	schema.AddIntField("id")
	schema.AddIntField("dataval")
	return record.NewLayout(schema)
}

func TestBTreeIndex_InsertAndFindSingleKey(t *testing.T) {
	txn := newTestTx(t)
	idx, err := btree.NewBTreeIndex(txn, "idx1", leafLayout())
	require.NoError(t, err)

	rid := record.NewRID(3, 7)
	require.NoError(t, idx.Insert(record.NewIntConstant(42), rid))

	require.NoError(t, idx.BeforeFirst(record.NewIntConstant(42)))
	ok, err := idx.Next()
	require.NoError(t, err)
	require.True(t, ok)

	got, err := idx.DataRID()
	require.NoError(t, err)
	require.Equal(t, rid, got)

	ok, err = idx.Next()
	require.NoError(t, err)
	require.False(t, ok)

	idx.Close()
	require.NoError(t, txn.Commit())
}

func TestBTreeIndex_DuplicateKeysAllRetrievable(t *testing.T) {
	txn := newTestTx(t)
	idx, err := btree.NewBTreeIndex(txn, "idx2", leafLayout())
	require.NoError(t, err)

	rids := []record.RID{
		record.NewRID(1, 1),
		record.NewRID(1, 2),
		record.NewRID(2, 1),
	}
	for _, rid := range rids {
		require.NoError(t, idx.Insert(record.NewIntConstant(9), rid))
	}

	require.NoError(t, idx.BeforeFirst(record.NewIntConstant(9)))
	found := make(map[record.RID]bool)
	for {
		ok, err := idx.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		rid, err := idx.DataRID()
		require.NoError(t, err)
		found[rid] = true
	}
	require.Len(t, found, len(rids))
	for _, rid := range rids {
		require.True(t, found[rid])
	}

	idx.Close()
	require.NoError(t, txn.Commit())
}

func TestBTreeIndex_DeleteRemovesOnlyMatchingEntry(t *testing.T) {
	txn := newTestTx(t)
	idx, err := btree.NewBTreeIndex(txn, "idx3", leafLayout())
	require.NoError(t, err)

	keep := record.NewRID(5, 1)
	drop := record.NewRID(5, 2)
	require.NoError(t, idx.Insert(record.NewIntConstant(11), keep))
	require.NoError(t, idx.Insert(record.NewIntConstant(11), drop))

	require.NoError(t, idx.Delete(record.NewIntConstant(11), drop))

	require.NoError(t, idx.BeforeFirst(record.NewIntConstant(11)))
	var remaining []record.RID
	for {
		ok, err := idx.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		rid, err := idx.DataRID()
		require.NoError(t, err)
		remaining = append(remaining, rid)
	}
	require.Equal(t, []record.RID{keep}, remaining)

	idx.Close()
	require.NoError(t, txn.Commit())
}

// TestBTreeIndex_ManyKeysForceSplits drives enough distinct keys through
// the index that directory and leaf pages must split and the tree must
// grow past its initial single-level root, exercising makeNewRoot.
func TestBTreeIndex_ManyKeysForceSplits(t *testing.T) {
	txn := newTestTx(t)
	idx, err := btree.NewBTreeIndex(txn, "idx4", leafLayout())
	require.NoError(t, err)

	const n = 400
	rids := make(map[int32]record.RID, n)
	for i := 0; i < n; i++ {
		rid := record.NewRID(i/10, i%10)
		rids[int32(i)] = rid
		require.NoError(t, idx.Insert(record.NewIntConstant(int32(i)), rid))
	}

	for key, want := range rids {
		require.NoError(t, idx.BeforeFirst(record.NewIntConstant(key)))
		ok, err := idx.Next()
		require.NoError(t, err, "key %d", key)
		require.True(t, ok, "key %d not found", key)
		got, err := idx.DataRID()
		require.NoError(t, err)
		require.Equal(t, want, got, "key %d", key)
	}

	idx.Close()
	require.NoError(t, txn.Commit())
}

func TestBTreeIndex_SearchCost(t *testing.T) {
	require.Equal(t, 100, btree.SearchCost(100, 1))
	require.Equal(t, 100, btree.SearchCost(100, 0))
	require.True(t, btree.SearchCost(1000, 10) < 1000)
}

func TestBTreeIndex_ReopenSeesPersistedEntries(t *testing.T) {
	dir, err := os.MkdirTemp("", "ferrodb_btree_reopen_*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	lm, err := walog.NewManager(fm, "testlog")
	require.NoError(t, err)
	bm := buffer.NewManager(fm, lm, 8, zerolog.Nop())
	lt := tx.NewLockTable()

	txn1, err := tx.NewTransaction(fm, lm, bm, lt, zerolog.Nop())
	require.NoError(t, err)
	idx1, err := btree.NewBTreeIndex(txn1, "persist", leafLayout())
	require.NoError(t, err)
	rid := record.NewRID(1, 1)
	require.NoError(t, idx1.Insert(record.NewIntConstant(77), rid))
	idx1.Close()
	require.NoError(t, txn1.Commit())

	txn2, err := tx.NewTransaction(fm, lm, bm, lt, zerolog.Nop())
	require.NoError(t, err)
	idx2, err := btree.NewBTreeIndex(txn2, "persist", leafLayout())
	require.NoError(t, err)
	require.NoError(t, idx2.BeforeFirst(record.NewIntConstant(77)))
	ok, err := idx2.Next()
	require.NoError(t, err)
	require.True(t, ok)
	got, err := idx2.DataRID()
	require.NoError(t, err)
	require.Equal(t, rid, got)
	idx2.Close()
	require.NoError(t, txn2.Commit())
	require.NoError(t, fm.Close())
}
