package iscan_test

import (
	"os"
	"testing"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/index/btree"
	"ferrodb/internal/index/iscan"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestTx(t *testing.T) *tx.Transaction {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_iscan_test_*")
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

func idxLayout() *record.Layout {
	schema := record.NewSchema()
	schema.AddIntField("block")
	schema.AddIntField("id")
	schema.AddIntField("dataval")
	return record.NewLayout(schema)
}

func tableLayout() *record.Layout {
	schema := record.NewSchema()
	schema.AddIntField("sid")
	schema.AddStringField("sname", 10)
	return record.NewLayout(schema)
}

func TestIndexSelectScan_YieldsOnlyMatchingTableRecords(t *testing.T) {
	txn := newTestTx(t)

	layout := tableLayout()
	ts, err := record.NewTableScan(txn, "student", layout)
	require.NoError(t, err)

	idx, err := btree.NewBTreeIndex(txn, "idx_sid", idxLayout())
	require.NoError(t, err)

	rows := []struct {
		sid   int32
		sname string
	}{
		{1, "joe"}, {2, "amy"}, {3, "amy"},
	}
	for _, r := range rows {
		require.NoError(t, ts.Insert())
		require.NoError(t, ts.SetInt("sid", r.sid))
		require.NoError(t, ts.SetString("sname", r.sname))
		rid := ts.RID()
		require.NoError(t, idx.Insert(record.NewIntConstant(r.sid), rid))
	}

	iss, err := iscan.NewIndexSelectScan(idx, ts, record.NewIntConstant(2))
	require.NoError(t, err)
	defer iss.Close()

	ok, err := iss.Next()
	require.NoError(t, err)
	require.True(t, ok)
	name, err := iss.GetString("sname")
	require.NoError(t, err)
	require.Equal(t, "amy", name)

	ok, err = iss.Next()
	require.NoError(t, err)
	require.False(t, ok)

	require.True(t, iss.HasField("sname"))
	require.False(t, iss.HasField("nope"))

	require.NoError(t, txn.Commit())
}

func TestIndexSelectScan_GetValRoutesThroughTableScan(t *testing.T) {
	txn := newTestTx(t)

	layout := tableLayout()
	ts, err := record.NewTableScan(txn, "student", layout)
	require.NoError(t, err)

	idx, err := btree.NewBTreeIndex(txn, "idx_sid", idxLayout())
	require.NoError(t, err)

	require.NoError(t, ts.Insert())
	require.NoError(t, ts.SetInt("sid", 9))
	require.NoError(t, ts.SetString("sname", "zoe"))
	rid := ts.RID()
	require.NoError(t, idx.Insert(record.NewIntConstant(9), rid))

	iss, err := iscan.NewIndexSelectScan(idx, ts, record.NewIntConstant(9))
	require.NoError(t, err)
	defer iss.Close()

	ok, err := iss.Next()
	require.NoError(t, err)
	require.True(t, ok)

	val, err := iss.GetVal("sname")
	require.NoError(t, err)
	s, ok := val.AsString()
	require.True(t, ok)
	require.Equal(t, "zoe", s)

	id, err := iss.GetInt("sid")
	require.NoError(t, err)
	require.Equal(t, int32(9), id)

	require.NoError(t, txn.Commit())
}
