package metadata_test

import (
	"os"
	"testing"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/metadata"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestTx(t *testing.T) *tx.Transaction {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_metadata_test_*")
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

func studentSchema() *record.Schema {
	schema := record.NewSchema()
	schema.AddIntField("sid")
	schema.AddStringField("sname", 10)
	return schema
}

func TestManager_CreateTableAndGetLayoutRoundTrips(t *testing.T) {
	txn := newTestTx(t)
	mdm, err := metadata.NewManager(true, txn)
	require.NoError(t, err)

	require.NoError(t, mdm.CreateTable("student", studentSchema(), txn))

	layout, err := mdm.GetLayout("student", txn)
	require.NoError(t, err)
	require.True(t, layout.Schema().HasField("sid"))
	require.True(t, layout.Schema().HasField("sname"))
	require.Equal(t, record.Integer, layout.Schema().Type("sid"))
	require.NoError(t, txn.Commit())
}

func TestManager_GetStatInfoCountsRowsAndBlocks(t *testing.T) {
	txn := newTestTx(t)
	mdm, err := metadata.NewManager(true, txn)
	require.NoError(t, err)
	require.NoError(t, mdm.CreateTable("student", studentSchema(), txn))
	layout, err := mdm.GetLayout("student", txn)
	require.NoError(t, err)

	ts, err := record.NewTableScan(txn, "student", layout)
	require.NoError(t, err)
	for i := int32(0); i < 5; i++ {
		require.NoError(t, ts.Insert())
		require.NoError(t, ts.SetInt("sid", i))
		require.NoError(t, ts.SetString("sname", "s"))
	}
	ts.Close()

	si, err := mdm.GetStatInfo("student", layout, txn)
	require.NoError(t, err)
	require.Equal(t, 5, si.RecordsOutput())
	require.GreaterOrEqual(t, si.BlocksAccessed(), 1)
	require.NoError(t, txn.Commit())
}

func TestManager_CreateAndGetIndexInfo(t *testing.T) {
	txn := newTestTx(t)
	mdm, err := metadata.NewManager(true, txn)
	require.NoError(t, err)
	require.NoError(t, mdm.CreateTable("student", studentSchema(), txn))

	require.NoError(t, mdm.CreateIndex("idx_sid", "student", "sid", txn))

	infos, err := mdm.GetIndexInfo("student", txn)
	require.NoError(t, err)
	require.Contains(t, infos, "sid")
	require.Equal(t, "sid", infos["sid"].FieldName())

	idx, err := infos["sid"].Open()
	require.NoError(t, err)
	require.NoError(t, idx.Insert(record.NewIntConstant(1), record.NewRID(0, 0)))
	idx.Close()
	require.NoError(t, txn.Commit())
}

func TestManager_ViewCreateAndGetDef(t *testing.T) {
	txn := newTestTx(t)
	mdm, err := metadata.NewManager(true, txn)
	require.NoError(t, err)

	require.NoError(t, mdm.CreateView("young_students", "select sname from student where sid = 1", txn))

	def, ok, err := mdm.GetViewDef("young_students", txn)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "select sname from student where sid = 1", def)

	_, ok, err = mdm.GetViewDef("nonexistent", txn)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, txn.Commit())
}

func TestManager_ReopenSeesPersistedCatalog(t *testing.T) {
	dir, err := os.MkdirTemp("", "ferrodb_metadata_reopen_*")
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
	mdm1, err := metadata.NewManager(true, txn1)
	require.NoError(t, err)
	require.NoError(t, mdm1.CreateTable("student", studentSchema(), txn1))
	require.NoError(t, txn1.Commit())

	txn2, err := tx.NewTransaction(fm, lm, bm, lt, zerolog.Nop())
	require.NoError(t, err)
	mdm2, err := metadata.NewManager(false, txn2)
	require.NoError(t, err)
	layout, err := mdm2.GetLayout("student", txn2)
	require.NoError(t, err)
	require.True(t, layout.Schema().HasField("sid"))
	require.NoError(t, txn2.Commit())
	require.NoError(t, fm.Close())
}
