package query_test

import (
	"os"
	"testing"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/query"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestScan(t *testing.T) (*record.TableScan, *tx.Transaction) {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_query_test_*")
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

	schema := record.NewSchema()
	schema.AddIntField("id")
	schema.AddStringField("name", 10)
	layout := record.NewLayout(schema)

	ts, err := record.NewTableScan(txn, "widgets", layout)
	require.NoError(t, err)

	rows := []struct {
		id   int32
		name string
	}{
		{1, "a"}, {2, "b"}, {3, "a"}, {4, "c"},
	}
	for _, r := range rows {
		require.NoError(t, ts.Insert())
		require.NoError(t, ts.SetInt("id", r.id))
		require.NoError(t, ts.SetString("name", r.name))
	}
	require.NoError(t, ts.BeforeFirst())

	return ts, txn
}

func TestPredicate_EmptyAlwaysSatisfied(t *testing.T) {
	ts, txn := newTestScan(t)
	defer ts.Close()
	defer txn.Commit()

	pred := query.NewPredicate()
	_, err := ts.Next()
	require.NoError(t, err)
	ok, err := pred.IsSatisfied(ts)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPredicate_FieldEqualsConstantFiltersRows(t *testing.T) {
	ts, txn := newTestScan(t)
	defer ts.Close()
	defer txn.Commit()

	term := query.NewTerm(
		query.NewFieldNameExpression("name"),
		query.NewConstantExpression(record.NewStringConstant("a")),
	)
	pred := query.NewPredicateFromTerm(term)
	sel := query.NewSelectScan(ts, pred)

	var ids []int32
	require.NoError(t, sel.BeforeFirst())
	for {
		ok, err := sel.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		id, err := sel.GetInt("id")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, []int32{1, 3}, ids)
}

func TestPredicate_ConjoinWithCombinesTerms(t *testing.T) {
	ts, txn := newTestScan(t)
	defer ts.Close()
	defer txn.Commit()

	p1 := query.NewPredicateFromTerm(query.NewTerm(
		query.NewFieldNameExpression("name"),
		query.NewConstantExpression(record.NewStringConstant("a")),
	))
	p2 := query.NewPredicateFromTerm(query.NewTerm(
		query.NewFieldNameExpression("id"),
		query.NewConstantExpression(record.NewIntConstant(3)),
	))
	p1.ConjoinWith(p2)

	sel := query.NewSelectScan(ts, p1)
	require.NoError(t, sel.BeforeFirst())
	ok, err := sel.Next()
	require.NoError(t, err)
	require.True(t, ok)
	id, err := sel.GetInt("id")
	require.NoError(t, err)
	require.Equal(t, int32(3), id)

	ok, err = sel.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPredicate_EquatesWithConstant(t *testing.T) {
	term := query.NewTerm(
		query.NewFieldNameExpression("id"),
		query.NewConstantExpression(record.NewIntConstant(5)),
	)
	pred := query.NewPredicateFromTerm(term)

	c, ok := pred.EquatesWithConstant("id")
	require.True(t, ok)
	require.Equal(t, int32(5), mustInt(t, c))

	_, ok = pred.EquatesWithConstant("name")
	require.False(t, ok)
}

func TestProjectScan_OnlyExposesProjectedFields(t *testing.T) {
	ts, txn := newTestScan(t)
	defer ts.Close()
	defer txn.Commit()

	proj := query.NewProjectScan(ts, []string{"name"})
	require.True(t, proj.HasField("name"))
	require.False(t, proj.HasField("id"))

	require.NoError(t, proj.BeforeFirst())
	_, err := proj.Next()
	require.NoError(t, err)
	_, err = proj.GetString("name")
	require.NoError(t, err)

	_, err = proj.GetInt("id")
	require.Error(t, err)
}

func TestSelectScan_DeleteOnReadOnlyUnderlyingFails(t *testing.T) {
	ts, txn := newTestScan(t)
	defer ts.Close()
	defer txn.Commit()

	proj := query.NewProjectScan(ts, []string{"id", "name"})
	pred := query.NewPredicate()
	sel := query.NewSelectScan(proj, pred)

	require.NoError(t, sel.BeforeFirst())
	_, err := sel.Next()
	require.NoError(t, err)
	require.Error(t, sel.Delete())
}

func mustInt(t *testing.T, c record.Constant) int32 {
	t.Helper()
	v, ok := c.AsInt()
	require.True(t, ok)
	return v
}
