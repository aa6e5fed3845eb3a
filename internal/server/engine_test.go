package server_test

import (
	"os"
	"path/filepath"
	"testing"

	"ferrodb/internal/server"

	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) server.Config {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_server_test_*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := server.DefaultConfig(filepath.Join(dir, "db"))
	cfg.LogLevel = "disabled"
	return cfg
}

func TestNew_CreatesFreshDatabaseAndRunsStatements(t *testing.T) {
	cfg := newTestConfig(t)
	db, err := server.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	txn, err := db.NewTx()
	require.NoError(t, err)

	_, err = db.Planner.ExecuteUpdate("create table student (sid int, sname varchar(10))", txn)
	require.NoError(t, err)
	n, err := db.Planner.ExecuteUpdate("insert into student (sid, sname) values (1, 'joe')", txn)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	plan, err := db.Planner.CreateQueryPlan("select sname from student where sid = 1", txn)
	require.NoError(t, err)
	scan, err := plan.Open()
	require.NoError(t, err)
	require.NoError(t, scan.BeforeFirst())
	ok, err := scan.Next()
	require.NoError(t, err)
	require.True(t, ok)
	name, err := scan.GetString("sname")
	require.NoError(t, err)
	require.Equal(t, "joe", name)
	scan.Close()

	require.NoError(t, txn.Commit())
}

func TestNew_ReopenExistingDatabasePreservesCatalogAndData(t *testing.T) {
	cfg := newTestConfig(t)

	db1, err := server.New(cfg)
	require.NoError(t, err)

	txn1, err := db1.NewTx()
	require.NoError(t, err)
	_, err = db1.Planner.ExecuteUpdate("create table student (sid int, sname varchar(10))", txn1)
	require.NoError(t, err)
	_, err = db1.Planner.ExecuteUpdate("insert into student (sid, sname) values (1, 'joe')", txn1)
	require.NoError(t, err)
	require.NoError(t, txn1.Commit())
	require.NoError(t, db1.Close())

	db2, err := server.New(cfg)
	require.NoError(t, err)
	defer db2.Close()

	txn2, err := db2.NewTx()
	require.NoError(t, err)
	plan, err := db2.Planner.CreateQueryPlan("select sid from student", txn2)
	require.NoError(t, err)
	scan, err := plan.Open()
	require.NoError(t, err)
	require.NoError(t, scan.BeforeFirst())
	ok, err := scan.Next()
	require.NoError(t, err)
	require.True(t, ok)
	id, err := scan.GetInt("sid")
	require.NoError(t, err)
	require.Equal(t, int32(1), id)
	scan.Close()
	require.NoError(t, txn2.Commit())
}

func TestNew_InvalidLogLevelErrors(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.LogLevel = "not-a-level"
	_, err := server.New(cfg)
	require.Error(t, err)
}

func TestMetadata_ReturnsUsableCatalogManager(t *testing.T) {
	cfg := newTestConfig(t)
	db, err := server.New(cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NotNil(t, db.Metadata())
}
