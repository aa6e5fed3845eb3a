package file_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ferrodb/internal/file"

	"github.com/stretchr/testify/require"
)

func setupTestDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_file_test_*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestNewManager_FreshDirectoryIsNew(t *testing.T) {
	testDir := filepath.Join(setupTestDir(t), "db")

	fm, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	defer fm.Close()

	require.True(t, fm.IsNew())
	require.Equal(t, 400, fm.BlockSize())
}

func TestNewManager_ExistingDirectoryIsNotNew(t *testing.T) {
	testDir := setupTestDir(t)

	fm, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	require.NoError(t, fm.Close())

	fm2, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	defer fm2.Close()
	require.False(t, fm2.IsNew())
}

func TestNewManager_PurgesTempFiles(t *testing.T) {
	testDir := setupTestDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "tempsort1"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "kept.db"), []byte("x"), 0o644))

	fm, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	defer fm.Close()

	_, err = os.Stat(filepath.Join(testDir, "tempsort1"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(testDir, "kept.db"))
	require.NoError(t, err)
}

func TestManager_ReadWriteRoundTrip(t *testing.T) {
	testDir := setupTestDir(t)
	blockSize := 400

	fm, err := file.NewManager(testDir, blockSize)
	require.NoError(t, err)
	defer fm.Close()

	blk := file.NewBlockID("test.db", 0)
	p1 := file.NewPage(blockSize)
	p1.SetString(88, "this is a test")
	p1.SetInt(20, 42)

	require.NoError(t, fm.Write(blk, p1))

	p2 := file.NewPage(blockSize)
	require.NoError(t, fm.Read(blk, p2))

	require.Equal(t, "this is a test", p2.GetString(88))
	require.Equal(t, int32(42), p2.GetInt(20))
}

func TestManager_Append(t *testing.T) {
	testDir := setupTestDir(t)
	fm, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	defer fm.Close()

	filename := "appended.db"
	for i := 0; i < 3; i++ {
		blk, err := fm.Append(filename)
		require.NoError(t, err)
		require.Equal(t, i, blk.Number)
	}

	count, err := fm.BlockCount(filename)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestManager_ConcurrentAppendDistinctFiles(t *testing.T) {
	testDir := setupTestDir(t)
	fm, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	defer fm.Close()

	const n = 10
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := fm.Append(fmt.Sprintf("concurrent%d.db", i))
			done <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}
}

func TestNewManager_SecondOpenOfSameDirectoryFails(t *testing.T) {
	testDir := setupTestDir(t)

	fm1, err := file.NewManager(testDir, 400)
	require.NoError(t, err)
	defer fm1.Close()

	_, err = file.NewManager(testDir, 400)
	require.Error(t, err)
}
