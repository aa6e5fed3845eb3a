package tx

import (
	"sync"
	"testing"
	"time"

	"ferrodb/internal/file"

	"github.com/stretchr/testify/require"
)

func TestLockTable_MultipleSharedLocksAllowed(t *testing.T) {
	lt := NewLockTable()
	blk := file.NewBlockID("testfile", 1)

	require.NoError(t, lt.SLock(blk))
	require.NoError(t, lt.SLock(blk))
}

func TestLockTable_ExclusiveWaitsForSharedToRelease(t *testing.T) {
	lt := NewLockTable()
	blk := file.NewBlockID("testfile", 1)

	require.NoError(t, lt.SLock(blk))

	done := make(chan error, 1)
	go func() {
		done <- lt.XLock(blk)
	}()

	time.Sleep(50 * time.Millisecond)
	lt.Unlock(blk)

	require.NoError(t, <-done)
}

func TestLockTable_SharedWaitsForExclusiveToRelease(t *testing.T) {
	lt := NewLockTable()
	blk := file.NewBlockID("testfile", 1)

	require.NoError(t, lt.XLock(blk))

	done := make(chan error, 1)
	go func() {
		done <- lt.SLock(blk)
	}()

	time.Sleep(50 * time.Millisecond)
	lt.Unlock(blk)

	require.NoError(t, <-done)
}

func TestLockTable_ExclusiveTimesOutAgainstHeldSharedLock(t *testing.T) {
	lt := NewLockTable()
	blk := file.NewBlockID("testfile", 1)

	require.NoError(t, lt.SLock(blk))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, lt.SLock(blk))
	}()
	wg.Wait()

	err := lt.XLock(blk)
	require.ErrorIs(t, err, ErrLockAbort)
}

func TestLockTable_IndependentBlocksDoNotConflict(t *testing.T) {
	lt := NewLockTable()
	blk1 := file.NewBlockID("testfile", 1)
	blk2 := file.NewBlockID("testfile", 2)

	require.NoError(t, lt.XLock(blk1))
	require.NoError(t, lt.XLock(blk2))
}
