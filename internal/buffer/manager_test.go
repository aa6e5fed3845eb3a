package buffer_test

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupBufferTest(t *testing.T) (*file.Manager, *walog.Manager) {
	t.Helper()
	dir, err := os.MkdirTemp("", "ferrodb_buffer_test_*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	t.Cleanup(func() { fm.Close() })

	lm, err := walog.NewManager(fm, "testlog")
	require.NoError(t, err)
	return fm, lm
}

func TestNewManager_AllBuffersInitiallyAvailable(t *testing.T) {
	fm, lm := setupBufferTest(t)
	bm := buffer.NewManager(fm, lm, 3, zerolog.Nop())

	require.Equal(t, 3, bm.Available())
}

func TestManager_PinUnpin(t *testing.T) {
	fm, lm := setupBufferTest(t)
	bm := buffer.NewManager(fm, lm, 3, zerolog.Nop())

	blk, err := fm.Append("testfile")
	require.NoError(t, err)

	buf, err := bm.Pin(blk)
	require.NoError(t, err)
	require.Equal(t, 2, bm.Available())

	bm.Unpin(buf)
	require.Equal(t, 3, bm.Available())
}

func TestManager_PinSameBlockReturnsSameBuffer(t *testing.T) {
	fm, lm := setupBufferTest(t)
	bm := buffer.NewManager(fm, lm, 3, zerolog.Nop())

	blk, err := fm.Append("testfile")
	require.NoError(t, err)

	buf1, err := bm.Pin(blk)
	require.NoError(t, err)
	buf2, err := bm.Pin(blk)
	require.NoError(t, err)

	require.Same(t, buf1, buf2)
	require.Equal(t, 2, bm.Available())
}

func TestManager_PinAbortsAfterTimeoutWhenPoolExhausted(t *testing.T) {
	fm, lm := setupBufferTest(t)
	bm := buffer.NewManager(fm, lm, 2, zerolog.Nop())

	var pinned []*buffer.Buffer
	for i := 0; i < 2; i++ {
		blk, err := fm.Append(fmt.Sprintf("testfile%d", i))
		require.NoError(t, err)
		buf, err := bm.Pin(blk)
		require.NoError(t, err)
		pinned = append(pinned, buf)
	}

	blk, err := fm.Append("testfile-overflow")
	require.NoError(t, err)

	_, err = bm.Pin(blk)
	require.ErrorIs(t, err, buffer.ErrBufferAbort)
}

func TestManager_PinWakesUpOnUnpin(t *testing.T) {
	fm, lm := setupBufferTest(t)
	bm := buffer.NewManager(fm, lm, 1, zerolog.Nop())

	blk0, err := fm.Append("testfile0")
	require.NoError(t, err)
	buf0, err := bm.Pin(blk0)
	require.NoError(t, err)

	blk1, err := fm.Append("testfile1")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		bm.Unpin(buf0)
	}()

	start := time.Now()
	_, err = bm.Pin(blk1)
	require.NoError(t, err)
	require.Less(t, time.Since(start), buffer.MaxWaitTime)
}

func TestManager_FlushAllPersistsModifications(t *testing.T) {
	fm, lm := setupBufferTest(t)
	bm := buffer.NewManager(fm, lm, 3, zerolog.Nop())

	blk, err := fm.Append("testfile")
	require.NoError(t, err)

	buf, err := bm.Pin(blk)
	require.NoError(t, err)
	buf.Contents().SetString(0, "test data")
	buf.SetModified(1, 100)

	require.NoError(t, bm.FlushAll(1))

	bm.Unpin(buf)
	buf2, err := bm.Pin(blk)
	require.NoError(t, err)
	require.Equal(t, "test data", buf2.Contents().GetString(0))
}

func TestManager_ConcurrentPinUnpin(t *testing.T) {
	fm, lm := setupBufferTest(t)
	bm := buffer.NewManager(fm, lm, 3, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, err := fm.Append(fmt.Sprintf("concurrent%d", i))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			blk := file.NewBlockID(fmt.Sprintf("concurrent%d", i), 0)
			buf, err := bm.Pin(blk)
			if err == nil {
				time.Sleep(20 * time.Millisecond)
				bm.Unpin(buf)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 3, bm.Available())
}
