package buffer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"ferrodb/internal/file"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
)

// ErrBufferAbort is returned by Pin when no buffer becomes available within
// MaxWaitTime. The caller's transaction must roll back: holding locks while
// waiting indefinitely for a buffer risks deadlock with every other waiter.
var ErrBufferAbort = errors.New("buffer: timed out waiting for an available buffer")

// MaxWaitTime bounds how long Pin waits for a buffer to free up before
// giving up and returning ErrBufferAbort.
const MaxWaitTime = 10 * time.Second

// Manager owns a fixed-size pool of Buffers and arbitrates access to them.
// Pin blocks the caller until a frame is available, using a condition
// variable rather than polling so waiters wake immediately on Unpin.
type Manager struct {
	pool         []*Buffer
	numAvailable int

	mu   sync.Mutex
	cond *sync.Cond
	log  zerolog.Logger
}

// NewManager allocates numBuffs frames, each backed by fm and logging
// modifications through lm.
func NewManager(fm *file.Manager, lm *walog.Manager, numBuffs int, log zerolog.Logger) *Manager {
	bm := &Manager{
		pool:         make([]*Buffer, numBuffs),
		numAvailable: numBuffs,
		log:          log.With().Str("component", "buffer").Logger(),
	}
	bm.cond = sync.NewCond(&bm.mu)
	for i := range bm.pool {
		bm.pool[i] = newBuffer(fm, lm)
	}
	return bm
}

// Available returns the number of unpinned buffers.
func (bm *Manager) Available() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.numAvailable
}

// FlushAll writes to disk every buffer dirtied by txNum.
func (bm *Manager) FlushAll(txNum int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, buf := range bm.pool {
		if buf.ModifyingTx() == txNum {
			if err := buf.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Unpin releases one pin on buf. Once its pin count reaches zero, waiters
// blocked in Pin are woken to retry.
func (bm *Manager) Unpin(buf *Buffer) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	buf.unpin()
	if !buf.IsPinned() {
		bm.numAvailable++
		bm.cond.Broadcast()
	}
}

// Pin returns a buffer holding blk, pinning it so it cannot be reused while
// the caller holds it. If blk is not already resident and no frame is free,
// Pin waits on waiters being woken by Unpin, up to MaxWaitTime, before
// returning ErrBufferAbort.
func (bm *Manager) Pin(blk file.BlockID) (*Buffer, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	buf, err := bm.tryToPin(blk)
	if err != nil {
		return nil, err
	}
	if buf != nil {
		return buf, nil
	}

	deadline := time.Now().Add(MaxWaitTime)
	for buf == nil {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			bm.log.Warn().Str("block", blk.String()).Msg("timed out waiting for a buffer")
			return nil, fmt.Errorf("%w: %s", ErrBufferAbort, blk)
		}

		timer := time.AfterFunc(remaining, bm.cond.Broadcast)
		bm.cond.Wait()
		timer.Stop()

		buf, err = bm.tryToPin(blk)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (bm *Manager) tryToPin(blk file.BlockID) (*Buffer, error) {
	buf := bm.findExistingBuffer(blk)
	if buf == nil {
		buf = bm.chooseUnpinnedBuffer()
		if buf == nil {
			return nil, nil
		}
		if err := buf.assignToBlock(blk); err != nil {
			return nil, err
		}
	}
	if !buf.IsPinned() {
		bm.numAvailable--
	}
	buf.pin()
	return buf, nil
}

func (bm *Manager) findExistingBuffer(blk file.BlockID) *Buffer {
	for _, buf := range bm.pool {
		if b, ok := buf.Block(); ok && b == blk {
			return buf
		}
	}
	return nil
}

func (bm *Manager) chooseUnpinnedBuffer() *Buffer {
	for _, buf := range bm.pool {
		if !buf.IsPinned() {
			return buf
		}
	}
	return nil
}
