package tx

import (
	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
)

// bufferList tracks the buffers one transaction currently has pinned,
// including repeat pins of the same block, and releases them all at
// commit/rollback time.
type bufferList struct {
	bm      *buffer.Manager
	buffers map[file.BlockID]*buffer.Buffer
	pins    []file.BlockID
}

func newBufferList(bm *buffer.Manager) *bufferList {
	return &bufferList{
		bm:      bm,
		buffers: make(map[file.BlockID]*buffer.Buffer),
	}
}

// getBuffer returns the buffer already pinned for blk by this transaction.
func (bl *bufferList) getBuffer(blk file.BlockID) (*buffer.Buffer, bool) {
	buf, ok := bl.buffers[blk]
	return buf, ok
}

// pin pins blk, recording the pin so a later unpin or unpinAll can release
// it. Pinning the same block twice is tracked as two pins.
func (bl *bufferList) pin(blk file.BlockID) error {
	buf, err := bl.bm.Pin(blk)
	if err != nil {
		return err
	}
	bl.buffers[blk] = buf
	bl.pins = append(bl.pins, blk)
	return nil
}

// unpin releases one pin on blk.
func (bl *bufferList) unpin(blk file.BlockID) {
	buf, ok := bl.buffers[blk]
	if !ok {
		return
	}
	bl.bm.Unpin(buf)

	for i, p := range bl.pins {
		if p == blk {
			bl.pins[i] = bl.pins[len(bl.pins)-1]
			bl.pins = bl.pins[:len(bl.pins)-1]
			break
		}
	}
	for _, p := range bl.pins {
		if p == blk {
			return
		}
	}
	delete(bl.buffers, blk)
}

// unpinAll releases every pin this transaction holds.
func (bl *bufferList) unpinAll() {
	for _, blk := range bl.pins {
		if buf, ok := bl.buffers[blk]; ok {
			bl.bm.Unpin(buf)
		}
	}
	bl.buffers = make(map[file.BlockID]*buffer.Buffer)
	bl.pins = nil
}
