package walog

import (
	"fmt"

	"ferrodb/internal/file"
)

// Iterator walks the records of one log file from the most recently
// appended record back to the oldest, which is the order the recovery
// manager needs for undo-only rollback.
type Iterator struct {
	fm           *file.Manager
	currentBlock file.BlockID
	page         *file.Page
	currentPos   int
	boundary     int
}

func newIterator(fm *file.Manager, blk file.BlockID) (*Iterator, error) {
	it := &Iterator{
		fm:           fm,
		currentBlock: blk,
		page:         file.NewPage(fm.BlockSize()),
	}
	if err := it.moveToBlock(blk); err != nil {
		return nil, err
	}
	return it, nil
}

// HasNext reports whether any record remains unread. Iteration ends once
// the current block is block 0 and the read position has caught up to that
// block's boundary, i.e. there is no earlier block to fall back to and no
// record left before the current position.
func (it *Iterator) HasNext() bool {
	return it.currentPos < it.fm.BlockSize() || it.currentBlock.Number > 0
}

// Next returns the next record, in newest-to-oldest order, and advances the
// iterator. It must not be called once HasNext returns false.
func (it *Iterator) Next() ([]byte, error) {
	if it.currentPos == it.fm.BlockSize() {
		prev := file.NewBlockID(it.currentBlock.Filename, it.currentBlock.Number-1)
		if err := it.moveToBlock(prev); err != nil {
			return nil, err
		}
	}

	rec := it.page.GetBytes(it.currentPos)
	it.currentPos += 4 + len(rec)
	return rec, nil
}

func (it *Iterator) moveToBlock(blk file.BlockID) error {
	if err := it.fm.Read(blk, it.page); err != nil {
		return fmt.Errorf("walog: cannot read block %s: %w", blk, err)
	}
	it.currentBlock = blk
	it.boundary = int(it.page.GetInt(0))
	it.currentPos = it.boundary
	return nil
}
