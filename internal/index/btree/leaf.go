package btree

import (
	"ferrodb/internal/file"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// leaf provides record-at-a-time access to the leaf entries matching one
// search key, transparently following the page's overflow chain (its
// flag field) when more entries for that key live in a later block.
type leaf struct {
	tx          *tx.Transaction
	layout      *record.Layout
	searchKey   record.Constant
	contents    *page
	currentSlot int
	filename    string
}

func newLeaf(t *tx.Transaction, block file.BlockID, layout *record.Layout, searchKey record.Constant) (*leaf, error) {
	contents, err := newPage(t, block, layout)
	if err != nil {
		return nil, err
	}
	slot, err := contents.findSlotBefore(searchKey)
	if err != nil {
		contents.close()
		return nil, err
	}
	return &leaf{
		tx:          t,
		layout:      layout,
		searchKey:   searchKey,
		contents:    contents,
		currentSlot: slot,
		filename:    block.Filename,
	}, nil
}

func (l *leaf) close() {
	l.contents.close()
}

// next advances to the next leaf entry matching the search key, following
// an overflow chain transparently. It returns false once no more entries
// match.
func (l *leaf) next() (bool, error) {
	l.currentSlot++
	n, err := l.contents.numRecs()
	if err != nil {
		return false, err
	}
	if l.currentSlot >= n {
		return l.tryOverflow()
	}
	val, err := l.contents.dataVal(l.currentSlot)
	if err != nil {
		return false, err
	}
	if val.Equals(l.searchKey) {
		return true, nil
	}
	return l.tryOverflow()
}

func (l *leaf) tryOverflow() (bool, error) {
	firstKey, err := l.contents.dataVal(0)
	if err != nil {
		return false, err
	}
	flag, err := l.contents.flag()
	if err != nil {
		return false, err
	}
	if !firstKey.Equals(l.searchKey) || flag < 0 {
		return false, nil
	}
	l.close()
	nextBlock := file.NewBlockID(l.filename, int(flag))
	contents, err := newPage(l.tx, nextBlock, l.layout)
	if err != nil {
		return false, err
	}
	l.contents = contents
	l.currentSlot = 0
	return true, nil
}

// dataRID returns the RID stored in the current leaf entry.
func (l *leaf) dataRID() (record.RID, error) {
	return l.contents.dataRID(l.currentSlot)
}

// delete removes the entry for rid from this leaf's search key run,
// scanning forward from the current position.
func (l *leaf) delete(rid record.RID) error {
	for {
		ok, err := l.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		got, err := l.dataRID()
		if err != nil {
			return err
		}
		if got == rid {
			return l.contents.delete(l.currentSlot)
		}
	}
}

// insert adds a new leaf entry for (searchKey, rid). When the insertion
// overflows this block, it splits and returns the dirEntry that the
// caller must propagate up to the parent directory; otherwise it returns
// the zero dirEntry and a false ok.
func (l *leaf) insert(rid record.RID) (dirEntry, bool, error) {
	flag, err := l.contents.flag()
	if err != nil {
		return dirEntry{}, false, err
	}
	if flag >= 0 {
		firstVal, err := l.contents.dataVal(0)
		if err != nil {
			return dirEntry{}, false, err
		}
		if firstVal.CompareTo(l.searchKey) > 0 {
			newBlock, err := l.contents.split(0, flag)
			if err != nil {
				return dirEntry{}, false, err
			}
			l.currentSlot = 0
			if err := l.contents.setFlag(noOverflow); err != nil {
				return dirEntry{}, false, err
			}
			if err := l.contents.insertLeaf(l.currentSlot, l.searchKey, rid); err != nil {
				return dirEntry{}, false, err
			}
			return newDirEntry(firstVal, newBlock.Number), true, nil
		}
	}

	l.currentSlot++
	if err := l.contents.insertLeaf(l.currentSlot, l.searchKey, rid); err != nil {
		return dirEntry{}, false, err
	}
	full, err := l.contents.isFull()
	if err != nil {
		return dirEntry{}, false, err
	}
	if !full {
		return dirEntry{}, false, nil
	}

	firstKey, err := l.contents.dataVal(0)
	if err != nil {
		return dirEntry{}, false, err
	}
	n, err := l.contents.numRecs()
	if err != nil {
		return dirEntry{}, false, err
	}
	lastKey, err := l.contents.dataVal(n - 1)
	if err != nil {
		return dirEntry{}, false, err
	}

	if lastKey.Equals(firstKey) {
		// Every record on this page shares one key: push everything but the
		// first into a new overflow block chained from this one.
		existingFlag, err := l.contents.flag()
		if err != nil {
			return dirEntry{}, false, err
		}
		newBlock, err := l.contents.split(1, existingFlag)
		if err != nil {
			return dirEntry{}, false, err
		}
		if err := l.contents.setFlag(int32(newBlock.Number)); err != nil {
			return dirEntry{}, false, err
		}
		return dirEntry{}, false, nil
	}

	splitPos := n / 2
	splitKey, err := l.contents.dataVal(splitPos)
	if err != nil {
		return dirEntry{}, false, err
	}
	if splitKey.Equals(firstKey) {
		for {
			splitPos++
			splitKey, err = l.contents.dataVal(splitPos)
			if err != nil {
				return dirEntry{}, false, err
			}
			if !splitKey.Equals(firstKey) {
				break
			}
		}
	} else {
		for {
			prev, err := l.contents.dataVal(splitPos - 1)
			if err != nil {
				return dirEntry{}, false, err
			}
			if !prev.Equals(splitKey) {
				break
			}
			splitPos--
		}
	}
	newBlock, err := l.contents.split(splitPos, noOverflow)
	if err != nil {
		return dirEntry{}, false, err
	}
	return newDirEntry(splitKey, newBlock.Number), true, nil
}
