package btree

import (
	"ferrodb/internal/file"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// dir navigates one level of the directory file. Its page's flag field
// is the level: 0 means the page's children are leaf blocks, anything
// higher means its children are directory blocks one level closer to
// the leaves.
type dir struct {
	tx       *tx.Transaction
	layout   *record.Layout
	filename string
	contents *page
}

func newDir(t *tx.Transaction, block file.BlockID, layout *record.Layout) (*dir, error) {
	contents, err := newPage(t, block, layout)
	if err != nil {
		return nil, err
	}
	return &dir{tx: t, layout: layout, filename: block.Filename, contents: contents}, nil
}

func (d *dir) close() {
	d.contents.close()
}

// search descends from this directory node to the leaf block that may
// contain searchKey, and returns its block number.
func (d *dir) search(searchKey record.Constant) (int, error) {
	childBlock, err := d.findChildBlock(searchKey)
	if err != nil {
		return 0, err
	}
	for {
		flag, err := d.contents.flag()
		if err != nil {
			return 0, err
		}
		if flag <= 0 {
			break
		}
		d.contents.close()
		contents, err := newPage(d.tx, childBlock, d.layout)
		if err != nil {
			return 0, err
		}
		d.contents = contents
		childBlock, err = d.findChildBlock(searchKey)
		if err != nil {
			return 0, err
		}
	}
	return childBlock.Number, nil
}

func (d *dir) findChildBlock(searchKey record.Constant) (file.BlockID, error) {
	slot, err := d.contents.findSlotBefore(searchKey)
	if err != nil {
		return file.BlockID{}, err
	}
	n, err := d.contents.numRecs()
	if err != nil {
		return file.BlockID{}, err
	}
	if slot+1 < n {
		next, err := d.contents.dataVal(slot + 1)
		if err != nil {
			return file.BlockID{}, err
		}
		if next.Equals(searchKey) {
			slot++
		}
	}
	blockNum, err := d.contents.childNum(slot)
	if err != nil {
		return file.BlockID{}, err
	}
	return file.NewBlockID(d.filename, blockNum), nil
}

// makeNewRoot grows the tree by one level: it splits off everything
// currently in the root into a fresh block, then inserts entries for
// both that block and e into the now-empty root.
func (d *dir) makeNewRoot(e dirEntry) error {
	firstVal, err := d.contents.dataVal(0)
	if err != nil {
		return err
	}
	level, err := d.contents.flag()
	if err != nil {
		return err
	}
	newBlock, err := d.contents.split(0, level)
	if err != nil {
		return err
	}
	oldRoot := newDirEntry(firstVal, newBlock.Number)
	if _, _, err := d.insertEntry(oldRoot); err != nil {
		return err
	}
	if _, _, err := d.insertEntry(e); err != nil {
		return err
	}
	return d.contents.setFlag(level + 1)
}

// insert descends to the appropriate leaf-adjacent directory node and
// inserts e, propagating a split upward as needed. It returns the entry
// to insert into this node's parent when this node itself split.
func (d *dir) insert(e dirEntry) (dirEntry, bool, error) {
	level, err := d.contents.flag()
	if err != nil {
		return dirEntry{}, false, err
	}
	if level == 0 {
		return d.insertEntry(e)
	}
	childBlock, err := d.findChildBlock(e.dataVal)
	if err != nil {
		return dirEntry{}, false, err
	}
	child, err := newDir(d.tx, childBlock, d.layout)
	if err != nil {
		return dirEntry{}, false, err
	}
	propagated, ok, err := child.insert(e)
	child.close()
	if err != nil {
		return dirEntry{}, false, err
	}
	if !ok {
		return dirEntry{}, false, nil
	}
	return d.insertEntry(propagated)
}

func (d *dir) insertEntry(e dirEntry) (dirEntry, bool, error) {
	slot, err := d.contents.findSlotBefore(e.dataVal)
	if err != nil {
		return dirEntry{}, false, err
	}
	newSlot := slot + 1
	if err := d.contents.insertDir(newSlot, e.dataVal, e.blockNum); err != nil {
		return dirEntry{}, false, err
	}
	full, err := d.contents.isFull()
	if err != nil {
		return dirEntry{}, false, err
	}
	if !full {
		return dirEntry{}, false, nil
	}
	level, err := d.contents.flag()
	if err != nil {
		return dirEntry{}, false, err
	}
	n, err := d.contents.numRecs()
	if err != nil {
		return dirEntry{}, false, err
	}
	splitPos := n / 2
	splitVal, err := d.contents.dataVal(splitPos)
	if err != nil {
		return dirEntry{}, false, err
	}
	newBlock, err := d.contents.split(splitPos, level)
	if err != nil {
		return dirEntry{}, false, err
	}
	return newDirEntry(splitVal, newBlock.Number), true, nil
}
