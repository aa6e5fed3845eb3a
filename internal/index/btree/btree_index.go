package btree

import (
	"math"

	"ferrodb/internal/file"
	"ferrodb/internal/index"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// Index is a B+Tree secondary index stored as two files: idxname+"leaf"
// holds the leaf blocks (the actual (value, RID) entries, chained into
// overflow blocks for duplicate keys), and idxname+"dir" holds the
// directory blocks, whose root always lives at block 0.
type Index struct {
	tx         *tx.Transaction
	dirLayout  *record.Layout
	leafLayout *record.Layout
	leafTable  string
	rootBlock  file.BlockID
	leaf       *leaf
}

var _ index.Index = (*Index)(nil)

// NewBTreeIndex opens (creating on first use) the B+Tree index idxname
// whose leaf entries are laid out according to leafLayout.
func NewBTreeIndex(t *tx.Transaction, idxName string, leafLayout *record.Layout) (*Index, error) {
	leafTable := idxName + "leaf"
	size, err := t.Size(leafTable)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		blk, err := t.Append(leafTable)
		if err != nil {
			return nil, err
		}
		node, err := newPage(t, blk, leafLayout)
		if err != nil {
			return nil, err
		}
		err = format(t, blk, leafLayout, noOverflow)
		node.close()
		if err != nil {
			return nil, err
		}
	}

	dirSchema := record.NewSchema()
	dirSchema.AddIntField("block")
	dirSchema.Add("dataval", leafLayout.Schema())
	dirLayout := record.NewLayout(dirSchema)

	dirTable := idxName + "dir"
	rootBlock := file.NewBlockID(dirTable, 0)
	dirSize, err := t.Size(dirTable)
	if err != nil {
		return nil, err
	}
	if dirSize == 0 {
		if _, err := t.Append(dirTable); err != nil {
			return nil, err
		}
		root, err := newPage(t, rootBlock, dirLayout)
		if err != nil {
			return nil, err
		}
		if err := format(t, rootBlock, dirLayout, 0); err != nil {
			root.close()
			return nil, err
		}
		minVal := minConstant(dirSchema.Type("dataval"))
		if err := root.insertDir(0, minVal, 0); err != nil {
			root.close()
			return nil, err
		}
		root.close()
	}

	return &Index{
		tx:         t,
		dirLayout:  dirLayout,
		leafLayout: leafLayout,
		leafTable:  leafTable,
		rootBlock:  rootBlock,
	}, nil
}

// BeforeFirst positions the index at the leaf block that may hold
// entries for searchKey.
func (idx *Index) BeforeFirst(searchKey record.Constant) error {
	idx.Close()
	root, err := newDir(idx.tx, idx.rootBlock, idx.dirLayout)
	if err != nil {
		return err
	}
	blockNum, err := root.search(searchKey)
	root.close()
	if err != nil {
		return err
	}
	leafBlock := file.NewBlockID(idx.leafTable, blockNum)
	l, err := newLeaf(idx.tx, leafBlock, idx.leafLayout, searchKey)
	if err != nil {
		return err
	}
	idx.leaf = l
	return nil
}

// Next advances to the next entry matching the search key.
func (idx *Index) Next() (bool, error) {
	return idx.leaf.next()
}

// DataRID returns the RID stored in the current entry.
func (idx *Index) DataRID() (record.RID, error) {
	return idx.leaf.dataRID()
}

// Insert adds an entry mapping dataVal to dataRID, splitting and growing
// the tree as needed.
func (idx *Index) Insert(dataVal record.Constant, dataRID record.RID) error {
	if err := idx.BeforeFirst(dataVal); err != nil {
		return err
	}
	entry, split, err := idx.leaf.insert(dataRID)
	idx.leaf.close()
	idx.leaf = nil
	if err != nil {
		return err
	}
	if !split {
		return nil
	}
	root, err := newDir(idx.tx, idx.rootBlock, idx.dirLayout)
	if err != nil {
		return err
	}
	defer root.close()
	propagated, grew, err := root.insert(entry)
	if err != nil {
		return err
	}
	if grew {
		return root.makeNewRoot(propagated)
	}
	return nil
}

// Delete removes the entry mapping dataVal to dataRID.
func (idx *Index) Delete(dataVal record.Constant, dataRID record.RID) error {
	if err := idx.BeforeFirst(dataVal); err != nil {
		return err
	}
	defer func() {
		idx.leaf.close()
		idx.leaf = nil
	}()
	return idx.leaf.delete(dataRID)
}

// Close releases any pages this index is holding open.
func (idx *Index) Close() {
	if idx.leaf != nil {
		idx.leaf.close()
		idx.leaf = nil
	}
}

// SearchCost estimates the number of block accesses needed to find all
// entries matching a single search key, assuming numBlocks leaf blocks
// holding recordsPerBlock entries each.
func SearchCost(numBlocks, recordsPerBlock int) int {
	if recordsPerBlock <= 1 {
		return numBlocks
	}
	return 1 + int(math.Log(float64(numBlocks))/math.Log(float64(recordsPerBlock)))
}
