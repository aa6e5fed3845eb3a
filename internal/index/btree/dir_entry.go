package btree

import "ferrodb/internal/record"

// dirEntry is a single entry of a directory page: a search key together
// with the block it routes to. Insert/insertEntry return one whenever a
// split propagates a new key up to the parent level.
type dirEntry struct {
	dataVal  record.Constant
	blockNum int
}

func newDirEntry(dataVal record.Constant, blockNum int) dirEntry {
	return dirEntry{dataVal: dataVal, blockNum: blockNum}
}
