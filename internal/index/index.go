// Package index defines the interface every secondary-index implementation
// satisfies; internal/index/btree provides the only implementation.
package index

import "ferrodb/internal/record"

// Index positions a cursor over the entries for one search key and lets
// the caller add or remove entries. A fresh Index is not positioned
// anywhere; BeforeFirst must be called before Next.
type Index interface {
	// BeforeFirst positions the index before the first entry matching
	// searchKey.
	BeforeFirst(searchKey record.Constant) error

	// Next advances to the next entry matching the search key set by the
	// most recent BeforeFirst. It returns false once there are no more.
	Next() (bool, error)

	// DataRID returns the RID stored in the current entry.
	DataRID() (record.RID, error)

	// Insert adds an entry mapping dataVal to dataRID.
	Insert(dataVal record.Constant, dataRID record.RID) error

	// Delete removes the entry mapping dataVal to dataRID.
	Delete(dataVal record.Constant, dataRID record.RID) error

	// Close releases any pages this index is holding open.
	Close()
}
