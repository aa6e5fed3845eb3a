package metadata

import (
	"ferrodb/internal/index"
	"ferrodb/internal/index/btree"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// IndexInfo carries what the planner needs to know about one index
// without opening it: its cost estimates, and a way to open it on
// demand.
type IndexInfo struct {
	idxName   string
	fldName   string
	tx        *tx.Transaction
	tblSchema *record.Schema
	idxLayout *record.Layout
	si        StatInfo
}

func newIndexInfo(idxName, fldName string, tblSchema *record.Schema, t *tx.Transaction, si StatInfo) *IndexInfo {
	return &IndexInfo{
		idxName:   idxName,
		fldName:   fldName,
		tx:        t,
		tblSchema: tblSchema,
		idxLayout: createIdxLayout(fldName, tblSchema),
		si:        si,
	}
}

func createIdxLayout(fldName string, tblSchema *record.Schema) *record.Layout {
	schema := record.NewSchema()
	schema.AddIntField("block")
	schema.AddIntField("id")
	if tblSchema.Type(fldName) == record.Integer {
		schema.AddIntField("dataval")
	} else {
		schema.AddStringField("dataval", tblSchema.Length(fldName))
	}
	return record.NewLayout(schema)
}

// Open opens this index, ready for use.
func (ii *IndexInfo) Open() (index.Index, error) {
	return btree.NewBTreeIndex(ii.tx, ii.idxName, ii.idxLayout)
}

// BlocksAccessed estimates the number of block accesses a lookup against
// this index costs.
func (ii *IndexInfo) BlocksAccessed() int {
	recordsPerBlock := ii.tx.BlockSize() / ii.idxLayout.SlotSize()
	if recordsPerBlock == 0 {
		recordsPerBlock = 1
	}
	numBlocks := ii.si.RecordsOutput() / recordsPerBlock
	return btree.SearchCost(numBlocks, recordsPerBlock)
}

// RecordsOutput estimates the number of records a lookup against this
// index returns.
func (ii *IndexInfo) RecordsOutput() int {
	distinct := ii.si.DistinctValues(ii.fldName)
	if distinct == 0 {
		distinct = 1
	}
	return ii.si.RecordsOutput() / distinct
}

// DistinctValues estimates the number of distinct values fieldName takes
// on across the records this index's lookups return.
func (ii *IndexInfo) DistinctValues(fieldName string) int {
	if fieldName == ii.fldName {
		return 1
	}
	return ii.si.DistinctValues(fieldName)
}

// FieldName returns the field this index indexes.
func (ii *IndexInfo) FieldName() string {
	return ii.fldName
}
