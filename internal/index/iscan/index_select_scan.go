// Package iscan provides the scan that turns an index lookup into an
// ordinary query.Scan: it walks an index's matching entries and, for
// each one, jumps the underlying table scan straight to that RID.
package iscan

import (
	"ferrodb/internal/index"
	"ferrodb/internal/record"
)

// IndexSelectScan retrieves exactly the table records whose indexed
// field equals a fixed search key, using idx to avoid a full table
// scan.
type IndexSelectScan struct {
	ts        *record.TableScan
	idx       index.Index
	searchKey record.Constant
}

// NewIndexSelectScan returns a scan over ts restricted to the records
// idx reports for searchKey.
func NewIndexSelectScan(idx index.Index, ts *record.TableScan, searchKey record.Constant) (*IndexSelectScan, error) {
	iss := &IndexSelectScan{ts: ts, idx: idx, searchKey: searchKey}
	if err := iss.BeforeFirst(); err != nil {
		return nil, err
	}
	return iss, nil
}

// BeforeFirst positions the index before its first entry for the search
// key.
func (iss *IndexSelectScan) BeforeFirst() error {
	return iss.idx.BeforeFirst(iss.searchKey)
}

// Next advances the index to its next matching entry and moves the
// table scan onto the record it identifies.
func (iss *IndexSelectScan) Next() (bool, error) {
	ok, err := iss.idx.Next()
	if err != nil || !ok {
		return ok, err
	}
	rid, err := iss.idx.DataRID()
	if err != nil {
		return false, err
	}
	if err := iss.ts.MoveToRID(rid); err != nil {
		return false, err
	}
	return true, nil
}

// GetInt returns the current record's value for fieldName.
func (iss *IndexSelectScan) GetInt(fieldName string) (int32, error) {
	return iss.ts.GetInt(fieldName)
}

// GetString returns the current record's value for fieldName.
func (iss *IndexSelectScan) GetString(fieldName string) (string, error) {
	return iss.ts.GetString(fieldName)
}

// GetVal returns the current record's value for fieldName as a Constant.
func (iss *IndexSelectScan) GetVal(fieldName string) (record.Constant, error) {
	return iss.ts.GetVal(fieldName)
}

// HasField reports whether fieldName is part of the underlying table.
func (iss *IndexSelectScan) HasField(fieldName string) bool {
	return iss.ts.HasField(fieldName)
}

// Close releases the index and the table scan.
func (iss *IndexSelectScan) Close() {
	iss.idx.Close()
	iss.ts.Close()
}
