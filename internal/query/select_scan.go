package query

import (
	"fmt"

	"ferrodb/internal/record"
)

// SelectScan filters another scan's records, exposing only those that
// satisfy a predicate. It passes every field and update operation
// straight through to the underlying scan, so it can wrap either a
// read-only Scan or, when updates are needed, an UpdateScan.
type SelectScan struct {
	s    Scan
	pred *Predicate
}

// NewSelectScan wraps s, filtering its records by pred.
func NewSelectScan(s Scan, pred *Predicate) *SelectScan {
	return &SelectScan{s: s, pred: pred}
}

// BeforeFirst repositions the scan before the first qualifying record.
func (ss *SelectScan) BeforeFirst() error {
	return ss.s.BeforeFirst()
}

// Next advances to the next record satisfying the predicate.
func (ss *SelectScan) Next() (bool, error) {
	for {
		ok, err := ss.s.Next()
		if err != nil || !ok {
			return ok, err
		}
		satisfied, err := ss.pred.IsSatisfied(ss.s)
		if err != nil {
			return false, err
		}
		if satisfied {
			return true, nil
		}
	}
}

// GetInt returns the current record's value for fieldName.
func (ss *SelectScan) GetInt(fieldName string) (int32, error) {
	return ss.s.GetInt(fieldName)
}

// GetString returns the current record's value for fieldName.
func (ss *SelectScan) GetString(fieldName string) (string, error) {
	return ss.s.GetString(fieldName)
}

// GetVal returns the current record's value for fieldName as a Constant.
func (ss *SelectScan) GetVal(fieldName string) (record.Constant, error) {
	return ss.s.GetVal(fieldName)
}

// HasField reports whether fieldName is visible through this scan.
func (ss *SelectScan) HasField(fieldName string) bool {
	return ss.s.HasField(fieldName)
}

// Close releases the underlying scan.
func (ss *SelectScan) Close() {
	ss.s.Close()
}

// asUpdateScan returns the wrapped scan as an UpdateScan, erroring if it
// is not one.
func (ss *SelectScan) asUpdateScan() (UpdateScan, error) {
	us, ok := ss.s.(UpdateScan)
	if !ok {
		return nil, fmt.Errorf("query: underlying scan does not support updates")
	}
	return us, nil
}

// SetInt writes val to fieldName in the current record.
func (ss *SelectScan) SetInt(fieldName string, val int32) error {
	us, err := ss.asUpdateScan()
	if err != nil {
		return err
	}
	return us.SetInt(fieldName, val)
}

// SetString writes val to fieldName in the current record.
func (ss *SelectScan) SetString(fieldName string, val string) error {
	us, err := ss.asUpdateScan()
	if err != nil {
		return err
	}
	return us.SetString(fieldName, val)
}

// SetVal writes val to fieldName in the current record.
func (ss *SelectScan) SetVal(fieldName string, val record.Constant) error {
	us, err := ss.asUpdateScan()
	if err != nil {
		return err
	}
	return us.SetVal(fieldName, val)
}

// Delete marks the current record as deleted.
func (ss *SelectScan) Delete() error {
	us, err := ss.asUpdateScan()
	if err != nil {
		return err
	}
	return us.Delete()
}

// Insert positions the scan on a newly allocated record.
func (ss *SelectScan) Insert() error {
	us, err := ss.asUpdateScan()
	if err != nil {
		return err
	}
	return us.Insert()
}

// RID returns the identity of the current record.
func (ss *SelectScan) RID() record.RID {
	us, err := ss.asUpdateScan()
	if err != nil {
		return record.RID{}
	}
	return us.RID()
}

// MoveToRID repositions the scan directly onto the record identified by
// rid.
func (ss *SelectScan) MoveToRID(rid record.RID) error {
	us, err := ss.asUpdateScan()
	if err != nil {
		return err
	}
	return us.MoveToRID(rid)
}
