package record

import (
	"fmt"

	"ferrodb/internal/file"
	"ferrodb/internal/tx"
)

// TableScan provides record-at-a-time access to every block of one table's
// file, in block/slot order. It is the engine's canonical updatable scan:
// every higher-level scan either wraps one directly or composes scans that
// eventually bottom out in one.
type TableScan struct {
	tx          *tx.Transaction
	layout      *Layout
	rp          *RecordPage
	filename    string
	currentSlot int
}

// NewTableScan opens filename (creating its first block if the table is
// brand new) and positions the scan before the first record.
func NewTableScan(t *tx.Transaction, tableName string, layout *Layout) (*TableScan, error) {
	ts := &TableScan{
		tx:       t,
		layout:   layout,
		filename: tableName + ".tbl",
	}

	size, err := t.Size(ts.filename)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		if err := ts.moveToNewBlock(); err != nil {
			return nil, err
		}
	} else {
		if err := ts.moveToBlock(0); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// BeforeFirst repositions the scan before the first record of the table.
func (ts *TableScan) BeforeFirst() error {
	return ts.moveToBlock(0)
}

// Next advances to the next record, moving across block boundaries as
// needed. It returns false once every block has been exhausted.
func (ts *TableScan) Next() (bool, error) {
	for {
		slot, err := ts.rp.NextAfter(ts.currentSlot)
		if err != nil {
			return false, err
		}
		ts.currentSlot = slot
		if ts.currentSlot >= 0 {
			return true, nil
		}
		atLast, err := ts.atLastBlock()
		if err != nil {
			return false, err
		}
		if atLast {
			return false, nil
		}
		if err := ts.moveToBlock(ts.rp.Block().Number + 1); err != nil {
			return false, err
		}
	}
}

// GetInt returns the current record's value for fieldName.
func (ts *TableScan) GetInt(fieldName string) (int32, error) {
	return ts.rp.GetInt(ts.currentSlot, fieldName)
}

// GetString returns the current record's value for fieldName.
func (ts *TableScan) GetString(fieldName string) (string, error) {
	return ts.rp.GetString(ts.currentSlot, fieldName)
}

// GetVal returns the current record's value for fieldName as a Constant.
func (ts *TableScan) GetVal(fieldName string) (Constant, error) {
	if ts.layout.Schema().Type(fieldName) == Integer {
		v, err := ts.GetInt(fieldName)
		if err != nil {
			return Constant{}, err
		}
		return NewIntConstant(v), nil
	}
	v, err := ts.GetString(fieldName)
	if err != nil {
		return Constant{}, err
	}
	return NewStringConstant(v), nil
}

// HasField reports whether fieldName is part of this table's schema.
func (ts *TableScan) HasField(fieldName string) bool {
	return ts.layout.Schema().HasField(fieldName)
}

// Close unpins the current block.
func (ts *TableScan) Close() {
	if ts.rp != nil {
		ts.tx.Unpin(ts.rp.Block())
	}
}

// SetInt writes val to fieldName in the current record.
func (ts *TableScan) SetInt(fieldName string, val int32) error {
	return ts.rp.SetInt(ts.currentSlot, fieldName, val)
}

// SetString writes val to fieldName in the current record.
func (ts *TableScan) SetString(fieldName string, val string) error {
	return ts.rp.SetString(ts.currentSlot, fieldName, val)
}

// SetVal writes val to fieldName in the current record.
func (ts *TableScan) SetVal(fieldName string, val Constant) error {
	if ts.layout.Schema().Type(fieldName) == Integer {
		v, ok := val.AsInt()
		if !ok {
			return fmt.Errorf("record: field %q expects an int value", fieldName)
		}
		return ts.SetInt(fieldName, v)
	}
	v, ok := val.AsString()
	if !ok {
		return fmt.Errorf("record: field %q expects a string value", fieldName)
	}
	return ts.SetString(fieldName, v)
}

// Insert positions the scan on a newly allocated record, creating new
// blocks as needed, and returns once it finds room.
func (ts *TableScan) Insert() error {
	for {
		slot, err := ts.rp.InsertAfter(ts.currentSlot)
		if err != nil {
			return err
		}
		ts.currentSlot = slot
		if ts.currentSlot >= 0 {
			return nil
		}
		atLast, err := ts.atLastBlock()
		if err != nil {
			return err
		}
		if atLast {
			if err := ts.moveToNewBlock(); err != nil {
				return err
			}
		} else {
			if err := ts.moveToBlock(ts.rp.Block().Number + 1); err != nil {
				return err
			}
		}
	}
}

// Delete marks the current record as deleted.
func (ts *TableScan) Delete() error {
	return ts.rp.Delete(ts.currentSlot)
}

// RID returns the identity of the current record.
func (ts *TableScan) RID() RID {
	return NewRID(ts.rp.Block().Number, ts.currentSlot)
}

// MoveToRID repositions the scan directly onto the record identified by
// rid.
func (ts *TableScan) MoveToRID(rid RID) error {
	ts.Close()
	blk := file.NewBlockID(ts.filename, rid.BlockNumber)
	rp, err := NewRecordPage(ts.tx, blk, ts.layout)
	if err != nil {
		return err
	}
	ts.rp = rp
	ts.currentSlot = rid.Slot
	return nil
}

func (ts *TableScan) moveToBlock(blockNumber int) error {
	ts.Close()
	blk := file.NewBlockID(ts.filename, blockNumber)
	rp, err := NewRecordPage(ts.tx, blk, ts.layout)
	if err != nil {
		return err
	}
	ts.rp = rp
	ts.currentSlot = -1
	return nil
}

func (ts *TableScan) moveToNewBlock() error {
	ts.Close()
	blk, err := ts.tx.Append(ts.filename)
	if err != nil {
		return err
	}
	rp, err := NewRecordPage(ts.tx, blk, ts.layout)
	if err != nil {
		return err
	}
	ts.rp = rp
	if err := ts.rp.Format(); err != nil {
		return err
	}
	ts.currentSlot = -1
	return nil
}

func (ts *TableScan) atLastBlock() (bool, error) {
	size, err := ts.tx.Size(ts.filename)
	if err != nil {
		return false, err
	}
	return ts.rp.Block().Number == size-1, nil
}
